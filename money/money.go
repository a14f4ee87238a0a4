package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits every Money value carries.
const Places = 2

// ErrInvalidAmount is returned when an amount cannot be normalized or violates the configured limits.
var ErrInvalidAmount = errors.New("invalid amount")

// Money is a normalized monetary amount with exactly two fractional digits.
// The zero value is 0.00.
type Money struct {
	d decimal.Decimal
}

// Zero returns 0.00.
func Zero() Money {
	return Money{d: decimal.Zero}
}

// Normalize converts raw into Money, quantized to two decimal places with banker's rounding.
//
// Supported inputs are Money, decimal.Decimal, string, every Go integer kind, float32 and float64.
// Floats are converted through their shortest decimal representation, not through float arithmetic.
// Normalizing an already normalized value returns it unchanged.
func Normalize(raw any) (Money, error) {
	d, err := toDecimal(raw)
	if err != nil {
		return Money{}, err
	}

	return fromDecimal(d), nil
}

// MustParse is like Normalize for string input but panics on failure.
// It is meant for constants and test fixtures.
func MustParse(s string) Money {
	m, err := Normalize(s)
	if err != nil {
		panic(err)
	}

	return m
}

// FromCents returns the Money value for an integral number of minor units.
func FromCents(cents int64) Money {
	return fromDecimal(decimal.New(cents, -Places))
}

func fromDecimal(d decimal.Decimal) Money {
	return Money{d: d.RoundBank(Places)}
}

func toDecimal(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case Money:
		return v.d, nil
	case *Money:
		if v == nil {
			return decimal.Decimal{}, fmt.Errorf("%w: nil", ErrInvalidAmount)
		}
		return v.d, nil
	case decimal.Decimal:
		return v, nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, v)
		}
		return d, nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int8:
		return decimal.NewFromInt(int64(v)), nil
	case int16:
		return decimal.NewFromInt(int64(v)), nil
	case int32:
		return decimal.NewFromInt32(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case uint:
		return decimal.NewFromUint64(uint64(v)), nil
	case uint8:
		return decimal.NewFromUint64(uint64(v)), nil
	case uint16:
		return decimal.NewFromUint64(uint64(v)), nil
	case uint32:
		return decimal.NewFromUint64(uint64(v)), nil
	case uint64:
		return decimal.NewFromUint64(v), nil
	case float32:
		if err := checkFinite(float64(v)); err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.NewFromFloat32(v), nil
	case float64:
		if err := checkFinite(v); err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.NewFromFloat(v), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidAmount, raw)
	}
}

func checkFinite(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: %v is not finite", ErrInvalidAmount, f)
	}

	return nil
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return fromDecimal(m.d.Add(other.d))
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return fromDecimal(m.d.Sub(other.d))
}

// Neg returns -m.
func (m Money) Neg() Money {
	return fromDecimal(m.d.Neg())
}

// Cmp compares m and other and returns -1, 0 or +1.
func (m Money) Cmp(other Money) int {
	return m.d.Cmp(other.d)
}

// Equal reports whether m and other denote the same amount.
func (m Money) Equal(other Money) bool {
	return m.d.Equal(other.d)
}

// LessThan reports whether m < other.
func (m Money) LessThan(other Money) bool {
	return m.d.LessThan(other.d)
}

// GreaterThan reports whether m > other.
func (m Money) GreaterThan(other Money) bool {
	return m.d.GreaterThan(other.d)
}

// IsZero reports whether m is 0.00.
func (m Money) IsZero() bool {
	return m.d.IsZero()
}

// IsNegative reports whether m < 0.00.
func (m Money) IsNegative() bool {
	return m.d.IsNegative()
}

// IsPositive reports whether m > 0.00.
func (m Money) IsPositive() bool {
	return m.d.IsPositive()
}

// Decimal exposes the underlying decimal value.
func (m Money) Decimal() decimal.Decimal {
	return m.d
}

// Cents returns the amount in minor units.
func (m Money) Cents() int64 {
	return m.d.Shift(Places).IntPart()
}

// String renders the amount with exactly two fractional digits, e.g. "125.00".
func (m Money) String() string {
	return m.d.StringFixedBank(Places)
}

// MarshalJSON encodes the amount as a fixed two-decimal JSON string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts a JSON string or number and normalizes it. JSON null leaves m unchanged.
func (m *Money) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	s := strings.Trim(string(data), `"`)

	parsed, err := Normalize(s)
	if err != nil {
		return err
	}

	*m = parsed

	return nil
}
