package money

import "fmt"

// Limits bounds the size of a single transaction.
type Limits struct {
	Min Money
	Max Money
}

// DefaultLimits returns the standard transaction limits of 0.01 to 1000000.00.
func DefaultLimits() Limits {
	return Limits{
		Min: MustParse("0.01"),
		Max: MustParse("1000000.00"),
	}
}

// Validator normalizes amounts and checks them against Limits.
// It holds no mutable state and is safe for concurrent use.
type Validator struct {
	limits Limits
}

// NewValidator creates a Validator for the given limits.
func NewValidator(limits Limits) Validator {
	return Validator{limits: limits}
}

// Limits returns the configured limits.
func (v Validator) Limits() Limits {
	return v.limits
}

// ValidateInLimits normalizes raw and fails with ErrInvalidAmount when the result is
// not positive, below the configured minimum, or above the configured maximum.
func (v Validator) ValidateInLimits(raw any) (Money, error) {
	amount, err := Normalize(raw)
	if err != nil {
		return Money{}, err
	}

	if !amount.IsPositive() {
		return Money{}, fmt.Errorf("%w: %s must be positive", ErrInvalidAmount, amount)
	}

	if amount.LessThan(v.limits.Min) {
		return Money{}, fmt.Errorf("%w: %s must be >= %s", ErrInvalidAmount, amount, v.limits.Min)
	}

	if amount.GreaterThan(v.limits.Max) {
		return Money{}, fmt.Errorf("%w: %s must be <= %s", ErrInvalidAmount, amount, v.limits.Max)
	}

	return amount, nil
}
