package money_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/concurrent-banking-go/money"
)

func Test_Normalize_UsesBankersRounding(t *testing.T) {
	testCases := []struct {
		raw      string
		expected string
	}{
		{raw: "0.125", expected: "0.12"},
		{raw: "0.135", expected: "0.14"},
		{raw: "2.675", expected: "2.68"},
		{raw: "1.005", expected: "1.00"},
		{raw: "1.015", expected: "1.02"},
		{raw: "-0.125", expected: "-0.12"},
		{raw: "10", expected: "10.00"},
		{raw: " 42.1 ", expected: "42.10"},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			m, err := money.Normalize(tc.raw)

			assert.NoError(t, err)
			assert.Equal(t, tc.expected, m.String())
		})
	}
}

func Test_Normalize_AcceptsNumericKinds(t *testing.T) {
	testCases := []struct {
		name     string
		raw      any
		expected string
	}{
		{name: "int", raw: 7, expected: "7.00"},
		{name: "int64", raw: int64(-3), expected: "-3.00"},
		{name: "uint32", raw: uint32(12), expected: "12.00"},
		{name: "float64 shortest repr", raw: 0.1, expected: "0.10"},
		{name: "float64 half even", raw: 0.125, expected: "0.12"},
		{name: "float32", raw: float32(2.5), expected: "2.50"},
		{name: "decimal", raw: decimal.RequireFromString("99.999"), expected: "100.00"},
		{name: "money", raw: money.MustParse("5.55"), expected: "5.55"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := money.Normalize(tc.raw)

			assert.NoError(t, err)
			assert.Equal(t, tc.expected, m.String())
		})
	}
}

func Test_Normalize_IsIdempotent(t *testing.T) {
	inputs := []any{"0.125", "0.135", "123456.789", "-77.775", 3.14159, 0, "0.005", "0.015"}

	for _, raw := range inputs {
		once, err := money.Normalize(raw)
		require.NoError(t, err)

		twice, err := money.Normalize(once)
		require.NoError(t, err)

		assert.True(t, once.Equal(twice), "normalize(normalize(%v)) != normalize(%v)", raw, raw)
		assert.Equal(t, once.String(), twice.String())
	}
}

func Test_Normalize_RejectsGarbage(t *testing.T) {
	inputs := []any{"abc", "", "1,000.00", math.NaN(), math.Inf(1), struct{}{}, (*money.Money)(nil)}

	for _, raw := range inputs {
		_, err := money.Normalize(raw)

		assert.ErrorIs(t, err, money.ErrInvalidAmount, "input %v", raw)
	}
}

func Test_Money_Arithmetic_StaysExact(t *testing.T) {
	balance := money.MustParse("0.10")

	for i := 0; i < 9; i++ {
		balance = balance.Add(money.MustParse("0.10"))
	}

	assert.Equal(t, "1.00", balance.String())
	assert.Equal(t, "0.70", balance.Sub(money.MustParse("0.30")).String())
	assert.Equal(t, "-1.00", balance.Neg().String())
	assert.Equal(t, int64(100), balance.Cents())
	assert.Equal(t, "123.45", money.FromCents(12345).String())
}

func Test_Money_Comparisons(t *testing.T) {
	small := money.MustParse("1.00")
	big := money.MustParse("2.00")

	assert.True(t, small.LessThan(big))
	assert.True(t, big.GreaterThan(small))
	assert.Equal(t, -1, small.Cmp(big))
	assert.True(t, money.Zero().IsZero())
	assert.True(t, money.MustParse("-0.01").IsNegative())
	assert.True(t, small.IsPositive())
	assert.Equal(t, "0.00", money.Money{}.String())
}

func Test_Money_JSON(t *testing.T) {
	payload := struct {
		Drift money.Money `json:"total_drift"`
	}{Drift: money.MustParse("12.5")}

	encoded, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_drift":"12.50"}`, string(encoded))

	var decoded money.Money
	require.NoError(t, json.Unmarshal([]byte(`3.335`), &decoded))
	assert.Equal(t, "3.34", decoded.String())

	kept := money.MustParse("7.00")
	require.NoError(t, json.Unmarshal([]byte(`null`), &kept))
	assert.Equal(t, "7.00", kept.String())

	var withNull struct {
		Drift money.Money `json:"total_drift"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"total_drift":null}`), &withNull))
	assert.True(t, withNull.Drift.IsZero())
}

func Test_Money_Format(t *testing.T) {
	assert.Equal(t, "£1,234,567.89", money.MustParse("1234567.891").Format("£"))
	assert.Equal(t, "-£1,234.50", money.MustParse("-1234.5").Format("£"))
	assert.Equal(t, "$0.00", money.Zero().Format(money.CurrencySymbol("XXX")))
	assert.Equal(t, "€999.00", money.MustParse("999").Format(money.CurrencySymbol("eur")))
}
