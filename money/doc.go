// Package money provides the fixed-point Money type used for every balance and amount.
//
// A Money value always carries exactly two fractional digits. Values are produced only
// through normalization, which quantizes with banker's rounding (ties go to the nearest
// even digit) so that rounding bias does not accumulate over many operations.
//
// Key types:
//   - Money: a normalized monetary amount
//   - Limits: the configured minimum and maximum transaction size
//   - Validator: normalizes and bounds-checks transaction amounts
//
// Common usage pattern:
//
//	validator := money.NewValidator(money.DefaultLimits())
//
//	amount, err := validator.ValidateInLimits("75.005")
//	if err != nil {
//		// errors.Is(err, money.ErrInvalidAmount)
//	}
//	// amount.String() == "75.00"
package money
