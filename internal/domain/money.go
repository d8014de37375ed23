package domain

import (
	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the number of minor-unit digits every stored amount carries.
const CurrencyPlaces int32 = 2

var hundred = decimal.NewFromInt(100)

// HasCurrencyPrecision reports whether d fits in CurrencyPlaces decimal places.
func HasCurrencyPrecision(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(CurrencyPlaces))
}

// ValidatePositiveAmount checks that amount is > 0 and has currency precision.
// field names the input in the returned message.
func ValidatePositiveAmount(field string, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return Validationf("%s must be a positive number", field)
	}
	if !HasCurrencyPrecision(amount) {
		return Validationf("%s must have at most %d decimal places", field, CurrencyPlaces)
	}
	return nil
}

// ValidateNonNegativeAmount checks that amount is >= 0 and has currency precision.
func ValidateNonNegativeAmount(field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return Validationf("%s cannot be negative", field)
	}
	if !HasCurrencyPrecision(amount) {
		return Validationf("%s must have at most %d decimal places", field, CurrencyPlaces)
	}
	return nil
}
