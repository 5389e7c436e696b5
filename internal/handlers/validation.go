package handlers

import (
	"github.com/SscSPs/acquire_ledger/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// RegisterValidators adds the custom binding rules used by request DTOs.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("decimal6", validateDecimal6)
}

// validateDecimal6 accepts non-negative decimals with at most six
// fractional digits that fit a BoundedDecimal.
func validateDecimal6(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil || d.IsNegative() || d.Exponent() < -domain.DecimalPlaces {
		return false
	}
	_, err = domain.NewBoundedDecimal(d)
	return err == nil
}
