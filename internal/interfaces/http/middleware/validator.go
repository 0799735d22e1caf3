package middleware

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// SetupValidator registers custom rules on gin's binding engine. Call once
// before the engine starts serving.
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("dec2", validateDec2)
	}
}

// validateDec2 accepts a decimal with at most two fractional digits, the
// precision of money amounts.
func validateDec2(fl validator.FieldLevel) bool {
	d, ok := fl.Field().Interface().(decimal.Decimal)
	if !ok {
		return false
	}
	return d.Equal(d.Round(2))
}
