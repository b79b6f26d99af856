package validator

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/cinex/cinema-ticketing/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var maxPrice = decimal.NewFromInt(10_000)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	validator.RegisterValidation("payment_method", validatePaymentMethod)
	validator.RegisterValidation("price", validatePrice)

	return validator
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	return slices.Contains(domain.PaymentMethods, fl.Field().String())
}

func validatePrice(fl validator.FieldLevel) bool {
	price, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}

	return !price.IsNegative() && price.LessThanOrEqual(maxPrice)
}

// decimalValue lets rules see a decimal as its string form.
func decimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}

	return nil
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		switch err.Kind().String() {
		case "int":
			return fmt.Sprintf("must be at least %s", err.Param())
		case "slice":
			return fmt.Sprintf("must contain at least %s items", err.Param())
		}
		return fmt.Sprintf("must be at least %s characters long", err.Param())
	case "max":
		switch err.Kind().String() {
		case "int":
			return fmt.Sprintf("must be at most %s", err.Param())
		case "slice":
			return fmt.Sprintf("must contain at most %s items", err.Param())
		}
		return fmt.Sprintf("must be at most %s characters long", err.Param())
	case "payment_method":
		return fmt.Sprintf("must be one of: %s", strings.Join(domain.PaymentMethods, ", "))
	case "price":
		return fmt.Sprintf("must be between 0 and %s", maxPrice)
	default:
		return "is invalid"
	}
}
