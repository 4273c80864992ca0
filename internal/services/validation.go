package services

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// newValidator returns a validator that reports JSON field names and treats
// decimal.Decimal as a number, so `required,gt=0` works on prices.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// validateStruct runs the validator and converts its failures to a ValidationError.
func validateStruct(v *validator.Validate, message string, s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%s: %w", message, err)
	}
	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return newValidationError(message, fields)
}

// missingFields is used where a single required key is checked by hand.
func missingFields(names ...string) map[string]string {
	fields := make(map[string]string, len(names))
	for _, name := range names {
		fields[name] = fmt.Sprintf("Field '%s' failed on the 'required' tag", name)
	}
	return fields
}
