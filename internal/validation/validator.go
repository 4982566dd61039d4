package validation

import (
	"reflect"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with the Brazilian document tags
// registered. Handlers share a single instance; it is safe for concurrent use.
// Failing fields are reported under their json tag names, matching the
// request payload the client sent.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("cpf", func(fl validatorv10.FieldLevel) bool {
		return IsValidCPF(fl.Field().String())
	})
	_ = v.RegisterValidation("cep", func(fl validatorv10.FieldLevel) bool {
		return IsValidCEP(fl.Field().String())
	})
	_ = v.RegisterValidation("phone_digits", func(fl validatorv10.FieldLevel) bool {
		return HasPhoneDigits(fl.Field().String())
	})

	return v
}
