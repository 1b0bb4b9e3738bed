// Package validator wraps go-playground/validator with the settings the API
// handlers share.
package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Validator struct {
	v *validator.Validate
}

// New returns a validator that reports fields by their json (or form) name,
// so FieldErrors keys match what clients sent.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(wireName)
	return &Validator{v: v}
}

func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// FieldErrors flattens validation errors into field -> failed tag.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

func wireName(field reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return field.Name
}
