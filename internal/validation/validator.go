// Package validation checks catalog input using the validator/v10 library.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"PublicationIndex/internal/domain"
	apperr "PublicationIndex/internal/errors"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the pubyear rule registered.
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// pubyear accepts zero (unknown) or a year within the schema's range.
	_ = v.RegisterValidation("pubyear", func(fl validator.FieldLevel) bool {
		year := int(fl.Field().Int())
		return year == 0 || (year >= domain.MinYear && year <= domain.MaxYear())
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string)
	var parts []string
	for _, e := range validationErrs {
		msg := v.friendlyMessage(e)
		fieldErrors[e.Field()] = msg
		parts = append(parts, fmt.Sprintf("%s %s (got %v)", e.Field(), msg, e.Value()))
	}

	return apperr.ValidationWithDetails("validation failed: "+strings.Join(parts, "; "), fieldErrors)
}

func (v *Validator) friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "pubyear":
		return fmt.Sprintf("must be between %d and %d", domain.MinYear, domain.MaxYear())
	default:
		return "is invalid"
	}
}
