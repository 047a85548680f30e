package models

import (
	"errors"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/Belphemur/MediaFetch/internal/apperrors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their query parameter name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("query"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Validate checks the validate tags of a request struct and returns the first
// violation as an *apperrors.ErrClientInput.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	if fe.Tag() == "required" {
		return apperrors.NewClientInputError("Missing required parameter: %s.", fe.Field())
	}
	return apperrors.NewClientInputError("Invalid parameter: %s.", fe.Field())
}
