package student

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("yearlevel", func(fl validator.FieldLevel) bool {
		return slices.Contains(YearLevels, fl.Field().String())
	})

	return v
}

// validationError turns validator output into an ErrInvalidInput carrying
// a message for the first failing field.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	fe := verrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", fe.Field())
	case "max":
		msg = fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		msg = fmt.Sprintf("%s must be one of %s", fe.Field(), strings.Join(strings.Fields(fe.Param()), ", "))
	case "yearlevel":
		msg = fmt.Sprintf("%s must be one of %s", fe.Field(), strings.Join(YearLevels, ", "))
	default:
		msg = fmt.Sprintf("%s is invalid", fe.Field())
	}

	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}
