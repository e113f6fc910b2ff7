package dtos

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// HandlePattern is a lowercase slug of at most 25 characters, e.g. "anderson-arias-morrow".
var HandlePattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

const maxHandleLength = 25

func ValidateHandle(fl validator.FieldLevel) bool {
	handle := fl.Field().String()
	return len(handle) <= maxHandleLength && HandlePattern.MatchString(handle)
}

// RegisterValidators registers the custom tags used by the request types.
func RegisterValidators(v *validator.Validate) error {
	return v.RegisterValidation("handle", ValidateHandle)
}
