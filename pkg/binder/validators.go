package binder

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// dateValidator accepts a real calendar day in the format YYYY-MM-DD, or the
// empty string. Add `required` to the tag when the value must be present.
func dateValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}
