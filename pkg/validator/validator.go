package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var slotPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// RegisterSlotFormat teaches gin's binding engine the "slot" rule used
// by booking requests: a zero-padded "HH:MM" time-of-day label.
func RegisterSlotFormat() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("slot", func(fl validator.FieldLevel) bool {
		return slotPattern.MatchString(fl.Field().String())
	})
}
