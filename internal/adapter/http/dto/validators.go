package dto

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Accepts local and international shapes the mobile clients send:
// "0708091011", "+225 07 08 09 10 11", "225-0708091011". Normalization to
// the canonical local form happens in the identity service.
var phoneRe = regexp.MustCompile(`^\+?[0-9][0-9 ()\-]{6,18}$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("phone", validatePhone)
	}
}

func validatePhone(fl validator.FieldLevel) bool {
	return phoneRe.MatchString(fl.Field().String())
}
