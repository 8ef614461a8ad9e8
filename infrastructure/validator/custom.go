package validator

import (
	"facegate.io/entities"
	"github.com/go-playground/validator/v10"
)

func validateAngleTag(fl validator.FieldLevel) bool {
	tag := fl.Field().String()
	for _, valid := range entities.ValidAngleTags {
		if tag == valid {
			return true
		}
	}
	return false
}
