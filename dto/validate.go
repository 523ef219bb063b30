package dto

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"hrtracker/model"
)

// RegisterValidators adds the request rules gin's default validator lacks.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
		return model.Priority(fl.Field().String()).Valid()
	})
}
