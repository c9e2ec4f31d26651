package middleware

import (
	"fmt"

	"github.com/ak/sba/internal/domain/models"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the brewing tags to gin's validator engine:
// brewstage accepts the four growth stages and carbunit accepts ml or g.
// Empty values pass so the tags combine with omitempty or required.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("brewstage", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || models.Stage(s).Valid()
	}); err != nil {
		return err
	}
	return v.RegisterValidation("carbunit", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || models.CarbUnit(s).Valid()
	})
}
