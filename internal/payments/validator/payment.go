package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"vizin/pkg/logger"
	"vizin/pkg/model"

	"github.com/go-playground/validator/v10"
)

type PaymentValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewPaymentValidator(log *logger.Logger) *PaymentValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	})

	log.Info("Payment validator initialized successfully")

	return &PaymentValidator{
		validate: v,
		logger:   log,
	}
}

// Validate returns a field to message map, or nil when req is well formed.
func (v *PaymentValidator) Validate(req *model.PaymentRequest) map[string]any {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return map[string]any{"error": err.Error()}
	}

	details := make(map[string]any, len(validationErrs))
	for _, fe := range validationErrs {
		switch fe.Tag() {
		case "required":
			details[fe.Field()] = fmt.Sprintf("%s is required", fe.Field())
		case "oneof":
			details[fe.Field()] = fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
		case "max":
			details[fe.Field()] = fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		default:
			details[fe.Field()] = fe.Error()
		}
	}
	return details
}

func (v *PaymentValidator) ValidBookingID(id string) bool {
	return v.validate.Var(id, "required,uuid") == nil
}
