package validator

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("appointment_outcome", validateOutcome)
	return &CustomValidator{
		validator: v,
	}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// validateOutcome accepts the statuses a doctor may set on an appointment.
func validateOutcome(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "Completed", "Cancelled":
		return true
	}
	return false
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			field := e.Field()
			switch e.Tag() {
			case "required":
				errs[field] = field + " is required"
			case "min":
				errs[field] = field + " must be at least " + e.Param() + " characters"
			case "max":
				errs[field] = field + " must be at most " + e.Param() + " characters"
			case "gte":
				errs[field] = field + " must be greater than or equal to " + e.Param()
			case "lte":
				errs[field] = field + " must be less than or equal to " + e.Param()
			case "uuid":
				errs[field] = field + " must be a valid UUID"
			case "datetime":
				errs[field] = field + " must match the layout " + e.Param()
			case "alphanum":
				errs[field] = field + " must contain only letters and digits"
			case "appointment_outcome":
				errs[field] = field + " must be Completed or Cancelled"
			default:
				errs[field] = field + " is invalid"
			}
		}
	}

	return errs
}
