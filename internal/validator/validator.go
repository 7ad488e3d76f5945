package validator

import (
	"sync"

	"github.com/go-playground/validator/v10"
	ierr "github.com/membermatters/memberportal/internal/errors"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// GetValidator returns the shared validator instance.
func GetValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
	})
	return validate
}

// ValidateRequest validates a struct against its validate tags.
func ValidateRequest(req interface{}) error {
	if req == nil {
		return nil
	}

	if err := GetValidator().Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			details := make(map[string]any, len(validationErrors))
			for _, fieldError := range validationErrors {
				details[fieldError.Field()] = fieldError.Tag()
			}
			return ierr.NewError("validation failed").
				WithHint("Request validation failed").
				WithReportableDetails(details).
				Mark(ierr.ErrValidation)
		}
		return ierr.WithError(err).
			WithHint("Request validation failed").
			Mark(ierr.ErrValidation)
	}
	return nil
}
