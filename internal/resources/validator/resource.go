package validator

import (
	"errors"
	"fmt"
	"strings"

	"roombook/pkg/logger"
	"roombook/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type ResourceValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewResourceValidator(log *logger.Logger) *ResourceValidator {
	v := validator.New()

	if err := v.RegisterValidation("unique_tags", validateUniqueTags); err != nil {
		log.Fatal("Failed to register 'unique_tags' validator",
			"error", err,
		)
	}

	log.Debug("Resource validator initialized successfully")

	return &ResourceValidator{
		validate: v,
		logger:   log,
	}
}

func validateUniqueTags(fl validator.FieldLevel) bool {
	tags, ok := fl.Field().Interface().([]string)
	if !ok {
		return false
	}
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if _, dup := seen[tag]; dup {
			return false
		}
		seen[tag] = struct{}{}
	}
	return true
}

// Validate checks a sanitized registration request.
func (v *ResourceValidator) Validate(in *model.ResourceInput) error {
	if err := v.validate.Struct(in); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if err := v.validate.Var(in.Equipment, "unique_tags"); err != nil {
		return ValidationErrors{
			ValidationError{
				Field:   "Equipment",
				Message: "Equipment tags must be unique",
			},
		}
	}

	return nil
}

func (v *ResourceValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
