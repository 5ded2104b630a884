package validator

import (
	"fmt"
	"strings"

	"tablebook/pkg/logger"
	"tablebook/pkg/model"

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

// VenueValidator validates zone and table payloads.
type VenueValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewVenueValidator(log *logger.Logger) *VenueValidator {
	v := validator.New()

	log.Info("Venue validator initialized successfully")

	return &VenueValidator{
		validate: v,
		logger:   log,
	}
}

func (v *VenueValidator) ValidateZone(zone *model.ZoneConfig) error {
	if err := v.validate.Struct(zone); err != nil {
		return translate(err)
	}
	return nil
}

func (v *VenueValidator) ValidateZoneUpdate(updates *model.ZoneConfigUpdate) error {
	if err := v.validate.Struct(updates); err != nil {
		return translate(err)
	}
	return nil
}

func (v *VenueValidator) ValidateTable(table *model.Table) error {
	if err := v.validate.Struct(table); err != nil {
		return translate(err)
	}
	return nil
}

func translate(err error) error {
	validatorErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var errs ValidationErrors
	for _, fe := range validatorErrs {
		errs = append(errs, ValidationError{
			Field:   fe.Field(),
			Message: messageForTag(fe),
		})
	}
	return errs
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation on '%s'", fe.Tag())
	}
}
