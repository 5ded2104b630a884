package validator

import (
	"fmt"
	"strings"
	"time"

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

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()

	if err := v.RegisterValidation("booking_date", validateBookingDate); err != nil {
		log.Fatal("Failed to register 'booking_date' validator", "error", err)
	}

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

// validateBookingDate accepts dates in YYYY-MM-DD form.
func validateBookingDate(fl validator.FieldLevel) bool {
	date := strings.TrimSpace(fl.Field().String())
	if date == "" {
		return false
	}
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

func (v *BookingValidator) Validate(booking *model.Booking) error {
	if err := v.validate.Struct(booking); err != nil {
		return v.translate(err)
	}
	if err := validateSeatSet(booking.Seats); err != nil {
		return err
	}
	return nil
}

func (v *BookingValidator) ValidateUpdate(updates *model.BookingUpdate) error {
	if err := v.validate.Struct(updates); err != nil {
		return v.translate(err)
	}
	if updates.Seats != nil {
		if err := validateSeatSet(updates.Seats); err != nil {
			return err
		}
	}
	if updates.BookingDate != nil && !isValidDate(*updates.BookingDate) {
		return ValidationErrors{{Field: "BookingDate", Message: "must be a date in YYYY-MM-DD form"}}
	}
	return nil
}

func isValidDate(date string) bool {
	_, err := time.Parse("2006-01-02", strings.TrimSpace(date))
	return err == nil
}

// validateSeatSet rejects duplicate seats inside one request. The storage
// layer would catch them too, but only after the first claim succeeded.
func validateSeatSet(seats []model.BookedSeat) error {
	type seatKey struct {
		tableID    int
		zone       string
		seatNumber int
	}

	seen := make(map[seatKey]bool, len(seats))
	for _, seat := range seats {
		key := seatKey{seat.TableID, seat.Zone, seat.SeatNumber}
		if seen[key] {
			return ValidationErrors{{
				Field:   "Seats",
				Message: fmt.Sprintf("duplicate seat %d at table %d in zone %s", seat.SeatNumber, seat.TableID, seat.Zone),
			}}
		}
		seen[key] = true
	}
	return nil
}

func (v *BookingValidator) translate(err error) error {
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
	case "booking_date":
		return "must be a date in YYYY-MM-DD form"
	default:
		return fmt.Sprintf("failed validation on '%s'", fe.Tag())
	}
}
