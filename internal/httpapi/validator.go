package httpapi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/Freeeeeet/tutor_scheduler/internal/timegrid"
	"github.com/go-playground/validator/v10"
)

// CreateBookingRequest тело POST /api/bookings. Учеником всегда становится вызывающий.
type CreateBookingRequest struct {
	TeacherID int64  `json:"teacher_id" validate:"required,gt=0"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Slot      string `json:"slot" validate:"required,slotcode"`
	Location  string `json:"location" validate:"omitempty,location"`
	Topic     string `json:"topic" validate:"max=200"`
}

type UpdateBookingRequest struct {
	Location *string `json:"location" validate:"omitempty,location"`
}

// BlockRequest тело PUT и DELETE /api/blocks
type BlockRequest struct {
	TeacherID int64  `json:"teacher_id" validate:"omitempty,gt=0"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Range     string `json:"range" validate:"required,oneof=full-day morning afternoon"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ve))
	for _, e := range ve {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(msgs, "; ")
}

type RequestValidator struct {
	validate *validator.Validate
}

var customValidations = map[string]validator.Func{
	"slotcode": validateSlotCode,
	"location": validateLocation,
}

func NewRequestValidator() (*RequestValidator, error) {
	return newRequestValidator(customValidations)
}

func newRequestValidator(validations map[string]validator.Func) (*RequestValidator, error) {
	v := validator.New()

	for tag, fn := range validations {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("register %q validator: %w", tag, err)
		}
	}

	return &RequestValidator{validate: v}, nil
}

func validateSlotCode(fl validator.FieldLevel) bool {
	_, err := timegrid.ParseCode(fl.Field().String())
	return err == nil
}

func validateLocation(fl validator.FieldLevel) bool {
	return model.Location(fl.Field().String()).Valid()
}

func (v *RequestValidator) Validate(req any) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *RequestValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "gt":
			message = fmt.Sprintf("%s must be positive", err.Field())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "datetime":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
		case "slotcode":
			message = fmt.Sprintf("%s must be a slot code from A to P", err.Field())
		case "location":
			message = fmt.Sprintf("%s must be one of: %s %s", err.Field(), model.LocationOnsite, model.LocationOnline)
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}

// newBooking переводит проверенный запрос в команду сервиса
func (r CreateBookingRequest) newBooking(actorID int64) (service.NewBooking, error) {
	date, err := timegrid.ParseDate(r.Date)
	if err != nil {
		return service.NewBooking{}, fmt.Errorf("%w: date", errBadParam)
	}
	slot, err := timegrid.ParseCode(r.Slot)
	if err != nil {
		return service.NewBooking{}, err
	}

	return service.NewBooking{
		TeacherID: r.TeacherID,
		StudentID: actorID,
		Date:      date,
		Slot:      slot,
		Location:  model.Location(r.Location),
		Topic:     r.Topic,
	}, nil
}
