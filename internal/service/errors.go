package service

import (
	"errors"
	"fmt"

	"github.com/Freeeeeet/tutor_scheduler/internal/timegrid"
	"github.com/google/uuid"
)

// Ошибки проверки бронирования. Возвращаются вызывающему как есть,
// чтобы показать пользователю причину отказа.
var (
	ErrInvalidTeacher = errors.New("teacher is not actually a teacher")
	ErrPastDate       = errors.New("date is in the past")
	ErrSlotConflict   = errors.New("participant already has a session in this slot")
	ErrNotFound       = errors.New("not found")
	ErrPermission     = errors.New("permission denied")
)

// Ошибки входных данных
var (
	ErrInvalidSlot       = timegrid.ErrUnknownSlot
	ErrUnknownRange      = timegrid.ErrUnknownRange
	ErrInvalidLocation   = errors.New("invalid location")
	ErrInvalidWeekOffset = errors.New("week offset must not be negative")
	ErrTopicTooLong      = errors.New("topic is too long")
)

// NotificationDeliveryError уведомление не доставлено. Изменение бронирования при этом
// уже зафиксировано и не откатывается.
type NotificationDeliveryError struct {
	Kind      NotificationKind
	BookingID uuid.UUID
	Err       error
}

func (e *NotificationDeliveryError) Error() string {
	return fmt.Sprintf("deliver %s notification for booking %s: %v", e.Kind, e.BookingID, e.Err)
}

func (e *NotificationDeliveryError) Unwrap() error {
	return e.Err
}

// IsValidationError ошибка вызвана данными пользователя, а не инфраструктурой
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidTeacher, ErrPastDate, ErrSlotConflict, ErrNotFound, ErrPermission,
		ErrInvalidSlot, ErrUnknownRange, ErrInvalidLocation, ErrInvalidWeekOffset, ErrTopicTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
