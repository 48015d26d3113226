package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/timegrid"
	"github.com/google/uuid"
)

// Candidate предлагаемое занятие
type Candidate struct {
	TeacherID        int64
	StudentID        int64
	Date             time.Time
	Slot             timegrid.Code
	ExcludeBookingID *uuid.UUID // при редактировании на месте
}

func (c Candidate) persons() []int64 {
	if c.TeacherID == c.StudentID {
		return []int64{c.TeacherID}
	}
	return []int64{c.TeacherID, c.StudentID}
}

// ConflictValidator проверяет занятие перед записью.
// Вместимость аудитории не ограничивается: несколько занятий могут идти в одном месте.
type ConflictValidator struct {
	users    UserDirectory
	bookings BookingRepository
	clock    Clock
	policy   Policy
}

func NewConflictValidator(users UserDirectory, bookings BookingRepository, clock Clock, policy Policy) *ConflictValidator {
	return &ConflictValidator{
		users:    users,
		bookings: bookings,
		clock:    clock,
		policy:   policy,
	}
}

// Validate проверки по порядку, первая неудачная возвращается:
// роль учителя, дата не в прошлом, участники свободны в этом слоте.
func (v *ConflictValidator) Validate(ctx context.Context, c Candidate) error {
	return v.validate(ctx, v.bookings, c)
}

// validate та же проверка на репозитории транзакции
func (v *ConflictValidator) validate(ctx context.Context, bookings BookingRepository, c Candidate) error {
	if _, ok := timegrid.Lookup(c.Slot); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidSlot, c.Slot)
	}

	teacher, err := v.users.Resolve(ctx, c.TeacherID)
	if errors.Is(err, ErrNotFound) {
		return ErrInvalidTeacher
	}
	if err != nil {
		return fmt.Errorf("resolve teacher: %w", err)
	}
	if !teacher.HasRole(model.RoleTeacher) {
		return ErrInvalidTeacher
	}

	if c.Date.IsZero() {
		return ErrPastDate
	}
	today := timegrid.DateOf(v.clock.Now(), v.policy.location())
	if civilDate(c.Date).Before(today) {
		return ErrPastDate
	}

	existing, err := bookings.FindConflict(ctx, civilDate(c.Date), c.Slot, c.persons(), c.ExcludeBookingID)
	if err != nil {
		return fmt.Errorf("find conflicting booking: %w", err)
	}
	if existing != nil {
		return ErrSlotConflict
	}

	return nil
}

func civilDate(t time.Time) time.Time {
	return timegrid.Date(t.Year(), t.Month(), t.Day())
}
