package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/timegrid"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BlockResult итог блокировки диапазона
type BlockResult struct {
	Date      time.Time
	Range     timegrid.Range
	Displaced []*model.Booking // занятия со студентами, которые были отменены
}

// TeacherService операции учителя над собственным расписанием
type TeacherService struct {
	store    BookingStore
	users    UserDirectory
	notifier Notifier
	clock    Clock
	policy   Policy
	logger   *zap.Logger
}

func NewTeacherService(
	store BookingStore,
	users UserDirectory,
	notifier Notifier,
	clock Clock,
	policy Policy,
	logger *zap.Logger,
) *TeacherService {
	return &TeacherService{
		store:    store,
		users:    users,
		notifier: notifier,
		clock:    clock,
		policy:   policy,
		logger:   logger,
	}
}

// Reconcile заменяет все занятия учителя в диапазоне на собственные блокировки.
// Студенты вытесненных занятий получают уведомление об отмене.
// Повторный вызов с теми же аргументами даёт то же состояние.
func (s *TeacherService) Reconcile(ctx context.Context, teacherID int64, date time.Time, rangeName timegrid.RangeName, requestedBy int64) (*BlockResult, error) {
	r, teacher, date, err := s.checkRange(ctx, teacherID, date, rangeName, requestedBy)
	if err != nil {
		return nil, err
	}
	codes := r.Codes()
	now := s.clock.Now().UTC()

	var displaced []*model.Booking
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx BookingRepository) error {
		if err := tx.LockSlots(ctx, date, codes); err != nil {
			return fmt.Errorf("lock slots: %w", err)
		}

		existing, err := tx.ListByTeacherSlots(ctx, teacherID, date, codes)
		if err != nil {
			return fmt.Errorf("list teacher bookings: %w", err)
		}

		ids := make([]uuid.UUID, 0, len(existing))
		for _, b := range existing {
			ids = append(ids, b.ID)
		}
		if err := tx.DeleteByIDs(ctx, ids); err != nil {
			return fmt.Errorf("delete teacher bookings: %w", err)
		}

		for _, code := range codes {
			// учитель может сам быть записан к другому учителю
			busy, err := tx.FindConflict(ctx, date, code, []int64{teacherID}, nil)
			if err != nil {
				return fmt.Errorf("find conflicting booking: %w", err)
			}
			if busy != nil {
				return ErrSlotConflict
			}

			err = tx.Create(ctx, &model.Booking{
				ID:        uuid.New(),
				StudentID: teacherID,
				TeacherID: teacherID,
				Date:      date,
				Slot:      code,
				Location:  model.LocationOnsite,
				CreatedAt: now,
			})
			if err != nil {
				return fmt.Errorf("create self session: %w", err)
			}
		}

		for _, b := range existing {
			if !b.IsSelfSession() {
				displaced = append(displaced, b)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Teacher range blocked",
		zap.Int64("teacher_id", teacherID),
		zap.String("date", date.Format(time.DateOnly)),
		zap.String("range", string(r.Name)),
		zap.Int("displaced", len(displaced)),
	)

	for _, b := range displaced {
		b.Teacher = teacher
		attachParticipants(ctx, s.users, b)
		deliver(ctx, s.notifier, s.logger, Notification{Kind: NotificationCancelled, Booking: *b, RequestedBy: teacher})
	}

	return &BlockResult{Date: date, Range: r, Displaced: displaced}, nil
}

// Unblock снимает собственные блокировки учителя в диапазоне.
// Занятия со студентами не трогает.
func (s *TeacherService) Unblock(ctx context.Context, teacherID int64, date time.Time, rangeName timegrid.RangeName, requestedBy int64) (int, error) {
	r, _, date, err := s.checkRange(ctx, teacherID, date, rangeName, requestedBy)
	if err != nil {
		return 0, err
	}
	codes := r.Codes()

	var removed int
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx BookingRepository) error {
		if err := tx.LockSlots(ctx, date, codes); err != nil {
			return fmt.Errorf("lock slots: %w", err)
		}

		existing, err := tx.ListByTeacherSlots(ctx, teacherID, date, codes)
		if err != nil {
			return fmt.Errorf("list teacher bookings: %w", err)
		}

		var ids []uuid.UUID
		for _, b := range existing {
			if b.IsSelfSession() {
				ids = append(ids, b.ID)
			}
		}
		removed = len(ids)

		return tx.DeleteByIDs(ctx, ids)
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Teacher range unblocked",
		zap.Int64("teacher_id", teacherID),
		zap.String("date", date.Format(time.DateOnly)),
		zap.String("range", string(r.Name)),
		zap.Int("removed", removed),
	)

	return removed, nil
}

func (s *TeacherService) checkRange(ctx context.Context, teacherID int64, date time.Time, rangeName timegrid.RangeName, requestedBy int64) (timegrid.Range, *model.User, time.Time, error) {
	r, err := timegrid.Aggregate(rangeName)
	if err != nil {
		return timegrid.Range{}, nil, time.Time{}, err
	}

	if requestedBy != teacherID {
		return timegrid.Range{}, nil, time.Time{}, ErrPermission
	}

	teacher, err := s.users.Resolve(ctx, teacherID)
	if err != nil {
		return timegrid.Range{}, nil, time.Time{}, err
	}
	if !teacher.HasRole(model.RoleTeacher) {
		return timegrid.Range{}, nil, time.Time{}, ErrInvalidTeacher
	}

	if date.IsZero() {
		return timegrid.Range{}, nil, time.Time{}, ErrPastDate
	}
	date = civilDate(date)
	if date.Before(timegrid.DateOf(s.clock.Now(), s.policy.location())) {
		return timegrid.Range{}, nil, time.Time{}, ErrPastDate
	}

	return r, teacher, date, nil
}
