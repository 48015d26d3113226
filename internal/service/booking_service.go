package service

import (
	"context"
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/timegrid"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxTopicLength ограничение длины темы занятия в символах
const MaxTopicLength = 200

// NewBooking запрос на создание занятия
type NewBooking struct {
	TeacherID int64
	StudentID int64
	Date      time.Time
	Slot      timegrid.Code
	Location  model.Location
	Topic     string
}

// BookingPatch изменяемые поля занятия
type BookingPatch struct {
	Location *model.Location
}

// Sessions занятия пользователя в обеих ролях
type Sessions struct {
	AsTeacher []*model.Booking
	AsStudent []*model.Booking
}

type BookingService struct {
	store     BookingStore
	users     UserDirectory
	gate      AuthorizationGate
	validator *ConflictValidator
	notifier  Notifier
	clock     Clock
	policy    Policy
	logger    *zap.Logger
}

func NewBookingService(
	store BookingStore,
	users UserDirectory,
	gate AuthorizationGate,
	notifier Notifier,
	clock Clock,
	policy Policy,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		store:     store,
		users:     users,
		gate:      gate,
		validator: NewConflictValidator(users, store, clock, policy),
		notifier:  notifier,
		clock:     clock,
		policy:    policy,
		logger:    logger,
	}
}

// Validate проверяет занятие без записи
func (s *BookingService) Validate(ctx context.Context, c Candidate) error {
	return s.validator.Validate(ctx, c)
}

// Create создаёт новое занятие
func (s *BookingService) Create(ctx context.Context, req NewBooking) (*model.Booking, error) {
	if req.Location == "" {
		req.Location = model.LocationOnsite
	}
	if !req.Location.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLocation, req.Location)
	}
	if utf8.RuneCountInString(req.Topic) > MaxTopicLength {
		return nil, ErrTopicTooLong
	}

	if _, err := s.users.Resolve(ctx, req.StudentID); err != nil {
		return nil, err
	}

	booking := &model.Booking{
		ID:        uuid.New(),
		StudentID: req.StudentID,
		TeacherID: req.TeacherID,
		Date:      civilDate(req.Date),
		Slot:      req.Slot,
		Location:  req.Location,
		Topic:     req.Topic,
		CreatedAt: s.clock.Now().UTC(),
	}

	candidate := Candidate{
		TeacherID: req.TeacherID,
		StudentID: req.StudentID,
		Date:      booking.Date,
		Slot:      req.Slot,
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx BookingRepository) error {
		if _, ok := timegrid.Lookup(req.Slot); ok {
			if err := tx.LockSlots(ctx, booking.Date, []timegrid.Code{req.Slot}); err != nil {
				return fmt.Errorf("lock slot: %w", err)
			}
		}

		if err := s.validator.validate(ctx, tx, candidate); err != nil {
			return err
		}

		return tx.Create(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.Int64("student_id", booking.StudentID),
		zap.Int64("teacher_id", booking.TeacherID),
		zap.String("date", booking.Date.Format(time.DateOnly)),
		zap.String("slot", string(booking.Slot)),
	)

	attachParticipants(ctx, s.users, booking)
	s.deliver(ctx, Notification{Kind: NotificationCreated, Booking: *booking, Topic: booking.Topic})

	return booking, nil
}

// Update меняет место проведения. Остальные поля неизменяемы.
func (s *BookingService) Update(ctx context.Context, bookingID uuid.UUID, actorID int64, patch BookingPatch) (*model.Booking, error) {
	if patch.Location != nil && !patch.Location.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLocation, *patch.Location)
	}

	actor, err := s.users.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var booking *model.Booking
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx BookingRepository) error {
		b, err := s.authorize(ctx, tx, bookingID, actor)
		if err != nil {
			return err
		}
		booking = b
		if patch.Location == nil || *patch.Location == booking.Location {
			return nil
		}

		if err := tx.UpdateLocation(ctx, bookingID, *patch.Location); err != nil {
			return err
		}
		booking.Location = *patch.Location
		return nil
	})
	if err != nil {
		return nil, err
	}

	attachParticipants(ctx, s.users, booking)
	if patch.Location == nil {
		return booking, nil
	}

	s.logger.Info("Booking updated",
		zap.String("booking_id", bookingID.String()),
		zap.Int64("actor_id", actorID),
		zap.String("location", string(booking.Location)),
	)

	s.deliver(ctx, Notification{Kind: NotificationEdited, Booking: *booking})

	return booking, nil
}

// Cancel удаляет занятие по запросу участника
func (s *BookingService) Cancel(ctx context.Context, bookingID uuid.UUID, requestedBy int64) error {
	actor, err := s.users.Resolve(ctx, requestedBy)
	if err != nil {
		return err
	}

	var booking *model.Booking
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx BookingRepository) error {
		b, err := s.authorize(ctx, tx, bookingID, actor)
		if err != nil {
			return err
		}
		booking = b
		return tx.Delete(ctx, bookingID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Booking cancelled",
		zap.String("booking_id", bookingID.String()),
		zap.Int64("requested_by", requestedBy),
	)

	attachParticipants(ctx, s.users, booking)
	s.deliver(ctx, Notification{Kind: NotificationCancelled, Booking: *booking, RequestedBy: actor})

	return nil
}

// Get занятие, доступное участнику
func (s *BookingService) Get(ctx context.Context, bookingID uuid.UUID, actorID int64) (*model.Booking, error) {
	actor, err := s.users.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	booking, err := s.authorize(ctx, s.store, bookingID, actor)
	if err != nil {
		return nil, err
	}

	attachParticipants(ctx, s.users, booking)
	return booking, nil
}

// ListForUser предстоящие занятия пользователя
func (s *BookingService) ListForUser(ctx context.Context, userID int64) (*Sessions, error) {
	bookings, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user bookings: %w", err)
	}

	today := timegrid.DateOf(s.clock.Now(), s.policy.location())
	sessions := &Sessions{}
	for _, b := range bookings {
		if b.Date.Before(today) {
			continue
		}
		attachParticipants(ctx, s.users, b)
		if b.TeacherID == userID {
			sessions.AsTeacher = append(sessions.AsTeacher, b)
		}
		if b.StudentID == userID && !b.IsSelfSession() {
			sessions.AsStudent = append(sessions.AsStudent, b)
		}
	}

	sortBookings(sessions.AsTeacher)
	sortBookings(sessions.AsStudent)

	return sessions, nil
}

func (s *BookingService) authorize(ctx context.Context, repo BookingRepository, bookingID uuid.UUID, actor *model.User) (*model.Booking, error) {
	booking, err := repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, ErrNotFound
	}
	if !s.gate.CanModify(actor, booking) {
		return nil, ErrPermission
	}
	return booking, nil
}

func (s *BookingService) deliver(ctx context.Context, n Notification) {
	deliver(ctx, s.notifier, s.logger, n)
}

// deliver отправляет уведомление после коммита. Ошибка только логируется.
func deliver(ctx context.Context, notifier Notifier, logger *zap.Logger, n Notification) {
	if notifier == nil || n.Booking.IsSelfSession() {
		return
	}

	if err := notifier.Notify(ctx, n); err != nil {
		deliveryErr := &NotificationDeliveryError{Kind: n.Kind, BookingID: n.Booking.ID, Err: err}
		logger.Error("Notification delivery failed",
			zap.String("kind", string(n.Kind)),
			zap.String("booking_id", n.Booking.ID.String()),
			zap.Error(deliveryErr),
		)
	}
}

// attachParticipants подставляет пользователей для отображения
func attachParticipants(ctx context.Context, users UserDirectory, b *model.Booking) {
	if b.Student == nil {
		if u, err := users.Resolve(ctx, b.StudentID); err == nil {
			b.Student = u
		}
	}
	if b.Teacher == nil {
		if b.IsSelfSession() && b.Student != nil {
			b.Teacher = b.Student
			return
		}
		if u, err := users.Resolve(ctx, b.TeacherID); err == nil {
			b.Teacher = u
		}
	}
}

func sortBookings(bookings []*model.Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		if !bookings[i].Date.Equal(bookings[j].Date) {
			return bookings[i].Date.Before(bookings[j].Date)
		}
		return bookings[i].Slot < bookings[j].Slot
	})
}
