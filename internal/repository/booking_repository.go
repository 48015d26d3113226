package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository/base"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/Freeeeeet/tutor_scheduler/internal/timegrid"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const bookingColumns = `id, student_id, teacher_id, date, slot, location, topic, created_at`

type BookingRepository struct {
	db base.Querier
}

func NewBookingRepository(db base.Querier) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create создаёт новое бронирование
func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (id, student_id, teacher_id, date, slot, location, topic, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(
		ctx, query,
		booking.ID.String(),
		booking.StudentID,
		booking.TeacherID,
		booking.Date,
		string(booking.Slot),
		string(booking.Location),
		booking.Topic,
		booking.CreatedAt,
	)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return service.ErrSlotConflict
		}
		return fmt.Errorf("create booking: %w", err)
	}

	return nil
}

// GetByID получает бронирование по ID
func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id.String()))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}

	return booking, nil
}

// FindConflict ищет занятие в том же слоте с общим участником
func (r *BookingRepository) FindConflict(ctx context.Context, date time.Time, slot timegrid.Code, persons []int64, exclude *uuid.UUID) (*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE date = $1 AND slot = $2
		  AND (student_id = ANY($3) OR teacher_id = ANY($3))
		  AND ($4::uuid IS NULL OR id <> $4::uuid)
		LIMIT 1
	`

	var excludeID any
	if exclude != nil {
		excludeID = exclude.String()
	}

	booking, err := scanBooking(r.db.QueryRow(ctx, query, date, string(slot), persons, excludeID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find conflicting booking: %w", err)
	}

	return booking, nil
}

// ListInvolving получает занятия участников за период
func (r *BookingRepository) ListInvolving(ctx context.Context, persons []int64, from, to time.Time) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE date BETWEEN $1 AND $2
		  AND (student_id = ANY($3) OR teacher_id = ANY($3))
		ORDER BY date, slot
	`

	return r.list(ctx, "list bookings involving users", query, from, to, persons)
}

// ListByUser получает все занятия пользователя в любой роли
func (r *BookingRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE student_id = $1 OR teacher_id = $1
		ORDER BY date, slot
	`

	return r.list(ctx, "list bookings by user", query, userID)
}

// ListByTeacherSlots получает занятия учителя в указанных слотах дня
func (r *BookingRepository) ListByTeacherSlots(ctx context.Context, teacherID int64, date time.Time, slots []timegrid.Code) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE teacher_id = $1 AND date = $2 AND slot = ANY($3)
		ORDER BY slot
	`

	return r.list(ctx, "list bookings by teacher slots", query, teacherID, date, codeStrings(slots))
}

// ListByTeacherBefore получает прошедшие занятия учителя
func (r *BookingRepository) ListByTeacherBefore(ctx context.Context, teacherID int64, before time.Time) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE teacher_id = $1 AND date < $2
		ORDER BY date, slot
	`

	return r.list(ctx, "list past bookings by teacher", query, teacherID, before)
}

// UpdateLocation обновляет место проведения
func (r *BookingRepository) UpdateLocation(ctx context.Context, id uuid.UUID, location model.Location) error {
	query := `UPDATE bookings SET location = $1 WHERE id = $2`

	result, err := r.db.Exec(ctx, query, string(location), id.String())
	if err != nil {
		return fmt.Errorf("update booking location: %w", err)
	}

	if result.RowsAffected() == 0 {
		return service.ErrNotFound
	}

	return nil
}

// Delete удаляет бронирование
func (r *BookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM bookings WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id.String())
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}

	if result.RowsAffected() == 0 {
		return service.ErrNotFound
	}

	return nil
}

// DeleteByIDs удаляет набор бронирований одним запросом
func (r *BookingRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id = ANY($1::uuid[])`, raw); err != nil {
		return fmt.Errorf("delete bookings: %w", err)
	}

	return nil
}

// LockSlots берёт транзакционные advisory-блокировки на (date, slot)
func (r *BookingRepository) LockSlots(ctx context.Context, date time.Time, slots []timegrid.Code) error {
	for _, slot := range slots {
		key := date.Format(time.DateOnly) + "/" + string(slot)
		if _, err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
			return fmt.Errorf("lock %s: %w", key, err)
		}
	}
	return nil
}

func (r *BookingRepository) list(ctx context.Context, op, query string, args ...any) ([]*model.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return bookings, nil
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var (
		booking  model.Booking
		slot     string
		location string
	)

	err := row.Scan(
		&booking.ID,
		&booking.StudentID,
		&booking.TeacherID,
		&booking.Date,
		&slot,
		&location,
		&booking.Topic,
		&booking.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.Slot = timegrid.Code(slot)
	booking.Location = model.Location(location)
	booking.Date = timegrid.Date(booking.Date.Year(), booking.Date.Month(), booking.Date.Day())

	return &booking, nil
}

func codeStrings(codes []timegrid.Code) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = string(c)
	}
	return out
}
