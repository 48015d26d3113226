package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/Freeeeeet/tutor_scheduler/internal/timegrid"
	"github.com/google/uuid"
)

const bookingColumns = `id, student_id, teacher_id, date, slot, location, topic, created_at`

// BookingRepository реализует service.BookingRepository на SQLite
type BookingRepository struct {
	db querier
}

// Create добавляет занятие
func (r *BookingRepository) Create(ctx context.Context, b *model.Booking) error {
	query := `
		INSERT INTO bookings (id, student_id, teacher_id, date, slot, location, topic, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		b.ID.String(),
		b.StudentID,
		b.TeacherID,
		formatDate(b.Date),
		string(b.Slot),
		string(b.Location),
		b.Topic,
		b.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return service.ErrSlotConflict
		}
		return fmt.Errorf("inserting booking: %w", err)
	}

	return nil
}

// GetByID занятие по ID
func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`

	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying booking: %w", err)
	}
	return b, nil
}

// FindConflict занятие в том же слоте с общим участником
func (r *BookingRepository) FindConflict(ctx context.Context, date time.Time, slot timegrid.Code, persons []int64, exclude *uuid.UUID) (*model.Booking, error) {
	in := placeholders(len(persons))
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE date = ? AND slot = ?
		  AND (student_id IN (` + in + `) OR teacher_id IN (` + in + `))
		  AND id <> ?
		LIMIT 1
	`

	args := []any{formatDate(date), string(slot)}
	args = appendIDs(args, persons)
	args = appendIDs(args, persons)
	excludeID := ""
	if exclude != nil {
		excludeID = exclude.String()
	}
	args = append(args, excludeID)

	b, err := scanBooking(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying conflicting booking: %w", err)
	}
	return b, nil
}

// ListInvolving занятия участников за период
func (r *BookingRepository) ListInvolving(ctx context.Context, persons []int64, from, to time.Time) ([]*model.Booking, error) {
	in := placeholders(len(persons))
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE date BETWEEN ? AND ?
		  AND (student_id IN (` + in + `) OR teacher_id IN (` + in + `))
		ORDER BY date, slot
	`

	args := []any{formatDate(from), formatDate(to)}
	args = appendIDs(args, persons)
	args = appendIDs(args, persons)

	return r.list(ctx, query, args...)
}

// ListByUser все занятия пользователя
func (r *BookingRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE student_id = ? OR teacher_id = ?
		ORDER BY date, slot
	`
	return r.list(ctx, query, userID, userID)
}

// ListByTeacherSlots занятия учителя в слотах дня
func (r *BookingRepository) ListByTeacherSlots(ctx context.Context, teacherID int64, date time.Time, slots []timegrid.Code) ([]*model.Booking, error) {
	if len(slots) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE teacher_id = ? AND date = ? AND slot IN (` + placeholders(len(slots)) + `)
		ORDER BY slot
	`

	args := []any{teacherID, formatDate(date)}
	for _, s := range slots {
		args = append(args, string(s))
	}

	return r.list(ctx, query, args...)
}

// ListByTeacherBefore прошедшие занятия учителя
func (r *BookingRepository) ListByTeacherBefore(ctx context.Context, teacherID int64, before time.Time) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE teacher_id = ? AND date < ?
		ORDER BY date, slot
	`
	return r.list(ctx, query, teacherID, formatDate(before))
}

// UpdateLocation меняет место проведения
func (r *BookingRepository) UpdateLocation(ctx context.Context, id uuid.UUID, location model.Location) error {
	result, err := r.db.ExecContext(ctx, `UPDATE bookings SET location = ? WHERE id = ?`, string(location), id.String())
	if err != nil {
		return fmt.Errorf("updating booking location: %w", err)
	}
	return requireAffected(result)
}

// Delete удаляет занятие
func (r *BookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("deleting booking: %w", err)
	}
	return requireAffected(result)
}

// DeleteByIDs удаляет набор занятий
func (r *BookingRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id.String()
	}

	query := `DELETE FROM bookings WHERE id IN (` + placeholders(len(ids)) + `)`
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting bookings: %w", err)
	}
	return nil
}

// LockSlots ничего не делает: BEGIN IMMEDIATE уже держит блокировку записи на всю транзакцию
func (r *BookingRepository) LockSlots(context.Context, time.Time, []timegrid.Code) error {
	return nil
}

func (r *BookingRepository) list(ctx context.Context, query string, args ...any) ([]*model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning booking: %w", err)
		}
		bookings = append(bookings, b)
	}

	return bookings, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(row scanner) (*model.Booking, error) {
	var (
		b         model.Booking
		id        string
		date      string
		slot      string
		location  string
		createdAt string
	)

	if err := row.Scan(&id, &b.StudentID, &b.TeacherID, &date, &slot, &location, &b.Topic, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if b.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parsing booking id: %w", err)
	}
	if b.Date, err = timegrid.ParseDate(date); err != nil {
		return nil, err
	}
	if b.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created at: %w", err)
	}
	b.Slot = timegrid.Code(slot)
	b.Location = model.Location(location)

	return &b, nil
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return service.ErrNotFound
	}
	return nil
}

func formatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

func appendIDs(args []any, ids []int64) []any {
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}
