package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
)

const userColumns = `id, telegram_id, username, first_name, last_name, language_code, is_teacher, created_at`

// UserRepository реализует service.UserRepository на SQLite
type UserRepository struct {
	db querier
}

// Create добавляет пользователя
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO users (telegram_id, username, first_name, last_name, language_code, is_teacher, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		u.TelegramID, u.Username, u.FirstName, u.LastName, u.LanguageCode, u.IsTeacher,
		u.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	u.ID = id

	return nil
}

// Update сохраняет изменения пользователя
func (r *UserRepository) Update(ctx context.Context, u *model.User) error {
	query := `
		UPDATE users
		SET username = ?, first_name = ?, last_name = ?, language_code = ?, is_teacher = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, u.Username, u.FirstName, u.LastName, u.LanguageCode, u.IsTeacher, u.ID)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("updating user %d: no rows affected", u.ID)
	}
	return nil
}

// GetByID пользователь по ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetByTelegramID пользователь по Telegram ID
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE telegram_id = ?`, telegramID)
}

// ListTeachers все учителя
func (r *UserRepository) ListTeachers(ctx context.Context) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE is_teacher = 1 ORDER BY first_name, last_name, id`)
	if err != nil {
		return nil, fmt.Errorf("querying teachers: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) get(ctx context.Context, query string, arg any) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return u, nil
}

func scanUser(row scanner) (*model.User, error) {
	var (
		u         model.User
		createdAt string
	)

	err := row.Scan(&u.ID, &u.TelegramID, &u.Username, &u.FirstName, &u.LastName, &u.LanguageCode, &u.IsTeacher, &createdAt)
	if err != nil {
		return nil, err
	}

	if u.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created at: %w", err)
	}
	return &u, nil
}
