package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_scheduler/internal/repository/base"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BookingStore бронирования в PostgreSQL с транзакциями уровня read committed
type BookingStore struct {
	*BookingRepository
	pool *pgxpool.Pool
}

func NewBookingStore(pool *pgxpool.Pool) *BookingStore {
	return &BookingStore{
		BookingRepository: NewBookingRepository(pool),
		pool:              pool,
	}
}

// WithinTx выполняет fn в одной транзакции. Ошибка fn откатывает всё.
func (s *BookingStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx service.BookingRepository) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, NewBookingRepository(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		if base.IsUniqueViolation(err) {
			return service.ErrSlotConflict
		}
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
