package repository_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/app"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/Freeeeeet/tutor_scheduler/internal/timegrid"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Тесты работают с настоящей PostgreSQL из TEST_DATABASE_DSN и очищают её таблицы
const dsnEnv = "TEST_DATABASE_DSN"

var thursday = timegrid.Date(2025, time.March, 6)

type pgFixture struct {
	pool     *pgxpool.Pool
	store    *repository.BookingStore
	users    *service.UserService
	bookings *service.BookingService
	teachers *service.TeacherService
}

func newPgFixture(t *testing.T) *pgFixture {
	t.Helper()

	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		t.Skipf("%s is not set", dsnEnv)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	logger := zap.NewNop()
	migrator, err := app.NewMigrator(pool, logger)
	require.NoError(t, err)
	require.NoError(t, migrator.Run(ctx))
	require.NoError(t, migrator.Close())

	_, err = pool.Exec(ctx, `TRUNCATE bookings, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	// среда 5 марта 2025, 09:00 UTC
	clock := service.FixedClock(time.Date(2025, time.March, 5, 9, 0, 0, 0, time.UTC))
	policy := service.DefaultPolicy()
	policy.Location = time.UTC

	store := repository.NewBookingStore(pool)
	users := service.NewUserService(repository.NewUserRepository(pool), logger)

	return &pgFixture{
		pool:     pool,
		store:    store,
		users:    users,
		bookings: service.NewBookingService(store, users, service.ParticipantGate{}, nil, clock, policy, logger),
		teachers: service.NewTeacherService(store, users, nil, clock, policy, logger),
	}
}

func (f *pgFixture) user(t *testing.T, telegramID int64, username string) *model.User {
	t.Helper()

	u, err := f.users.RegisterUser(context.Background(), telegramID, username, username, "", "ru")
	require.NoError(t, err)
	return u
}

func (f *pgFixture) teacher(t *testing.T, telegramID int64, username string) *model.User {
	t.Helper()

	f.user(t, telegramID, username)
	u, err := f.users.MakeTeacher(context.Background(), telegramID)
	require.NoError(t, err)
	return u
}

func rawBooking(teacher, student *model.User, slot timegrid.Code) *model.Booking {
	return &model.Booking{
		ID:        uuid.New(),
		TeacherID: teacher.ID,
		StudentID: student.ID,
		Date:      thursday,
		Slot:      slot,
		Location:  model.LocationOnsite,
		CreatedAt: time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestPostgresFindConflict(t *testing.T) {
	ctx := context.Background()
	f := newPgFixture(t)
	anna := f.teacher(t, 10, "anna")
	boris := f.user(t, 20, "boris")
	carl := f.user(t, 30, "carl")

	b := rawBooking(anna, boris, "C")
	require.NoError(t, f.store.Create(ctx, b))

	found, err := f.store.FindConflict(ctx, thursday, "C", []int64{carl.ID, anna.ID}, nil)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, b.ID, found.ID)
	assert.Equal(t, thursday, found.Date.UTC())

	found, err = f.store.FindConflict(ctx, thursday, "C", []int64{carl.ID}, nil)
	require.NoError(t, err)
	assert.Nil(t, found)

	found, err = f.store.FindConflict(ctx, thursday, "C", []int64{boris.ID}, &b.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	other := uuid.New()
	found, err = f.store.FindConflict(ctx, thursday, "C", []int64{boris.ID}, &other)
	require.NoError(t, err)
	assert.NotNil(t, found)
}

func TestPostgresUniqueViolationIsConflict(t *testing.T) {
	ctx := context.Background()
	f := newPgFixture(t)
	anna := f.teacher(t, 10, "anna")
	boris := f.user(t, 20, "boris")
	carl := f.user(t, 30, "carl")

	require.NoError(t, f.store.Create(ctx, rawBooking(anna, boris, "A")))
	assert.ErrorIs(t, f.store.Create(ctx, rawBooking(anna, carl, "A")), service.ErrSlotConflict)

	err := f.store.WithinTx(ctx, func(ctx context.Context, tx service.BookingRepository) error {
		return tx.Create(ctx, rawBooking(anna, carl, "A"))
	})
	assert.ErrorIs(t, err, service.ErrSlotConflict)
}

func TestPostgresConcurrentCreatesSameSlot(t *testing.T) {
	ctx := context.Background()
	f := newPgFixture(t)
	teacher := f.teacher(t, 10, "anna")

	const racers = 6
	students := make([]*model.User, racers)
	for i := range students {
		students[i] = f.user(t, int64(100+i), "student")
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for _, s := range students {
		wg.Add(1)
		go func(studentID int64) {
			defer wg.Done()
			_, err := f.bookings.Create(ctx, service.NewBooking{TeacherID: teacher.ID, StudentID: studentID, Date: thursday, Slot: "G"})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, service.ErrSlotConflict):
				conflicts++
			}
		}(s.ID)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, racers-1, conflicts)
}

// Уникальные индексы не ловят пересечение ролей, его держит advisory-блокировка слота
func TestPostgresConcurrentCrossRoleCreates(t *testing.T) {
	ctx := context.Background()

	for round := 0; round < 5; round++ {
		f := newPgFixture(t)
		anna := f.teacher(t, 10, "anna")
		boris := f.teacher(t, 11, "boris")
		carl := f.user(t, 20, "carl")

		requests := []service.NewBooking{
			{TeacherID: anna.ID, StudentID: carl.ID, Date: thursday, Slot: "E"},
			{TeacherID: boris.ID, StudentID: anna.ID, Date: thursday, Slot: "E"},
		}

		errs := make([]error, len(requests))
		var wg sync.WaitGroup
		for i, req := range requests {
			wg.Add(1)
			go func(i int, req service.NewBooking) {
				defer wg.Done()
				_, errs[i] = f.bookings.Create(ctx, req)
			}(i, req)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.ErrorIs(t, err, service.ErrSlotConflict)
		}
		assert.Equal(t, 1, succeeded, "round %d", round)
	}
}

func TestPostgresReconcile(t *testing.T) {
	ctx := context.Background()
	f := newPgFixture(t)
	anna := f.teacher(t, 10, "anna")
	boris := f.user(t, 20, "boris")
	carl := f.user(t, 30, "carl")

	displaced, err := f.bookings.Create(ctx, service.NewBooking{TeacherID: anna.ID, StudentID: boris.ID, Date: thursday, Slot: "B"})
	require.NoError(t, err)
	_, err = f.bookings.Create(ctx, service.NewBooking{TeacherID: anna.ID, StudentID: carl.ID, Date: thursday, Slot: "J"})
	require.NoError(t, err)

	result, err := f.teachers.Reconcile(ctx, anna.ID, thursday, timegrid.Morning, anna.ID)
	require.NoError(t, err)
	require.Len(t, result.Displaced, 1)
	assert.Equal(t, displaced.ID, result.Displaced[0].ID)

	again, err := f.teachers.Reconcile(ctx, anna.ID, thursday, timegrid.Morning, anna.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Displaced)

	morning, err := timegrid.Aggregate(timegrid.Morning)
	require.NoError(t, err)
	blocks, err := f.store.ListByTeacherSlots(ctx, anna.ID, thursday, morning.Codes())
	require.NoError(t, err)
	require.Len(t, blocks, len(morning.Codes()))
	for _, b := range blocks {
		assert.True(t, b.IsSelfSession())
	}

	removed, err := f.teachers.Unblock(ctx, anna.ID, thursday, timegrid.Morning, anna.ID)
	require.NoError(t, err)
	assert.Equal(t, len(morning.Codes()), removed)
}

func TestPostgresReconcileRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newPgFixture(t)
	anna := f.teacher(t, 10, "anna")
	boris := f.teacher(t, 11, "boris")
	carl := f.user(t, 20, "carl")

	_, err := f.bookings.Create(ctx, service.NewBooking{TeacherID: anna.ID, StudentID: carl.ID, Date: thursday, Slot: "A"})
	require.NoError(t, err)
	_, err = f.bookings.Create(ctx, service.NewBooking{TeacherID: boris.ID, StudentID: anna.ID, Date: thursday, Slot: "D"})
	require.NoError(t, err)

	_, err = f.teachers.Reconcile(ctx, anna.ID, thursday, timegrid.Morning, anna.ID)
	assert.ErrorIs(t, err, service.ErrSlotConflict)

	morning, err := timegrid.Aggregate(timegrid.Morning)
	require.NoError(t, err)
	kept, err := f.store.ListByTeacherSlots(ctx, anna.ID, thursday, morning.Codes())
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, carl.ID, kept[0].StudentID)
}
