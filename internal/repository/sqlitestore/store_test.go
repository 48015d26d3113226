package sqlitestore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/Freeeeeet/tutor_scheduler/internal/timegrid"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func newUser(t *testing.T, store *Store, telegramID int64, teacher bool) *model.User {
	t.Helper()

	u := &model.User{TelegramID: telegramID, Username: fmt.Sprintf("user%d", telegramID), IsTeacher: teacher}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u
}

func newBooking(teacher, student *model.User, date time.Time, slot timegrid.Code) *model.Booking {
	return &model.Booking{
		ID:        uuid.New(),
		TeacherID: teacher.ID,
		StudentID: student.ID,
		Date:      date,
		Slot:      slot,
		Location:  model.LocationOnsite,
		CreatedAt: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	teacher := newUser(t, store, 100, true)
	student := newUser(t, store, 200, false)
	assert.NotZero(t, teacher.ID)

	got, err := store.Users().GetByTelegramID(ctx, 200)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, student.ID, got.ID)
	assert.False(t, got.IsTeacher)

	missing, err := store.Users().GetByID(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	got.IsTeacher = true
	got.FirstName = "Anna"
	require.NoError(t, store.Users().Update(ctx, got))

	teachers, err := store.Users().ListTeachers(ctx)
	require.NoError(t, err)
	assert.Len(t, teachers, 2)
}

func TestBookingRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	teacher := newUser(t, store, 1, true)
	student := newUser(t, store, 2, false)
	date := timegrid.Date(2025, time.March, 4)

	b := newBooking(teacher, student, date, "C")
	b.Topic = "algebra"
	require.NoError(t, store.Create(ctx, b))

	got, err := store.GetByID(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, b.ID, got.ID)
	assert.Equal(t, date, got.Date)
	assert.Equal(t, timegrid.Code("C"), got.Slot)
	assert.Equal(t, "algebra", got.Topic)
	assert.True(t, b.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, store.UpdateLocation(ctx, b.ID, model.LocationOnline))
	got, _ = store.GetByID(ctx, b.ID)
	assert.Equal(t, model.LocationOnline, got.Location)

	require.NoError(t, store.Delete(ctx, b.ID))
	got, err = store.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, store.Delete(ctx, b.ID), service.ErrNotFound)
}

func TestFindConflict(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	teacher := newUser(t, store, 1, true)
	student := newUser(t, store, 2, false)
	other := newUser(t, store, 3, false)
	date := timegrid.Date(2025, time.March, 4)

	b := newBooking(teacher, student, date, "C")
	require.NoError(t, store.Create(ctx, b))

	found, err := store.FindConflict(ctx, date, "C", []int64{teacher.ID, other.ID}, nil)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, b.ID, found.ID)

	found, err = store.FindConflict(ctx, date, "D", []int64{teacher.ID}, nil)
	require.NoError(t, err)
	assert.Nil(t, found)

	found, err = store.FindConflict(ctx, date, "C", []int64{student.ID}, &b.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestUniqueIndexMapsToConflict(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	teacher := newUser(t, store, 1, true)
	student := newUser(t, store, 2, false)
	other := newUser(t, store, 3, false)
	date := timegrid.Date(2025, time.March, 4)

	require.NoError(t, store.Create(ctx, newBooking(teacher, student, date, "A")))

	err := store.Create(ctx, newBooking(teacher, other, date, "A"))
	assert.ErrorIs(t, err, service.ErrSlotConflict)
}

func TestListQueries(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	teacher := newUser(t, store, 1, true)
	student := newUser(t, store, 2, false)
	stranger := newUser(t, store, 3, false)

	mon := timegrid.Date(2025, time.March, 3)
	fri := timegrid.Date(2025, time.March, 7)
	nextMon := timegrid.Date(2025, time.March, 10)

	require.NoError(t, store.Create(ctx, newBooking(teacher, student, mon, "A")))
	require.NoError(t, store.Create(ctx, newBooking(teacher, student, fri, "P")))
	require.NoError(t, store.Create(ctx, newBooking(teacher, teacher, mon, "B")))
	require.NoError(t, store.Create(ctx, newBooking(teacher, stranger, nextMon, "A")))

	week, err := store.ListInvolving(ctx, []int64{student.ID}, mon, fri)
	require.NoError(t, err)
	assert.Len(t, week, 2)

	week, err = store.ListInvolving(ctx, []int64{student.ID, teacher.ID}, mon, fri)
	require.NoError(t, err)
	assert.Len(t, week, 3)

	slots, err := store.ListByTeacherSlots(ctx, teacher.ID, mon, []timegrid.Code{"A", "B", "C"})
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, timegrid.Code("A"), slots[0].Slot)

	past, err := store.ListByTeacherBefore(ctx, teacher.ID, fri)
	require.NoError(t, err)
	assert.Len(t, past, 2)

	mine, err := store.ListByUser(ctx, stranger.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	ids := []uuid.UUID{slots[0].ID, slots[1].ID}
	require.NoError(t, store.DeleteByIDs(ctx, ids))
	slots, err = store.ListByTeacherSlots(ctx, teacher.ID, mon, []timegrid.Code{"A", "B"})
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestWithinTxRollsBack(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	teacher := newUser(t, store, 1, true)
	student := newUser(t, store, 2, false)
	date := timegrid.Date(2025, time.March, 4)

	b := newBooking(teacher, student, date, "C")
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(ctx context.Context, tx service.BookingRepository) error {
		require.NoError(t, tx.Create(ctx, b))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := store.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
