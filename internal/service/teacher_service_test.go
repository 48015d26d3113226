package service_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/Freeeeeet/tutor_scheduler/internal/timegrid"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func teacherSlots(t *testing.T, f *fixture, teacherID int64, date time.Time, r timegrid.RangeName) []*model.Booking {
	t.Helper()

	agg, err := timegrid.Aggregate(r)
	require.NoError(t, err)
	bookings, err := f.store.ListByTeacherSlots(context.Background(), teacherID, date, agg.Codes())
	require.NoError(t, err)
	return bookings
}

func TestReconcileMorning(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	anna := f.teacher(t, 10, "anna")
	boris := f.user(t, 20, "boris")
	carl := f.user(t, 30, "carl")

	morning, err := f.bookings.Create(ctx, service.NewBooking{TeacherID: anna.ID, StudentID: boris.ID, Date: thursday, Slot: "B"})
	require.NoError(t, err)
	_, err = f.bookings.Create(ctx, service.NewBooking{TeacherID: anna.ID, StudentID: carl.ID, Date: thursday, Slot: "J"})
	require.NoError(t, err)
	_, err = f.bookings.Create(ctx, service.NewBooking{TeacherID: anna.ID, StudentID: anna.ID, Date: thursday, Slot: "C"})
	require.NoError(t, err)
	before := len(f.notifier.all())

	result, err := f.teachers.Reconcile(ctx, anna.ID, thursday, timegrid.Morning, anna.ID)
	require.NoError(t, err)
	require.Len(t, result.Displaced, 1)
	assert.Equal(t, morning.ID, result.Displaced[0].ID)
	assert.Equal(t, timegrid.Morning, result.Range.Name)

	sent := f.notifier.all()[before:]
	require.Len(t, sent, 1)
	assert.Equal(t, service.NotificationCancelled, sent[0].Kind)
	assert.Equal(t, boris.ID, sent[0].Booking.StudentID)
	require.NotNil(t, sent[0].RequestedBy)
	assert.Equal(t, anna.ID, sent[0].RequestedBy.ID)

	blocks := teacherSlots(t, f, anna.ID, thursday, timegrid.Morning)
	require.Len(t, blocks, 7)
	for _, b := range blocks {
		assert.True(t, b.IsSelfSession())
	}

	afternoon := teacherSlots(t, f, anna.ID, thursday, timegrid.Afternoon)
	require.Len(t, afternoon, 1)
	assert.Equal(t, carl.ID, afternoon[0].StudentID)

	// для студента слот B теперь закрыт блокировкой
	week, err := f.weeks.ComputeWeek(ctx, boris.ID, anna.ID, 0)
	require.NoError(t, err)
	assert.False(t, slotOf(t, week, thursday, "B").Available)
}

func TestReconcileIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	anna := f.teacher(t, 10, "anna")
	boris := f.user(t, 20, "boris")

	_, err := f.bookings.Create(ctx, service.NewBooking{TeacherID: anna.ID, StudentID: boris.ID, Date: thursday, Slot: "A"})
	require.NoError(t, err)

	_, err = f.teachers.Reconcile(ctx, anna.ID, thursday, timegrid.FullDay, anna.ID)
	require.NoError(t, err)
	first := teacherSlots(t, f, anna.ID, thursday, timegrid.FullDay)
	notified := len(f.notifier.all())

	again, err := f.teachers.Reconcile(ctx, anna.ID, thursday, timegrid.FullDay, anna.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Displaced)
	assert.Len(t, f.notifier.all(), notified)

	second := teacherSlots(t, f, anna.ID, thursday, timegrid.FullDay)
	require.Len(t, second, len(first))
	require.Len(t, second, 16)
	for i := range first {
		assert.Equal(t, first[i].Slot, second[i].Slot)
		assert.True(t, second[i].IsSelfSession())
	}
}

func TestReconcileTeacherBusyAsStudent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	anna := f.teacher(t, 10, "anna")
	boris := f.teacher(t, 11, "boris")
	carl := f.user(t, 20, "carl")

	own, err := f.bookings.Create(ctx, service.NewBooking{TeacherID: anna.ID, StudentID: carl.ID, Date: thursday, Slot: "A"})
	require.NoError(t, err)
	_, err = f.bookings.Create(ctx, service.NewBooking{TeacherID: boris.ID, StudentID: anna.ID, Date: thursday, Slot: "E"})
	require.NoError(t, err)
	before := len(f.notifier.all())

	_, err = f.teachers.Reconcile(ctx, anna.ID, thursday, timegrid.Morning, anna.ID)
	assert.ErrorIs(t, err, service.ErrSlotConflict)

	// вся транзакция откатилась
	stored, err := f.store.GetByID(ctx, own.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored)
	assert.Len(t, f.notifier.all(), before)
}

func TestReconcileChecks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	anna := f.teacher(t, 10, "anna")
	boris := f.user(t, 20, "boris")

	_, err := f.teachers.Reconcile(ctx, anna.ID, thursday, "evening", anna.ID)
	assert.ErrorIs(t, err, service.ErrUnknownRange)

	_, err = f.teachers.Reconcile(ctx, anna.ID, thursday, timegrid.Morning, boris.ID)
	assert.ErrorIs(t, err, service.ErrPermission)

	_, err = f.teachers.Reconcile(ctx, boris.ID, thursday, timegrid.Morning, boris.ID)
	assert.ErrorIs(t, err, service.ErrInvalidTeacher)

	_, err = f.teachers.Reconcile(ctx, anna.ID, timegrid.Date(2025, time.March, 4), timegrid.Morning, anna.ID)
	assert.ErrorIs(t, err, service.ErrPastDate)
}

func TestUnblock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	anna := f.teacher(t, 10, "anna")
	carl := f.user(t, 20, "carl")

	_, err := f.bookings.Create(ctx, service.NewBooking{TeacherID: anna.ID, StudentID: carl.ID, Date: thursday, Slot: "K"})
	require.NoError(t, err)
	_, err = f.teachers.Reconcile(ctx, anna.ID, thursday, timegrid.Morning, anna.ID)
	require.NoError(t, err)

	removed, err := f.teachers.Unblock(ctx, anna.ID, thursday, timegrid.FullDay, anna.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, removed)

	left := teacherSlots(t, f, anna.ID, thursday, timegrid.FullDay)
	require.Len(t, left, 1)
	assert.Equal(t, carl.ID, left[0].StudentID)

	_, err = f.teachers.Unblock(ctx, anna.ID, thursday, timegrid.FullDay, carl.ID)
	assert.ErrorIs(t, err, service.ErrPermission)
}

func TestExportPastSessions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	anna := f.teacher(t, 10, "anna")
	boris := f.user(t, 20, "boris")

	past := []*model.Booking{
		{ID: uuid.New(), TeacherID: anna.ID, StudentID: boris.ID, Date: timegrid.Date(2025, time.March, 3), Slot: "B", Location: model.LocationOnline, CreatedAt: f.now},
		{ID: uuid.New(), TeacherID: anna.ID, StudentID: boris.ID, Date: timegrid.Date(2025, time.February, 28), Slot: "A", Location: model.LocationOnsite, CreatedAt: f.now},
	}
	for _, b := range past {
		require.NoError(t, f.store.Create(ctx, b))
	}
	_, err := f.bookings.Create(ctx, service.NewBooking{TeacherID: anna.ID, StudentID: boris.ID, Date: thursday, Slot: "A"})
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := f.teachers.ExportPastSessions(ctx, anna.ID, anna.ID, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	want := "student,teacher,date,timeblock,location\n" +
		"boris,anna,28/02/2025,08:30-09:00,onsite\n" +
		"boris,anna,03/03/2025,09:00-09:30,online\n"
	assert.Equal(t, want, buf.String())

	_, err = f.teachers.ExportPastSessions(ctx, anna.ID, boris.ID, &buf)
	assert.ErrorIs(t, err, service.ErrPermission)
}
