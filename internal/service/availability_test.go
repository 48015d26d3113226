package service_test

import (
	"testing"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/Freeeeeet/tutor_scheduler/internal/timegrid"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	teacherID = int64(1)
	studentID = int64(2)
	otherID   = int64(3)
)

func utcPolicy() service.Policy {
	p := service.DefaultPolicy()
	p.Location = time.UTC
	return p
}

func at(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func booking(student, teacher int64, date time.Time, slot timegrid.Code) *model.Booking {
	return &model.Booking{
		ID:        uuid.New(),
		StudentID: student,
		TeacherID: teacher,
		Date:      date,
		Slot:      slot,
		Location:  model.LocationOnsite,
	}
}

func slotOf(t *testing.T, week *service.Week, date time.Time, code timegrid.Code) service.SlotAvailability {
	t.Helper()

	for _, day := range week.Days {
		if !day.Date.Equal(date) {
			continue
		}
		for _, s := range day.Slots {
			if s.Slot.Code == code {
				return s
			}
		}
	}
	t.Fatalf("slot %s on %s not in week", code, date.Format(time.DateOnly))
	return service.SlotAvailability{}
}

func rangeOf(t *testing.T, week *service.Week, date time.Time, name timegrid.RangeName) service.RangeAvailability {
	t.Helper()

	for _, day := range week.Days {
		if !day.Date.Equal(date) {
			continue
		}
		for _, r := range day.Ranges {
			if r.Range.Name == name {
				return r
			}
		}
	}
	t.Fatalf("range %s on %s not in week", name, date.Format(time.DateOnly))
	return service.RangeAvailability{}
}

func TestWeekStart(t *testing.T) {
	monday := timegrid.Date(2025, time.March, 3)
	next := timegrid.Date(2025, time.March, 10)

	tests := []struct {
		name   string
		now    time.Time
		offset int
		want   time.Time
	}{
		{"monday", at(2025, time.March, 3, 8, 0), 0, monday},
		{"friday", at(2025, time.March, 7, 18, 0), 0, monday},
		{"saturday rolls over", at(2025, time.March, 8, 10, 0), 0, next},
		{"sunday rolls over", at(2025, time.March, 9, 23, 0), 0, next},
		{"offset", at(2025, time.March, 5, 10, 0), 2, timegrid.Date(2025, time.March, 17)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.WeekStart(tt.now, time.UTC, tt.offset))
		})
	}
}

func TestBuildWeekShape(t *testing.T) {
	now := at(2025, time.March, 5, 9, 0)

	week, err := service.BuildWeek(nil, service.WeekQuery{StudentID: studentID, TeacherID: teacherID, Now: now}, utcPolicy())
	require.NoError(t, err)

	require.Len(t, week.Days, service.DaysInWeek)
	assert.Equal(t, timegrid.Date(2025, time.March, 3), week.Days[0].Date)
	assert.Equal(t, time.Friday, week.Days[4].Date.Weekday())
	assert.False(t, week.SelfMode)
	for _, day := range week.Days {
		assert.Len(t, day.Slots, 16)
		assert.Empty(t, day.Ranges)
	}
}

func TestBuildWeekLeadTime(t *testing.T) {
	// now + 12h = четверг 08:30
	now := at(2025, time.March, 5, 20, 30)
	thursday := timegrid.Date(2025, time.March, 6)

	week, err := service.BuildWeek(nil, service.WeekQuery{StudentID: studentID, TeacherID: teacherID, Now: now}, utcPolicy())
	require.NoError(t, err)

	assert.False(t, slotOf(t, week, thursday, "A").Available, "start equal to now+lead counts as past")
	assert.True(t, slotOf(t, week, thursday, "B").Available)
	assert.False(t, slotOf(t, week, timegrid.Date(2025, time.March, 3), "P").Available)
}

func TestBuildWeekSelfLeadTime(t *testing.T) {
	now := at(2025, time.March, 5, 9, 0)
	wednesday := timegrid.Date(2025, time.March, 5)

	week, err := service.BuildWeek(nil, service.WeekQuery{StudentID: teacherID, TeacherID: teacherID, Now: now}, utcPolicy())
	require.NoError(t, err)
	assert.True(t, week.SelfMode)

	// 09:30 и 10:00 в пределах часа
	assert.False(t, slotOf(t, week, wednesday, "C").Available)
	assert.False(t, slotOf(t, week, wednesday, "D").Available)
	assert.True(t, slotOf(t, week, wednesday, "E").Available)

	// через 2 часа слот уже в прошлом
	later, err := service.BuildWeek(nil, service.WeekQuery{StudentID: teacherID, TeacherID: teacherID, Now: now.Add(2 * time.Hour)}, utcPolicy())
	require.NoError(t, err)
	assert.False(t, slotOf(t, later, wednesday, "E").Available)
}

func TestBuildWeekHorizon(t *testing.T) {
	now := at(2025, time.March, 5, 9, 0)
	nextWednesday := timegrid.Date(2025, time.March, 12)

	week, err := service.BuildWeek(nil, service.WeekQuery{StudentID: studentID, TeacherID: teacherID, WeekOffset: 1, Now: now}, utcPolicy())
	require.NoError(t, err)

	assert.True(t, slotOf(t, week, timegrid.Date(2025, time.March, 11), "P").Available)
	assert.False(t, slotOf(t, week, nextWednesday, "A").Available, "end equal to now+horizon is beyond")
	assert.False(t, slotOf(t, week, timegrid.Date(2025, time.March, 14), "P").Available)

	self, err := service.BuildWeek(nil, service.WeekQuery{StudentID: teacherID, TeacherID: teacherID, WeekOffset: 4, Now: now}, utcPolicy())
	require.NoError(t, err)
	for _, s := range self.Days[0].Slots {
		assert.True(t, s.Available, "self mode has no horizon")
	}
}

func TestBuildWeekConfiguredThresholds(t *testing.T) {
	now := at(2025, time.March, 5, 9, 0)
	wednesday := timegrid.Date(2025, time.March, 5)

	p := utcPolicy()
	p.LeadTime = 30 * time.Minute
	p.Horizon = 48 * time.Hour

	week, err := service.BuildWeek(nil, service.WeekQuery{StudentID: studentID, TeacherID: teacherID, Now: now}, p)
	require.NoError(t, err)

	assert.True(t, slotOf(t, week, wednesday, "D").Available)
	assert.False(t, slotOf(t, week, timegrid.Date(2025, time.March, 7), "A").Available)
}

func TestBuildWeekBookedSlots(t *testing.T) {
	now := at(2025, time.March, 5, 9, 0)
	thursday := timegrid.Date(2025, time.March, 6)

	own := booking(studentID, otherID, thursday, "A")
	teacherBusy := booking(otherID, teacherID, thursday, "B")
	bookings := []*model.Booking{own, teacherBusy}

	week, err := service.BuildWeek(bookings, service.WeekQuery{StudentID: studentID, TeacherID: teacherID, Now: now}, utcPolicy())
	require.NoError(t, err)

	a := slotOf(t, week, thursday, "A")
	assert.False(t, a.Available)
	assert.Equal(t, own, a.Booking)

	b := slotOf(t, week, thursday, "B")
	assert.False(t, b.Available)
	assert.Nil(t, b.Booking, "another student's session is not exposed")

	assert.True(t, slotOf(t, week, thursday, "C").Available)
}

func TestBuildWeekSelfModeRanges(t *testing.T) {
	now := at(2025, time.March, 5, 9, 0)
	thursday := timegrid.Date(2025, time.March, 6)
	friday := timegrid.Date(2025, time.March, 7)

	withStudent := booking(studentID, teacherID, thursday, "C")
	block := booking(teacherID, teacherID, thursday, "K")
	bookings := []*model.Booking{withStudent, block}

	week, err := service.BuildWeek(bookings, service.WeekQuery{StudentID: teacherID, TeacherID: teacherID, Now: now}, utcPolicy())
	require.NoError(t, err)

	c := slotOf(t, week, thursday, "C")
	assert.False(t, c.Available)
	assert.Equal(t, withStudent, c.Booking)
	assert.Equal(t, block, slotOf(t, week, thursday, "K").Booking)

	assert.False(t, rangeOf(t, week, thursday, timegrid.Morning).Available)
	assert.False(t, rangeOf(t, week, thursday, timegrid.FullDay).Available)
	assert.True(t, rangeOf(t, week, thursday, timegrid.Afternoon).Available, "own blocks do not prevent re-blocking")
	assert.True(t, rangeOf(t, week, friday, timegrid.FullDay).Available)

	// среда: утро уже началось
	assert.False(t, rangeOf(t, week, timegrid.Date(2025, time.March, 5), timegrid.Morning).Available)
	assert.True(t, rangeOf(t, week, timegrid.Date(2025, time.March, 5), timegrid.Afternoon).Available)
}

func TestBuildWeekDeterministic(t *testing.T) {
	now := at(2025, time.March, 5, 9, 0)
	bookings := []*model.Booking{booking(studentID, teacherID, timegrid.Date(2025, time.March, 6), "F")}
	q := service.WeekQuery{StudentID: studentID, TeacherID: teacherID, Now: now}

	first, err := service.BuildWeek(bookings, q, utcPolicy())
	require.NoError(t, err)
	second, err := service.BuildWeek(bookings, q, utcPolicy())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuildWeekRejectsNegativeOffset(t *testing.T) {
	_, err := service.BuildWeek(nil, service.WeekQuery{StudentID: studentID, TeacherID: teacherID, WeekOffset: -1, Now: time.Now()}, utcPolicy())
	assert.ErrorIs(t, err, service.ErrInvalidWeekOffset)
}
