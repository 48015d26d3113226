package formatting

import (
	"testing"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/timegrid"
	"github.com/stretchr/testify/assert"
)

func TestFormatSlot(t *testing.T) {
	assert.Equal(t, "A 08:30-09:00", FormatSlot("A"))
	assert.Equal(t, "P 16:00-16:30", FormatSlot("P"))
	assert.Equal(t, "Z", FormatSlot("Z"))
}

func TestFormatDateWithWeekday(t *testing.T) {
	assert.Equal(t, "Чт 06.03.2025", FormatDateWithWeekday(timegrid.Date(2025, time.March, 6)))
	assert.Equal(t, "03.03 - 07.03.2025", FormatWeek(timegrid.Date(2025, time.March, 3)))
}

func TestUserName(t *testing.T) {
	assert.Equal(t, "Anna (@anna)", UserName(&model.User{FirstName: "Anna", Username: "anna"}))
	assert.Equal(t, "@anna", UserName(&model.User{Username: "anna"}))
	assert.Equal(t, "Tom &amp; Jerry", UserName(&model.User{FirstName: "Tom & Jerry"}))
	assert.Equal(t, "—", UserName(nil))
}

func TestBookingDetails(t *testing.T) {
	anna := &model.User{ID: 1, FirstName: "Anna", Username: "anna", IsTeacher: true}
	boris := &model.User{ID: 2, FirstName: "Boris", Username: "boris"}
	b := &model.Booking{
		TeacherID: 1, StudentID: 2, Teacher: anna, Student: boris,
		Date: timegrid.Date(2025, time.March, 6), Slot: "C",
		Location: model.LocationOnline, Topic: "Limits",
	}

	asStudent := BookingDetails(b, 2, "https://meet.example/")
	assert.Contains(t, asStudent, "Учитель: Anna (@anna)")
	assert.Contains(t, asStudent, "C 09:30-10:00")
	assert.Contains(t, asStudent, "Тема: Limits")
	assert.Contains(t, asStudent, "https://meet.example/anna")

	asTeacher := BookingDetails(b, 1, "")
	assert.Contains(t, asTeacher, "Ученик: Boris (@boris)")

	b.Location = model.LocationOnsite
	assert.NotContains(t, BookingDetails(b, 2, ""), "🔗")
}

func TestBookingLine(t *testing.T) {
	b := &model.Booking{TeacherID: 1, StudentID: 1, Date: timegrid.Date(2025, time.March, 6), Slot: "A"}
	assert.Equal(t, "🏫 Чт 06.03.2025 08:30-09:00 · блок", BookingLine(b, nil))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "30 мин", FormatDuration(30))
	assert.Equal(t, "12 ч", FormatDuration(720))
	assert.Equal(t, "1 ч 30 мин", FormatDuration(90))
}
