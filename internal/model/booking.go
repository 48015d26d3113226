package model

import (
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/timegrid"
	"github.com/google/uuid"
)

type Location string

const (
	LocationOnsite Location = "onsite" // Очно
	LocationOnline Location = "online" // Онлайн
)

// Valid проверяет что значение из допустимого списка
func (l Location) Valid() bool {
	return l == LocationOnsite || l == LocationOnline
}

type Booking struct {
	ID        uuid.UUID     `json:"id"`
	StudentID int64         `json:"student_id"`
	TeacherID int64         `json:"teacher_id"`
	Date      time.Time     `json:"date"` // полночь UTC календарной даты
	Slot      timegrid.Code `json:"slot"`
	Location  Location      `json:"location"`
	Topic     string        `json:"topic,omitempty"`
	CreatedAt time.Time     `json:"created_at"`

	// Дополнительные поля для удобства (не из БД)
	Student *User `json:"student,omitempty"`
	Teacher *User `json:"teacher,omitempty"`
}

// IsSelfSession учитель занял собственный слот
func (b *Booking) IsSelfSession() bool {
	return b.StudentID == b.TeacherID
}

// Persons участники занятия
func (b *Booking) Persons() []int64 {
	if b.IsSelfSession() {
		return []int64{b.TeacherID}
	}
	return []int64{b.TeacherID, b.StudentID}
}

// Involves проверяет что пользователь участвует в занятии в любой роли
func (b *Booking) Involves(userID int64) bool {
	return b.StudentID == userID || b.TeacherID == userID
}

// TimeSlot слот сетки, на который приходится занятие
func (b *Booking) TimeSlot() timegrid.Slot {
	s, _ := timegrid.Lookup(b.Slot)
	return s
}

// StartsAt момент начала занятия
func (b *Booking) StartsAt(loc *time.Location) time.Time {
	return b.TimeSlot().StartAt(b.Date, loc)
}
