package state

import (
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/timegrid"
)

// UserState представляет текущее состояние пользователя в диалоге
type UserState string

const (
	StateNone UserState = "" // Нет активного состояния

	// Ввод темы перед созданием занятия
	StateEnterTopic UserState = "enter_topic"
)

// BookingDraft выбранный слот, для которого ещё не введена тема
type BookingDraft struct {
	TeacherID int64
	Date      time.Time
	Slot      timegrid.Code
	Location  model.Location
}

// UserData хранит временные данные пользователя во время диалога
type UserData struct {
	State     UserState
	Draft     *BookingDraft
	UpdatedAt time.Time
}
