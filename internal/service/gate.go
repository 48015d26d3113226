package service

import "github.com/Freeeeeet/tutor_scheduler/internal/model"

// ParticipantGate разрешает менять занятие только его участникам
type ParticipantGate struct{}

func (ParticipantGate) CanModify(user *model.User, booking *model.Booking) bool {
	if user == nil || booking == nil {
		return false
	}
	return booking.Involves(user.ID)
}
