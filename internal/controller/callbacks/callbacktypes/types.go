package callbacktypes

import (
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/controller/state"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"go.uber.org/zap"
)

// Handler содержит общие зависимости для всех callback handlers
type Handler struct {
	UserService         *service.UserService
	BookingService      *service.BookingService
	TeacherService      *service.TeacherService
	AvailabilityService *service.AvailabilityService
	StateManager        *state.Manager
	Logger              *zap.Logger

	// Часовой пояс сетки и база ссылок на онлайн-встречи
	Location    *time.Location
	MeetURLBase string
}
