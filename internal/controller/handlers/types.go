package handlers

import (
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/state"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	userService    *service.UserService
	bookingService *service.BookingService
	teacherService *service.TeacherService
	stateManager   *state.Manager
	logger         *zap.Logger

	// deps общие зависимости с callback handlers, экраны строятся одинаково
	deps *callbacktypes.Handler
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(deps *callbacktypes.Handler) *Handlers {
	return &Handlers{
		userService:    deps.UserService,
		bookingService: deps.BookingService,
		teacherService: deps.TeacherService,
		stateManager:   deps.StateManager,
		logger:         deps.Logger,
		deps:           deps,
	}
}
