package callbacks

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/state"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Handler обертка для callbacktypes.Handler с методами
type Handler struct {
	*callbacktypes.Handler
}

// NewHandler создаёт новый обработчик callbacks с зависимостями
func NewHandler(
	userService *service.UserService,
	bookingService *service.BookingService,
	teacherService *service.TeacherService,
	availabilityService *service.AvailabilityService,
	stateManager *state.Manager,
	location *time.Location,
	meetURLBase string,
	logger *zap.Logger,
) *Handler {
	inner := &callbacktypes.Handler{
		UserService:         userService,
		BookingService:      bookingService,
		TeacherService:      teacherService,
		AvailabilityService: availabilityService,
		StateManager:        stateManager,
		Logger:              logger,
		Location:            location,
		MeetURLBase:         meetURLBase,
	}
	return &Handler{Handler: inner}
}

// HandleCallbackQuery - главный обработчик callback queries
func (h *Handler) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	Route(ctx, b, update.CallbackQuery, h.Handler)
}
