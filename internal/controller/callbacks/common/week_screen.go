package common

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// ShowWeek отправляет картинку недели вместо текущего сообщения.
// Если картинку нарисовать не удалось, показывает текст.
func ShowWeek(hc *HandlerContext, week *service.Week, caption string, keyboard *models.InlineKeyboardMarkup) error {
	png, err := RenderWeek(hc.Ctx, hc.Handler, week)
	if err != nil {
		hc.Handler.Logger.Error("Failed to render week image",
			zap.Int64("telegram_id", hc.TelegramID),
			zap.Error(err))
		return hc.EditMessage(caption, keyboard)
	}

	return hc.SendPhoto(png, caption, keyboard)
}

// RenderWeek рисует неделю с именами участников занятий
func RenderWeek(ctx context.Context, h *callbacktypes.Handler, week *service.Week) ([]byte, error) {
	return GenerateWeekImage(week, h.AvailabilityService.Now(), h.Location, weekNames(ctx, h, week))
}

// weekNames имена участников занятий, попавших в неделю
func weekNames(ctx context.Context, h *callbacktypes.Handler, week *service.Week) map[int64]string {
	names := make(map[int64]string)
	for _, day := range week.Days {
		for _, slot := range day.Slots {
			if slot.Booking == nil {
				continue
			}
			for _, id := range slot.Booking.Persons() {
				if _, ok := names[id]; ok {
					continue
				}
				user, err := h.UserService.GetByID(ctx, id)
				if err != nil || user == nil {
					names[id] = ""
					continue
				}
				names[id] = user.DisplayName()
			}
		}
	}
	return names
}

// FreeSlots число свободных слотов дня
func FreeSlots(day service.DayAvailability) int {
	n := 0
	for _, s := range day.Slots {
		if s.Available {
			n++
		}
	}
	return n
}

// FindDay день недели по дате
func FindDay(week *service.Week, date time.Time) (service.DayAvailability, bool) {
	for _, d := range week.Days {
		if date.Equal(d.Date) {
			return d, true
		}
	}
	return service.DayAvailability{}, false
}
