package common

import (
	"context"
	"errors"

	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// WithUser загружает пользователя и вызывает handler.
// Незарегистрированному пользователю отвечает alert'ом.
func WithUser(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler, handler func(*HandlerContext)) {
	with(ctx, b, callback, h, (*HandlerContext).LoadUser, handler)
}

// WithTeacher то же, но только для учителей
func WithTeacher(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler, handler func(*HandlerContext)) {
	with(ctx, b, callback, h, (*HandlerContext).RequireTeacher, handler)
}

func with(
	ctx context.Context,
	b *bot.Bot,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
	check func(*HandlerContext) error,
	handler func(*HandlerContext),
) {
	hc := NewHandlerContext(ctx, b, callback, h)

	if err := check(hc); err != nil {
		level := zap.ErrorLevel
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrNotATeacher) {
			level = zap.WarnLevel
		}
		h.Logger.Log(level, "Access check failed",
			zap.Int64("telegram_id", hc.TelegramID),
			zap.String("callback", callback.Data),
			zap.Error(err))
		hc.AnswerAlert(ErrorMessage(err))
		return
	}

	handler(hc)
}

// HandleError обрабатывает ошибку и отправляет ответ пользователю.
// Отказы по данным пользователя пишутся как Warn, остальное как Error.
func HandleError(hc *HandlerContext, err error, operation string) {
	fields := []zap.Field{
		zap.String("operation", operation),
		zap.Int64("telegram_id", hc.TelegramID),
		zap.Error(err),
	}
	if service.IsValidationError(err) {
		hc.Handler.Logger.Warn("Operation rejected", fields...)
	} else {
		hc.Handler.Logger.Error("Operation failed", fields...)
	}
	hc.AnswerAlert(ErrorMessage(err))
}
