package callbacks

import (
	"context"
	"strings"

	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/student"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/teacher"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Callback data без аргументов
const (
	BackToMain          = "back_to_main"
	Noop                = "noop"
	Teachers            = "teachers"
	NoTopic             = "notopic"
	Sessions            = "sessions"
	BecomeTeacher       = "become_teacher"
	CancelBecomeTeacher = "cancel_become_teacher"
)

type callbackFunc func(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler)

var exactRoutes = map[string]callbackFunc{
	BackToMain:          handleBackToMain,
	Teachers:            student.HandleTeachers,
	NoTopic:             student.HandleNoTopic,
	Sessions:            student.HandleSessions,
	BecomeTeacher:       teacher.HandleBecomeTeacherConfirm,
	CancelBecomeTeacher: teacher.HandleBecomeTeacherCancel,
}

// Префиксы проверяются по порядку: confirm_cancel: раньше cancel:
var prefixRoutes = []struct {
	prefix  string
	handler callbackFunc
}{
	{common.PrefixTeacher, student.HandleTeacher},
	{common.PrefixWeek, student.HandleWeek},
	{common.PrefixDay, student.HandleDay},
	{common.PrefixSlot, student.HandleSlot},
	{common.PrefixLocation, student.HandleLocation},
	{common.PrefixSession, student.HandleSession},
	{common.PrefixToggle, student.HandleToggleLocation},
	{common.PrefixConfirmCancel, student.HandleConfirmCancel},
	{common.PrefixCancel, student.HandleCancel},
	{common.PrefixMyWeek, teacher.HandleMyWeek},
	{common.PrefixMyDay, teacher.HandleMyDay},
	{common.PrefixBlock, teacher.HandleBlock},
	{common.PrefixUnblock, teacher.HandleUnblock},
}

// Route распределяет callback query по соответствующим обработчикам
func Route(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	data := callback.Data

	h.Logger.Debug("Routing callback",
		zap.String("data", data),
		zap.Int64("user_id", callback.From.ID))

	if handler := match(data); handler != nil {
		handler(ctx, b, callback, h)
		return
	}

	if data != Noop {
		h.Logger.Warn("Unknown callback", zap.String("data", data))
	}
	common.AnswerCallback(ctx, b, callback.ID, "", false)
}

func match(data string) callbackFunc {
	if handler, ok := exactRoutes[data]; ok {
		return handler
	}
	for _, r := range prefixRoutes {
		if strings.HasPrefix(data, r.prefix) {
			return r.handler
		}
	}
	return nil
}

// handleBackToMain возвращает пользователя к главному меню
func handleBackToMain(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		hc.ClearState()
		text, kb := common.MainMenu(hc.User)
		_ = hc.EditMessage(text, kb)
		hc.Answer("")
	})
}
