package teacher

import (
	"context"

	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common/keyboard"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// ========================
// Teacher Onboarding Handlers
// ========================

// HandleBecomeTeacherConfirm обрабатывает подтверждение стать учителем
func HandleBecomeTeacherConfirm(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)

	user, err := h.UserService.MakeTeacher(ctx, hc.TelegramID)
	if err != nil {
		h.Logger.Error("Failed to make teacher", zap.Error(err))
		hc.AnswerAlert("❌ Произошла ошибка. Попробуйте позже.")
		return
	}

	h.Logger.Info("User became teacher",
		zap.Int64("user_id", user.ID),
		zap.Int64("telegram_id", hc.TelegramID))

	kb := keyboard.NewBuilder().
		Row(keyboard.Button("🗓 Моё расписание", common.MyWeekData(0))).
		AddBackToMainButton().
		Build()

	_ = hc.EditMessage("🎓 Поздравляем! Теперь вы учитель!\n\n"+
		"Вы можете:\n"+
		"• Смотреть занятия учеников в своём расписании\n"+
		"• Блокировать утро, вторую половину дня или весь день\n"+
		"• Выгружать прошедшие занятия командой /export", kb)

	hc.Answer("✅ Вы стали учителем!")
}

// HandleBecomeTeacherCancel обрабатывает отмену становления учителем
func HandleBecomeTeacherCancel(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := common.NewHandlerContext(ctx, b, callback, h)

	_ = hc.EditMessage("✅ Операция отменена.\n\nВы всегда можете стать учителем позже через /becometeacher", nil)
	hc.Answer("Отменено")
}
