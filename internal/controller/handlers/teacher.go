package handlers

import (
	"bytes"
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/teacher"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleBecomeTeacher обрабатывает команду /becometeacher
func (h *Handlers) HandleBecomeTeacher(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	if user.HasRole(model.RoleTeacher) {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "✅ Вы уже учитель.\n\nРасписание: /myschedule", nil)
		return
	}

	kb := keyboard.NewBuilder().
		Row(
			keyboard.Button("✅ Да, стать учителем", "become_teacher"),
			keyboard.Button("❌ Отмена", "cancel_become_teacher"),
		).
		Build()

	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"🎓 Стать учителем?\n\n"+
			"Ученики смогут записываться к вам на свободные слоты, "+
			"а вы сможете блокировать время в своём расписании.", kb)
}

// HandleMySchedule обрабатывает команду /myschedule
func (h *Handlers) HandleMySchedule(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireTeacher(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	week, caption, kb, err := teacher.MyWeekScreen(ctx, h.deps, user, 0)
	if err != nil {
		h.logger.Error("Failed to compute teacher week", zap.Int64("user_id", user.ID), zap.Error(err))
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
		return
	}

	png, err := common.RenderWeek(ctx, h.deps, week)
	if err != nil {
		h.logger.Error("Failed to render week image", zap.Int64("user_id", user.ID), zap.Error(err))
		h.sendMessage(ctx, b, chatID, caption, kb)
		return
	}

	h.sendPhoto(ctx, b, chatID, png, caption, kb)
}

// HandleExport обрабатывает команду /export - CSV прошедших занятий учителя
func (h *Handlers) HandleExport(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireTeacher(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	var buf bytes.Buffer
	n, err := h.teacherService.ExportPastSessions(ctx, user.ID, user.ID, &buf)
	if err != nil {
		h.logger.Error("Failed to export sessions", zap.Int64("user_id", user.ID), zap.Error(err))
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
		return
	}

	if n == 0 {
		h.sendMessage(ctx, b, chatID, "📭 Прошедших занятий пока нет.", nil)
		return
	}

	_, err = b.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID: chatID,
		Document: &models.InputFileUpload{
			Filename: fmt.Sprintf("sessions_%d.csv", user.ID),
			Data:     &buf,
		},
		Caption: fmt.Sprintf("📤 Прошедшие занятия: %d", n),
	})
	if err != nil {
		h.logger.Error("Failed to send export", zap.Int64("user_id", user.ID), zap.Error(err))
		return
	}

	h.logger.Info("Sessions exported", zap.Int64("user_id", user.ID), zap.Int("rows", n))
}
