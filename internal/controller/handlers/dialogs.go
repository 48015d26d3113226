package handlers

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/student"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// handleTopicStep принимает тему и создаёт занятие по сохранённому черновику
func (h *Handlers) handleTopicStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID := update.Message.Chat.ID
	telegramID := update.Message.From.ID
	topic := strings.TrimSpace(update.Message.Text)

	if utf8.RuneCountInString(topic) > service.MaxTopicLength {
		h.sendError(ctx, b, chatID,
			fmt.Sprintf("❌ Тема слишком длинная. Максимум %d символов.\n\nПопробуйте ещё раз:", service.MaxTopicLength))
		return
	}

	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	draft, ok := h.stateManager.TakeDraft(telegramID)
	if !ok {
		h.sendError(ctx, b, chatID, common.ErrorMessage(common.ErrDraftExpired))
		return
	}

	booking, err := student.CreateFromDraft(ctx, h.deps, user, draft, topic)
	if err != nil {
		if service.IsValidationError(err) {
			h.logger.Warn("Booking rejected", zap.Int64("user_id", user.ID), zap.Error(err))
		} else {
			h.logger.Error("Failed to create booking", zap.Int64("user_id", user.ID), zap.Error(err))
		}
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
		return
	}

	text, kb := student.CreatedScreen(booking, user.ID, h.deps.MeetURLBase)
	h.sendMessage(ctx, b, chatID, text, kb)
}
