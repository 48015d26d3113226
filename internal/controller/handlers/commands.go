package handlers

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/state"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	user := update.Message.From

	// Регистрируем пользователя
	registeredUser, err := h.userService.RegisterUser(
		ctx,
		user.ID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.LanguageCode,
	)

	if err != nil {
		h.logger.Error("Failed to register user", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Произошла ошибка при регистрации. Попробуйте позже.")
		return
	}

	menu, kb := common.MainMenu(registeredUser)
	welcomeText := fmt.Sprintf(
		"👋 Привет, %s!\n\n"+
			"Здесь можно записаться на занятие к учителю: выберите учителя, день и получасовой слот "+
			"с 08:30 до 16:30.\n\n%s",
		html.EscapeString(registeredUser.DisplayName()),
		menu,
	)

	h.sendMessage(ctx, b, update.Message.Chat.ID, welcomeText, kb)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	helpText := "📚 Справка по командам:\n\n" +
		"Для учеников:\n" +
		"/start - Начать работу с ботом\n" +
		"/teachers - Список учителей и запись\n" +
		"/mysessions - Мои занятия\n" +
		"/cancel - Прервать запись\n" +
		"/help - Показать эту справку\n\n" +
		"Для учителей:\n" +
		"/becometeacher - Зарегистрироваться как учитель\n" +
		"/myschedule - Моё расписание и блокировка времени\n" +
		"/export - Выгрузить прошедшие занятия в CSV\n"

	policy := h.deps.AvailabilityService.Policy()
	helpText += fmt.Sprintf("\nЗаписаться можно не позже чем за %s до начала", formatting.FormatDuration(int(policy.LeadTime.Minutes())))
	if policy.Horizon > 0 {
		helpText += fmt.Sprintf(" и не дальше чем на %d дн. вперёд", int(policy.Horizon.Hours()/24))
	}
	helpText += "."

	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText, nil)
}

// HandleCancel обрабатывает команду /cancel - отмена текущего диалога
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	telegramID := update.Message.From.ID
	if h.stateManager.GetState(telegramID) == state.StateNone {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "❌ Нет активных операций для отмены.", nil)
		return
	}

	h.stateManager.ClearState(telegramID)
	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"✅ Операция отменена.\n\nИспользуйте /help для просмотра доступных команд.", nil)
}

// HandleTextMessage обрабатывает текстовые сообщения в зависимости от состояния пользователя
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
		return
	}

	// Игнорируем команды (они обрабатываются другими handlers)
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	telegramID := update.Message.From.ID
	currentState := h.stateManager.GetState(telegramID)

	switch currentState {
	case state.StateEnterTopic:
		h.handleTopicStep(ctx, b, update)
	default:
		h.logger.Debug("No active state, ignoring message",
			zap.Int64("telegram_id", telegramID))
	}
}
