package common

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// AnswerCallback закрывает "часики" на кнопке. С alert текст показывается во всплывающем окне.
func AnswerCallback(ctx context.Context, b *bot.Bot, callbackID, text string, alert bool) {
	_, _ = b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       alert,
	})
}

// callbackMessage сообщение, к которому привязана кнопка. nil если оно недоступно боту.
func callbackMessage(callback *models.CallbackQuery) *models.Message {
	return callback.Message.Message
}

func isNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}
