package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// MessageSender часть *bot.Bot, нужная для отправки
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Telegram отправляет уведомление обоим участникам занятия
type Telegram struct {
	sender   MessageSender
	meetBase string
	logger   *zap.Logger
}

func NewTelegram(sender MessageSender, meetBase string, logger *zap.Logger) *Telegram {
	return &Telegram{
		sender:   sender,
		meetBase: meetBase,
		logger:   logger,
	}
}

// Notify шлёт текст студенту и учителю. Ошибки по получателям объединяются.
func (t *Telegram) Notify(ctx context.Context, n service.Notification) error {
	recipients := []*model.User{n.Booking.Student, n.Booking.Teacher}

	var errs []error
	for _, r := range recipients {
		if r == nil {
			errs = append(errs, fmt.Errorf("booking %s: recipient not resolved", n.Booking.ID))
			continue
		}

		_, err := t.sender.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: r.TelegramID,
			Text:   Text(n, r, t.meetBase),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("send to %d: %w", r.TelegramID, err))
			continue
		}

		t.logger.Debug("Notification sent",
			zap.String("kind", string(n.Kind)),
			zap.String("booking_id", n.Booking.ID.String()),
			zap.Int64("chat_id", r.TelegramID),
		)
	}

	return errors.Join(errs...)
}
