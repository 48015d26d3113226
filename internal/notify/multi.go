package notify

import (
	"context"
	"errors"

	"github.com/Freeeeeet/tutor_scheduler/internal/service"
)

// Multi передаёт уведомление всем получателям по очереди.
// Ошибка одного не мешает остальным.
type Multi []service.Notifier

func (m Multi) Notify(ctx context.Context, n service.Notification) error {
	var errs []error
	for _, notifier := range m {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
