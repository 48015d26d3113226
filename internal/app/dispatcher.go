package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"go.uber.org/zap"
)

var (
	// ErrQueueFull очередь уведомлений переполнена
	ErrQueueFull = errors.New("notification queue is full")
	// ErrDispatcherStopped Run уже завершился, очередь никто не читает
	ErrDispatcherStopped = errors.New("notification dispatcher is stopped")
)

const deliveryTimeout = 15 * time.Second

// Dispatcher доставляет уведомления в фоне, чтобы бот и HTTP не ждали Telegram и Kafka
type Dispatcher struct {
	next     service.Notifier
	queue    chan service.Notification
	logger   *zap.Logger
	stopChan chan struct{}
	stopOnce sync.Once

	mu      sync.RWMutex
	stopped bool
}

// NewDispatcher создаёт диспетчер с очередью заданного размера
func NewDispatcher(next service.Notifier, buffer int, logger *zap.Logger) *Dispatcher {
	if buffer <= 0 {
		buffer = 1
	}
	return &Dispatcher{
		next:     next,
		queue:    make(chan service.Notification, buffer),
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Notify ставит уведомление в очередь и не блокируется
func (d *Dispatcher) Notify(_ context.Context, n service.Notification) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		return ErrDispatcherStopped
	}

	select {
	case d.queue <- n:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run обрабатывает очередь до Stop или отмены ctx.
// Перед выходом отправляет то, что уже успело попасть в очередь.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("Starting notification dispatcher", zap.Int("buffer", cap(d.queue)))

	for {
		select {
		case n := <-d.queue:
			d.deliver(ctx, n)
		case <-d.stopChan:
			d.logger.Info("Notification dispatcher stopped")
			d.shutdown()
			return nil
		case <-ctx.Done():
			d.logger.Info("Notification dispatcher cancelled")
			d.shutdown()
			return nil
		}
	}
}

// Stop останавливает Run
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() { close(d.stopChan) })
}

// shutdown закрывает приём и отправляет остаток очереди.
// После захвата mu ни один Notify уже не положит элемент в очередь.
func (d *Dispatcher) shutdown() {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()

	d.drain()
}

func (d *Dispatcher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	for {
		select {
		case n := <-d.queue:
			d.deliver(ctx, n)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, n service.Notification) {
	ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	if err := d.next.Notify(ctx, n); err != nil {
		deliveryErr := &service.NotificationDeliveryError{Kind: n.Kind, BookingID: n.Booking.ID, Err: err}
		d.logger.Error("Notification delivery failed",
			zap.String("kind", string(n.Kind)),
			zap.String("booking_id", n.Booking.ID.String()),
			zap.Error(deliveryErr),
		)
	}
}
