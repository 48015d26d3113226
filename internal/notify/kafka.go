package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
	"go.uber.org/zap"
)

// Заголовки сообщений
const (
	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"
	HeaderSource    = "source"
	HeaderTimestamp = "timestamp"
)

// EventSource значение заголовка source
const EventSource = "tutor-scheduler"

// Event тело сообщения о занятии
type Event struct {
	Type        string    `json:"type"`
	BookingID   string    `json:"booking_id"`
	StudentID   int64     `json:"student_id"`
	TeacherID   int64     `json:"teacher_id"`
	Date        string    `json:"date"`
	Slot        string    `json:"slot"`
	Time        string    `json:"time"`
	Location    string    `json:"location"`
	Topic       string    `json:"topic,omitempty"`
	MeetLink    string    `json:"meet_link,omitempty"`
	RequestedBy *int64    `json:"requested_by,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// EventType тип события по виду уведомления
func EventType(kind service.NotificationKind) string {
	return "booking." + string(kind)
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig параметры продюсера
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	MeetBase string
}

// Kafka публикует события о занятиях. Ключ сообщения это ID занятия,
// поэтому события одного занятия попадают в одну партицию по порядку.
type Kafka struct {
	writer   messageWriter
	meetBase string
	now      func() time.Time
	logger   *zap.Logger
}

func NewKafka(cfg KafkaConfig, logger *zap.Logger) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("topic cannot be empty")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  compress.Snappy,
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		Logger:       kafka.LoggerFunc(func(string, ...any) {}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			logger.Sugar().Errorf(msg, args...)
		}),
	}

	return newKafka(writer, cfg.MeetBase, time.Now, logger), nil
}

func newKafka(writer messageWriter, meetBase string, now func() time.Time, logger *zap.Logger) *Kafka {
	return &Kafka{
		writer:   writer,
		meetBase: meetBase,
		now:      now,
		logger:   logger,
	}
}

// Notify публикует одно событие
func (k *Kafka) Notify(ctx context.Context, n service.Notification) error {
	msg, err := k.message(n)
	if err != nil {
		return err
	}

	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", n.Kind, err)
	}

	k.logger.Debug("Booking event published",
		zap.String("type", EventType(n.Kind)),
		zap.String("booking_id", n.Booking.ID.String()),
	)
	return nil
}

func (k *Kafka) message(n service.Notification) (kafka.Message, error) {
	now := k.now().UTC()
	b := n.Booking

	event := Event{
		Type:       EventType(n.Kind),
		BookingID:  b.ID.String(),
		StudentID:  b.StudentID,
		TeacherID:  b.TeacherID,
		Date:       b.Date.Format(time.DateOnly),
		Slot:       string(b.Slot),
		Time:       b.TimeSlot().Label(),
		Location:   string(b.Location),
		Topic:      n.Topic,
		MeetLink:   MeetLink(k.meetBase, b),
		OccurredAt: now,
	}
	if n.RequestedBy != nil {
		id := n.RequestedBy.ID
		event.RequestedBy = &id
	}

	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode event: %w", err)
	}

	return kafka.Message{
		Key:   []byte(b.ID.String()),
		Value: value,
		Time:  now,
		Headers: []kafka.Header{
			{Key: HeaderEventID, Value: []byte(uuid.New().String())},
			{Key: HeaderEventType, Value: []byte(event.Type)},
			{Key: HeaderSource, Value: []byte(EventSource)},
			{Key: HeaderTimestamp, Value: []byte(now.Format(time.RFC3339))},
		},
	}, nil
}

// Close дожидается отправки буфера и закрывает соединения
func (k *Kafka) Close() error {
	return k.writer.Close()
}
