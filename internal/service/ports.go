package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/timegrid"
	"github.com/google/uuid"
)

// UserRepository хранилище пользователей
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	ListTeachers(ctx context.Context) ([]*model.User, error)
}

// BookingRepository хранилище бронирований.
// Методы Get* возвращают nil, nil если запись не найдена.
type BookingRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	// FindConflict ищет занятие в (date, slot), где участвует кто-то из persons
	FindConflict(ctx context.Context, date time.Time, slot timegrid.Code, persons []int64, exclude *uuid.UUID) (*model.Booking, error)
	// ListInvolving занятия в интервале дат [from, to], где кто-то из persons ученик или учитель
	ListInvolving(ctx context.Context, persons []int64, from, to time.Time) ([]*model.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.Booking, error)
	ListByTeacherSlots(ctx context.Context, teacherID int64, date time.Time, slots []timegrid.Code) ([]*model.Booking, error)
	ListByTeacherBefore(ctx context.Context, teacherID int64, before time.Time) ([]*model.Booking, error)
	Create(ctx context.Context, booking *model.Booking) error
	UpdateLocation(ctx context.Context, id uuid.UUID, location model.Location) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
	// LockSlots сериализует конкурирующие транзакции по (date, slot) до конца транзакции
	LockSlots(ctx context.Context, date time.Time, slots []timegrid.Code) error
}

// BookingStore даёт транзакционный доступ к бронированиям.
// Все изменения выполняются внутри WithinTx с уровнем изоляции не ниже read committed.
type BookingStore interface {
	BookingRepository
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx BookingRepository) error) error
}

// UserDirectory разрешает идентификатор пользователя
type UserDirectory interface {
	// Resolve возвращает ErrNotFound если пользователя нет
	Resolve(ctx context.Context, id int64) (*model.User, error)
}

// AuthorizationGate решает, может ли пользователь менять занятие
type AuthorizationGate interface {
	CanModify(user *model.User, booking *model.Booking) bool
}

// NotificationKind тип уведомления
type NotificationKind string

const (
	NotificationCreated   NotificationKind = "created"
	NotificationEdited    NotificationKind = "edited"
	NotificationCancelled NotificationKind = "cancelled"
)

// Notification событие по занятию. Booking копируется, получатель не видит последующих изменений.
type Notification struct {
	Kind        NotificationKind
	Booking     model.Booking
	Topic       string
	RequestedBy *model.User
}

// Notifier доставляет уведомления участникам
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
