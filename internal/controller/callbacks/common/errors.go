package common

import (
	"errors"

	"github.com/Freeeeeet/tutor_scheduler/internal/service"
)

// Общие ошибки для обработчиков
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrNotATeacher   = errors.New("user is not a teacher")
	ErrNoMessage     = errors.New("no message in callback")
	ErrInvalidFormat = errors.New("invalid callback format")
	ErrDraftExpired  = errors.New("booking draft expired")
)

// ErrorMessage возвращает пользовательское сообщение для ошибки
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return "❌ Пользователь не найден. Используйте /start"
	case errors.Is(err, ErrNotATeacher), errors.Is(err, service.ErrInvalidTeacher):
		return "❌ Эта функция доступна только учителям"
	case errors.Is(err, ErrNoMessage):
		return "❌ Ошибка обработки сообщения"
	case errors.Is(err, ErrInvalidFormat), errors.Is(err, service.ErrInvalidSlot),
		errors.Is(err, service.ErrUnknownRange), errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidWeekOffset):
		return "❌ Неверный формат данных"
	case errors.Is(err, ErrDraftExpired):
		return "⌛ Выбор слота устарел, начните запись заново"
	case errors.Is(err, service.ErrPastDate):
		return "⏰ Это время уже недоступно для записи"
	case errors.Is(err, service.ErrSlotConflict):
		return "⚠️ В это время у участника уже есть занятие"
	case errors.Is(err, service.ErrNotFound):
		return "❌ Занятие не найдено"
	case errors.Is(err, service.ErrPermission):
		return "🚫 Недостаточно прав"
	case errors.Is(err, service.ErrTopicTooLong):
		return "✏️ Тема слишком длинная"
	default:
		return "❌ Произошла ошибка"
	}
}
