package formatting

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/timegrid"
)

// FormatDate форматирует только дату
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// FormatDateWithWeekday дата с коротким днём недели: "Чт 06.03.2025"
func FormatDateWithWeekday(t time.Time) string {
	return GetWeekdayShortName(t.Weekday()) + " " + FormatDate(t)
}

// FormatSlot время слота с кодом: "C 09:30-10:00"
func FormatSlot(code timegrid.Code) string {
	s, ok := timegrid.Lookup(code)
	if !ok {
		return string(code)
	}
	return fmt.Sprintf("%s %s", code, s.Label())
}

// FormatWeek диапазон рабочей недели: "03.03 - 07.03.2025"
func FormatWeek(start time.Time) string {
	end := start.AddDate(0, 0, 4)
	return start.Format("02.01") + " - " + end.Format("02.01.2006")
}

// GetWeekdayName возвращает название дня недели на русском
func GetWeekdayName(weekday time.Weekday) string {
	names := []string{
		"Воскресенье",
		"Понедельник",
		"Вторник",
		"Среда",
		"Четверг",
		"Пятница",
		"Суббота",
	}
	if weekday >= 0 && int(weekday) < len(names) {
		return names[weekday]
	}
	return "Неизвестно"
}

// GetWeekdayShortName возвращает краткое название дня недели на русском
func GetWeekdayShortName(weekday time.Weekday) string {
	names := []string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}
	if weekday >= 0 && int(weekday) < len(names) {
		return names[weekday]
	}
	return "?"
}

// RangeName подпись диапазона слотов
func RangeName(name timegrid.RangeName) string {
	switch name {
	case timegrid.FullDay:
		return "Весь день"
	case timegrid.Morning:
		return "Утро"
	case timegrid.Afternoon:
		return "После обеда"
	default:
		return string(name)
	}
}

// FormatDuration форматирует длительность в минутах
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d мин", minutes)
	}
	hours := minutes / 60
	mins := minutes % 60
	if mins == 0 {
		return fmt.Sprintf("%d ч", hours)
	}
	return fmt.Sprintf("%d ч %d мин", hours, mins)
}
