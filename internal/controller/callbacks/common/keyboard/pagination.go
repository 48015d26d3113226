package keyboard

import (
	"fmt"

	"github.com/go-telegram/bot/models"
)

// WeekPagination создаёт ряд переключения недель.
// Прошлые недели не показываются, поэтому на нулевой неделе кнопки "назад" нет.
func WeekPagination(data func(offset int) string, weekOffset int) []models.InlineKeyboardButton {
	var buttons []models.InlineKeyboardButton

	if weekOffset > 0 {
		buttons = append(buttons, Button("◀️", data(weekOffset-1)))
	}

	label := "Эта неделя"
	if weekOffset > 0 {
		label = fmt.Sprintf("+%d нед.", weekOffset)
	}
	buttons = append(buttons, Button(label, "noop"))
	buttons = append(buttons, Button("▶️", data(weekOffset+1)))

	return buttons
}

// AddWeekPagination добавляет переключение недель к builder
func (b *Builder) AddWeekPagination(data func(offset int) string, weekOffset int) *Builder {
	return b.Row(WeekPagination(data, weekOffset)...)
}
