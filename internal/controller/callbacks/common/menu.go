package common

import (
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/go-telegram/bot/models"
)

// MainMenu главное меню с учётом роли пользователя
func MainMenu(user *model.User) (string, *models.InlineKeyboardMarkup) {
	text := "📋 Главное меню\n\n" +
		"/teachers - Записаться к учителю\n" +
		"/mysessions - Мои занятия\n" +
		"/help - Справка\n"

	kb := keyboard.NewBuilder().
		Row(keyboard.Button("👨‍🏫 Учителя", "teachers")).
		Row(keyboard.Button("📋 Мои занятия", "sessions"))

	if user.HasRole(model.RoleTeacher) {
		text += "\nКоманды учителя:\n" +
			"/myschedule - Моё расписание\n" +
			"/export - Выгрузить прошедшие занятия"
		kb.Row(keyboard.Button("🗓 Моё расписание", MyWeekData(0)))
	} else {
		text += "\n/becometeacher - Стать учителем"
	}

	return text, kb.Build()
}
