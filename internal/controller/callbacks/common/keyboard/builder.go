package keyboard

import "github.com/go-telegram/bot/models"

// Builder собирает inline клавиатуру по рядам. Пустые ряды пропускаются.
type Builder struct {
	rows [][]models.InlineKeyboardButton
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Row(buttons ...models.InlineKeyboardButton) *Builder {
	return b.AddRow(buttons)
}

func (b *Builder) AddRow(row []models.InlineKeyboardButton) *Builder {
	if len(row) > 0 {
		b.rows = append(b.rows, row)
	}
	return b
}

func (b *Builder) AddRows(rows [][]models.InlineKeyboardButton) *Builder {
	for _, row := range rows {
		b.AddRow(row)
	}
	return b
}

// Grid раскладывает кнопки по perRow в ряд
func (b *Builder) Grid(buttons []models.InlineKeyboardButton, perRow int) *Builder {
	if perRow <= 0 {
		perRow = 1
	}
	for len(buttons) > perRow {
		b.AddRow(buttons[:perRow:perRow])
		buttons = buttons[perRow:]
	}
	return b.AddRow(buttons)
}

func (b *Builder) AddBackToMainButton() *Builder {
	return b.Row(BackToMainButton())
}

func (b *Builder) Build() *models.InlineKeyboardMarkup {
	rows := b.rows
	if rows == nil {
		rows = [][]models.InlineKeyboardButton{}
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func Button(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: text, CallbackData: callbackData}
}

// URLButton кнопка-ссылка, например на онлайн-встречу
func URLButton(text, url string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: text, URL: url}
}

func BackButton(callbackData string) models.InlineKeyboardButton {
	return Button("⬅️ Назад", callbackData)
}

func BackToMainButton() models.InlineKeyboardButton {
	return Button("🏠 В главное меню", "back_to_main")
}

// ConfirmCancelButtons ряд "Подтвердить / Отмена"
func ConfirmCancelButtons(confirmCallback, cancelCallback string) [][]models.InlineKeyboardButton {
	return [][]models.InlineKeyboardButton{{
		Button("✅ Подтвердить", confirmCallback),
		Button("❌ Отмена", cancelCallback),
	}}
}
