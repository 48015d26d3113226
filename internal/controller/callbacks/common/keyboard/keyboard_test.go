package keyboard

import (
	"strconv"
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weekData(offset int) string {
	return "week:7:" + strconv.Itoa(offset)
}

func TestBuilderSkipsEmptyRows(t *testing.T) {
	kb := NewBuilder().
		Row().
		Row(Button("a", "x")).
		AddRow(nil).
		AddRows(ConfirmCancelButtons("yes", "no")).
		AddBackToMainButton().
		Build()

	require.Len(t, kb.InlineKeyboard, 3)
	assert.Equal(t, "x", kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "yes", kb.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, "no", kb.InlineKeyboard[1][1].CallbackData)
	assert.Equal(t, "back_to_main", kb.InlineKeyboard[2][0].CallbackData)
}

func TestURLButton(t *testing.T) {
	b := URLButton("meet", "https://meet.example/anna")
	assert.Equal(t, "https://meet.example/anna", b.URL)
	assert.Empty(t, b.CallbackData)
}

func TestWeekPagination(t *testing.T) {
	row := WeekPagination(weekData, 0)
	require.Len(t, row, 2)
	assert.Equal(t, "noop", row[0].CallbackData)
	assert.Equal(t, "week:7:1", row[1].CallbackData)

	row = WeekPagination(weekData, 2)
	require.Len(t, row, 3)
	assert.Equal(t, "week:7:1", row[0].CallbackData)
	assert.Equal(t, "+2 нед.", row[1].Text)
	assert.Equal(t, "week:7:3", row[2].CallbackData)
}

func TestGrid(t *testing.T) {
	buttons := make([]models.InlineKeyboardButton, 0, 9)
	for i := range 9 {
		buttons = append(buttons, Button(strconv.Itoa(i), strconv.Itoa(i)))
	}

	kb := NewBuilder().Grid(buttons, 4).Build()
	require.Len(t, kb.InlineKeyboard, 3)
	assert.Len(t, kb.InlineKeyboard[0], 4)
	assert.Len(t, kb.InlineKeyboard[1], 4)
	assert.Len(t, kb.InlineKeyboard[2], 1)
	assert.Equal(t, "8", kb.InlineKeyboard[2][0].CallbackData)

	assert.Empty(t, NewBuilder().Grid(nil, 4).Build().InlineKeyboard)
}
