package common

import (
	"testing"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/Freeeeeet/tutor_scheduler/internal/timegrid"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationDataRoundTrip(t *testing.T) {
	date := timegrid.Date(2025, time.March, 6)
	data := LocationData(42, date, "C", model.LocationOnline)
	assert.Equal(t, "loc:42:20250306:C:online", data)
	assert.LessOrEqual(t, len(data), 64)

	args, err := ParseArgs(data, PrefixLocation, 4)
	require.NoError(t, err)

	teacherID, err := args.Int64(0)
	require.NoError(t, err)
	gotDate, err := args.Date(1)
	require.NoError(t, err)
	code, err := args.Slot(2)
	require.NoError(t, err)
	loc, err := args.Location(3)
	require.NoError(t, err)

	assert.Equal(t, int64(42), teacherID)
	assert.Equal(t, date, gotDate)
	assert.Equal(t, timegrid.Code("C"), code)
	assert.Equal(t, model.LocationOnline, loc)
}

func TestSessionDataFitsTelegramLimit(t *testing.T) {
	id := uuid.New()
	data := SessionData(PrefixConfirmCancel, id)
	assert.LessOrEqual(t, len(data), 64)

	args, err := ParseArgs(data, PrefixConfirmCancel, 1)
	require.NoError(t, err)
	got, err := args.UUID(0)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestRangeData(t *testing.T) {
	data := RangeData(PrefixBlock, timegrid.Date(2025, time.March, 6), timegrid.Morning)
	assert.Equal(t, "block:20250306:morning", data)

	args, err := ParseArgs(data, PrefixBlock, 2)
	require.NoError(t, err)
	name, err := args.Range(1)
	require.NoError(t, err)
	assert.Equal(t, timegrid.Morning, name)
}

func TestParseArgsErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		prefix string
		n      int
		parse  func(Args) error
	}{
		{"wrong prefix", "week:1:0", PrefixDay, 3, nil},
		{"wrong arity", "week:1", PrefixWeek, 2, nil},
		{"bad int", "week:x:0", PrefixWeek, 2, func(a Args) error { _, err := a.Int64(0); return err }},
		{"bad date", "myday:0:2025-03-06", PrefixMyDay, 2, func(a Args) error { _, err := a.Date(1); return err }},
		{"bad uuid", "session:42", PrefixSession, 1, func(a Args) error { _, err := a.UUID(0); return err }},
		{"bad location", "loc:1:20250306:C:moon", PrefixLocation, 4, func(a Args) error { _, err := a.Location(3); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := ParseArgs(tt.data, tt.prefix, tt.n)
			if tt.parse == nil {
				assert.ErrorIs(t, err, ErrInvalidFormat)
				return
			}
			require.NoError(t, err)
			assert.ErrorIs(t, tt.parse(args), ErrInvalidFormat)
		})
	}

	args, err := ParseArgs("slot:1:20250306:Z", PrefixSlot, 3)
	require.NoError(t, err)
	_, err = args.Slot(2)
	assert.ErrorIs(t, err, timegrid.ErrUnknownSlot)

	args, err = ParseArgs("block:20250306:evening", PrefixBlock, 2)
	require.NoError(t, err)
	_, err = args.Range(1)
	assert.ErrorIs(t, err, timegrid.ErrUnknownRange)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "⚠️ В это время у участника уже есть занятие", ErrorMessage(service.ErrSlotConflict))
	assert.Equal(t, "🚫 Недостаточно прав", ErrorMessage(service.ErrPermission))
	assert.Equal(t, "❌ Неверный формат данных", ErrorMessage(timegrid.ErrUnknownRange))
	assert.Equal(t, "❌ Произошла ошибка", ErrorMessage(assert.AnError))
}
