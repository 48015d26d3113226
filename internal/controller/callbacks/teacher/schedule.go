package teacher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/Freeeeeet/tutor_scheduler/internal/timegrid"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// ========================
// Schedule Management Handlers
// ========================

// HandleMyWeek показывает собственное расписание учителя
func HandleMyWeek(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithTeacher(ctx, b, callback, h, func(hc *common.HandlerContext) {
		args, err := common.ParseArgs(callback.Data, common.PrefixMyWeek, 1)
		if err != nil {
			common.HandleError(hc, err, "my_week")
			return
		}
		offset, err := args.Int(0)
		if err != nil {
			common.HandleError(hc, err, "my_week")
			return
		}

		ShowMyWeek(hc, offset)
	})
}

// ShowMyWeek неделя учителя с блоками и занятиями учеников
func ShowMyWeek(hc *common.HandlerContext, offset int) {
	week, caption, kb, err := MyWeekScreen(hc.Ctx, hc.Handler, hc.User, offset)
	if err != nil {
		common.HandleError(hc, err, "my_week")
		return
	}

	if err := common.ShowWeek(hc, week, caption, kb); err != nil {
		common.HandleError(hc, err, "my_week")
		return
	}
	hc.Answer("")
}

// MyWeekScreen неделя, подпись и клавиатура собственного расписания
func MyWeekScreen(ctx context.Context, h *callbacktypes.Handler, user *model.User, offset int) (*service.Week, string, *models.InlineKeyboardMarkup, error) {
	week, err := h.AvailabilityService.TeacherWeek(ctx, user.ID, user.ID, offset)
	if err != nil {
		return nil, "", nil, err
	}

	caption := fmt.Sprintf("🗓 <b>Моё расписание</b>\nНеделя %s\n\nВыберите день, чтобы заблокировать время:",
		formatting.FormatWeek(week.Start))

	kb := keyboard.NewBuilder()
	for _, day := range week.Days {
		label := fmt.Sprintf("%s · %d своб.", formatting.FormatDateWithWeekday(day.Date), common.FreeSlots(day))
		kb.Row(keyboard.Button(label, common.MyDayData(offset, day.Date)))
	}
	kb.AddWeekPagination(common.MyWeekData, offset)
	kb.AddBackToMainButton()

	return week, caption, kb.Build(), nil
}

// HandleMyDay день учителя: занятия, блокировка диапазонов и отдельных слотов
func HandleMyDay(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithTeacher(ctx, b, callback, h, func(hc *common.HandlerContext) {
		args, err := common.ParseArgs(callback.Data, common.PrefixMyDay, 2)
		if err != nil {
			common.HandleError(hc, err, "my_day")
			return
		}
		offset, err := args.Int(0)
		if err != nil {
			common.HandleError(hc, err, "my_day")
			return
		}
		date, err := args.Date(1)
		if err != nil {
			common.HandleError(hc, err, "my_day")
			return
		}

		showMyDay(hc, offset, date, "")
	})
}

func showMyDay(hc *common.HandlerContext, offset int, date time.Time, notice string) {
	week, err := hc.Handler.AvailabilityService.TeacherWeek(hc.Ctx, hc.User.ID, hc.User.ID, offset)
	if err != nil {
		common.HandleError(hc, err, "my_day")
		return
	}

	day, ok := common.FindDay(week, date)
	if !ok {
		common.HandleError(hc, common.ErrInvalidFormat, "my_day")
		return
	}

	text, kb := myDayScreen(hc, day, offset)
	if notice != "" {
		text = notice + "\n\n" + text
	}
	if err := hc.EditMessage(text, kb); err != nil {
		common.HandleError(hc, err, "my_day")
		return
	}
	hc.Answer("")
}

func myDayScreen(hc *common.HandlerContext, day service.DayAvailability, offset int) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🗓 <b>%s, %s</b>\n\n", formatting.GetWeekdayName(day.Date.Weekday()), formatting.FormatDate(day.Date))

	names := make(map[int64]*model.User)
	for _, s := range day.Slots {
		line := formatting.FormatSlot(s.Slot.Code)
		switch {
		case s.Booking != nil && s.Booking.IsSelfSession():
			line = "🔒 " + line + " · блок"
		case s.Booking != nil:
			student := lookup(hc, names, s.Booking.StudentID)
			line = "📌 " + line + " · " + formatting.UserName(student)
		case s.Available:
			line = "🟢 " + line
		default:
			line = "▫️ " + line
		}
		sb.WriteString(line + "\n")
	}

	kb := keyboard.NewBuilder()
	for _, r := range day.Ranges {
		name := formatting.RangeName(r.Range.Name)
		var row []models.InlineKeyboardButton
		if r.Available {
			row = append(row, keyboard.Button("🔒 "+name, common.RangeData(common.PrefixBlock, day.Date, r.Range.Name)))
		}
		row = append(row, keyboard.Button("🔓 "+name, common.RangeData(common.PrefixUnblock, day.Date, r.Range.Name)))
		kb.AddRow(row)
	}
	if common.FreeSlots(day) > 0 {
		kb.Row(keyboard.Button("🕐 Занять отдельный слот", common.DayData(hc.User.ID, offset, day.Date)))
	}
	kb.Row(keyboard.BackButton(common.MyWeekData(offset)))

	sb.WriteString("\nБлокировка отменяет занятия учеников в выбранном диапазоне, они получат уведомление.")
	return sb.String(), kb.Build()
}

func lookup(hc *common.HandlerContext, cache map[int64]*model.User, id int64) *model.User {
	if u, ok := cache[id]; ok {
		return u
	}
	u, err := hc.Handler.UserService.GetByID(hc.Ctx, id)
	if err != nil {
		hc.Handler.Logger.Warn("Failed to load user", zap.Int64("user_id", id), zap.Error(err))
	}
	cache[id] = u
	return u
}

// HandleBlock блокирует диапазон, отменяя занятия учеников
func HandleBlock(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithTeacher(ctx, b, callback, h, func(hc *common.HandlerContext) {
		date, rangeName, err := parseRange(callback.Data, common.PrefixBlock)
		if err != nil {
			common.HandleError(hc, err, "block_range")
			return
		}

		result, err := h.TeacherService.Reconcile(ctx, hc.User.ID, date, rangeName, hc.User.ID)
		if err != nil {
			common.HandleError(hc, err, "block_range")
			return
		}

		notice := fmt.Sprintf("🔒 %s заблокировано.", formatting.RangeName(rangeName))
		if n := len(result.Displaced); n > 0 {
			notice += fmt.Sprintf(" Отменено занятий: %d, ученики уведомлены.", n)
		}
		showMyDay(hc, offsetOf(h, date), date, notice)
	})
}

// HandleUnblock снимает блокировку диапазона
func HandleUnblock(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithTeacher(ctx, b, callback, h, func(hc *common.HandlerContext) {
		date, rangeName, err := parseRange(callback.Data, common.PrefixUnblock)
		if err != nil {
			common.HandleError(hc, err, "unblock_range")
			return
		}

		removed, err := h.TeacherService.Unblock(ctx, hc.User.ID, date, rangeName, hc.User.ID)
		if err != nil {
			common.HandleError(hc, err, "unblock_range")
			return
		}

		notice := fmt.Sprintf("🔓 Снято блоков: %d.", removed)
		showMyDay(hc, offsetOf(h, date), date, notice)
	})
}

func parseRange(data, prefix string) (time.Time, timegrid.RangeName, error) {
	args, err := common.ParseArgs(data, prefix, 2)
	if err != nil {
		return time.Time{}, "", err
	}
	date, err := args.Date(0)
	if err != nil {
		return time.Time{}, "", err
	}
	name, err := args.Range(1)
	if err != nil {
		return time.Time{}, "", err
	}
	return date, name, nil
}

// offsetOf номер недели, в которую попадает дата
func offsetOf(h *callbacktypes.Handler, date time.Time) int {
	start := service.WeekStart(h.AvailabilityService.Now(), h.Location, 0)
	days := int(date.Sub(start).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days / 7
}
