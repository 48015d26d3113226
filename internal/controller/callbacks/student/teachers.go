package student

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// TeachersScreen текст и клавиатура списка учителей
func TeachersScreen(ctx context.Context, h *callbacktypes.Handler, viewer *model.User) (string, *models.InlineKeyboardMarkup, error) {
	teachers, err := h.UserService.ListTeachers(ctx)
	if err != nil {
		return "", nil, err
	}

	if len(teachers) == 0 {
		return "👨‍🏫 Пока нет ни одного учителя.", keyboard.NewBuilder().AddBackToMainButton().Build(), nil
	}

	text := fmt.Sprintf("👨‍🏫 <b>Учителя</b> (%d)\n\nВыберите учителя, чтобы посмотреть свободное время:", len(teachers))
	kb := keyboard.NewBuilder()
	for _, t := range teachers {
		label := formatting.UserName(t)
		if t.ID == viewer.ID {
			label += " · моё расписание"
		}
		kb.Row(keyboard.Button(label, common.TeacherData(t.ID)))
	}
	kb.AddBackToMainButton()

	return text, kb.Build(), nil
}

// HandleTeachers показывает список учителей
func HandleTeachers(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		hc.ClearState()

		text, kb, err := TeachersScreen(ctx, h, hc.User)
		if err != nil {
			common.HandleError(hc, err, "list_teachers")
			return
		}

		if err := hc.EditMessage(text, kb); err != nil {
			common.HandleError(hc, err, "list_teachers")
			return
		}
		hc.Answer("")
	})
}

// HandleTeacher открывает текущую неделю учителя
func HandleTeacher(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		args, err := common.ParseArgs(callback.Data, common.PrefixTeacher, 1)
		if err != nil {
			common.HandleError(hc, err, "open_teacher")
			return
		}
		teacherID, err := args.Int64(0)
		if err != nil {
			common.HandleError(hc, err, "open_teacher")
			return
		}

		showWeek(hc, teacherID, 0)
	})
}

// HandleWeek переключает неделю учителя
func HandleWeek(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		args, err := common.ParseArgs(callback.Data, common.PrefixWeek, 2)
		if err != nil {
			common.HandleError(hc, err, "open_week")
			return
		}
		teacherID, err := args.Int64(0)
		if err != nil {
			common.HandleError(hc, err, "open_week")
			return
		}
		offset, err := args.Int(1)
		if err != nil {
			common.HandleError(hc, err, "open_week")
			return
		}

		showWeek(hc, teacherID, offset)
	})
}

func showWeek(hc *common.HandlerContext, teacherID int64, offset int) {
	week, err := hc.Handler.AvailabilityService.TeacherWeek(hc.Ctx, hc.User.ID, teacherID, offset)
	if err != nil {
		common.HandleError(hc, err, "compute_week")
		return
	}

	teacher, err := hc.Handler.UserService.GetByID(hc.Ctx, teacherID)
	if err != nil {
		common.HandleError(hc, err, "compute_week")
		return
	}

	caption := fmt.Sprintf("📅 <b>%s</b>\nНеделя %s\n\nВыберите день:",
		formatting.UserName(teacher), formatting.FormatWeek(week.Start))

	kb := keyboard.NewBuilder()
	for _, day := range week.Days {
		label := fmt.Sprintf("%s · %d своб.", formatting.FormatDateWithWeekday(day.Date), common.FreeSlots(day))
		kb.Row(keyboard.Button(label, common.DayData(teacherID, offset, day.Date)))
	}
	kb.AddWeekPagination(func(o int) string { return common.WeekData(teacherID, o) }, offset)
	kb.Row(keyboard.Button("⬅️ К учителям", "teachers"))

	if err := common.ShowWeek(hc, week, caption, kb.Build()); err != nil {
		common.HandleError(hc, err, "compute_week")
		return
	}
	hc.Answer("")
}

// HandleDay показывает слоты дня
func HandleDay(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		args, err := common.ParseArgs(callback.Data, common.PrefixDay, 3)
		if err != nil {
			common.HandleError(hc, err, "open_day")
			return
		}
		teacherID, err := args.Int64(0)
		if err != nil {
			common.HandleError(hc, err, "open_day")
			return
		}
		offset, err := args.Int(1)
		if err != nil {
			common.HandleError(hc, err, "open_day")
			return
		}
		date, err := args.Date(2)
		if err != nil {
			common.HandleError(hc, err, "open_day")
			return
		}

		week, err := h.AvailabilityService.TeacherWeek(ctx, hc.User.ID, teacherID, offset)
		if err != nil {
			common.HandleError(hc, err, "open_day")
			return
		}

		day, ok := common.FindDay(week, date)
		if !ok {
			common.HandleError(hc, common.ErrInvalidFormat, "open_day")
			return
		}

		text, kb := dayScreen(week, day, teacherID, offset)
		if err := hc.EditMessage(text, kb); err != nil {
			common.HandleError(hc, err, "open_day")
			return
		}
		hc.Answer("")
	})
}
