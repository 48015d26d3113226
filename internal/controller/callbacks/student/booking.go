package student

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/state"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// ========================
// Student Booking Handlers
// ========================

const slotsPerRow = 4

// dayScreen слоты одного дня с кнопками свободных
func dayScreen(week *service.Week, day service.DayAvailability, teacherID int64, offset int) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 <b>%s</b>\n\n", formatting.FormatDateWithWeekday(day.Date))

	var free []models.InlineKeyboardButton
	for _, s := range day.Slots {
		icon := "▫️"
		switch {
		case s.Booking != nil:
			icon = "📌"
		case s.Available:
			icon = "🟢"
		}
		fmt.Fprintf(&sb, "%s %s\n", icon, formatting.FormatSlot(s.Slot.Code))

		if !s.Available {
			continue
		}
		free = append(free, keyboard.Button(s.Slot.Label()[:5], common.SlotData(teacherID, day.Date, s.Slot.Code)))
	}
	kb := keyboard.NewBuilder().Grid(free, slotsPerRow)

	if common.FreeSlots(day) == 0 {
		sb.WriteString("\nСвободных слотов нет.")
	} else if week.SelfMode {
		sb.WriteString("\nВыберите слот, чтобы занять его для себя:")
	} else {
		sb.WriteString("\nВыберите время:")
	}

	kb.Row(keyboard.BackButton(common.WeekData(teacherID, offset)))
	return sb.String(), kb.Build()
}

// HandleSlot проверяет выбранный слот и спрашивает формат занятия
func HandleSlot(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		args, err := common.ParseArgs(callback.Data, common.PrefixSlot, 3)
		if err != nil {
			common.HandleError(hc, err, "select_slot")
			return
		}
		teacherID, err := args.Int64(0)
		if err != nil {
			common.HandleError(hc, err, "select_slot")
			return
		}
		date, err := args.Date(1)
		if err != nil {
			common.HandleError(hc, err, "select_slot")
			return
		}
		code, err := args.Slot(2)
		if err != nil {
			common.HandleError(hc, err, "select_slot")
			return
		}

		candidate := service.Candidate{TeacherID: teacherID, StudentID: hc.User.ID, Date: date, Slot: code}
		if err := h.BookingService.Validate(ctx, candidate); err != nil {
			common.HandleError(hc, err, "select_slot")
			return
		}

		// Свой слот учитель занимает сразу, без формата и темы
		if teacherID == hc.User.ID {
			draft := state.BookingDraft{TeacherID: teacherID, Date: date, Slot: code, Location: model.LocationOnsite}
			booking, err := CreateFromDraft(ctx, h, hc.User, draft, "")
			if err != nil {
				common.HandleError(hc, err, "block_slot")
				return
			}
			text, kb := CreatedScreen(booking, hc.User.ID, h.MeetURLBase)
			_ = hc.EditMessage(text, kb)
			hc.Answer("🔒 Слот занят")
			return
		}

		text := fmt.Sprintf("🕐 %s, %s\n\nКак пройдёт занятие?",
			formatting.FormatDateWithWeekday(date), formatting.FormatSlot(code))
		kb := keyboard.NewBuilder().
			Row(
				keyboard.Button("🏫 Очно", common.LocationData(teacherID, date, code, model.LocationOnsite)),
				keyboard.Button("💻 Онлайн", common.LocationData(teacherID, date, code, model.LocationOnline)),
			).
			AddBackToMainButton().
			Build()

		if err := hc.EditMessage(text, kb); err != nil {
			common.HandleError(hc, err, "select_slot")
			return
		}
		hc.Answer("")
	})
}

// HandleLocation запоминает черновик и просит тему занятия
func HandleLocation(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		args, err := common.ParseArgs(callback.Data, common.PrefixLocation, 4)
		if err != nil {
			common.HandleError(hc, err, "select_location")
			return
		}
		teacherID, err := args.Int64(0)
		if err != nil {
			common.HandleError(hc, err, "select_location")
			return
		}
		date, err := args.Date(1)
		if err != nil {
			common.HandleError(hc, err, "select_location")
			return
		}
		code, err := args.Slot(2)
		if err != nil {
			common.HandleError(hc, err, "select_location")
			return
		}
		loc, err := args.Location(3)
		if err != nil {
			common.HandleError(hc, err, "select_location")
			return
		}

		h.StateManager.StartDraft(hc.TelegramID, state.BookingDraft{
			TeacherID: teacherID,
			Date:      date,
			Slot:      code,
			Location:  loc,
		})

		text := fmt.Sprintf("📝 Напишите тему занятия (до %d символов) или нажмите «Без темы».", service.MaxTopicLength)
		kb := keyboard.NewBuilder().
			Row(keyboard.Button("➡️ Без темы", "notopic")).
			Row(keyboard.Button("❌ Отмена", "back_to_main")).
			Build()

		if err := hc.EditMessage(text, kb); err != nil {
			common.HandleError(hc, err, "select_location")
			return
		}
		hc.Answer("")
	})
}

// HandleNoTopic создаёт занятие без темы
func HandleNoTopic(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		draft, ok := h.StateManager.TakeDraft(hc.TelegramID)
		if !ok {
			common.HandleError(hc, common.ErrDraftExpired, "create_booking")
			return
		}

		booking, err := CreateFromDraft(ctx, h, hc.User, draft, "")
		if err != nil {
			common.HandleError(hc, err, "create_booking")
			return
		}

		text, kb := CreatedScreen(booking, hc.User.ID, h.MeetURLBase)
		_ = hc.EditMessage(text, kb)
		hc.Answer("✅ Занятие создано")
	})
}

// CreateFromDraft создаёт занятие по черновику. Участники получают уведомление из сервиса.
func CreateFromDraft(ctx context.Context, h *callbacktypes.Handler, user *model.User, draft state.BookingDraft, topic string) (*model.Booking, error) {
	booking, err := h.BookingService.Create(ctx, service.NewBooking{
		TeacherID: draft.TeacherID,
		StudentID: user.ID,
		Date:      draft.Date,
		Slot:      draft.Slot,
		Location:  draft.Location,
		Topic:     strings.TrimSpace(topic),
	})
	if err != nil {
		return nil, err
	}

	h.Logger.Info("Booking created from bot",
		zap.Int64("user_id", user.ID),
		zap.String("booking_id", booking.ID.String()))

	return booking, nil
}

// CreatedScreen подтверждение созданного занятия
func CreatedScreen(booking *model.Booking, viewerID int64, meetBase string) (string, *models.InlineKeyboardMarkup) {
	text := "✅ Занятие создано!\n\n" + formatting.BookingDetails(booking, viewerID, meetBase)

	kb := keyboard.NewBuilder().
		Row(keyboard.Button("📋 Мои занятия", "sessions")).
		Row(keyboard.Button("➕ Записаться ещё", "teachers")).
		Build()

	return text, kb
}
