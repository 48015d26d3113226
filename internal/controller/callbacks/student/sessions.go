package student

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/tutor_scheduler/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/notify"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
)

// maxListed сколько занятий каждой роли выводится кнопками
const maxListed = 10

// SessionsScreen предстоящие занятия пользователя в обеих ролях
func SessionsScreen(ctx context.Context, h *callbacktypes.Handler, user *model.User) (string, *models.InlineKeyboardMarkup, error) {
	sessions, err := h.BookingService.ListForUser(ctx, user.ID)
	if err != nil {
		return "", nil, err
	}

	kb := keyboard.NewBuilder()
	if len(sessions.AsStudent) == 0 && len(sessions.AsTeacher) == 0 {
		kb.Row(keyboard.Button("👨‍🏫 Записаться", "teachers"))
		kb.AddBackToMainButton()
		return "📋 У вас нет предстоящих занятий.", kb.Build(), nil
	}

	var sb strings.Builder
	sb.WriteString("📋 <b>Мои занятия</b>\n")

	section := func(title string, list []*model.Booking, other func(*model.Booking) *model.User) {
		if len(list) == 0 {
			return
		}
		fmt.Fprintf(&sb, "\n<b>%s</b> (%d)\n", title, len(list))
		for i, b := range list {
			line := formatting.BookingLine(b, other(b))
			fmt.Fprintf(&sb, "%s\n", line)
			if i < maxListed {
				kb.Row(keyboard.Button(stripHTML(line), common.SessionData(common.PrefixSession, b.ID)))
			}
		}
	}

	section("Я ученик", sessions.AsStudent, func(b *model.Booking) *model.User { return b.Teacher })
	section("Я учитель", sessions.AsTeacher, func(b *model.Booking) *model.User { return b.Student })

	kb.AddBackToMainButton()
	return sb.String(), kb.Build(), nil
}

// HandleSessions показывает список занятий
func HandleSessions(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		text, kb, err := SessionsScreen(ctx, h, hc.User)
		if err != nil {
			common.HandleError(hc, err, "list_sessions")
			return
		}
		if err := hc.EditMessage(text, kb); err != nil {
			common.HandleError(hc, err, "list_sessions")
			return
		}
		hc.Answer("")
	})
}

// HandleSession карточка занятия
func HandleSession(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		id, err := parseBookingID(callback.Data, common.PrefixSession)
		if err != nil {
			common.HandleError(hc, err, "view_session")
			return
		}

		booking, err := h.BookingService.Get(ctx, id, hc.User.ID)
		if err != nil {
			common.HandleError(hc, err, "view_session")
			return
		}

		showSession(hc, booking)
		hc.Answer("")
	})
}

// HandleToggleLocation переключает очно/онлайн
func HandleToggleLocation(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		id, err := parseBookingID(callback.Data, common.PrefixToggle)
		if err != nil {
			common.HandleError(hc, err, "edit_session")
			return
		}

		current, err := h.BookingService.Get(ctx, id, hc.User.ID)
		if err != nil {
			common.HandleError(hc, err, "edit_session")
			return
		}

		next := model.LocationOnline
		if current.Location == model.LocationOnline {
			next = model.LocationOnsite
		}

		updated, err := h.BookingService.Update(ctx, id, hc.User.ID, service.BookingPatch{Location: &next})
		if err != nil {
			common.HandleError(hc, err, "edit_session")
			return
		}

		showSession(hc, updated)
		hc.Answer("✏️ Формат изменён")
	})
}

// HandleCancel спрашивает подтверждение отмены
func HandleCancel(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		id, err := parseBookingID(callback.Data, common.PrefixCancel)
		if err != nil {
			common.HandleError(hc, err, "cancel_session")
			return
		}

		booking, err := h.BookingService.Get(ctx, id, hc.User.ID)
		if err != nil {
			common.HandleError(hc, err, "cancel_session")
			return
		}

		text := "❓ Отменить занятие?\n\n" + formatting.BookingDetails(booking, hc.User.ID, h.MeetURLBase)
		kb := keyboard.NewBuilder().
			AddRows(keyboard.ConfirmCancelButtons(
				common.SessionData(common.PrefixConfirmCancel, id),
				common.SessionData(common.PrefixSession, id),
			)).
			Build()

		if err := hc.EditMessage(text, kb); err != nil {
			common.HandleError(hc, err, "cancel_session")
			return
		}
		hc.Answer("")
	})
}

// HandleConfirmCancel отменяет занятие
func HandleConfirmCancel(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		id, err := parseBookingID(callback.Data, common.PrefixConfirmCancel)
		if err != nil {
			common.HandleError(hc, err, "cancel_session")
			return
		}

		if err := h.BookingService.Cancel(ctx, id, hc.User.ID); err != nil {
			common.HandleError(hc, err, "cancel_session")
			return
		}

		kb := keyboard.NewBuilder().
			Row(keyboard.Button("📋 Мои занятия", "sessions")).
			AddBackToMainButton().
			Build()
		_ = hc.EditMessage("🗑 Занятие отменено. Второй участник получит уведомление.", kb)
		hc.Answer("Отменено")
	})
}

func showSession(hc *common.HandlerContext, booking *model.Booking) {
	text := formatting.BookingDetails(booking, hc.User.ID, hc.Handler.MeetURLBase)

	toggle := "💻 Сделать онлайн"
	if booking.Location == model.LocationOnline {
		toggle = "🏫 Сделать очным"
	}

	kb := keyboard.NewBuilder()
	if link := notify.MeetLink(hc.Handler.MeetURLBase, *booking); link != "" {
		kb.Row(keyboard.URLButton("🔗 Подключиться", link))
	}
	kb.Row(keyboard.Button(toggle, common.SessionData(common.PrefixToggle, booking.ID))).
		Row(keyboard.Button("🗑 Отменить занятие", common.SessionData(common.PrefixCancel, booking.ID))).
		Row(keyboard.BackButton("sessions"))

	if err := hc.EditMessage(text, kb.Build()); err != nil {
		common.HandleError(hc, err, "view_session")
	}
}

func parseBookingID(data, prefix string) (uuid.UUID, error) {
	args, err := common.ParseArgs(data, prefix, 1)
	if err != nil {
		return uuid.Nil, err
	}
	return args.UUID(0)
}

// stripHTML убирает экранирование для текста кнопки
func stripHTML(s string) string {
	return strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&#34;", `"`, "&#39;", "'").Replace(s)
}
