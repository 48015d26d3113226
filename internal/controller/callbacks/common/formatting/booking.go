package formatting

import (
	"fmt"
	"html"
	"strings"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/notify"
)

// UserName имя пользователя для сообщений
func UserName(u *model.User) string {
	if u == nil {
		return "—"
	}
	name := u.DisplayName()
	if u.Username != "" && name != "@"+u.Username {
		name += " (@" + u.Username + ")"
	}
	return html.EscapeString(name)
}

// LocationIcon значок места проведения
func LocationIcon(l model.Location) string {
	if l == model.LocationOnline {
		return "💻"
	}
	return "🏫"
}

// BookingLine одна строка списка занятий
func BookingLine(b *model.Booking, withUser *model.User) string {
	line := fmt.Sprintf("%s %s %s",
		LocationIcon(b.Location), FormatDateWithWeekday(b.Date), b.TimeSlot().Label())
	if b.IsSelfSession() {
		return line + " · блок"
	}
	if withUser != nil {
		line += " · " + UserName(withUser)
	}
	return line
}

// BookingDetails карточка занятия для участника viewerID
func BookingDetails(b *model.Booking, viewerID int64, meetBase string) string {
	var sb strings.Builder

	sb.WriteString("📌 <b>Занятие</b>\n\n")
	fmt.Fprintf(&sb, "📅 %s\n", FormatDateWithWeekday(b.Date))
	fmt.Fprintf(&sb, "🕐 %s\n", FormatSlot(b.Slot))
	fmt.Fprintf(&sb, "%s %s\n", LocationIcon(b.Location), notify.LocationName(b.Location))

	switch {
	case b.IsSelfSession():
		sb.WriteString("🔒 Собственный блок\n")
	case b.TeacherID == viewerID:
		fmt.Fprintf(&sb, "👤 Ученик: %s\n", UserName(b.Student))
	default:
		fmt.Fprintf(&sb, "👨‍🏫 Учитель: %s\n", UserName(b.Teacher))
	}

	if b.Topic != "" {
		fmt.Fprintf(&sb, "📝 Тема: %s\n", html.EscapeString(b.Topic))
	}
	if link := notify.MeetLink(meetBase, *b); link != "" {
		fmt.Fprintf(&sb, "🔗 %s\n", link)
	}

	return sb.String()
}
