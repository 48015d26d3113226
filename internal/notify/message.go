// Package notify доставляет уведомления о занятиях участникам и во внешние системы.
package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
)

// DefaultMeetURLBase адрес, к которому дописывается username учителя
const DefaultMeetURLBase = "https://meet.google.com/lookup/"

var weekdays = map[time.Weekday]string{
	time.Monday:    "Пн",
	time.Tuesday:   "Вт",
	time.Wednesday: "Ср",
	time.Thursday:  "Чт",
	time.Friday:    "Пт",
	time.Saturday:  "Сб",
	time.Sunday:    "Вс",
}

// MeetLink ссылка на онлайн-встречу. Пустая для очных занятий.
func MeetLink(base string, b model.Booking) string {
	if b.Location != model.LocationOnline || b.Teacher == nil || b.Teacher.Username == "" {
		return ""
	}
	if base == "" {
		base = DefaultMeetURLBase
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + b.Teacher.Username
}

// LocationName подпись места проведения
func LocationName(l model.Location) string {
	switch l {
	case model.LocationOnline:
		return "онлайн"
	case model.LocationOnsite:
		return "очно"
	default:
		return string(l)
	}
}

// Text собирает текст уведомления для получателя.
// Всё содержимое берётся из самого уведомления при каждом вызове.
func Text(n service.Notification, recipient *model.User, meetBase string) string {
	b := n.Booking

	var sb strings.Builder
	switch n.Kind {
	case service.NotificationCreated:
		sb.WriteString("📅 Новое занятие\n\n")
	case service.NotificationEdited:
		sb.WriteString("✏️ Занятие изменено\n\n")
	case service.NotificationCancelled:
		sb.WriteString("❌ Занятие отменено\n\n")
	default:
		sb.WriteString("ℹ️ Занятие\n\n")
	}

	if recipient != nil && recipient.ID == b.TeacherID {
		fmt.Fprintf(&sb, "🎓 Студент: %s\n", participantName(b.Student, b.StudentID))
	} else {
		fmt.Fprintf(&sb, "👩‍🏫 Учитель: %s\n", participantName(b.Teacher, b.TeacherID))
	}

	fmt.Fprintf(&sb, "🗓 Дата: %s %s\n", weekdays[b.Date.Weekday()], b.Date.Format("02.01.2006"))
	fmt.Fprintf(&sb, "⏰ Время: %s\n", b.TimeSlot().Label())
	fmt.Fprintf(&sb, "📍 Место: %s\n", LocationName(b.Location))

	if n.Topic != "" {
		fmt.Fprintf(&sb, "📝 Тема: %s\n", n.Topic)
	}

	if n.Kind != service.NotificationCancelled {
		if link := MeetLink(meetBase, b); link != "" {
			fmt.Fprintf(&sb, "🔗 Ссылка: %s\n", link)
		}
	}

	if n.Kind == service.NotificationCancelled && n.RequestedBy != nil {
		fmt.Fprintf(&sb, "\nОтменил: %s", participantName(n.RequestedBy, n.RequestedBy.ID))
	}

	return strings.TrimRight(sb.String(), "\n")
}

func participantName(u *model.User, id int64) string {
	if u == nil {
		return fmt.Sprintf("#%d", id)
	}
	name := u.DisplayName()
	if u.Username != "" && name != "@"+u.Username {
		name += " (@" + u.Username + ")"
	}
	return name
}
