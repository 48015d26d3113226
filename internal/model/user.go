package model

import (
	"strings"
	"time"
)

// RoleTeacher роль, дающая право вести занятия
const RoleTeacher = "teacher"

type User struct {
	ID           int64     `json:"id"`
	TelegramID   int64     `json:"telegram_id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	LanguageCode string    `json:"language_code"`
	IsTeacher    bool      `json:"is_teacher"`
	CreatedAt    time.Time `json:"created_at"`
}

// HasRole проверяет наличие роли у пользователя
func (u *User) HasRole(role string) bool {
	switch role {
	case RoleTeacher:
		return u.IsTeacher
	default:
		return false
	}
}

// DisplayName имя для показа в сообщениях
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return "user"
}
