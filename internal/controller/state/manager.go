package state

import (
	"sync"
	"time"
)

// Manager управляет состояниями пользователей
type Manager struct {
	mu     sync.RWMutex
	states map[int64]*UserData // telegramID -> UserData
	now    func() time.Time
}

// NewManager создаёт новый менеджер состояний
func NewManager() *Manager {
	return &Manager{
		states: make(map[int64]*UserData),
		now:    time.Now,
	}
}

// GetState получает текущее состояние пользователя
func (sm *Manager) GetState(telegramID int64) UserState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if userData, exists := sm.states[telegramID]; exists {
		return userData.State
	}
	return StateNone
}

// StartDraft запоминает выбранный слот и ждёт ввода темы
func (sm *Manager) StartDraft(telegramID int64, draft BookingDraft) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.states[telegramID] = &UserData{
		State:     StateEnterTopic,
		Draft:     &draft,
		UpdatedAt: sm.now(),
	}
}

// TakeDraft забирает черновик и сбрасывает состояние.
// Повторный вызов вернёт false, поэтому двойное нажатие не создаст два занятия.
func (sm *Manager) TakeDraft(telegramID int64) (BookingDraft, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	userData, exists := sm.states[telegramID]
	if !exists || userData.Draft == nil {
		return BookingDraft{}, false
	}

	delete(sm.states, telegramID)
	return *userData.Draft, true
}

// ClearState очищает состояние и данные пользователя
func (sm *Manager) ClearState(telegramID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.states, telegramID)
}

// Expire удаляет диалоги, брошенные дольше maxAge назад
func (sm *Manager) Expire(maxAge time.Duration) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	cutoff := sm.now().Add(-maxAge)
	removed := 0
	for id, userData := range sm.states {
		if userData.UpdatedAt.Before(cutoff) {
			delete(sm.states, id)
			removed++
		}
	}
	return removed
}
