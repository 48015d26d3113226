package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository/sqlitestore"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingNotifier запоминает уведомления и может падать по команде
type recordingNotifier struct {
	mu   sync.Mutex
	sent []service.Notification
	fail bool
}

func (n *recordingNotifier) Notify(_ context.Context, msg service.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.fail {
		return errors.New("telegram is down")
	}
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNotifier) all() []service.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]service.Notification(nil), n.sent...)
}

type fixture struct {
	store    *sqlitestore.Store
	users    *service.UserService
	bookings *service.BookingService
	teachers *service.TeacherService
	weeks    *service.AvailabilityService
	notifier *recordingNotifier
	now      time.Time
}

// now: среда 5 марта 2025, 09:00 UTC
func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	store, err := sqlitestore.Open(ctx, filepath.Join(t.TempDir(), "bookings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := zap.NewNop()
	now := at(2025, time.March, 5, 9, 0)
	clock := service.FixedClock(now)
	policy := utcPolicy()
	notifier := &recordingNotifier{}
	users := service.NewUserService(store.Users(), logger)

	return &fixture{
		store:    store,
		users:    users,
		bookings: service.NewBookingService(store, users, service.ParticipantGate{}, notifier, clock, policy, logger),
		teachers: service.NewTeacherService(store, users, notifier, clock, policy, logger),
		weeks:    service.NewAvailabilityService(store, users, clock, policy, logger),
		notifier: notifier,
		now:      now,
	}
}

func (f *fixture) user(t *testing.T, telegramID int64, username string) *model.User {
	t.Helper()

	u, err := f.users.RegisterUser(context.Background(), telegramID, username, username, "", "ru")
	require.NoError(t, err)
	return u
}

func (f *fixture) teacher(t *testing.T, telegramID int64, username string) *model.User {
	t.Helper()

	f.user(t, telegramID, username)
	u, err := f.users.MakeTeacher(context.Background(), telegramID)
	require.NoError(t, err)
	return u
}
