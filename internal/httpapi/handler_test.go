package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/httpapi"
	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/repository/sqlitestore"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, service.Notification) error { return nil }

type apiFixture struct {
	router  http.Handler
	users   *service.UserService
	teacher *model.User
	student *model.User
}

// Сейчас среда 5 марта 2025, 09:00 UTC
func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	ctx := context.Background()
	store, err := sqlitestore.Open(ctx, filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := zap.NewNop()
	clock := service.FixedClock(time.Date(2025, time.March, 5, 9, 0, 0, 0, time.UTC))
	policy := service.DefaultPolicy()
	policy.Location = time.UTC
	users := service.NewUserService(store.Users(), logger)

	services := httpapi.Services{
		Users:        users,
		Bookings:     service.NewBookingService(store, users, service.ParticipantGate{}, discardNotifier{}, clock, policy, logger),
		Teachers:     service.NewTeacherService(store, users, discardNotifier{}, clock, policy, logger),
		Availability: service.NewAvailabilityService(store, users, clock, policy, logger),
	}

	_, err = users.RegisterUser(ctx, 100, "anna", "Anna", "", "ru")
	require.NoError(t, err)
	teacher, err := users.MakeTeacher(ctx, 100)
	require.NoError(t, err)
	student, err := users.RegisterUser(ctx, 200, "boris", "Boris", "", "ru")
	require.NoError(t, err)

	return &apiFixture{
		router:  httpapi.NewRouter(httpapi.NewHandler(services, logger), logger),
		users:   users,
		teacher: teacher,
		student: student,
	}
}

func (f *apiFixture) do(t *testing.T, method, path string, actor *model.User, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if actor != nil {
		req.Header.Set(httpapi.UserHeader, strconv.FormatInt(actor.ID, 10))
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var resp struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Data
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) httpapi.ErrorResponse {
	t.Helper()

	var resp httpapi.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func (f *apiFixture) book(t *testing.T, actor *model.User, date, slot string) *model.Booking {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/api/bookings", actor, map[string]any{
		"teacher_id": f.teacher.ID,
		"date":       date,
		"slot":       slot,
		"topic":      "fractions",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeData[*model.Booking](t, rec)
}

func TestHealth(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequiresUserHeader(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/sessions", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	ghost := &model.User{ID: 9999}
	rec = f.do(t, http.MethodGet, "/api/sessions", ghost, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListTeachers(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/teachers", f.student, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	teachers := decodeData[[]*model.User](t, rec)
	require.Len(t, teachers, 1)
	assert.Equal(t, f.teacher.ID, teachers[0].ID)
}

func TestTeacherWeek(t *testing.T) {
	f := newAPIFixture(t)
	path := "/api/teachers/" + strconv.FormatInt(f.teacher.ID, 10) + "/week"

	rec := f.do(t, http.MethodGet, path, f.student, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	week := decodeData[httpapi.WeekResponse](t, rec)
	assert.Equal(t, "2025-03-03", week.Start)
	assert.False(t, week.SelfMode)
	require.Len(t, week.Days, 5)
	require.Len(t, week.Days[0].Slots, 16)
	assert.False(t, week.Days[2].Slots[15].Available, "wednesday afternoon is inside the lead time")
	assert.True(t, week.Days[3].Slots[2].Available)

	rec = f.do(t, http.MethodGet, path+"?offset=-1", f.student, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, path+"?offset=x", f.student, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/teachers/"+strconv.FormatInt(f.student.ID, 10)+"/week", f.student, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateBooking(t *testing.T) {
	f := newAPIFixture(t)

	b := f.book(t, f.student, "2025-03-06", "C")
	assert.Equal(t, f.student.ID, b.StudentID)
	assert.Equal(t, model.LocationOnsite, b.Location)
	assert.Equal(t, "fractions", b.Topic)

	rec := f.do(t, http.MethodPost, "/api/bookings", f.student, map[string]any{
		"teacher_id": f.teacher.ID,
		"date":       "2025-03-06",
		"slot":       "C",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateBookingErrors(t *testing.T) {
	f := newAPIFixture(t)

	tests := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{
			name:   "past slot",
			body:   map[string]any{"teacher_id": f.teacher.ID, "date": "2025-03-05", "slot": "P"},
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "not a teacher",
			body:   map[string]any{"teacher_id": f.student.ID, "date": "2025-03-06", "slot": "C"},
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "unknown slot",
			body:   map[string]any{"teacher_id": f.teacher.ID, "date": "2025-03-06", "slot": "Z"},
			status: http.StatusBadRequest,
		},
		{
			name:   "bad date",
			body:   map[string]any{"teacher_id": f.teacher.ID, "date": "06.03.2025", "slot": "C"},
			status: http.StatusBadRequest,
		},
		{
			name:   "bad location",
			body:   map[string]any{"teacher_id": f.teacher.ID, "date": "2025-03-06", "slot": "C", "location": "moon"},
			status: http.StatusBadRequest,
		},
		{
			name:   "topic too long",
			body:   map[string]any{"teacher_id": f.teacher.ID, "date": "2025-03-06", "slot": "C", "topic": strings.Repeat("x", 201)},
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/bookings", f.student, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.NotEmpty(t, errorOf(t, rec).Error)
		})
	}
}

func TestCreateBookingInvalidBody(t *testing.T) {
	f := newAPIFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader("{"))
	req.Header.Set(httpapi.UserHeader, strconv.FormatInt(f.student.ID, 10))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", errorOf(t, rec).Error)
}

func TestBookingLifecycle(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()
	outsider, err := f.users.RegisterUser(ctx, 300, "carl", "Carl", "", "ru")
	require.NoError(t, err)

	b := f.book(t, f.student, "2025-03-06", "D")
	path := "/api/bookings/" + b.ID.String()

	rec := f.do(t, http.MethodGet, path, f.teacher, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, path, outsider, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPatch, path, f.student, map[string]any{"location": "online"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.LocationOnline, decodeData[*model.Booking](t, rec).Location)

	rec = f.do(t, http.MethodPatch, path, outsider, map[string]any{"location": "onsite"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/sessions", f.teacher, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sessions := decodeData[map[string][]*model.Booking](t, rec)
	assert.Len(t, sessions["as_teacher"], 1)
	assert.Empty(t, sessions["as_student"])

	rec = f.do(t, http.MethodDelete, path, outsider, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodDelete, path, f.teacher, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, path, f.student, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/bookings/not-a-uuid", f.student, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBlockAndUnblock(t *testing.T) {
	f := newAPIFixture(t)
	displaced := f.book(t, f.student, "2025-03-07", "B")

	rec := f.do(t, http.MethodPut, "/api/blocks", f.student, map[string]any{
		"teacher_id": f.teacher.ID, "date": "2025-03-07", "range": "morning",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPut, "/api/blocks", f.teacher, map[string]any{"date": "2025-03-07", "range": "lunch"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPut, "/api/blocks", f.teacher, map[string]any{"date": "2025-03-04", "range": "morning"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(t, http.MethodPut, "/api/blocks", f.teacher, map[string]any{"date": "2025-03-07", "range": "morning"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decodeData[httpapi.BlockResponse](t, rec)
	assert.Equal(t, "morning", result.Range)
	require.Len(t, result.Displaced, 1)
	assert.Equal(t, displaced.ID, result.Displaced[0].ID)

	rec = f.do(t, http.MethodPut, "/api/blocks", f.teacher, map[string]any{"date": "2025-03-07", "range": "morning"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeData[httpapi.BlockResponse](t, rec).Displaced)

	rec = f.do(t, http.MethodDelete, "/api/blocks", f.teacher, map[string]any{"date": "2025-03-07", "range": "morning"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, decodeData[httpapi.UnblockResponse](t, rec).Removed)
}

func TestExportSessions(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/sessions/export", f.teacher, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "student,teacher,date,timeblock,location\n", rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/sessions/export", f.student, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
