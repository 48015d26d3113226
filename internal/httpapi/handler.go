package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/Freeeeeet/tutor_scheduler/internal/timegrid"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// UserHeader заголовок с внутренним ID вызывающего пользователя
const UserHeader = "X-User-ID"

var (
	errUnauthenticated = errors.New("missing or invalid " + UserHeader + " header")
	errBadParam        = errors.New("invalid parameter")
)

type Services struct {
	Users        *service.UserService
	Bookings     *service.BookingService
	Teachers     *service.TeacherService
	Availability *service.AvailabilityService
}

type Handler struct {
	services  Services
	validator *RequestValidator
	log       *zap.Logger
}

func NewHandler(services Services, log *zap.Logger) *Handler {
	v, err := NewRequestValidator()
	if err != nil {
		log.Fatal("Failed to initialize request validator", zap.Error(err))
	}

	return &Handler{
		services:  services,
		validator: v,
		log:       log,
	}
}

// BlockResponse итог блокировки диапазона
type BlockResponse struct {
	Date      string           `json:"date"`
	Range     string           `json:"range"`
	Displaced []*model.Booking `json:"displaced"`
}

type UnblockResponse struct {
	Removed int `json:"removed"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"}); err != nil {
		h.log.Error("failed to write JSON response", zap.String("handler", "Health"), zap.Error(err))
	}
}

func (h *Handler) ListTeachers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	teachers, err := h.services.Users.ListTeachers(r.Context())
	if err != nil {
		h.fail(w, r, "ListTeachers", err)
		return
	}
	h.success(w, "ListTeachers", teachers)
}

func (h *Handler) TeacherWeek(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, "TeacherWeek", err)
		return
	}

	teacherID, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		h.fail(w, r, "TeacherWeek", fmt.Errorf("%w: teacher id", errBadParam))
		return
	}

	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if offset, err = strconv.Atoi(raw); err != nil {
			h.fail(w, r, "TeacherWeek", fmt.Errorf("%w: offset %q", errBadParam, raw))
			return
		}
	}

	week, err := h.services.Availability.TeacherWeek(r.Context(), actor.ID, teacherID, offset)
	if err != nil {
		h.fail(w, r, "TeacherWeek", err)
		return
	}
	h.success(w, "TeacherWeek", newWeekResponse(week))
}

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, "CreateBooking", err)
		return
	}

	var req CreateBookingRequest
	if !h.decode(w, r, "CreateBooking", &req) {
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.fail(w, r, "CreateBooking", err)
		return
	}

	cmd, err := req.newBooking(actor.ID)
	if err != nil {
		h.fail(w, r, "CreateBooking", err)
		return
	}

	booking, err := h.services.Bookings.Create(r.Context(), cmd)
	if err != nil {
		h.fail(w, r, "CreateBooking", err)
		return
	}

	if err := WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write JSON response", zap.String("handler", "CreateBooking"), zap.Error(err))
	}
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, id, err := h.actorAndBooking(r, ps)
	if err != nil {
		h.fail(w, r, "GetBooking", err)
		return
	}

	booking, err := h.services.Bookings.Get(r.Context(), id, actor.ID)
	if err != nil {
		h.fail(w, r, "GetBooking", err)
		return
	}
	h.success(w, "GetBooking", booking)
}

func (h *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, id, err := h.actorAndBooking(r, ps)
	if err != nil {
		h.fail(w, r, "UpdateBooking", err)
		return
	}

	var req UpdateBookingRequest
	if !h.decode(w, r, "UpdateBooking", &req) {
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.fail(w, r, "UpdateBooking", err)
		return
	}

	var patch service.BookingPatch
	if req.Location != nil {
		loc := model.Location(*req.Location)
		patch.Location = &loc
	}

	booking, err := h.services.Bookings.Update(r.Context(), id, actor.ID, patch)
	if err != nil {
		h.fail(w, r, "UpdateBooking", err)
		return
	}
	h.success(w, "UpdateBooking", booking)
}

func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, id, err := h.actorAndBooking(r, ps)
	if err != nil {
		h.fail(w, r, "CancelBooking", err)
		return
	}

	if err := h.services.Bookings.Cancel(r.Context(), id, actor.ID); err != nil {
		h.fail(w, r, "CancelBooking", err)
		return
	}
	WriteNoContent(w)
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, "ListSessions", err)
		return
	}

	sessions, err := h.services.Bookings.ListForUser(r.Context(), actor.ID)
	if err != nil {
		h.fail(w, r, "ListSessions", err)
		return
	}
	h.success(w, "ListSessions", map[string][]*model.Booking{
		"as_student": nonNil(sessions.AsStudent),
		"as_teacher": nonNil(sessions.AsTeacher),
	})
}

func (h *Handler) Block(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, teacherID, date, name, ok := h.blockRequest(w, r, "Block")
	if !ok {
		return
	}

	result, err := h.services.Teachers.Reconcile(r.Context(), teacherID, date, name, actor.ID)
	if err != nil {
		h.fail(w, r, "Block", err)
		return
	}

	h.success(w, "Block", BlockResponse{
		Date:      result.Date.Format(time.DateOnly),
		Range:     string(result.Range.Name),
		Displaced: nonNil(result.Displaced),
	})
}

func (h *Handler) Unblock(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, teacherID, date, name, ok := h.blockRequest(w, r, "Unblock")
	if !ok {
		return
	}

	removed, err := h.services.Teachers.Unblock(r.Context(), teacherID, date, name, actor.ID)
	if err != nil {
		h.fail(w, r, "Unblock", err)
		return
	}
	h.success(w, "Unblock", UnblockResponse{Removed: removed})
}

// ExportSessions CSV прошедших занятий учителя
func (h *Handler) ExportSessions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, "ExportSessions", err)
		return
	}

	var buf bytes.Buffer
	if _, err := h.services.Teachers.ExportPastSessions(r.Context(), actor.ID, actor.ID, &buf); err != nil {
		h.fail(w, r, "ExportSessions", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="sessions_%d.csv"`, actor.ID))
	if _, err := buf.WriteTo(w); err != nil {
		h.log.Error("failed to write CSV response", zap.String("handler", "ExportSessions"), zap.Error(err))
	}
}

func (h *Handler) blockRequest(w http.ResponseWriter, r *http.Request, handler string) (*model.User, int64, time.Time, timegrid.RangeName, bool) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, handler, err)
		return nil, 0, time.Time{}, "", false
	}

	var req BlockRequest
	if !h.decode(w, r, handler, &req) {
		return nil, 0, time.Time{}, "", false
	}
	if err := h.validator.Validate(&req); err != nil {
		h.fail(w, r, handler, err)
		return nil, 0, time.Time{}, "", false
	}

	date, err := timegrid.ParseDate(req.Date)
	if err != nil {
		h.fail(w, r, handler, fmt.Errorf("%w: date", errBadParam))
		return nil, 0, time.Time{}, "", false
	}

	teacherID := req.TeacherID
	if teacherID == 0 {
		teacherID = actor.ID
	}
	return actor, teacherID, date, timegrid.RangeName(req.Range), true
}

func (h *Handler) actor(r *http.Request) (*model.User, error) {
	id, err := strconv.ParseInt(r.Header.Get(UserHeader), 10, 64)
	if err != nil || id <= 0 {
		return nil, errUnauthenticated
	}

	user, err := h.services.Users.Resolve(r.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		return nil, errUnauthenticated
	}
	return user, err
}

func (h *Handler) actorAndBooking(r *http.Request, ps httprouter.Params) (*model.User, uuid.UUID, error) {
	actor, err := h.actor(r)
	if err != nil {
		return nil, uuid.Nil, err
	}
	id, err := uuid.Parse(ps.ByName("id"))
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%w: booking id", errBadParam)
	}
	return actor, id, nil
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, handler string, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if writeErr := WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"}); writeErr != nil {
			h.log.Error("failed to write JSON response", zap.String("handler", handler), zap.Error(writeErr))
		}
		return false
	}
	return true
}

func (h *Handler) success(w http.ResponseWriter, handler string, data any) {
	if err := WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write JSON response", zap.String("handler", handler), zap.Error(err))
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, handler string, err error) {
	status, _ := statusOf(err)
	switch {
	case status >= http.StatusInternalServerError:
		h.log.Error("Request failed",
			zap.String("handler", handler),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	default:
		h.log.Debug("Request rejected",
			zap.String("handler", handler),
			zap.Int("status", status),
			zap.Error(err))
	}

	if writeErr := WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write JSON response", zap.String("handler", handler), zap.Error(writeErr))
	}
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/healthz", h.Health)

	router.GET("/api/teachers", h.ListTeachers)
	router.GET("/api/teachers/:id/week", h.TeacherWeek)

	router.POST("/api/bookings", h.CreateBooking)
	router.GET("/api/bookings/:id", h.GetBooking)
	router.PATCH("/api/bookings/:id", h.UpdateBooking)
	router.DELETE("/api/bookings/:id", h.CancelBooking)

	router.GET("/api/sessions", h.ListSessions)
	router.GET("/api/sessions/export", h.ExportSessions)

	router.PUT("/api/blocks", h.Block)
	router.DELETE("/api/blocks", h.Unblock)
}

func nonNil(list []*model.Booking) []*model.Booking {
	if list == nil {
		return []*model.Booking{}
	}
	return list
}
