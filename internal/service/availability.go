package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/timegrid"
	"go.uber.org/zap"
)

// DaysInWeek рабочие дни Пн-Пт
const DaysInWeek = 5

// WeekQuery параметры расчёта недели
type WeekQuery struct {
	StudentID  int64
	TeacherID  int64
	WeekOffset int
	Now        time.Time
}

// SelfMode учитель смотрит собственное расписание
func (q WeekQuery) SelfMode() bool {
	return q.StudentID == q.TeacherID
}

// SlotAvailability состояние одного слота
type SlotAvailability struct {
	Slot      timegrid.Slot
	Available bool
	// Booking занятие, из-за которого слот занят: своё занятие учителя в режиме
	// собственного расписания, иначе занятие студента
	Booking *model.Booking
}

// RangeAvailability можно ли заблокировать диапазон целиком
type RangeAvailability struct {
	Range     timegrid.Range
	Available bool
}

type DayAvailability struct {
	Date   time.Time
	Slots  []SlotAvailability
	Ranges []RangeAvailability // только в режиме собственного расписания
}

type Week struct {
	Start    time.Time
	SelfMode bool
	Days     []DayAvailability
}

// WeekStart понедельник недели с учётом смещения.
// В субботу и воскресенье нулевая неделя это следующая рабочая неделя.
func WeekStart(now time.Time, loc *time.Location, offset int) time.Time {
	today := timegrid.DateOf(now, loc)

	var monday time.Time
	switch today.Weekday() {
	case time.Saturday:
		monday = today.AddDate(0, 0, 2)
	case time.Sunday:
		monday = today.AddDate(0, 0, 1)
	default:
		monday = today.AddDate(0, 0, -int(today.Weekday()-time.Monday))
	}

	return monday.AddDate(0, 0, 7*offset)
}

// BuildWeek рассчитывает доступность по снимку бронирований.
// Чистая функция: при одинаковых bookings и q.Now результат одинаков.
func BuildWeek(bookings []*model.Booking, q WeekQuery, p Policy) (*Week, error) {
	if q.WeekOffset < 0 {
		return nil, ErrInvalidWeekOffset
	}

	loc := p.location()
	self := q.SelfMode()
	start := WeekStart(q.Now, loc, q.WeekOffset)
	index := indexBookings(bookings)

	week := &Week{
		Start:    start,
		SelfMode: self,
		Days:     make([]DayAvailability, 0, DaysInWeek),
	}

	for i := 0; i < DaysInWeek; i++ {
		date := start.AddDate(0, 0, i)
		day := DayAvailability{Date: date}

		for _, slot := range timegrid.Slots() {
			var byStudent, byTeacher *model.Booking
			for _, b := range index[slotKey(date, slot.Code)] {
				if byStudent == nil && b.StudentID == q.StudentID {
					byStudent = b
				}
				if byTeacher == nil && b.TeacherID == q.TeacherID {
					byTeacher = b
				}
			}

			past := p.isPast(slot.StartAt(date, loc), q.Now, self)
			beyond := p.isBeyondHorizon(slot.EndAt(date, loc), q.Now, self)

			occupying := byStudent
			if self {
				occupying = byTeacher
			}

			day.Slots = append(day.Slots, SlotAvailability{
				Slot:      slot,
				Available: !(past || beyond || byStudent != nil || byTeacher != nil),
				Booking:   occupying,
			})
		}

		if self {
			for _, r := range timegrid.Aggregates() {
				first, last := r.Slots[0], r.Slots[len(r.Slots)-1]
				past := p.isPast(first.StartAt(date, loc), q.Now, true)
				beyond := p.isBeyondHorizon(last.EndAt(date, loc), q.Now, true)

				day.Ranges = append(day.Ranges, RangeAvailability{
					Range:     r,
					Available: !(past || beyond || hasStudentBooking(index, date, r, q.TeacherID)),
				})
			}
		}

		week.Days = append(week.Days, day)
	}

	return week, nil
}

// hasStudentBooking у учителя есть занятие со студентом внутри диапазона
func hasStudentBooking(index map[string][]*model.Booking, date time.Time, r timegrid.Range, teacherID int64) bool {
	for _, slot := range r.Slots {
		for _, b := range index[slotKey(date, slot.Code)] {
			if b.TeacherID == teacherID && b.StudentID != teacherID {
				return true
			}
		}
	}
	return false
}

func indexBookings(bookings []*model.Booking) map[string][]*model.Booking {
	index := make(map[string][]*model.Booking, len(bookings))
	for _, b := range bookings {
		key := slotKey(b.Date, b.Slot)
		index[key] = append(index[key], b)
	}
	return index
}

func slotKey(date time.Time, code timegrid.Code) string {
	return date.Format(time.DateOnly) + "/" + string(code)
}

// AvailabilityService строит недельную сетку по данным хранилища
type AvailabilityService struct {
	bookings BookingRepository
	users    UserDirectory
	clock    Clock
	policy   Policy
	logger   *zap.Logger
}

func NewAvailabilityService(
	bookings BookingRepository,
	users UserDirectory,
	clock Clock,
	policy Policy,
	logger *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		bookings: bookings,
		users:    users,
		clock:    clock,
		policy:   policy,
		logger:   logger,
	}
}

// ComputeWeek неделя Пн-Пт для пары студент/учитель.
// Наличие и роль учителя проверяет вызывающий, см. TeacherWeek.
func (s *AvailabilityService) ComputeWeek(ctx context.Context, studentID, teacherID int64, weekOffset int) (*Week, error) {
	if weekOffset < 0 {
		return nil, ErrInvalidWeekOffset
	}

	now := s.clock.Now()
	start := WeekStart(now, s.policy.location(), weekOffset)
	end := start.AddDate(0, 0, DaysInWeek-1)

	persons := []int64{studentID}
	if teacherID != studentID {
		persons = append(persons, teacherID)
	}

	bookings, err := s.bookings.ListInvolving(ctx, persons, start, end)
	if err != nil {
		return nil, fmt.Errorf("list week bookings: %w", err)
	}

	return BuildWeek(bookings, WeekQuery{
		StudentID:  studentID,
		TeacherID:  teacherID,
		WeekOffset: weekOffset,
		Now:        now,
	}, s.policy)
}

// TeacherWeek проверяет учителя и считает неделю
func (s *AvailabilityService) TeacherWeek(ctx context.Context, studentID, teacherID int64, weekOffset int) (*Week, error) {
	teacher, err := s.users.Resolve(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if !teacher.HasRole(model.RoleTeacher) {
		return nil, ErrInvalidTeacher
	}

	return s.ComputeWeek(ctx, studentID, teacherID, weekOffset)
}

// Policy пороги, с которыми работает сервис
func (s *AvailabilityService) Policy() Policy {
	return s.policy
}

// Now текущее время часов сервиса
func (s *AvailabilityService) Now() time.Time {
	return s.clock.Now()
}
