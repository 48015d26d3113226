package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/timegrid"
	"go.uber.org/zap"
)

var exportHeader = []string{"student", "teacher", "date", "timeblock", "location"}

// ExportPastSessions пишет CSV с прошедшими занятиями учителя
func (s *TeacherService) ExportPastSessions(ctx context.Context, teacherID, requestedBy int64, w io.Writer) (int, error) {
	if requestedBy != teacherID {
		return 0, ErrPermission
	}

	teacher, err := s.users.Resolve(ctx, teacherID)
	if err != nil {
		return 0, err
	}
	if !teacher.HasRole(model.RoleTeacher) {
		return 0, ErrInvalidTeacher
	}

	today := timegrid.DateOf(s.clock.Now(), s.policy.location())
	bookings, err := s.store.ListByTeacherBefore(ctx, teacherID, today)
	if err != nil {
		return 0, fmt.Errorf("list past bookings: %w", err)
	}
	sortBookings(bookings)

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}

	for _, b := range bookings {
		b.Teacher = teacher
		attachParticipants(ctx, s.users, b)

		record := []string{
			exportName(b.Student, b.StudentID),
			exportName(b.Teacher, b.TeacherID),
			b.Date.Format("02/01/2006"),
			b.TimeSlot().Label(),
			string(b.Location),
		}
		if err := cw.Write(record); err != nil {
			return 0, fmt.Errorf("write csv record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flush csv: %w", err)
	}

	s.logger.Info("Past sessions exported",
		zap.Int64("teacher_id", teacherID),
		zap.Int("count", len(bookings)),
	)

	return len(bookings), nil
}

func exportName(u *model.User, id int64) string {
	if u == nil {
		return fmt.Sprintf("#%d", id)
	}
	if u.Username != "" {
		return u.Username
	}
	return u.DisplayName()
}
