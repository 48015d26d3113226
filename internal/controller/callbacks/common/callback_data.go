package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/timegrid"
	"github.com/google/uuid"
)

// Префиксы callback data. Аргументы разделяются двоеточием,
// даты передаются как 20060102, чтобы уложиться в 64 байта Telegram.
const (
	PrefixTeacher       = "teacher:"        // teacher:<teacherID>
	PrefixWeek          = "week:"           // week:<teacherID>:<offset>
	PrefixDay           = "day:"            // day:<teacherID>:<offset>:<date>
	PrefixSlot          = "slot:"           // slot:<teacherID>:<date>:<code>
	PrefixLocation      = "loc:"            // loc:<teacherID>:<date>:<code>:<location>
	PrefixSession       = "session:"        // session:<bookingID>
	PrefixToggle        = "toggle:"         // toggle:<bookingID>
	PrefixCancel        = "cancel:"         // cancel:<bookingID>
	PrefixConfirmCancel = "confirm_cancel:" // confirm_cancel:<bookingID>
	PrefixMyWeek        = "myweek:"         // myweek:<offset>
	PrefixMyDay         = "myday:"          // myday:<offset>:<date>
	PrefixBlock         = "block:"          // block:<date>:<range>
	PrefixUnblock       = "unblock:"        // unblock:<date>:<range>
)

const dateLayout = "20060102"

// Args аргументы callback data после префикса
type Args struct {
	data  string
	parts []string
}

// ParseArgs отрезает префикс и проверяет число аргументов
func ParseArgs(data, prefix string, n int) (Args, error) {
	rest, ok := strings.CutPrefix(data, prefix)
	if !ok {
		return Args{}, fmt.Errorf("%w: %q has no prefix %q", ErrInvalidFormat, data, prefix)
	}
	parts := strings.Split(rest, ":")
	if len(parts) != n {
		return Args{}, fmt.Errorf("%w: %q expects %d args", ErrInvalidFormat, data, n)
	}
	return Args{data: data, parts: parts}, nil
}

func (a Args) Int64(i int) (int64, error) {
	v, err := strconv.ParseInt(a.parts[i], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidFormat, a.data, err)
	}
	return v, nil
}

func (a Args) Int(i int) (int, error) {
	v, err := strconv.Atoi(a.parts[i])
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidFormat, a.data, err)
	}
	return v, nil
}

func (a Args) Date(i int) (time.Time, error) {
	t, err := time.Parse(dateLayout, a.parts[i])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalidFormat, a.data, err)
	}
	return timegrid.Date(t.Year(), t.Month(), t.Day()), nil
}

func (a Args) UUID(i int) (uuid.UUID, error) {
	id, err := uuid.Parse(a.parts[i])
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q: %v", ErrInvalidFormat, a.data, err)
	}
	return id, nil
}

func (a Args) Slot(i int) (timegrid.Code, error) {
	return timegrid.ParseCode(a.parts[i])
}

func (a Args) Range(i int) (timegrid.RangeName, error) {
	name := timegrid.RangeName(a.parts[i])
	if _, err := timegrid.Aggregate(name); err != nil {
		return "", err
	}
	return name, nil
}

func (a Args) Location(i int) (model.Location, error) {
	loc := model.Location(a.parts[i])
	if !loc.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, a.data)
	}
	return loc, nil
}

// FormatDate дата для callback data
func FormatDate(date time.Time) string {
	return date.Format(dateLayout)
}

func TeacherData(teacherID int64) string {
	return fmt.Sprintf("%s%d", PrefixTeacher, teacherID)
}

func WeekData(teacherID int64, offset int) string {
	return fmt.Sprintf("%s%d:%d", PrefixWeek, teacherID, offset)
}

func DayData(teacherID int64, offset int, date time.Time) string {
	return fmt.Sprintf("%s%d:%d:%s", PrefixDay, teacherID, offset, FormatDate(date))
}

func SlotData(teacherID int64, date time.Time, code timegrid.Code) string {
	return fmt.Sprintf("%s%d:%s:%s", PrefixSlot, teacherID, FormatDate(date), code)
}

func LocationData(teacherID int64, date time.Time, code timegrid.Code, loc model.Location) string {
	return fmt.Sprintf("%s%d:%s:%s:%s", PrefixLocation, teacherID, FormatDate(date), code, loc)
}

func SessionData(prefix string, id uuid.UUID) string {
	return prefix + id.String()
}

func MyWeekData(offset int) string {
	return fmt.Sprintf("%s%d", PrefixMyWeek, offset)
}

func MyDayData(offset int, date time.Time) string {
	return fmt.Sprintf("%s%d:%s", PrefixMyDay, offset, FormatDate(date))
}

func RangeData(prefix string, date time.Time, name timegrid.RangeName) string {
	return fmt.Sprintf("%s%s:%s", prefix, FormatDate(date), name)
}
