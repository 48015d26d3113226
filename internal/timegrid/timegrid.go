// Package timegrid описывает фиксированную сетку получасовых слотов учебного дня.
package timegrid

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// SlotLength длительность одного слота
const SlotLength = 30 * time.Minute

// Code код слота от "A" до "P"
type Code string

// Slot один получасовой интервал дня
type Slot struct {
	Code  Code
	Start time.Duration // смещение от полуночи
}

// RangeName имя агрегированного диапазона слотов
type RangeName string

const (
	FullDay   RangeName = "full-day"
	Morning   RangeName = "morning"
	Afternoon RangeName = "afternoon"
)

var (
	ErrUnknownSlot  = errors.New("unknown slot code")
	ErrUnknownRange = errors.New("unknown slot range")
)

var grid = buildGrid()

func buildGrid() []Slot {
	slots := make([]Slot, 0, 16)
	start := 8*time.Hour + 30*time.Minute
	for c := 'A'; c <= 'P'; c++ {
		slots = append(slots, Slot{Code: Code(string(c)), Start: start})
		start += SlotLength
	}
	return slots
}

// Slots возвращает все слоты дня в порядке A..P
func Slots() []Slot {
	out := make([]Slot, len(grid))
	copy(out, grid)
	return out
}

// Lookup находит слот по коду
func Lookup(code Code) (Slot, bool) {
	for _, s := range grid {
		if s.Code == code {
			return s, true
		}
	}
	return Slot{}, false
}

// ParseCode разбирает код слота без учёта регистра
func ParseCode(raw string) (Code, error) {
	code := Code(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := Lookup(code); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSlot, raw)
	}
	return code, nil
}

// End конец слота как смещение от полуночи
func (s Slot) End() time.Duration {
	return s.Start + SlotLength
}

// Label возвращает подпись вида "08:30-09:00"
func (s Slot) Label() string {
	return clock(s.Start) + "-" + clock(s.End())
}

// StartAt момент начала слота в указанную дату
func (s Slot) StartAt(date time.Time, loc *time.Location) time.Time {
	return at(date, s.Start, loc)
}

// EndAt момент окончания слота в указанную дату
func (s Slot) EndAt(date time.Time, loc *time.Location) time.Time {
	return at(date, s.End(), loc)
}

// Range именованная группа подряд идущих слотов
type Range struct {
	Name  RangeName
	Slots []Slot
}

var ranges = []struct {
	name        RangeName
	first, last Code
}{
	{FullDay, "A", "P"},
	{Morning, "A", "G"},
	{Afternoon, "J", "P"},
}

// Aggregate разворачивает имя диапазона в набор слотов
func Aggregate(name RangeName) (Range, error) {
	for _, r := range ranges {
		if r.name == name {
			return Range{Name: name, Slots: between(r.first, r.last)}, nil
		}
	}
	return Range{}, fmt.Errorf("%w: %q", ErrUnknownRange, name)
}

// Aggregates возвращает все диапазоны: весь день, утро, после обеда
func Aggregates() []Range {
	out := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, Range{Name: r.name, Slots: between(r.first, r.last)})
	}
	return out
}

// Codes коды слотов диапазона
func (r Range) Codes() []Code {
	codes := make([]Code, len(r.Slots))
	for i, s := range r.Slots {
		codes[i] = s.Code
	}
	return codes
}

// Contains проверяет что слот входит в диапазон
func (r Range) Contains(code Code) bool {
	for _, s := range r.Slots {
		if s.Code == code {
			return true
		}
	}
	return false
}

// Label подпись диапазона по времени
func (r Range) Label() string {
	return clock(r.Slots[0].Start) + "-" + clock(r.Slots[len(r.Slots)-1].End())
}

func between(first, last Code) []Slot {
	var out []Slot
	in := false
	for _, s := range grid {
		if s.Code == first {
			in = true
		}
		if in {
			out = append(out, s)
		}
		if s.Code == last {
			break
		}
	}
	return out
}

// Date календарная дата, хранится как полночь UTC
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf календарная дата момента t в часовом поясе loc
func DateOf(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return Date(local.Year(), local.Month(), local.Day())
}

// ParseDate разбирает дату в формате 2006-01-02
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date: %w", err)
	}
	return Date(t.Year(), t.Month(), t.Day()), nil
}

func at(date time.Time, offset time.Duration, loc *time.Location) time.Time {
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	return midnight.Add(offset)
}

func clock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}
