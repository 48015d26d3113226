package service

import "time"

// Clock источник текущего времени
type Clock interface {
	Now() time.Time
}

// ClockFunc адаптер функции к Clock
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock возвращает реальное время
func SystemClock() Clock {
	return ClockFunc(time.Now)
}

// FixedClock всегда возвращает один и тот же момент
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}
