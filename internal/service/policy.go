package service

import "time"

// Policy пороги окна бронирования.
// Нулевой горизонт означает отсутствие ограничения.
type Policy struct {
	LeadTime     time.Duration
	SelfLeadTime time.Duration
	Horizon      time.Duration
	SelfHorizon  time.Duration
	Location     *time.Location
}

// DefaultPolicy: 12 часов и неделя для студентов, 1 час без горизонта для своего расписания
func DefaultPolicy() Policy {
	return Policy{
		LeadTime:     12 * time.Hour,
		SelfLeadTime: time.Hour,
		Horizon:      7 * 24 * time.Hour,
		SelfHorizon:  0,
		Location:     time.Local,
	}
}

func (p Policy) lead(self bool) time.Duration {
	if self {
		return p.SelfLeadTime
	}
	return p.LeadTime
}

func (p Policy) horizon(self bool) time.Duration {
	if self {
		return p.SelfHorizon
	}
	return p.Horizon
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}

// isPast слот начинается не позже now+lead
func (p Policy) isPast(start, now time.Time, self bool) bool {
	return !start.After(now.Add(p.lead(self)))
}

// isBeyondHorizon слот заканчивается не раньше now+horizon
func (p Policy) isBeyondHorizon(end, now time.Time, self bool) bool {
	h := p.horizon(self)
	if h <= 0 {
		return false
	}
	return !end.Before(now.Add(h))
}
