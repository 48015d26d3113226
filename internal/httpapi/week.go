package httpapi

import (
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/model"
	"github.com/Freeeeeet/tutor_scheduler/internal/service"
)

type SlotResponse struct {
	Code      string         `json:"code"`
	Label     string         `json:"label"`
	Available bool           `json:"available"`
	Booking   *model.Booking `json:"booking,omitempty"`
}

type RangeResponse struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

type DayResponse struct {
	Date   string          `json:"date"`
	Slots  []SlotResponse  `json:"slots"`
	Ranges []RangeResponse `json:"ranges,omitempty"`
}

type WeekResponse struct {
	Start    string        `json:"start"`
	SelfMode bool          `json:"self_mode"`
	Days     []DayResponse `json:"days"`
}

func newWeekResponse(week *service.Week) WeekResponse {
	resp := WeekResponse{
		Start:    week.Start.Format(time.DateOnly),
		SelfMode: week.SelfMode,
		Days:     make([]DayResponse, 0, len(week.Days)),
	}

	for _, day := range week.Days {
		d := DayResponse{
			Date:  day.Date.Format(time.DateOnly),
			Slots: make([]SlotResponse, 0, len(day.Slots)),
		}
		for _, s := range day.Slots {
			d.Slots = append(d.Slots, SlotResponse{
				Code:      string(s.Slot.Code),
				Label:     s.Slot.Label(),
				Available: s.Available,
				Booking:   s.Booking,
			})
		}
		for _, r := range day.Ranges {
			d.Ranges = append(d.Ranges, RangeResponse{Name: string(r.Range.Name), Available: r.Available})
		}
		resp.Days = append(resp.Days, d)
	}

	return resp
}
