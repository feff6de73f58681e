package wizard

import (
	"time"

	"github.com/wolfman30/booking-wizard/internal/catalog"
)

// Step is the screen the wizard is currently showing.
type Step int

const (
	StepSelectService Step = iota + 1
	StepSelectDateTime
	StepContact
	StepConfirmed
)

// Steps lists every step in display order.
var Steps = []Step{StepSelectService, StepSelectDateTime, StepContact, StepConfirmed}

func (s Step) String() string {
	switch s {
	case StepSelectService:
		return "select_service"
	case StepSelectDateTime:
		return "select_datetime"
	case StepContact:
		return "contact"
	case StepConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

// Title is the heading shown for the step.
func (s Step) Title() string {
	switch s {
	case StepSelectService:
		return "Select a Service"
	case StepSelectDateTime:
		return "Select Date & Time"
	case StepContact:
		return "Your Information"
	case StepConfirmed:
		return "Booking Confirmed!"
	default:
		return ""
	}
}

// Draft is the appointment being assembled. Nil pointers mean "not chosen yet".
type Draft struct {
	Service *catalog.Service `json:"service,omitempty"`
	Date    *time.Time       `json:"date,omitempty"`
	Time    *string          `json:"time,omitempty"`
	Name    string           `json:"name"`
	Email   string           `json:"email"`
	Phone   string           `json:"phone"`
}

// Clone returns a deep copy so the reducer never shares pointers between states.
func (d Draft) Clone() Draft {
	out := d
	if d.Service != nil {
		svc := *d.Service
		out.Service = &svc
	}
	if d.Date != nil {
		date := *d.Date
		out.Date = &date
	}
	if d.Time != nil {
		t := *d.Time
		out.Time = &t
	}
	return out
}

// IsEmpty reports whether nothing has been captured yet.
func (d Draft) IsEmpty() bool {
	return d.Service == nil && d.Date == nil && d.Time == nil &&
		d.Name == "" && d.Email == "" && d.Phone == ""
}

// Scheduled reports whether service, date and time are all set.
func (d Draft) Scheduled() bool {
	return d.Service != nil && d.Date != nil && d.Time != nil
}

// State is one visitor's wizard instance.
type State struct {
	Step        Step      `json:"step"`
	Draft       Draft     `json:"draft"`
	Highlighted time.Time `json:"highlighted_date"`
}

func (s State) clone() State {
	out := s
	out.Draft = s.Draft.Clone()
	return out
}
