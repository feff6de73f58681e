package wizard

import (
	"time"

	"github.com/wolfman30/booking-wizard/internal/catalog"
)

// Action is a user interface event applied to a wizard State.
type Action interface {
	// Kind is a stable label used in logs and metrics.
	Kind() string
}

// SelectService picks a catalog service on step 1.
type SelectService struct {
	ServiceID int
}

// SelectDate highlights a day on step 2 and records it on the draft.
type SelectDate struct {
	Date time.Time
}

// SelectTime picks a slot on step 2.
type SelectTime struct {
	Time string
}

// UpdateContact replaces one contact field on step 3.
type UpdateContact struct {
	Field ContactField
	Value string
}

// Submit confirms the booking on step 3.
type Submit struct{}

// Restart clears the wizard from the confirmation screen.
type Restart struct{}

func (SelectService) Kind() string { return "select_service" }
func (SelectDate) Kind() string    { return "select_date" }
func (SelectTime) Kind() string    { return "select_time" }
func (UpdateContact) Kind() string { return "update_contact" }
func (Submit) Kind() string        { return "submit" }
func (Restart) Kind() string       { return "restart" }

// Machine applies actions to wizard states. It holds no state of its own
// beyond the clock used to compute "today".
type Machine struct {
	loc *time.Location
	now func() time.Time
}

// NewMachine builds a Machine for the given zone. A nil now uses time.Now.
func NewMachine(loc *time.Location, now func() time.Time) *Machine {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Machine{loc: loc, now: now}
}

// Location is the zone used for calendar days.
func (m *Machine) Location() *time.Location {
	return m.loc
}

// Today is local midnight of the current day.
func (m *Machine) Today() time.Time {
	return Midnight(m.now(), m.loc)
}

// Start returns a fresh wizard on step 1 with today highlighted.
func (m *Machine) Start() State {
	return State{Step: StepSelectService, Highlighted: m.Today()}
}

// Apply returns the state that follows s after a. On error the returned
// state is s unchanged. s itself is never modified.
func (m *Machine) Apply(s State, a Action) (State, error) {
	next := s.clone()

	switch act := a.(type) {
	case SelectService:
		if s.Step != StepSelectService {
			return s, ErrStepNotActive
		}
		svc, ok := catalog.FindService(act.ServiceID)
		if !ok {
			return s, ErrUnknownService
		}
		next.Draft.Service = &svc
		next.Step = StepSelectDateTime

	case SelectDate:
		if s.Step != StepSelectDateTime {
			return s, ErrStepNotActive
		}
		today := m.Today()
		if !InWindow(act.Date, today) {
			return s, ErrDateOutsideWindow
		}
		day := Midnight(act.Date, m.loc)
		next.Draft.Date = &day
		next.Highlighted = day

	case SelectTime:
		if s.Step != StepSelectDateTime {
			return s, ErrStepNotActive
		}
		slot, ok := catalog.FindSlot(act.Time)
		if !ok {
			return s, ErrUnknownSlot
		}
		if !slot.Available {
			return s, ErrSlotUnavailable
		}
		// The picker opens with today highlighted; picking a time without
		// clicking a day books the highlighted one.
		day := s.Highlighted
		if s.Draft.Date != nil {
			day = *s.Draft.Date
		}
		if day.IsZero() || !InWindow(day, m.Today()) {
			return s, ErrDateOutsideWindow
		}
		day = Midnight(day, m.loc)
		slotTime := slot.Time
		next.Draft.Date = &day
		next.Draft.Time = &slotTime
		next.Step = StepContact

	case UpdateContact:
		if s.Step != StepContact {
			return s, ErrStepNotActive
		}
		field, err := ParseContactField(string(act.Field))
		if err != nil {
			return s, err
		}
		next.Draft = next.Draft.withContact(field, act.Value)

	case Submit:
		if s.Step != StepContact {
			return s, ErrStepNotActive
		}
		if !s.Draft.Scheduled() {
			return s, ErrStepNotActive
		}
		if err := ValidateContact(s.Draft); err != nil {
			return s, err
		}
		next.Step = StepConfirmed

	case Restart:
		if s.Step != StepConfirmed {
			return s, ErrStepNotActive
		}
		return m.Start(), nil

	default:
		return s, ErrStepNotActive
	}

	return next, nil
}
