package web

import (
	"time"

	"github.com/wolfman30/booking-wizard/internal/catalog"
	"github.com/wolfman30/booking-wizard/internal/wizard"
)

type stepIndicator struct {
	Number    int
	Reached   bool
	Connector bool // draw a bar after this dot
	Passed    bool // bar is filled
}

type serviceCard struct {
	ID       int
	Name     string
	Duration string
	Price    string
	ImageURL string
	Selected bool
}

type dayButton struct {
	Key      string
	Weekday  string
	Day      string
	Label    string
	Selected bool
}

type slotButton struct {
	Time      string
	Available bool
	Selected  bool
}

type summary struct {
	Service      string
	Duration     string
	RelativeDate string
	LongDate     string
	Time         string
}

type pageView struct {
	Step       int
	Title      string
	Steps      []stepIndicator
	Error      string
	ErrorField string

	Services []serviceCard
	Days     []dayButton
	Slots    []slotButton

	Name    string
	Email   string
	Phone   string
	Summary summary
}

// stateView is the JSON snapshot served by /api/state and the WebSocket.
type stateView struct {
	Step      int              `json:"step"`
	StepName  string           `json:"step_name"`
	Service   *catalog.Service `json:"service,omitempty"`
	Date      string           `json:"date,omitempty"`
	DateLabel string           `json:"date_label,omitempty"`
	Time      string           `json:"time,omitempty"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Phone     string           `json:"phone"`
}

func newStateView(st wizard.State, today time.Time) stateView {
	v := stateView{
		Step:     int(st.Step),
		StepName: st.Step.String(),
		Service:  st.Draft.Service,
		Name:     st.Draft.Name,
		Email:    st.Draft.Email,
		Phone:    st.Draft.Phone,
	}
	if st.Draft.Date != nil {
		v.Date = wizard.DateKey(*st.Draft.Date)
		v.DateLabel = wizard.RelativeLabel(*st.Draft.Date, today)
	}
	if st.Draft.Time != nil {
		v.Time = *st.Draft.Time
	}
	return v
}

func newPageView(st wizard.State, today time.Time) pageView {
	v := pageView{
		Step:  int(st.Step),
		Title: st.Step.Title(),
		Name:  st.Draft.Name,
		Email: st.Draft.Email,
		Phone: st.Draft.Phone,
	}

	for i, s := range wizard.Steps {
		v.Steps = append(v.Steps, stepIndicator{
			Number:    int(s),
			Reached:   st.Step >= s,
			Connector: i < len(wizard.Steps)-1,
			Passed:    st.Step > s,
		})
	}

	switch st.Step {
	case wizard.StepSelectService:
		for _, svc := range catalog.Services() {
			v.Services = append(v.Services, serviceCard{
				ID:       svc.ID,
				Name:     svc.Name,
				Duration: svc.DurationLabel,
				Price:    catalog.FormatPrice(svc.PriceMinor),
				ImageURL: svc.ImageURL,
				Selected: st.Draft.Service != nil && st.Draft.Service.ID == svc.ID,
			})
		}
	case wizard.StepSelectDateTime:
		for _, day := range wizard.Window(today) {
			v.Days = append(v.Days, dayButton{
				Key:      wizard.DateKey(day),
				Weekday:  wizard.WeekdayLabel(day),
				Day:      wizard.DayOfMonthLabel(day),
				Label:    wizard.RelativeLabel(day, today),
				Selected: !st.Highlighted.IsZero() && wizard.SameDay(day, st.Highlighted),
			})
		}
		for _, slot := range catalog.TimeSlots() {
			v.Slots = append(v.Slots, slotButton{
				Time:      slot.Time,
				Available: slot.Available,
				Selected:  st.Draft.Time != nil && *st.Draft.Time == slot.Time,
			})
		}
	}

	if st.Draft.Service != nil {
		v.Summary.Service = st.Draft.Service.Name
		v.Summary.Duration = st.Draft.Service.DurationLabel
	}
	if st.Draft.Date != nil {
		v.Summary.RelativeDate = wizard.RelativeLabel(*st.Draft.Date, today)
		v.Summary.LongDate = wizard.LongLabel(*st.Draft.Date)
	}
	if st.Draft.Time != nil {
		v.Summary.Time = *st.Draft.Time
	}
	return v
}
