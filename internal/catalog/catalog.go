package catalog

import (
	"fmt"
	"strconv"
)

// Service is a bookable treatment offered by the clinic.
type Service struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	DurationLabel string `json:"duration"`
	PriceMinor    int64  `json:"price_minor"` // paise
	ImageURL      string `json:"image_url"`
}

// TimeSlot is a fixed time of day with a static availability flag.
type TimeSlot struct {
	Time      string `json:"time"` // "HH:MM"
	Available bool   `json:"available"`
}

var services = []Service{
	{
		ID:            1,
		Name:          "Dental Checkup",
		DurationLabel: "30 min",
		PriceMinor:    150000,
		ImageURL:      "https://images.unsplash.com/photo-1588776814546-1ffcf47267a5?auto=format&fit=crop&q=80&w=400",
	},
	{
		ID:            2,
		Name:          "Root Canal",
		DurationLabel: "60 min",
		PriceMinor:    500000,
		ImageURL:      "https://images.unsplash.com/photo-1606811971618-4486d14f3f99?auto=format&fit=crop&q=80&w=400",
	},
	{
		ID:            3,
		Name:          "Teeth Whitening",
		DurationLabel: "45 min",
		PriceMinor:    300000,
		ImageURL:      "https://images.unsplash.com/photo-1541604193435-22287d32c2c2?auto=format&fit=crop&q=80&w=400",
	},
}

var timeSlots = []TimeSlot{
	{Time: "09:00", Available: true},
	{Time: "10:00", Available: true},
	{Time: "11:00", Available: false},
	{Time: "12:00", Available: true},
	{Time: "14:00", Available: true},
	{Time: "15:00", Available: true},
	{Time: "16:00", Available: false},
	{Time: "17:00", Available: true},
}

// Services returns a copy of the service catalog in display order.
func Services() []Service {
	out := make([]Service, len(services))
	copy(out, services)
	return out
}

// TimeSlots returns a copy of the daily slot list. Availability does not
// depend on the date.
func TimeSlots() []TimeSlot {
	out := make([]TimeSlot, len(timeSlots))
	copy(out, timeSlots)
	return out
}

// FindService looks up a service by ID.
func FindService(id int) (Service, bool) {
	for _, s := range services {
		if s.ID == id {
			return s, true
		}
	}
	return Service{}, false
}

// FindSlot looks up a slot by its "HH:MM" label.
func FindSlot(t string) (TimeSlot, bool) {
	for _, s := range timeSlots {
		if s.Time == t {
			return s, true
		}
	}
	return TimeSlot{}, false
}

// FormatPrice renders a paise amount as rupees, dropping zero paise.
func FormatPrice(minor int64) string {
	rupees := minor / 100
	paise := minor % 100
	if paise < 0 {
		paise = -paise
	}
	if paise == 0 {
		return "₹" + strconv.FormatInt(rupees, 10)
	}
	return fmt.Sprintf("₹%d.%02d", rupees, paise)
}
