package domain

import (
	"time"

	"github.com/google/uuid"
)

// DayState is the projected booking state of one calendar date
type DayState string

const (
	DayOpen          DayState = "open"
	DayPartialBooked DayState = "partially_booked"
	DayFullyBooked   DayState = "fully_booked"
)

// FullyBookedMarker is the value of a fully booked date in the blocked map
const FullyBookedMarker = "fully booked"

// DayAvailability is one projected date. Only dates whose weekday appears
// in the template are projected.
type DayAvailability struct {
	Date     time.Time  `json:"date"`
	Weekday  Weekday    `json:"weekday"`
	State    DayState   `json:"state"`
	Occupied []string   `json:"occupied"`
	Free     []TimeSlot `json:"free"`
}

// Projection is a doctor's availability over the horizon starting at Today
type Projection struct {
	DoctorID uuid.UUID         `json:"doctorId"`
	Today    time.Time         `json:"today"`
	Horizon  int               `json:"horizon"`
	Days     []DayAvailability `json:"days"`
}
