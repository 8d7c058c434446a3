package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-DoctorBooking/pkg/types"
)

// Weekday lowercase English weekday name used by doctor templates
type Weekday string

const (
	Sunday    Weekday = "sunday"
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
)

// weekdays is indexed by time.Weekday
var weekdays = [7]Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// WeekdayOf returns the weekday of a calendar date
func WeekdayOf(date time.Time) Weekday {
	return weekdays[date.Weekday()]
}

// ParseWeekday accepts any letter case
func ParseWeekday(s string) (Weekday, error) {
	w := Weekday(strings.ToLower(strings.TrimSpace(s)))
	if !w.IsValid() {
		return "", fmt.Errorf("unknown weekday %q", s)
	}
	return w, nil
}

func (w Weekday) IsValid() bool {
	for _, d := range weekdays {
		if d == w {
			return true
		}
	}
	return false
}

// TimeSlot is one recurring weekly window of a doctor's template.
// A booking stores a denormalized copy; IsAvailable has no meaning there.
type TimeSlot struct {
	Day          Weekday          `json:"day"`
	StartingTime types.TimeString `json:"startingTime"`
	EndingTime   types.TimeString `json:"endingTime"`
	IsAvailable  bool             `json:"isAvailable"`
}

// Key identifies a slot within a day: "09:00-09:30"
func (s TimeSlot) Key() string {
	return SlotKey(s.StartingTime, s.EndingTime)
}

func SlotKey(start, end types.TimeString) string {
	return start.String() + "-" + end.String()
}

// SameWindow reports whether two slots have the same day, start and end
func (s TimeSlot) SameWindow(other TimeSlot) bool {
	return s.Day == other.Day &&
		s.StartingTime.Equal(other.StartingTime) &&
		s.EndingTime.Equal(other.EndingTime)
}

// Validate checks the slot shape without looking at any template
func (s TimeSlot) Validate() error {
	if !s.Day.IsValid() {
		return fmt.Errorf("unknown weekday %q", s.Day)
	}
	if s.StartingTime.IsZero() || s.EndingTime.IsZero() {
		return fmt.Errorf("slot times are required")
	}
	if !s.StartingTime.IsBefore(s.EndingTime) {
		return fmt.Errorf("slot %s must start before it ends", s.Key())
	}
	return nil
}

// FindEnabledSlot looks up an enabled template slot with the same window
func FindEnabledSlot(template []TimeSlot, slot TimeSlot) (TimeSlot, bool) {
	for _, t := range template {
		if t.IsAvailable && t.SameWindow(slot) {
			return t, true
		}
	}
	return TimeSlot{}, false
}
