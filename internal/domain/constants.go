package domain

import "time"

// Default booking values
const (
	DefaultHorizonDays = 30
)

// Business validation constants
const (
	MaxHealthIssuesLength   = 5000
	MaxDoctorResponseLength = 5000
	MaxReportGroupName      = 255
	MaxReportFilesPerGroup  = 50
	MaxTemplateSlots        = 7 * 48
	MaxBatchResetSize       = 200
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// SlotReleasingStatuses statuses excluded from the occupancy scan
var SlotReleasingStatuses = []BookingStatus{
	StatusCancelled,
	StatusCompleted,
}

// DateOf converts an instant to its calendar date in loc, normalized to midnight UTC
func DateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NormalizeDate drops the clock of a parsed date, keeping its calendar fields
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
