package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusApproved  BookingStatus = "approved"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

// ParseBookingStatus validates a status coming from a client
func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch st := BookingStatus(s); st {
	case StatusPending, StatusApproved, StatusCancelled, StatusCompleted:
		return st, true
	default:
		return "", false
	}
}

// IsTerminal returns true for statuses that allow no further transitions
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// OccupiesSlot returns true while a booking with this status holds its slot
func (s BookingStatus) OccupiesSlot() bool {
	return !s.IsTerminal()
}

// CanTransitionTo implements pending -> approved -> completed with
// cancellation from any non-terminal state. Same status is not a transition.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusApproved || next == StatusCancelled
	case StatusApproved:
		return next == StatusCompleted || next == StatusCancelled
	default:
		return false
	}
}

// ReportAction is the kind of a report history entry
type ReportAction string

const (
	ReportAdded   ReportAction = "added"
	ReportRemoved ReportAction = "removed"
)

// DefaultReportGroup receives single URLs added without a group name
const DefaultReportGroup = "Reports"

// ReportGroup is a named set of uploaded file URLs
type ReportGroup struct {
	Name  string   `json:"name"`
	Files []string `json:"files"`
}

// ValidateReportGroupName checks a group name supplied by a patient
func ValidateReportGroupName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("report group name is required")
	}
	if len(name) > MaxReportGroupName {
		return fmt.Errorf("report group name exceeds %d characters", MaxReportGroupName)
	}
	return nil
}

// ValidateReportFiles checks the file URLs of one group
func ValidateReportFiles(files []string) error {
	if len(files) == 0 {
		return fmt.Errorf("at least one report file is required")
	}
	if len(files) > MaxReportFilesPerGroup {
		return fmt.Errorf("a report group holds at most %d files", MaxReportFilesPerGroup)
	}
	for _, f := range files {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("report file url is empty")
		}
	}
	return nil
}

// ReportEvent is one append-only entry of the reports history
type ReportEvent struct {
	Name      *string
	Action    ReportAction
	ReportURL *string
	UpdatedAt time.Time
}

// TextEntry is an append-only text history entry (health issues, doctor responses)
type TextEntry struct {
	Text      string
	UpdatedAt time.Time
}

// Booking represents a patient's appointment with a doctor
type Booking struct {
	ID              uuid.UUID
	DoctorID        uuid.UUID
	PatientID       uuid.UUID
	TicketPrice     float64
	AppointmentDate time.Time // calendar date, midnight UTC
	TimeSlot        TimeSlot
	IsPaid          bool
	Status          BookingStatus

	CurrentHealthIssues string
	HealthIssuesHistory []TextEntry
	CurrentReports      []ReportGroup
	ReportsHistory      []ReportEvent
	DoctorResponses     []TextEntry

	UnreadDoctorResponses int
	UnreadPatientUpdates  int
	LastViewedByDoctor    *time.Time
	LastViewedByPatient   *time.Time

	AIAnalysis       json.RawMessage
	PaymentSessionID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OccupiesSlot returns true if the booking blocks its (date, slot) pair
func (b *Booking) OccupiesSlot() bool {
	return b.Status.OccupiesSlot()
}

// IsOwnedByPatient returns true if the patient created the booking
func (b *Booking) IsOwnedByPatient(patientID uuid.UUID) bool {
	return b.PatientID == patientID
}

// IsOwnedByDoctor returns true if the booking is with the given doctor
func (b *Booking) IsOwnedByDoctor(doctorID uuid.UUID) bool {
	return b.DoctorID == doctorID
}

// BookedSlot is the projection input: a (date, slot) pair held by a booking
type BookedSlot struct {
	Date         time.Time
	StartingTime string
	EndingTime   string
}

// Key returns the slot key of the booked pair
func (b BookedSlot) Key() string {
	return b.StartingTime + "-" + b.EndingTime
}

// DoctorAppointmentsFilter filters a doctor's bookings
type DoctorAppointmentsFilter struct {
	DoctorID     uuid.UUID
	Date         *time.Time
	StartingTime *string
	EndingTime   *string
}
