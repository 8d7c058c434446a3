package domain

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalStatus gates a doctor's visibility in search
type ApprovalStatus string

const (
	ApprovalPending   ApprovalStatus = "pending"
	ApprovalApproved  ApprovalStatus = "approved"
	ApprovalCancelled ApprovalStatus = "cancelled"
)

// Doctor represents a doctor profile with its weekly template
type Doctor struct {
	ID             uuid.UUID
	Name           string
	Email          string
	Phone          *string
	Photo          *string
	TicketPrice    float64
	Specialization *string
	Bio            *string
	About          *string
	IsApproved     ApprovalStatus
	TimeSlots      []TimeSlot
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsVisible returns true if the doctor can be found and booked
func (d *Doctor) IsVisible() bool {
	return d.IsApproved == ApprovalApproved
}

// OffersWeekday returns true if any template slot (enabled or not) falls on the day
func (d *Doctor) OffersWeekday(day Weekday) bool {
	for _, s := range d.TimeSlots {
		if s.Day == day {
			return true
		}
	}
	return false
}
