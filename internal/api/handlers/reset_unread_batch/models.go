package reset_unread_batch

import "github.com/google/uuid"

// ResetUnreadBatchRequest HTTP request model
type ResetUnreadBatchRequest struct {
	BookingIDs []uuid.UUID `json:"bookingIds"`
}
