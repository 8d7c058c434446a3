package update_booking_status

// UpdateStatusRequest HTTP request model
// Допустимые значения: pending, approved, completed, cancelled
type UpdateStatusRequest struct {
	Status string `json:"status"`
}
