package payments

import "github.com/google/uuid"

// CheckoutRequest данные для создания сессии оплаты записи
type CheckoutRequest struct {
	BookingID     uuid.UUID
	DoctorID      uuid.UUID
	DoctorName    string
	DoctorBio     string
	DoctorPhoto   string
	TicketPrice   float64
	CustomerEmail string
	ReportURLs    []string
	HealthIssues  string
}

// CheckoutSession созданная сессия оплаты
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// errorResponse тело ошибки провайдера
type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
