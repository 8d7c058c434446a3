package create_booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
)

// Request модель запроса на создание записи
type Request struct {
	PatientID    uuid.UUID            // ID пациента из identity
	DoctorID     uuid.UUID            // ID врача
	Date         time.Time            // Дата приема (без времени)
	TimeSlot     domain.TimeSlot      // Слот шаблона (день, начало, конец)
	HealthIssues string               // Жалобы (опционально)
	Reports      []domain.ReportGroup // Группы отчетов (опционально)
}

// Response модель ответа с созданной записью и сессией оплаты
type Response struct {
	Booking    *domain.Booking
	SessionID  string
	SessionURL string
}
