package confirm_payment

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
}

// DoctorRepository интерфейс репозитория врачей
type DoctorRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Doctor, error)
	AddAppointment(ctx context.Context, doctorID, bookingID uuid.UUID) error
}

// PatientRepository интерфейс получения данных пациента
type PatientRepository interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*domain.Patient, error)
}

// Analyzer запускает AI-анализ записи в фоне
type Analyzer interface {
	Trigger(ctx context.Context, bookingID uuid.UUID)
}

// Notifier интерфейс отправки SMS
type Notifier interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Metrics интерфейс доменных метрик
type Metrics interface {
	IncPaymentConfirmed()
	ObserveNotification(ok bool)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
