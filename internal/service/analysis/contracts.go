package analysis

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	"github.com/m04kA/SMC-DoctorBooking/internal/integrations/aisummarizer"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	SetAIAnalysis(ctx context.Context, id uuid.UUID, analysis json.RawMessage) error
}

// PatientRepository интерфейс получения данных пациента
type PatientRepository interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*domain.Patient, error)
}

// Summarizer интерфейс клиента AI-анализа
type Summarizer interface {
	Analyze(ctx context.Context, in aisummarizer.Input) (json.RawMessage, error)
}

// Metrics интерфейс доменных метрик
type Metrics interface {
	ObserveAIAnalysis(ok bool)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
