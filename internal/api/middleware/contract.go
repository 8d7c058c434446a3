package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
)

// AccountLookup поиск учетных записей для аутентификации
type AccountLookup interface {
	FindByID(ctx context.Context, role domain.Role, id uuid.UUID) (*domain.Account, error)
	VerifyPassword(ctx context.Context, email, password string) (*domain.Account, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
