package confirm_payment

import (
	"context"

	"github.com/google/uuid"

	confirmPayment "github.com/m04kA/SMC-DoctorBooking/internal/usecase/confirm_payment"
)

type ConfirmPaymentUseCase interface {
	Execute(ctx context.Context, bookingID uuid.UUID, sessionID string) (*confirmPayment.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
