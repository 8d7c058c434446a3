package confirm_payment

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-DoctorBooking/internal/infra/storage/booking"
)

// UseCase подтверждение оплаты записи
type UseCase struct {
	bookingRepo BookingRepository
	doctorRepo  DoctorRepository
	patientRepo PatientRepository
	analyzer    Analyzer
	notifier    Notifier
	smsTemplate SMSTemplate
	metrics     Metrics
	txManager   TransactionManager
	logger      Logger
}

// NewUseCase создает use case подтверждения оплаты. notifier == nil отключает SMS.
func NewUseCase(
	bookingRepo BookingRepository,
	doctorRepo DoctorRepository,
	patientRepo PatientRepository,
	analyzer Analyzer,
	notifier Notifier,
	smsTemplate SMSTemplate,
	metrics Metrics,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo: bookingRepo,
		doctorRepo:  doctorRepo,
		patientRepo: patientRepo,
		analyzer:    analyzer,
		notifier:    notifier,
		smsTemplate: smsTemplate,
		metrics:     metrics,
		txManager:   txManager,
		logger:      logger,
	}
}

// Execute отмечает запись оплаченной и одобренной
// sessionID должен совпасть с сессией оплаты, созданной для записи при оформлении.
// Повторное подтверждение ничего не меняет. AI-анализ и SMS не влияют на результат.
func (uc *UseCase) Execute(ctx context.Context, bookingID uuid.UUID, sessionID string) (*Response, error) {
	uc.logger.Info("ConfirmPayment: booking=%s", bookingID)

	var (
		booking     *domain.Booking
		alreadyPaid bool
	)

	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		b, err := uc.bookingRepo.GetByID(txCtx, bookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: Execute - get booking: %v", ErrInternal, err)
		}
		booking = b

		if !sessionMatches(b, sessionID) {
			return ErrSessionMismatch
		}

		if b.IsPaid {
			alreadyPaid = true
			return nil
		}
		if b.Status.IsTerminal() {
			return ErrBookingClosed
		}

		b.IsPaid = true
		b.Status = domain.StatusApproved

		if err := uc.bookingRepo.Update(txCtx, b); err != nil {
			return fmt.Errorf("%w: Execute - update booking: %v", ErrInternal, err)
		}

		if err := uc.doctorRepo.AddAppointment(txCtx, b.DoctorID, b.ID); err != nil {
			return fmt.Errorf("%w: Execute - add appointment: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) || errors.Is(err, ErrBookingClosed) || errors.Is(err, ErrSessionMismatch) {
			uc.logger.Warn("ConfirmPayment: booking=%s: %v", bookingID, err)
		} else {
			uc.logger.Error("ConfirmPayment: booking=%s: %v", bookingID, err)
		}
		return nil, err
	}

	if alreadyPaid {
		uc.logger.Info("ConfirmPayment: booking=%s already paid, nothing to do", bookingID)
		return &Response{Booking: booking, AlreadyPaid: true}, nil
	}

	uc.metrics.IncPaymentConfirmed()
	uc.logger.Info("ConfirmPayment: booking=%s approved", bookingID)

	uc.analyzer.Trigger(ctx, booking.ID)
	uc.notify(ctx, booking)

	return &Response{Booking: booking}, nil
}

// sessionMatches запись без сохраненной сессии подтвердить нельзя
func sessionMatches(b *domain.Booking, sessionID string) bool {
	if b.PaymentSessionID == nil || *b.PaymentSessionID == "" || sessionID == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(*b.PaymentSessionID), []byte(sessionID)) == 1
}

// notify отправляет SMS-подтверждение; ошибки только логируются
func (uc *UseCase) notify(ctx context.Context, booking *domain.Booking) {
	if uc.notifier == nil {
		return
	}

	patient, err := uc.patientRepo.GetPatient(ctx, booking.PatientID)
	if err != nil {
		uc.logger.Warn("ConfirmPayment: sms skipped, patient=%s: %v", booking.PatientID, err)
		return
	}
	if patient.Phone == nil || *patient.Phone == "" {
		uc.logger.Warn("ConfirmPayment: sms skipped, patient=%s has no phone", booking.PatientID)
		return
	}

	doctor, err := uc.doctorRepo.GetByID(ctx, booking.DoctorID)
	if err != nil {
		uc.logger.Warn("ConfirmPayment: sms skipped, doctor=%s: %v", booking.DoctorID, err)
		return
	}

	body := confirmationMessage(uc.smsTemplate, patient, doctor, booking)
	if err := uc.notifier.SendSMS(ctx, *patient.Phone, body); err != nil {
		uc.metrics.ObserveNotification(false)
		uc.logger.Warn("ConfirmPayment: sms to patient=%s failed: %v", booking.PatientID, err)
		return
	}

	uc.metrics.ObserveNotification(true)
}
