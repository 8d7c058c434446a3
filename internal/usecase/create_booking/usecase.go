package create_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	accountRepo "github.com/m04kA/SMC-DoctorBooking/internal/infra/storage/account"
	bookingRepo "github.com/m04kA/SMC-DoctorBooking/internal/infra/storage/booking"
	doctorRepo "github.com/m04kA/SMC-DoctorBooking/internal/infra/storage/doctor"
	"github.com/m04kA/SMC-DoctorBooking/internal/integrations/payments"
	"github.com/m04kA/SMC-DoctorBooking/pkg/ptr"
	"github.com/m04kA/SMC-DoctorBooking/pkg/txmanager"
)

// UseCase use case для создания записи к врачу
type UseCase struct {
	bookingRepo   BookingRepository
	doctorRepo    DoctorRepository
	patientRepo   PatientRepository
	paymentClient PaymentClient
	cache         AvailabilityCache
	metrics       Metrics
	txManager     TransactionManager
	horizon       int
	location      *time.Location
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	doctorRepo DoctorRepository,
	patientRepo PatientRepository,
	paymentClient PaymentClient,
	cache AvailabilityCache,
	metrics Metrics,
	txManager TransactionManager,
	horizon int,
	location *time.Location,
	logger Logger,
) *UseCase {
	if horizon <= 0 {
		horizon = domain.DefaultHorizonDays
	}
	if location == nil {
		location = time.UTC
	}

	return &UseCase{
		bookingRepo:   bookingRepo,
		doctorRepo:    doctorRepo,
		patientRepo:   patientRepo,
		paymentClient: paymentClient,
		cache:         cache,
		metrics:       metrics,
		txManager:     txManager,
		horizon:       horizon,
		location:      location,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// Execute выполняет use case создания записи
// Проверка занятости слота и вставка выполняются в сериализуемой транзакции;
// частичный уникальный индекс гарантирует единственную активную запись на слот
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: patient=%s, doctor=%s, date=%s, slot=%s %s",
		req.PatientID, req.DoctorID, req.Date.Format(domain.DateFormat), req.TimeSlot.Day, req.TimeSlot.Key())

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Валидация даты относительно "сегодня" в часовом поясе записи
	now := uc.timeProvider.Now()
	today := domain.DateOf(now, uc.location)
	date := domain.NormalizeDate(req.Date)

	if err := validateDate(date, today, uc.horizon); err != nil {
		uc.logger.Warn("CreateBooking: date validation failed: %v", err)
		return nil, err
	}

	if err := validateSlotDay(date, req.TimeSlot); err != nil {
		uc.logger.Warn("CreateBooking: slot validation failed: %v", err)
		return nil, err
	}

	// 3. Получаем пациента (email для сессии оплаты)
	patient, err := uc.patientRepo.GetPatient(ctx, req.PatientID)
	if err != nil {
		if errors.Is(err, accountRepo.ErrAccountNotFound) {
			uc.logger.Warn("CreateBooking: patient id=%s not found", req.PatientID)
			return nil, ErrPatientNotFound
		}
		uc.logger.Error("CreateBooking: failed to get patient id=%s: %v", req.PatientID, err)
		return nil, fmt.Errorf("%w: failed to get patient: %v", ErrInternal, err)
	}

	var (
		result *domain.Booking
		doctor *domain.Doctor
	)

	// 4. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 4.1. Получаем врача и его шаблон
		d, err := uc.doctorRepo.GetByID(txCtx, req.DoctorID)
		if err != nil {
			if errors.Is(err, doctorRepo.ErrDoctorNotFound) {
				uc.logger.Warn("CreateBooking: doctor id=%s not found", req.DoctorID)
				return ErrDoctorNotFound
			}
			uc.logger.Error("CreateBooking: failed to get doctor id=%s: %v", req.DoctorID, err)
			return fmt.Errorf("%w: failed to get doctor: %v", ErrInternal, err)
		}

		if !d.IsVisible() {
			uc.logger.Warn("CreateBooking: doctor id=%s is %s", d.ID, d.IsApproved)
			return ErrDoctorNotAvailable
		}

		// 4.2. Слот должен совпадать с включенным слотом шаблона
		templateSlot, ok := domain.FindEnabledSlot(d.TimeSlots, req.TimeSlot)
		if !ok {
			uc.logger.Warn("CreateBooking: slot %s %s is not an enabled template slot of doctor=%s",
				req.TimeSlot.Day, req.TimeSlot.Key(), d.ID)
			return fmt.Errorf("%w: slot %s is not offered on %s", ErrInvalidTimeSlot, req.TimeSlot.Key(), req.TimeSlot.Day)
		}

		// 4.3. Проверяем, что слот не занят активной записью (с блокировкой FOR UPDATE)
		taken, err := uc.bookingRepo.HasActiveBooking(txCtx, d.ID, date, templateSlot)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to check slot: %v", err)
			return fmt.Errorf("%w: failed to check slot: %v", ErrInternal, err)
		}
		if taken {
			uc.logger.Warn("CreateBooking: slot %s on %s is already booked", templateSlot.Key(), date.Format(domain.DateFormat))
			return ErrSlotConflict
		}

		// 4.4. Создаем запись с начальной историей
		booking := &domain.Booking{
			ID:                  uuid.New(),
			DoctorID:            d.ID,
			PatientID:           req.PatientID,
			TicketPrice:         d.TicketPrice,
			AppointmentDate:     date,
			TimeSlot:            domain.TimeSlot{Day: templateSlot.Day, StartingTime: templateSlot.StartingTime, EndingTime: templateSlot.EndingTime},
			Status:              domain.StatusPending,
			CurrentHealthIssues: strings.TrimSpace(req.HealthIssues),
			CurrentReports:      normalizeReports(req.Reports),
		}
		seedHistory(booking, now)

		if err := uc.bookingRepo.Create(txCtx, booking); err != nil {
			if errors.Is(err, bookingRepo.ErrSlotTaken) {
				uc.logger.Warn("CreateBooking: slot %s on %s taken concurrently", templateSlot.Key(), date.Format(domain.DateFormat))
				return ErrSlotConflict
			}
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		result = booking
		doctor = d
		return nil
	})

	if err != nil {
		if errors.Is(err, txmanager.ErrSerializationFailure) {
			uc.logger.Warn("CreateBooking: serialization failure, reporting slot conflict: %v", err)
			err = ErrSlotConflict
		}
		if errors.Is(err, ErrSlotConflict) {
			uc.metrics.IncSlotConflict()
		}
		return nil, err
	}

	uc.metrics.IncBookingCreated()
	uc.invalidate(ctx, result.DoctorID)

	uc.logger.Info("CreateBooking: created booking id=%s", result.ID)

	// 5. Создаем сессию оплаты; при отказе провайдера запись отменяется и слот освобождается
	session, err := uc.paymentClient.CreateCheckoutSession(ctx, checkoutRequest(result, doctor, patient))
	if err != nil {
		uc.logger.Error("CreateBooking: checkout session failed for booking id=%s: %v", result.ID, err)
		uc.release(ctx, result.ID, result.DoctorID)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if err := uc.bookingRepo.SetPaymentSession(ctx, result.ID, session.ID); err != nil {
		uc.logger.Error("CreateBooking: failed to store session id for booking id=%s: %v", result.ID, err)
	} else {
		result.PaymentSessionID = ptr.Ptr(session.ID)
	}

	return &Response{
		Booking:    result,
		SessionID:  session.ID,
		SessionURL: session.URL,
	}, nil
}

// release отменяет запись, для которой не удалось создать оплату
// Проекции, посчитанные пока шел запрос к провайдеру, видят слот занятым, поэтому кэш сбрасывается повторно
func (uc *UseCase) release(ctx context.Context, bookingID, doctorID uuid.UUID) {
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := uc.bookingRepo.GetByID(txCtx, bookingID)
		if err != nil {
			return err
		}
		if booking.Status.IsTerminal() {
			return nil
		}
		booking.Status = domain.StatusCancelled
		return uc.bookingRepo.Update(txCtx, booking)
	})
	if err != nil {
		uc.logger.Error("CreateBooking: failed to cancel unpaid booking id=%s: %v", bookingID, err)
		return
	}

	uc.invalidate(ctx, doctorID)
	uc.logger.Warn("CreateBooking: booking id=%s cancelled after payment failure", bookingID)
}

func (uc *UseCase) invalidate(ctx context.Context, doctorID uuid.UUID) {
	if err := uc.cache.Invalidate(ctx, doctorID); err != nil {
		uc.logger.Warn("CreateBooking: failed to invalidate availability cache for doctor=%s: %v", doctorID, err)
	}
}

func checkoutRequest(b *domain.Booking, d *domain.Doctor, p *domain.Patient) payments.CheckoutRequest {
	var urls []string
	for _, g := range b.CurrentReports {
		urls = append(urls, g.Files...)
	}

	return payments.CheckoutRequest{
		BookingID:     b.ID,
		DoctorID:      d.ID,
		DoctorName:    d.Name,
		DoctorBio:     ptr.Value(d.Bio),
		DoctorPhoto:   ptr.Value(d.Photo),
		TicketPrice:   b.TicketPrice,
		CustomerEmail: p.Email,
		ReportURLs:    urls,
		HealthIssues:  b.CurrentHealthIssues,
	}
}
