package get_availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	doctorRepo "github.com/m04kA/SMC-DoctorBooking/internal/infra/storage/doctor"
)

// computeTimeout ограничивает общий расчет проекции, отвязанный от контекста первого запроса
const computeTimeout = 10 * time.Second

// UseCase use case проекции доступности врача на горизонт записи
type UseCase struct {
	bookingRepo  BookingRepository
	doctorRepo   DoctorRepository
	cache        Cache
	metrics      Metrics
	horizon      int
	location     *time.Location
	group        singleflight.Group
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	doctorRepo DoctorRepository,
	cache Cache,
	metrics Metrics,
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
		bookingRepo:  bookingRepo,
		doctorRepo:   doctorRepo,
		cache:        cache,
		metrics:      metrics,
		horizon:      horizon,
		location:     location,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Project возвращает проекцию доступности врача, используя кэш
// Одновременные запросы по одному врачу на один день схлопываются в один расчет
func (uc *UseCase) Project(ctx context.Context, doctorID uuid.UUID) (*domain.Projection, error) {
	today := domain.DateOf(uc.timeProvider.Now(), uc.location)

	cached, ok, err := uc.cache.Get(ctx, doctorID, today)
	if err != nil {
		uc.logger.Warn("Project: cache read failed for doctor=%s: %v", doctorID, err)
	}
	uc.metrics.ObserveCacheLookup(ok)
	if ok {
		return cached, nil
	}

	// расчет общий для всех ожидающих, поэтому отмена одного запроса его не прерывает
	key := doctorID.String() + "/" + today.Format(domain.DateFormat)
	ch := uc.group.DoChan(key, func() (interface{}, error) {
		computeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), computeTimeout)
		defer cancel()
		return uc.compute(computeCtx, doctorID, today)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.Projection), nil
	}
}

func (uc *UseCase) compute(ctx context.Context, doctorID uuid.UUID, today time.Time) (*domain.Projection, error) {
	// поколение читается до врача и записей: инвалидация после этой точки сделает результат непрочитанным
	generation, genErr := uc.cache.Generation(ctx, doctorID)
	if genErr != nil {
		uc.logger.Warn("Project: cache generation read failed for doctor=%s: %v", doctorID, genErr)
	}

	doctor, err := uc.doctorRepo.GetByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, doctorRepo.ErrDoctorNotFound) {
			uc.logger.Warn("Project: doctor id=%s not found", doctorID)
			return nil, ErrDoctorNotFound
		}
		uc.logger.Error("Project: failed to get doctor id=%s: %v", doctorID, err)
		return nil, fmt.Errorf("%w: failed to get doctor: %v", ErrInternal, err)
	}

	booked, err := uc.bookingRepo.ListOccupiedSlots(ctx, doctorID, today)
	if err != nil {
		uc.logger.Error("Project: failed to list occupied slots for doctor=%s: %v", doctorID, err)
		return nil, fmt.Errorf("%w: failed to list occupied slots: %v", ErrInternal, err)
	}

	projection := project(doctorID, doctor.TimeSlots, booked, today, uc.horizon)

	if genErr == nil {
		if err := uc.cache.Set(ctx, projection, generation); err != nil {
			uc.logger.Warn("Project: cache write failed for doctor=%s: %v", doctorID, err)
		}
	}

	uc.logger.Info("Project: doctor=%s, today=%s, projected %d days, %d booked slots",
		doctorID, today.Format(domain.DateFormat), len(projection.Days), len(booked))

	return projection, nil
}

// AvailableDates даты горизонта, на которые есть хотя бы один свободный слот
func (uc *UseCase) AvailableDates(ctx context.Context, doctorID uuid.UUID) ([]time.Time, error) {
	p, err := uc.Project(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return availableDates(p), nil
}

// BlockedDates полностью занятые даты горизонта
func (uc *UseCase) BlockedDates(ctx context.Context, doctorID uuid.UUID) ([]time.Time, error) {
	p, err := uc.Project(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return blockedDates(p), nil
}

// BlockedDatesWithSlots карта дата -> "fully booked" | занятые слоты | []
func (uc *UseCase) BlockedDatesWithSlots(ctx context.Context, doctorID uuid.UUID) (map[string]interface{}, error) {
	p, err := uc.Project(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return blockedMap(p), nil
}

// FreeSlots свободные слоты шаблона на дату внутри горизонта
func (uc *UseCase) FreeSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) (*FreeSlotsResponse, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	date = domain.NormalizeDate(date)

	p, err := uc.Project(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	if !withinHorizon(date, p.Today, p.Horizon) {
		uc.logger.Warn("FreeSlots: date %s outside horizon [%s, +%d days) for doctor=%s",
			date.Format(domain.DateFormat), p.Today.Format(domain.DateFormat), p.Horizon, doctorID)
		return nil, fmt.Errorf("%w: %s", ErrInvalidDate, date.Format(domain.DateFormat))
	}

	return &FreeSlotsResponse{
		Date:    date,
		Weekday: domain.WeekdayOf(date),
		Slots:   freeSlots(p, date),
	}, nil
}
