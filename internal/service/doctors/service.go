package doctors

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	doctorRepo "github.com/m04kA/SMC-DoctorBooking/internal/infra/storage/doctor"
	bookingModels "github.com/m04kA/SMC-DoctorBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-DoctorBooking/internal/service/doctors/models"
)

// Service сервис врачей: профиль, поиск, шаблон слотов и записи врача
type Service struct {
	doctorRepo  DoctorRepository
	bookingRepo BookingRepository
	cache       AvailabilityCache
	txManager   TransactionManager
	logger      Logger
}

// NewService создает новый экземпляр сервиса врачей
func NewService(
	doctorRepo DoctorRepository,
	bookingRepo BookingRepository,
	cache AvailabilityCache,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		doctorRepo:  doctorRepo,
		bookingRepo: bookingRepo,
		cache:       cache,
		txManager:   txManager,
		logger:      logger,
	}
}

// GetByID получает публичный профиль врача
// Врачи без одобрения не видны
func (s *Service) GetByID(ctx context.Context, doctorID uuid.UUID) (*models.DoctorResponse, error) {
	doctor, err := s.getDoctor(ctx, "GetByID", doctorID)
	if err != nil {
		return nil, err
	}

	if !doctor.IsVisible() {
		s.logger.Warn("GetByID: doctor=%s is not approved", doctorID)
		return nil, ErrDoctorNotFound
	}

	return models.FromDomainDoctor(doctor), nil
}

// Search ищет одобренных врачей по имени или специализации
func (s *Service) Search(ctx context.Context, query string) (*models.DoctorListResponse, error) {
	doctors, err := s.doctorRepo.Search(ctx, query)
	if err != nil {
		s.logger.Error("Search: repository error for query=%q: %v", query, err)
		return nil, fmt.Errorf("%w: Search - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Search: query=%q matched %d doctors", query, len(doctors))
	return models.FromDomainDoctorList(doctors), nil
}

// GetProfile профиль врача (или врача регистратора) вместе со всеми записями
func (s *Service) GetProfile(ctx context.Context, identity domain.Identity) (*models.ProfileResponse, error) {
	if !identity.IsDoctor() && !identity.IsReceptionist() {
		return nil, ErrAccessDenied
	}

	doctor, err := s.getDoctor(ctx, "GetProfile", identity.DoctorID)
	if err != nil {
		return nil, err
	}

	appointments, err := s.bookingRepo.ListByDoctor(ctx, domain.DoctorAppointmentsFilter{DoctorID: doctor.ID})
	if err != nil {
		s.logger.Error("GetProfile: failed to list appointments of doctor=%s: %v", doctor.ID, err)
		return nil, fmt.Errorf("%w: GetProfile - list appointments: %v", ErrInternal, err)
	}

	return &models.ProfileResponse{
		Doctor:       models.FromDomainDoctor(doctor),
		Appointments: bookingModels.FromDomainBookingList(appointments),
	}, nil
}

// ReplaceTimeSlots заменяет недельный шаблон врача целиком
// Существующие записи не трогаются; проекции доступности сбрасываются
func (s *Service) ReplaceTimeSlots(ctx context.Context, identity domain.Identity, req *models.ReplaceTimeSlotsRequest) (*models.DoctorResponse, error) {
	if !identity.IsDoctor() {
		return nil, ErrAccessDenied
	}

	s.logger.Info("ReplaceTimeSlots: doctor=%s, slots=%d", identity.DoctorID, len(req.TimeSlots))

	if err := validateTemplate(req.TimeSlots); err != nil {
		s.logger.Warn("ReplaceTimeSlots: validation failed: %v", err)
		return nil, err
	}

	var doctor *domain.Doctor

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		d, err := s.getDoctor(txCtx, "ReplaceTimeSlots", identity.DoctorID)
		if err != nil {
			return err
		}

		if err := s.doctorRepo.ReplaceTimeSlots(txCtx, d.ID, req.TimeSlots); err != nil {
			return fmt.Errorf("%w: ReplaceTimeSlots - repository error: %v", ErrInternal, err)
		}

		d.TimeSlots = req.TimeSlots
		doctor = d
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInternal) {
			s.logger.Error("ReplaceTimeSlots: doctor=%s: %v", identity.DoctorID, err)
		}
		return nil, err
	}

	s.invalidate(ctx, "ReplaceTimeSlots", doctor.ID)

	s.logger.Info("ReplaceTimeSlots: template of doctor=%s replaced", doctor.ID)
	return models.FromDomainDoctor(doctor), nil
}

// Appointments записи врача с фильтрацией по дате и слоту
// Доступно врачу и его регистраторам
func (s *Service) Appointments(ctx context.Context, identity domain.Identity, req *models.AppointmentsFilterRequest) (*bookingModels.BookingListResponse, error) {
	if !identity.IsDoctor() && !identity.IsReceptionist() {
		return nil, ErrAccessDenied
	}

	filter := domain.DoctorAppointmentsFilter{DoctorID: identity.DoctorID}

	if req.Date != "" {
		date, err := parseDate(req.Date)
		if err != nil {
			return nil, err
		}
		filter.Date = &date
	}

	var err error
	if filter.StartingTime, err = parseOptionalTime("startingTime", req.StartingTime); err != nil {
		return nil, err
	}
	if filter.EndingTime, err = parseOptionalTime("endingTime", req.EndingTime); err != nil {
		return nil, err
	}

	bookings, err := s.bookingRepo.ListByDoctor(ctx, filter)
	if err != nil {
		s.logger.Error("Appointments: repository error for doctor=%s: %v", identity.DoctorID, err)
		return nil, fmt.Errorf("%w: Appointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Appointments: fetched %d bookings for doctor=%s", len(bookings), identity.DoctorID)
	return bookingModels.FromDomainBookingList(bookings), nil
}

// CancelAppointments отменяет незавершенные записи врача на дату
// Пациенту каждой записи добавляется непрочитанное уведомление, слоты освобождаются
func (s *Service) CancelAppointments(ctx context.Context, identity domain.Identity, req *models.CancelAppointmentsRequest) (*models.CancelAppointmentsResponse, error) {
	if !identity.IsDoctor() {
		return nil, ErrAccessDenied
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	start, err := parseOptionalTime("startingTime", req.StartingTime)
	if err != nil {
		return nil, err
	}
	end, err := parseOptionalTime("endingTime", req.EndingTime)
	if err != nil {
		return nil, err
	}

	s.logger.Info("CancelAppointments: doctor=%s, date=%s", identity.DoctorID, date.Format(domain.DateFormat))

	var ids []uuid.UUID
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		ids, err = s.bookingRepo.CancelForDoctorDate(txCtx, identity.DoctorID, date, start, end)
		return err
	})
	if err != nil {
		s.logger.Error("CancelAppointments: repository error for doctor=%s: %v", identity.DoctorID, err)
		return nil, fmt.Errorf("%w: CancelAppointments - repository error: %v", ErrInternal, err)
	}

	if len(ids) > 0 {
		s.invalidate(ctx, "CancelAppointments", identity.DoctorID)
	}

	s.logger.Info("CancelAppointments: cancelled %d bookings of doctor=%s", len(ids), identity.DoctorID)
	return &models.CancelAppointmentsResponse{Cancelled: len(ids), BookingIDs: ids}, nil
}

func (s *Service) getDoctor(ctx context.Context, op string, doctorID uuid.UUID) (*domain.Doctor, error) {
	doctor, err := s.doctorRepo.GetByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, doctorRepo.ErrDoctorNotFound) {
			s.logger.Warn("%s: doctor=%s not found", op, doctorID)
			return nil, ErrDoctorNotFound
		}
		s.logger.Error("%s: repository error for doctor=%s: %v", op, doctorID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return doctor, nil
}

func (s *Service) invalidate(ctx context.Context, op string, doctorID uuid.UUID) {
	if err := s.cache.Invalidate(ctx, doctorID); err != nil {
		s.logger.Warn("%s: failed to invalidate availability of doctor=%s: %v", op, doctorID, err)
	}
}
