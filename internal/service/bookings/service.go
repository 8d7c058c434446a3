package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-DoctorBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-DoctorBooking/internal/service/analysis"
	"github.com/m04kA/SMC-DoctorBooking/internal/service/bookings/models"
)

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo  BookingRepository
	analyzer     Analyzer
	cache        AvailabilityCache
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	analyzer Analyzer,
	cache AvailabilityCache,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		analyzer:     analyzer,
		cache:        cache,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// change результат одной мутации: что дописать в журналы истории
type change struct {
	healthIssue    *domain.TextEntry
	doctorResponse *domain.TextEntry
	reportEvents   []domain.ReportEvent
	reanalyze      bool
	noop           bool
}

// mutate выполняет мутацию записи в транзакции с блокировкой строки
// Проверка прав выполняется до любых изменений
func (s *Service) mutate(
	ctx context.Context,
	op string,
	bookingID uuid.UUID,
	authorize func(b *domain.Booking) bool,
	apply func(b *domain.Booking, now time.Time) (change, error),
) (*domain.Booking, error) {
	var (
		booking *domain.Booking
		ch      change
	)

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		b, err := s.bookingRepo.GetByID(txCtx, bookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: %s - get booking: %v", ErrInternal, op, err)
		}

		if !authorize(b) {
			return ErrAccessDenied
		}

		now := s.timeProvider.Now()
		ch, err = apply(b, now)
		if err != nil {
			return err
		}
		booking = b
		if ch.noop {
			return nil
		}

		if err := s.bookingRepo.Update(txCtx, b); err != nil {
			return fmt.Errorf("%w: %s - update booking: %v", ErrInternal, op, err)
		}

		if ch.healthIssue != nil {
			if err := s.bookingRepo.AppendHealthIssue(txCtx, b.ID, *ch.healthIssue); err != nil {
				return fmt.Errorf("%w: %s - append health issue: %v", ErrInternal, op, err)
			}
		}
		if ch.doctorResponse != nil {
			if err := s.bookingRepo.AppendDoctorResponse(txCtx, b.ID, *ch.doctorResponse); err != nil {
				return fmt.Errorf("%w: %s - append doctor response: %v", ErrInternal, op, err)
			}
		}
		if len(ch.reportEvents) > 0 {
			if err := s.bookingRepo.AppendReportEvents(txCtx, b.ID, ch.reportEvents); err != nil {
				return fmt.Errorf("%w: %s - append report events: %v", ErrInternal, op, err)
			}
		}

		return nil
	})
	if err != nil {
		s.logError(op, bookingID, err)
		return nil, err
	}

	if ch.reanalyze {
		s.analyzer.Trigger(ctx, booking.ID)
	}

	s.logger.Info("%s: booking=%s updated", op, bookingID)
	return booking, nil
}

func (s *Service) logError(op string, bookingID uuid.UUID, err error) {
	if errors.Is(err, ErrInternal) {
		s.logger.Error("%s: booking=%s: %v", op, bookingID, err)
		return
	}
	s.logger.Warn("%s: booking=%s: %v", op, bookingID, err)
}

func ownedByPatient(identity domain.Identity) func(b *domain.Booking) bool {
	return func(b *domain.Booking) bool {
		return identity.IsPatient() && b.IsOwnedByPatient(identity.UserID)
	}
}

func ownedByDoctor(identity domain.Identity) func(b *domain.Booking) bool {
	return func(b *domain.Booking) bool {
		return identity.IsDoctor() && b.IsOwnedByDoctor(identity.DoctorID)
	}
}

// canView пациент-владелец, врач записи или его регистратор
func canView(identity domain.Identity, b *domain.Booking) bool {
	if identity.IsPatient() {
		return b.IsOwnedByPatient(identity.UserID)
	}
	return identity.ActsForDoctor(b.DoctorID)
}

// patientReportChange применяет операцию над отчетами от имени пациента
func patientReportChange(op func(groups []domain.ReportGroup, now time.Time) ([]domain.ReportGroup, []domain.ReportEvent, error)) func(b *domain.Booking, now time.Time) (change, error) {
	return func(b *domain.Booking, now time.Time) (change, error) {
		groups, events, err := op(b.CurrentReports, now)
		if err != nil {
			return change{}, err
		}

		b.CurrentReports = groups
		b.ReportsHistory = append(b.ReportsHistory, events...)
		b.UnreadPatientUpdates++

		return change{reportEvents: events, reanalyze: true}, nil
	}
}

// GetByID получает запись и отмечает время просмотра для пациента или врача
func (s *Service) GetByID(ctx context.Context, identity domain.Identity, bookingID uuid.UUID) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: booking=%s, caller=%s (%s)", bookingID, identity.UserID, identity.Role)

	if identity.IsReceptionist() {
		booking, err := s.bookingRepo.GetByID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return nil, ErrBookingNotFound
			}
			s.logger.Error("GetByID: repository error for booking=%s: %v", bookingID, err)
			return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
		}
		if !canView(identity, booking) {
			s.logger.Warn("GetByID: access denied for receptionist=%s to booking=%s", identity.UserID, bookingID)
			return nil, ErrAccessDenied
		}
		return models.FromDomainBooking(booking), nil
	}

	booking, err := s.mutate(ctx, "GetByID", bookingID,
		func(b *domain.Booking) bool { return canView(identity, b) },
		func(b *domain.Booking, now time.Time) (change, error) {
			viewed := now
			if identity.IsPatient() {
				b.LastViewedByPatient = &viewed
			} else {
				b.LastViewedByDoctor = &viewed
			}
			return change{}, nil
		})
	if err != nil {
		return nil, err
	}

	return models.FromDomainBooking(booking), nil
}

// ListByPatient получает записи пациента, новые первыми
func (s *Service) ListByPatient(ctx context.Context, identity domain.Identity) (*models.BookingListResponse, error) {
	if !identity.IsPatient() {
		return nil, ErrAccessDenied
	}

	bookings, err := s.bookingRepo.ListByPatient(ctx, identity.UserID)
	if err != nil {
		s.logger.Error("ListByPatient: repository error for patient=%s: %v", identity.UserID, err)
		return nil, fmt.Errorf("%w: ListByPatient - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListByPatient: fetched %d bookings for patient=%s", len(bookings), identity.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// UpdateHealthIssues заменяет текущие жалобы пациента и дописывает историю
func (s *Service) UpdateHealthIssues(ctx context.Context, identity domain.Identity, bookingID uuid.UUID, text string) (*models.BookingResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: healthIssues is required", ErrInvalidInput)
	}
	if len(text) > domain.MaxHealthIssuesLength {
		return nil, fmt.Errorf("%w: healthIssues exceeds %d characters", ErrInvalidInput, domain.MaxHealthIssuesLength)
	}

	booking, err := s.mutate(ctx, "UpdateHealthIssues", bookingID, ownedByPatient(identity),
		func(b *domain.Booking, now time.Time) (change, error) {
			entry := domain.TextEntry{Text: text, UpdatedAt: now}
			b.CurrentHealthIssues = text
			b.HealthIssuesHistory = append(b.HealthIssuesHistory, entry)
			b.UnreadPatientUpdates++
			return change{healthIssue: &entry, reanalyze: true}, nil
		})
	if err != nil {
		return nil, err
	}

	return models.FromDomainBooking(booking), nil
}

// UpdateReports добавляет или удаляет один URL отчета
func (s *Service) UpdateReports(ctx context.Context, identity domain.Identity, bookingID uuid.UUID, req *models.UpdateReportsRequest) (*models.BookingResponse, error) {
	var op func(groups []domain.ReportGroup, now time.Time) ([]domain.ReportGroup, []domain.ReportEvent, error)

	switch req.Action {
	case models.ReportActionAdd:
		op = func(groups []domain.ReportGroup, now time.Time) ([]domain.ReportGroup, []domain.ReportEvent, error) {
			return addReport(groups, req.GroupName, req.ReportURL, now)
		}
	case models.ReportActionRemove:
		op = func(groups []domain.ReportGroup, now time.Time) ([]domain.ReportGroup, []domain.ReportEvent, error) {
			return removeReport(groups, req.ReportURL, now)
		}
	default:
		return nil, fmt.Errorf("%w: action must be %q or %q", ErrInvalidInput, models.ReportActionAdd, models.ReportActionRemove)
	}

	booking, err := s.mutate(ctx, "UpdateReports", bookingID, ownedByPatient(identity), patientReportChange(op))
	if err != nil {
		return nil, err
	}

	return models.FromDomainBooking(booking), nil
}

// SaveReportGroup добавляет файлы в именованную группу, создавая её при необходимости
func (s *Service) SaveReportGroup(ctx context.Context, identity domain.Identity, bookingID uuid.UUID, req *models.SaveReportGroupRequest) (*models.BookingResponse, error) {
	booking, err := s.mutate(ctx, "SaveReportGroup", bookingID, ownedByPatient(identity),
		patientReportChange(func(groups []domain.ReportGroup, now time.Time) ([]domain.ReportGroup, []domain.ReportEvent, error) {
			return saveGroup(groups, req.Name, req.URLs, now)
		}))
	if err != nil {
		return nil, err
	}

	return models.FromDomainBooking(booking), nil
}

// RenameReportGroup переименовывает группу отчетов
func (s *Service) RenameReportGroup(ctx context.Context, identity domain.Identity, bookingID uuid.UUID, oldName string, req *models.RenameReportGroupRequest) (*models.BookingResponse, error) {
	booking, err := s.mutate(ctx, "RenameReportGroup", bookingID, ownedByPatient(identity),
		patientReportChange(func(groups []domain.ReportGroup, now time.Time) ([]domain.ReportGroup, []domain.ReportEvent, error) {
			return renameGroup(groups, oldName, req.NewName, now)
		}))
	if err != nil {
		return nil, err
	}

	return models.FromDomainBooking(booking), nil
}

// DeleteReportGroup удаляет группу отчетов целиком
// Прошлые записи истории по группе остаются
func (s *Service) DeleteReportGroup(ctx context.Context, identity domain.Identity, bookingID uuid.UUID, name string) (*models.BookingResponse, error) {
	booking, err := s.mutate(ctx, "DeleteReportGroup", bookingID, ownedByPatient(identity),
		patientReportChange(func(groups []domain.ReportGroup, now time.Time) ([]domain.ReportGroup, []domain.ReportEvent, error) {
			return deleteGroup(groups, name, now)
		}))
	if err != nil {
		return nil, err
	}

	return models.FromDomainBooking(booking), nil
}

// RemoveFileFromGroup удаляет один файл из группы
func (s *Service) RemoveFileFromGroup(ctx context.Context, identity domain.Identity, bookingID uuid.UUID, name string, req *models.RemoveFileRequest) (*models.BookingResponse, error) {
	booking, err := s.mutate(ctx, "RemoveFileFromGroup", bookingID, ownedByPatient(identity),
		patientReportChange(func(groups []domain.ReportGroup, now time.Time) ([]domain.ReportGroup, []domain.ReportEvent, error) {
			return removeFile(groups, name, req.FileURL, now)
		}))
	if err != nil {
		return nil, err
	}

	return models.FromDomainBooking(booking), nil
}

// AddDoctorResponse дописывает ответ врача
func (s *Service) AddDoctorResponse(ctx context.Context, identity domain.Identity, bookingID uuid.UUID, text string) (*models.BookingResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: response is required", ErrInvalidInput)
	}
	if len(text) > domain.MaxDoctorResponseLength {
		return nil, fmt.Errorf("%w: response exceeds %d characters", ErrInvalidInput, domain.MaxDoctorResponseLength)
	}

	booking, err := s.mutate(ctx, "AddDoctorResponse", bookingID, ownedByDoctor(identity),
		func(b *domain.Booking, now time.Time) (change, error) {
			entry := domain.TextEntry{Text: text, UpdatedAt: now}
			b.DoctorResponses = append(b.DoctorResponses, entry)
			b.UnreadDoctorResponses++
			return change{doctorResponse: &entry}, nil
		})
	if err != nil {
		return nil, err
	}

	return models.FromDomainBooking(booking), nil
}

// UpdateStatus меняет статус записи по автомату pending -> approved -> completed
// Отмена и завершение освобождают слот; шаблон врача не меняется
func (s *Service) UpdateStatus(ctx context.Context, identity domain.Identity, bookingID uuid.UUID, status string) (*models.BookingResponse, error) {
	next, ok := domain.ParseBookingStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	var released bool

	booking, err := s.mutate(ctx, "UpdateStatus", bookingID, ownedByDoctor(identity),
		func(b *domain.Booking, _ time.Time) (change, error) {
			if b.Status == next {
				return change{noop: true}, nil
			}
			if !b.Status.CanTransitionTo(next) {
				return change{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, next)
			}
			b.Status = next
			released = !next.OccupiesSlot()
			return change{}, nil
		})
	if err != nil {
		return nil, err
	}

	if released {
		if err := s.cache.Invalidate(ctx, booking.DoctorID); err != nil {
			s.logger.Warn("UpdateStatus: failed to invalidate availability of doctor=%s: %v", booking.DoctorID, err)
		}
	}

	return models.FromDomainBooking(booking), nil
}

// ResetUnread сбрасывает свой счетчик непрочитанного для одной записи
func (s *Service) ResetUnread(ctx context.Context, identity domain.Identity, bookingID uuid.UUID) error {
	var authorize func(b *domain.Booking) bool

	switch {
	case identity.IsPatient():
		authorize = ownedByPatient(identity)
	case identity.IsDoctor():
		authorize = ownedByDoctor(identity)
	default:
		return ErrAccessDenied
	}

	_, err := s.mutate(ctx, "ResetUnread", bookingID, authorize,
		func(b *domain.Booking, now time.Time) (change, error) {
			viewed := now
			if identity.IsPatient() {
				b.UnreadDoctorResponses = 0
				b.LastViewedByPatient = &viewed
			} else {
				b.UnreadPatientUpdates = 0
				b.LastViewedByDoctor = &viewed
			}
			return change{}, nil
		})

	return err
}

// ResetUnreadBatch сбрасывает счетчики для набора записей одним запросом
// Неизвестные id пропускаются; чужая запись в наборе отклоняет весь запрос
func (s *Service) ResetUnreadBatch(ctx context.Context, identity domain.Identity, ids []uuid.UUID) (*models.ResetUnreadResponse, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: bookingIds must not be empty", ErrInvalidInput)
	}
	if len(ids) > domain.MaxBatchResetSize {
		return nil, fmt.Errorf("%w: at most %d bookingIds per request", ErrInvalidInput, domain.MaxBatchResetSize)
	}
	if !identity.IsPatient() && !identity.IsDoctor() {
		return nil, ErrAccessDenied
	}

	var updated int64

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		bookings, err := s.bookingRepo.GetByIDs(txCtx, ids)
		if err != nil {
			return fmt.Errorf("%w: ResetUnreadBatch - get bookings: %v", ErrInternal, err)
		}

		owned := make([]uuid.UUID, 0, len(bookings))
		for _, b := range bookings {
			if identity.IsPatient() && !b.IsOwnedByPatient(identity.UserID) ||
				identity.IsDoctor() && !b.IsOwnedByDoctor(identity.DoctorID) {
				return ErrAccessDenied
			}
			owned = append(owned, b.ID)
		}

		updated, err = s.bookingRepo.ResetUnread(txCtx, owned, identity.Role, s.timeProvider.Now())
		if err != nil {
			return fmt.Errorf("%w: ResetUnreadBatch - reset: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInternal) {
			s.logger.Error("ResetUnreadBatch: caller=%s: %v", identity.UserID, err)
		} else {
			s.logger.Warn("ResetUnreadBatch: caller=%s: %v", identity.UserID, err)
		}
		return nil, err
	}

	s.logger.Info("ResetUnreadBatch: caller=%s reset %d of %d bookings", identity.UserID, updated, len(ids))
	return &models.ResetUnreadResponse{Updated: updated}, nil
}

// Analyze синхронно запускает AI-анализ записи и возвращает результат
func (s *Service) Analyze(ctx context.Context, identity domain.Identity, bookingID uuid.UUID) (json.RawMessage, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		s.logger.Error("Analyze: repository error for booking=%s: %v", bookingID, err)
		return nil, fmt.Errorf("%w: Analyze - repository error: %v", ErrInternal, err)
	}

	if !canView(identity, booking) {
		s.logger.Warn("Analyze: access denied for caller=%s to booking=%s", identity.UserID, bookingID)
		return nil, ErrAccessDenied
	}

	result, err := s.analyzer.AnalyzeNow(ctx, bookingID)
	if err != nil {
		switch {
		case errors.Is(err, analysis.ErrBookingNotFound):
			return nil, ErrBookingNotFound
		case errors.Is(err, analysis.ErrUpstream), errors.Is(err, analysis.ErrDisabled):
			s.logger.Warn("Analyze: booking=%s: %v", bookingID, err)
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		default:
			s.logger.Error("Analyze: booking=%s: %v", bookingID, err)
			return nil, fmt.Errorf("%w: Analyze - %v", ErrInternal, err)
		}
	}

	s.logger.Info("Analyze: booking=%s analyzed", bookingID)
	return result, nil
}
