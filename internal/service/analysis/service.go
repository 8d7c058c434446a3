package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	bookingRepo "github.com/m04kA/SMC-DoctorBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-DoctorBooking/internal/integrations/aisummarizer"
)

const defaultTimeout = 60 * time.Second

// Service запускает AI-анализ записи и сохраняет результат
// Фоновые запуски отслеживаются, чтобы при остановке дождаться их завершения
type Service struct {
	bookingRepo BookingRepository
	patientRepo PatientRepository
	summarizer  Summarizer
	metrics     Metrics
	timeout     time.Duration
	logger      Logger

	wg sync.WaitGroup
}

// NewService создает сервис анализа. summarizer == nil выключает анализ.
func NewService(
	bookingRepo BookingRepository,
	patientRepo PatientRepository,
	summarizer Summarizer,
	metrics Metrics,
	timeout time.Duration,
	logger Logger,
) *Service {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Service{
		bookingRepo: bookingRepo,
		patientRepo: patientRepo,
		summarizer:  summarizer,
		metrics:     metrics,
		timeout:     timeout,
		logger:      logger,
	}
}

// Enabled сообщает, настроен ли AI-сервис
func (s *Service) Enabled() bool {
	return s.summarizer != nil
}

// Trigger запускает анализ в фоне и сразу возвращает управление
// Контекст запроса не отменяет анализ: используется собственный таймаут
func (s *Service) Trigger(ctx context.Context, bookingID uuid.UUID) {
	if !s.Enabled() {
		return
	}

	bgCtx := context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		runCtx, cancel := context.WithTimeout(bgCtx, s.timeout)
		defer cancel()

		if _, err := s.AnalyzeNow(runCtx, bookingID); err != nil {
			s.logger.Warn("Analysis: background analysis of booking=%s failed: %v", bookingID, err)
		}
	}()
}

// AnalyzeNow синхронно анализирует запись и сохраняет результат
func (s *Service) AnalyzeNow(ctx context.Context, bookingID uuid.UUID) (json.RawMessage, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("%w: AnalyzeNow - get booking: %v", ErrInternal, err)
	}

	patient, err := s.patientRepo.GetPatient(ctx, booking.PatientID)
	if err != nil {
		return nil, fmt.Errorf("%w: AnalyzeNow - get patient %s: %v", ErrInternal, booking.PatientID, err)
	}

	analysis, err := s.summarizer.Analyze(ctx, aisummarizer.Input{
		Patient:      *patient,
		Reports:      booking.CurrentReports,
		HealthIssues: booking.CurrentHealthIssues,
	})
	if err != nil {
		s.metrics.ObserveAIAnalysis(false)
		return nil, fmt.Errorf("%w: AnalyzeNow - booking %s: %v", ErrUpstream, bookingID, err)
	}

	if err := s.bookingRepo.SetAIAnalysis(ctx, bookingID, analysis); err != nil {
		s.metrics.ObserveAIAnalysis(false)
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("%w: AnalyzeNow - store analysis: %v", ErrInternal, err)
	}

	s.metrics.ObserveAIAnalysis(true)
	s.logger.Info("Analysis: stored analysis for booking=%s (%d bytes)", bookingID, len(analysis))
	return analysis, nil
}

// Wait ждет завершения фоновых анализов или отмены ctx
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
