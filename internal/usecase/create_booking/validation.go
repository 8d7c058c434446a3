package create_booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.PatientID == uuid.Nil {
		return fmt.Errorf("%w: patientID is required", ErrInvalidInput)
	}

	if req.DoctorID == uuid.Nil {
		return fmt.Errorf("%w: doctorID is required", ErrInvalidInput)
	}

	// Проверяем, что дата не является нулевой
	if req.Date.IsZero() {
		return fmt.Errorf("%w: appointmentDate is required", ErrInvalidInput)
	}

	if err := req.TimeSlot.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTimeSlot, err)
	}

	if len(req.HealthIssues) > domain.MaxHealthIssuesLength {
		return fmt.Errorf("%w: healthIssues exceeds %d characters", ErrInvalidInput, domain.MaxHealthIssuesLength)
	}

	seen := make(map[string]struct{}, len(req.Reports))
	for _, g := range req.Reports {
		if err := domain.ValidateReportGroupName(g.Name); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if err := domain.ValidateReportFiles(g.Files); err != nil {
			return fmt.Errorf("%w: group %q: %v", ErrInvalidInput, g.Name, err)
		}
		name := strings.TrimSpace(g.Name)
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: duplicate report group %q", ErrInvalidInput, name)
		}
		seen[name] = struct{}{}
	}

	return nil
}

// validateDate проверяет, что дата попадает в [today, today+horizon)
func validateDate(date, today time.Time, horizon int) error {
	if date.Before(today) {
		return fmt.Errorf("%w: %s is in the past", ErrInvalidDate, date.Format(domain.DateFormat))
	}

	if !date.Before(today.AddDate(0, 0, horizon)) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrInvalidDate, horizon)
	}

	return nil
}

// validateSlotDay проверяет, что день недели слота совпадает с днем недели даты
func validateSlotDay(date time.Time, slot domain.TimeSlot) error {
	if weekday := domain.WeekdayOf(date); weekday != slot.Day {
		return fmt.Errorf("%w: %s is a %s, slot is for %s",
			ErrInvalidTimeSlot, date.Format(domain.DateFormat), weekday, slot.Day)
	}
	return nil
}

// seedHistory начальная история записи: одна запись жалоб и по событию added на каждый файл
func seedHistory(booking *domain.Booking, now time.Time) {
	if booking.CurrentHealthIssues != "" {
		booking.HealthIssuesHistory = []domain.TextEntry{{Text: booking.CurrentHealthIssues, UpdatedAt: now}}
	}

	for _, g := range booking.CurrentReports {
		for _, f := range g.Files {
			name, url := g.Name, f
			booking.ReportsHistory = append(booking.ReportsHistory, domain.ReportEvent{
				Name:      &name,
				Action:    domain.ReportAdded,
				ReportURL: &url,
				UpdatedAt: now,
			})
		}
	}
}

// normalizeReports обрезает пробелы в именах групп и ссылках
func normalizeReports(groups []domain.ReportGroup) []domain.ReportGroup {
	out := make([]domain.ReportGroup, 0, len(groups))
	for _, g := range groups {
		files := make([]string, 0, len(g.Files))
		for _, f := range g.Files {
			files = append(files, strings.TrimSpace(f))
		}
		out = append(out, domain.ReportGroup{Name: strings.TrimSpace(g.Name), Files: files})
	}
	return out
}
