package doctors

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	"github.com/m04kA/SMC-DoctorBooking/pkg/types"
)

// validateTemplate проверяет шаблон: известный день, start < end, без дублей
func validateTemplate(slots []domain.TimeSlot) error {
	if len(slots) > domain.MaxTemplateSlots {
		return fmt.Errorf("%w: at most %d time slots", ErrInvalidInput, domain.MaxTemplateSlots)
	}

	seen := make(map[string]struct{}, len(slots))
	for i, s := range slots {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("%w: timeSlots[%d]: %v", ErrInvalidInput, i, err)
		}

		key := string(s.Day) + " " + s.Key()
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: timeSlots[%d]: duplicate slot %s", ErrInvalidInput, i, key)
		}
		seen[key] = struct{}{}
	}

	return nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(domain.DateFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	return domain.NormalizeDate(d), nil
}

// parseOptionalTime разбирает необязательное время HH:MM
func parseOptionalTime(field, s string) (*string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	t, err := types.NewTimeStringFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be HH:MM", ErrInvalidInput, field)
	}

	v := t.String()
	return &v, nil
}
