package get_availability

import (
	"time"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
)

// FreeSlotsResponse свободные слоты шаблона на конкретную дату
type FreeSlotsResponse struct {
	Date    time.Time
	Weekday domain.Weekday
	Slots   []domain.TimeSlot
}
