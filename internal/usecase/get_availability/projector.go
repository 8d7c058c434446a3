package get_availability

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
)

// project строит проекцию доступности врача на horizon дней начиная с today
//
// Проецируются только даты, день недели которых встречается в шаблоне (включая выключенные слоты).
// Занятые слоты дня: ключи активных записей на эту дату ∩ ключи включенных слотов шаблона.
// День полностью занят, если занято не меньше слотов, чем включено. День, в котором все
// слоты выключены, поэтому тоже считается полностью занятым.
func project(doctorID uuid.UUID, template []domain.TimeSlot, booked []domain.BookedSlot, today time.Time, horizon int) *domain.Projection {
	offered := make(map[domain.Weekday]bool, 7)
	enabled := make(map[domain.Weekday][]domain.TimeSlot, 7)
	for _, s := range template {
		offered[s.Day] = true
		if s.IsAvailable {
			enabled[s.Day] = append(enabled[s.Day], s)
		}
	}

	bookedByDate := make(map[string]map[string]struct{})
	for _, b := range booked {
		date := domain.NormalizeDate(b.Date).Format(domain.DateFormat)
		keys, ok := bookedByDate[date]
		if !ok {
			keys = make(map[string]struct{})
			bookedByDate[date] = keys
		}
		keys[b.Key()] = struct{}{}
	}

	days := make([]domain.DayAvailability, 0, horizon)
	for i := 0; i < horizon; i++ {
		date := today.AddDate(0, 0, i)
		weekday := domain.WeekdayOf(date)
		if !offered[weekday] {
			continue
		}

		keys := bookedByDate[date.Format(domain.DateFormat)]
		occupied := make([]string, 0)
		free := make([]domain.TimeSlot, 0)
		for _, s := range enabled[weekday] {
			if _, taken := keys[s.Key()]; taken {
				occupied = append(occupied, s.Key())
				continue
			}
			free = append(free, s)
		}

		days = append(days, domain.DayAvailability{
			Date:     date,
			Weekday:  weekday,
			State:    dayState(len(occupied), len(enabled[weekday])),
			Occupied: occupied,
			Free:     free,
		})
	}

	return &domain.Projection{
		DoctorID: doctorID,
		Today:    today,
		Horizon:  horizon,
		Days:     days,
	}
}

func dayState(occupied, enabled int) domain.DayState {
	switch {
	case occupied >= enabled:
		return domain.DayFullyBooked
	case occupied > 0:
		return domain.DayPartialBooked
	default:
		return domain.DayOpen
	}
}

// availableDates даты, на которые еще можно записаться
func availableDates(p *domain.Projection) []time.Time {
	dates := make([]time.Time, 0, len(p.Days))
	for _, d := range p.Days {
		if d.State != domain.DayFullyBooked {
			dates = append(dates, d.Date)
		}
	}
	return dates
}

// blockedDates полностью занятые даты
func blockedDates(p *domain.Projection) []time.Time {
	dates := make([]time.Time, 0)
	for _, d := range p.Days {
		if d.State == domain.DayFullyBooked {
			dates = append(dates, d.Date)
		}
	}
	return dates
}

// blockedMap дата -> "fully booked" | занятые ключи слотов | пустой список
func blockedMap(p *domain.Projection) map[string]interface{} {
	result := make(map[string]interface{}, len(p.Days))
	for _, d := range p.Days {
		key := d.Date.Format(domain.DateFormat)
		switch d.State {
		case domain.DayFullyBooked:
			result[key] = domain.FullyBookedMarker
		default:
			occupied := make([]string, len(d.Occupied))
			copy(occupied, d.Occupied)
			result[key] = occupied
		}
	}
	return result
}

// freeSlots свободные включенные слоты шаблона на дату; пусто, если день недели не в шаблоне
func freeSlots(p *domain.Projection, date time.Time) []domain.TimeSlot {
	for _, d := range p.Days {
		if d.Date.Equal(date) {
			slots := make([]domain.TimeSlot, len(d.Free))
			copy(slots, d.Free)
			return slots
		}
	}
	return []domain.TimeSlot{}
}

// withinHorizon проверяет, что дата попадает в [today, today+horizon)
func withinHorizon(date, today time.Time, horizon int) bool {
	return !date.Before(today) && date.Before(today.AddDate(0, 0, horizon))
}
