package get_availability

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	"github.com/m04kA/SMC-DoctorBooking/pkg/types"
)

// 2026-10-18 is a Sunday
var today = time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

func slot(day domain.Weekday, start, end string, enabled bool) domain.TimeSlot {
	return domain.TimeSlot{
		Day:          day,
		StartingTime: types.MustTimeString(start),
		EndingTime:   types.MustTimeString(end),
		IsAvailable:  enabled,
	}
}

func booked(date time.Time, start, end string) domain.BookedSlot {
	return domain.BookedSlot{Date: date, StartingTime: start, EndingTime: end}
}

func dayOf(t *testing.T, p *domain.Projection, date time.Time) domain.DayAvailability {
	t.Helper()
	for _, d := range p.Days {
		if d.Date.Equal(date) {
			return d
		}
	}
	t.Fatalf("date %s not projected", date.Format(domain.DateFormat))
	return domain.DayAvailability{}
}

func TestProject_OnlyTemplateWeekdays(t *testing.T) {
	template := []domain.TimeSlot{
		slot(domain.Monday, "09:00", "09:30", true),
		slot(domain.Wednesday, "10:00", "10:30", false),
	}

	p := project(uuid.New(), template, nil, today, 30)

	for _, d := range p.Days {
		assert.Contains(t, []domain.Weekday{domain.Monday, domain.Wednesday}, d.Weekday)
		assert.False(t, d.Date.Before(today))
		assert.True(t, d.Date.Before(today.AddDate(0, 0, 30)))
	}
	// 30 days from a Sunday: 5 Mondays and 4 Wednesdays
	assert.Len(t, p.Days, 9)
}

func TestProject_DayStates(t *testing.T) {
	monday := today.AddDate(0, 0, 1)
	nextMonday := monday.AddDate(0, 0, 7)
	mondayAfter := nextMonday.AddDate(0, 0, 7)
	wednesday := today.AddDate(0, 0, 3)

	template := []domain.TimeSlot{
		slot(domain.Monday, "09:00", "09:30", true),
		slot(domain.Monday, "09:30", "10:00", true),
		slot(domain.Monday, "10:00", "10:30", false),
		slot(domain.Wednesday, "10:00", "10:30", false),
	}
	bookings := []domain.BookedSlot{
		booked(monday, "09:00", "09:30"),
		booked(monday, "09:30", "10:00"),
		booked(nextMonday, "09:30", "10:00"),
		// disabled slot bookings do not count towards occupancy
		booked(mondayAfter, "10:00", "10:30"),
	}

	p := project(uuid.New(), template, bookings, today, 30)

	full := dayOf(t, p, monday)
	assert.Equal(t, domain.DayFullyBooked, full.State)
	assert.Equal(t, []string{"09:00-09:30", "09:30-10:00"}, full.Occupied)
	assert.Empty(t, full.Free)

	partial := dayOf(t, p, nextMonday)
	assert.Equal(t, domain.DayPartialBooked, partial.State)
	assert.Equal(t, []string{"09:30-10:00"}, partial.Occupied)
	require.Len(t, partial.Free, 1)
	assert.Equal(t, "09:00-09:30", partial.Free[0].Key())

	open := dayOf(t, p, mondayAfter)
	assert.Equal(t, domain.DayOpen, open.State)
	assert.Empty(t, open.Occupied)
	assert.Len(t, open.Free, 2)

	// a weekday whose slots are all disabled has nothing to offer
	assert.Equal(t, domain.DayFullyBooked, dayOf(t, p, wednesday).State)
}

func TestProject_OccupiedAndFreeAreComplements(t *testing.T) {
	monday := today.AddDate(0, 0, 1)
	template := []domain.TimeSlot{
		slot(domain.Monday, "09:00", "09:30", true),
		slot(domain.Monday, "09:30", "10:00", true),
		slot(domain.Monday, "10:00", "10:30", true),
	}

	p := project(uuid.New(), template, []domain.BookedSlot{booked(monday, "09:30", "10:00")}, today, 30)

	d := dayOf(t, p, monday)
	keys := append([]string{}, d.Occupied...)
	for _, s := range d.Free {
		keys = append(keys, s.Key())
	}
	assert.ElementsMatch(t, []string{"09:00-09:30", "09:30-10:00", "10:00-10:30"}, keys)
}

func TestOutputModes(t *testing.T) {
	monday := today.AddDate(0, 0, 1)
	tuesday := today.AddDate(0, 0, 2)
	template := []domain.TimeSlot{
		slot(domain.Monday, "09:00", "09:30", true),
		slot(domain.Tuesday, "09:00", "09:30", true),
		slot(domain.Tuesday, "09:30", "10:00", true),
	}
	bookings := []domain.BookedSlot{
		booked(monday, "09:00", "09:30"),
		booked(tuesday, "09:30", "10:00"),
	}

	p := project(uuid.New(), template, bookings, today, 7)

	assert.Equal(t, []time.Time{monday}, blockedDates(p))
	assert.Equal(t, []time.Time{tuesday}, availableDates(p))

	m := blockedMap(p)
	assert.Equal(t, domain.FullyBookedMarker, m[monday.Format(domain.DateFormat)])
	assert.Equal(t, []string{"09:30-10:00"}, m[tuesday.Format(domain.DateFormat)])
	assert.Len(t, m, 2)

	free := freeSlots(p, tuesday)
	require.Len(t, free, 1)
	assert.Equal(t, "09:00-09:30", free[0].Key())
	assert.Empty(t, freeSlots(p, today.AddDate(0, 0, 3)))
}

func TestBlockedMap_OpenDayIsEmptyList(t *testing.T) {
	template := []domain.TimeSlot{slot(domain.Monday, "09:00", "09:30", true)}

	p := project(uuid.New(), template, nil, today, 7)

	assert.Equal(t, []string{}, blockedMap(p)[today.AddDate(0, 0, 1).Format(domain.DateFormat)])
}

func TestWithinHorizon(t *testing.T) {
	assert.True(t, withinHorizon(today, today, 30))
	assert.True(t, withinHorizon(today.AddDate(0, 0, 29), today, 30))
	assert.False(t, withinHorizon(today.AddDate(0, 0, 30), today, 30))
	assert.False(t, withinHorizon(today.AddDate(0, 0, -1), today, 30))
}
