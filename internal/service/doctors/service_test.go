package doctors

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	doctorRepo "github.com/m04kA/SMC-DoctorBooking/internal/infra/storage/doctor"
	"github.com/m04kA/SMC-DoctorBooking/internal/service/doctors/models"
	"github.com/m04kA/SMC-DoctorBooking/pkg/logger"
	"github.com/m04kA/SMC-DoctorBooking/pkg/types"
)

type fakeDoctors struct {
	doctors  map[uuid.UUID]*domain.Doctor
	replaced []domain.TimeSlot
	query    string
}

func (f *fakeDoctors) GetByID(_ context.Context, id uuid.UUID) (*domain.Doctor, error) {
	d, ok := f.doctors[id]
	if !ok {
		return nil, doctorRepo.ErrDoctorNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDoctors) ReplaceTimeSlots(_ context.Context, _ uuid.UUID, slots []domain.TimeSlot) error {
	f.replaced = slots
	return nil
}

func (f *fakeDoctors) Search(_ context.Context, text string) ([]*domain.Doctor, error) {
	f.query = text
	var out []*domain.Doctor
	for _, d := range f.doctors {
		if d.IsVisible() {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeBookings struct {
	filter    domain.DoctorAppointmentsFilter
	cancelled []uuid.UUID
	date      time.Time
	start     *string
	end       *string
}

func (f *fakeBookings) ListByDoctor(_ context.Context, filter domain.DoctorAppointmentsFilter) ([]*domain.Booking, error) {
	f.filter = filter
	return []*domain.Booking{{ID: uuid.New(), DoctorID: filter.DoctorID, Status: domain.StatusApproved}}, nil
}

func (f *fakeBookings) CancelForDoctorDate(_ context.Context, _ uuid.UUID, date time.Time, start, end *string) ([]uuid.UUID, error) {
	f.date, f.start, f.end = date, start, end
	return f.cancelled, nil
}

type fakeCache struct {
	invalidated []uuid.UUID
}

func (f *fakeCache) Invalidate(_ context.Context, ids ...uuid.UUID) error {
	f.invalidated = append(f.invalidated, ids...)
	return nil
}

type passTx struct{}

func (passTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func slot(day domain.Weekday, start, end string) domain.TimeSlot {
	return domain.TimeSlot{Day: day, StartingTime: types.MustTimeString(start), EndingTime: types.MustTimeString(end), IsAvailable: true}
}

type fixture struct {
	svc      *Service
	doctors  *fakeDoctors
	bookings *fakeBookings
	cache    *fakeCache
	doctor   domain.Identity
	desk     domain.Identity
	patient  domain.Identity
}

func newFixture() *fixture {
	doctorID := uuid.New()
	f := &fixture{
		doctors: &fakeDoctors{doctors: map[uuid.UUID]*domain.Doctor{
			doctorID: {ID: doctorID, Name: "House", IsApproved: domain.ApprovalApproved},
		}},
		bookings: &fakeBookings{},
		cache:    &fakeCache{},
		doctor:   domain.Identity{UserID: doctorID, Role: domain.RoleDoctor, DoctorID: doctorID},
		desk:     domain.Identity{UserID: uuid.New(), Role: domain.RoleReceptionist, DoctorID: doctorID},
		patient:  domain.Identity{UserID: uuid.New(), Role: domain.RolePatient},
	}
	f.svc = NewService(f.doctors, f.bookings, f.cache, passTx{}, logger.NewNop())
	return f
}

func TestReplaceTimeSlots(t *testing.T) {
	f := newFixture()
	slots := []domain.TimeSlot{slot(domain.Monday, "09:00", "09:30"), slot(domain.Monday, "09:30", "10:00")}

	resp, err := f.svc.ReplaceTimeSlots(t.Context(), f.doctor, &models.ReplaceTimeSlotsRequest{TimeSlots: slots})

	require.NoError(t, err)
	assert.Equal(t, slots, resp.TimeSlots)
	assert.Equal(t, slots, f.doctors.replaced)
	assert.Equal(t, []uuid.UUID{f.doctor.DoctorID}, f.cache.invalidated)
}

func TestReplaceTimeSlots_Validation(t *testing.T) {
	tests := []struct {
		name  string
		slots []domain.TimeSlot
	}{
		{name: "duplicate", slots: []domain.TimeSlot{slot(domain.Monday, "09:00", "09:30"), slot(domain.Monday, "09:00", "09:30")}},
		{name: "start after end", slots: []domain.TimeSlot{slot(domain.Monday, "10:00", "09:30")}},
		{name: "unknown day", slots: []domain.TimeSlot{slot(domain.Weekday("funday"), "09:00", "09:30")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.ReplaceTimeSlots(t.Context(), f.doctor, &models.ReplaceTimeSlotsRequest{TimeSlots: tt.slots})
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Nil(t, f.doctors.replaced)
			assert.Empty(t, f.cache.invalidated)
		})
	}

	f := newFixture()
	_, err := f.svc.ReplaceTimeSlots(t.Context(), f.desk, &models.ReplaceTimeSlotsRequest{})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetByID_HidesUnapproved(t *testing.T) {
	f := newFixture()
	hidden := uuid.New()
	f.doctors.doctors[hidden] = &domain.Doctor{ID: hidden, IsApproved: domain.ApprovalPending}

	resp, err := f.svc.GetByID(t.Context(), f.doctor.DoctorID)
	require.NoError(t, err)
	assert.Equal(t, "House", resp.Name)
	assert.NotNil(t, resp.TimeSlots)

	_, err = f.svc.GetByID(t.Context(), hidden)
	assert.ErrorIs(t, err, ErrDoctorNotFound)

	_, err = f.svc.GetByID(t.Context(), uuid.New())
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestAppointments_Filter(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.Appointments(t.Context(), f.desk, &models.AppointmentsFilterRequest{
		Date:         "2026-10-19",
		StartingTime: "09:00",
	})

	require.NoError(t, err)
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, f.doctor.DoctorID, f.bookings.filter.DoctorID)
	require.NotNil(t, f.bookings.filter.Date)
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), *f.bookings.filter.Date)
	assert.Equal(t, "09:00", *f.bookings.filter.StartingTime)
	assert.Nil(t, f.bookings.filter.EndingTime)

	_, err = f.svc.Appointments(t.Context(), f.doctor, &models.AppointmentsFilterRequest{Date: "19.10.2026"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Appointments(t.Context(), f.patient, &models.AppointmentsFilterRequest{})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestCancelAppointments(t *testing.T) {
	f := newFixture()
	f.bookings.cancelled = []uuid.UUID{uuid.New(), uuid.New()}

	resp, err := f.svc.CancelAppointments(t.Context(), f.doctor, &models.CancelAppointmentsRequest{
		Date:         "2026-10-19",
		StartingTime: "09:00",
		EndingTime:   "09:30",
	})

	require.NoError(t, err)
	assert.Equal(t, 2, resp.Cancelled)
	assert.Equal(t, "09:30", *f.bookings.end)
	assert.Equal(t, []uuid.UUID{f.doctor.DoctorID}, f.cache.invalidated)

	_, err = f.svc.CancelAppointments(t.Context(), f.desk, &models.CancelAppointmentsRequest{Date: "2026-10-19"})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.CancelAppointments(t.Context(), f.doctor, &models.CancelAppointmentsRequest{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetProfile(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.GetProfile(t.Context(), f.desk)

	require.NoError(t, err)
	assert.Equal(t, "House", resp.Doctor.Name)
	assert.Len(t, resp.Appointments.Bookings, 1)

	_, err = f.svc.GetProfile(t.Context(), f.patient)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestSearch(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.Search(t.Context(), "hou")

	require.NoError(t, err)
	assert.Equal(t, "hou", f.doctors.query)
	require.Len(t, resp.Doctors, 1)
}
