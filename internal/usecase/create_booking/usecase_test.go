package create_booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	accountRepo "github.com/m04kA/SMC-DoctorBooking/internal/infra/storage/account"
	bookingRepo "github.com/m04kA/SMC-DoctorBooking/internal/infra/storage/booking"
	doctorRepo "github.com/m04kA/SMC-DoctorBooking/internal/infra/storage/doctor"
	"github.com/m04kA/SMC-DoctorBooking/internal/integrations/payments"
	"github.com/m04kA/SMC-DoctorBooking/pkg/logger"
	"github.com/m04kA/SMC-DoctorBooking/pkg/types"
)

// 2026-10-18 is a Sunday
var (
	today      = time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	nextMonday = today.AddDate(0, 0, 1)
)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

// memoryLedger emulates the partial unique index over active bookings
type memoryLedger struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*domain.Booking
}

func newLedger() *memoryLedger {
	return &memoryLedger{bookings: map[uuid.UUID]*domain.Booking{}}
}

func (l *memoryLedger) activeOn(doctorID uuid.UUID, date time.Time, slot domain.TimeSlot) bool {
	for _, b := range l.bookings {
		if b.DoctorID == doctorID && b.AppointmentDate.Equal(date) && b.TimeSlot.SameWindow(slot) && b.OccupiesSlot() {
			return true
		}
	}
	return false
}

func (l *memoryLedger) Create(_ context.Context, b *domain.Booking) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.activeOn(b.DoctorID, b.AppointmentDate, b.TimeSlot) {
		return bookingRepo.ErrSlotTaken
	}
	cp := *b
	l.bookings[b.ID] = &cp
	return nil
}

func (l *memoryLedger) GetByID(_ context.Context, id uuid.UUID) (*domain.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (l *memoryLedger) HasActiveBooking(_ context.Context, doctorID uuid.UUID, date time.Time, slot domain.TimeSlot) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.activeOn(doctorID, date, slot), nil
}

func (l *memoryLedger) Update(_ context.Context, b *domain.Booking) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := *b
	l.bookings[b.ID] = &cp
	return nil
}

func (l *memoryLedger) SetPaymentSession(_ context.Context, id uuid.UUID, sessionID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bookings[id].PaymentSessionID = &sessionID
	return nil
}

type fakeDoctors struct{ doctors map[uuid.UUID]*domain.Doctor }

func (f *fakeDoctors) GetByID(_ context.Context, id uuid.UUID) (*domain.Doctor, error) {
	d, ok := f.doctors[id]
	if !ok {
		return nil, doctorRepo.ErrDoctorNotFound
	}
	return d, nil
}

type fakePatients struct{ patients map[uuid.UUID]*domain.Patient }

func (f *fakePatients) GetPatient(_ context.Context, id uuid.UUID) (*domain.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, accountRepo.ErrAccountNotFound
	}
	return p, nil
}

type fakePayments struct {
	mu       sync.Mutex
	err      error
	requests []payments.CheckoutRequest
}

func (f *fakePayments) CreateCheckoutSession(_ context.Context, in payments.CheckoutRequest) (*payments.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, in)
	if f.err != nil {
		return nil, f.err
	}
	return &payments.CheckoutSession{ID: "cs_" + in.BookingID.String(), URL: "https://pay.test"}, nil
}

type countingCache struct {
	mu          sync.Mutex
	invalidated []uuid.UUID
}

func (c *countingCache) Invalidate(_ context.Context, ids ...uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, ids...)
	return nil
}

type countingMetrics struct {
	mu                 sync.Mutex
	created, conflicts int
}

func (m *countingMetrics) IncBookingCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created++
}

func (m *countingMetrics) IncSlotConflict() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflicts++
}

// serialTx runs transactions one at a time, like SERIALIZABLE without retries
type serialTx struct{ mu sync.Mutex }

func (t *serialTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}

func (t *serialTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.Do(ctx, fn)
}

type fixture struct {
	uc        *UseCase
	ledger    *memoryLedger
	payments  *fakePayments
	cache     *countingCache
	metrics   *countingMetrics
	doctor    *domain.Doctor
	patientID uuid.UUID
}

func mondaySlot() domain.TimeSlot {
	return domain.TimeSlot{
		Day:          domain.Monday,
		StartingTime: types.MustTimeString("09:00"),
		EndingTime:   types.MustTimeString("09:30"),
		IsAvailable:  true,
	}
}

func newFixture() *fixture {
	doctor := &domain.Doctor{
		ID:          uuid.New(),
		Name:        "Dr. House",
		TicketPrice: 500,
		IsApproved:  domain.ApprovalApproved,
		TimeSlots: []domain.TimeSlot{
			mondaySlot(),
			{Day: domain.Monday, StartingTime: types.MustTimeString("10:00"), EndingTime: types.MustTimeString("10:30"), IsAvailable: false},
		},
	}
	patientID := uuid.New()

	f := &fixture{
		ledger:    newLedger(),
		payments:  &fakePayments{},
		cache:     &countingCache{},
		metrics:   &countingMetrics{},
		doctor:    doctor,
		patientID: patientID,
	}
	f.uc = NewUseCase(
		f.ledger,
		&fakeDoctors{doctors: map[uuid.UUID]*domain.Doctor{doctor.ID: doctor}},
		&fakePatients{patients: map[uuid.UUID]*domain.Patient{patientID: {ID: patientID, Email: "ann@mail.test"}}},
		f.payments,
		f.cache,
		f.metrics,
		&serialTx{},
		30,
		time.UTC,
		logger.NewNop(),
	)
	f.uc.timeProvider = fixedTime{now: today.Add(9 * time.Hour)}
	return f
}

func (f *fixture) request() *Request {
	return &Request{
		PatientID:    f.patientID,
		DoctorID:     f.doctor.ID,
		Date:         nextMonday,
		TimeSlot:     mondaySlot(),
		HealthIssues: "  headache ",
		Reports:      []domain.ReportGroup{{Name: "CBC", Files: []string{"u1", "u2"}}},
	}
}

func TestExecute_CreatesPendingBookingWithHistory(t *testing.T) {
	f := newFixture()

	resp, err := f.uc.Execute(context.Background(), f.request())

	require.NoError(t, err)
	b := resp.Booking
	assert.Equal(t, domain.StatusPending, b.Status)
	assert.False(t, b.IsPaid)
	assert.Equal(t, 500.0, b.TicketPrice)
	assert.Equal(t, "headache", b.CurrentHealthIssues)
	assert.Len(t, b.HealthIssuesHistory, 1)
	require.Len(t, b.ReportsHistory, 2)
	assert.Equal(t, domain.ReportAdded, b.ReportsHistory[1].Action)
	assert.Equal(t, "u2", *b.ReportsHistory[1].ReportURL)
	assert.Equal(t, "cs_"+b.ID.String(), resp.SessionID)
	require.NotNil(t, b.PaymentSessionID)

	require.Len(t, f.payments.requests, 1)
	assert.Equal(t, []string{"u1", "u2"}, f.payments.requests[0].ReportURLs)
	assert.Equal(t, "ann@mail.test", f.payments.requests[0].CustomerEmail)
	assert.Equal(t, []uuid.UUID{f.doctor.ID}, f.cache.invalidated)
	assert.Equal(t, 1, f.metrics.created)
}

func TestExecute_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Request)
		wantErr error
	}{
		{name: "past date", mutate: func(r *Request) { r.Date = today.AddDate(0, 0, -6) }, wantErr: ErrInvalidDate},
		{name: "beyond horizon", mutate: func(r *Request) { r.Date = nextMonday.AddDate(0, 0, 35) }, wantErr: ErrInvalidDate},
		{name: "weekday mismatch", mutate: func(r *Request) { r.Date = nextMonday.AddDate(0, 0, 1) }, wantErr: ErrInvalidTimeSlot},
		{name: "disabled template slot", mutate: func(r *Request) {
			r.TimeSlot.StartingTime = types.MustTimeString("10:00")
			r.TimeSlot.EndingTime = types.MustTimeString("10:30")
		}, wantErr: ErrInvalidTimeSlot},
		{name: "slot not in template", mutate: func(r *Request) { r.TimeSlot.EndingTime = types.MustTimeString("09:45") }, wantErr: ErrInvalidTimeSlot},
		{name: "inverted slot", mutate: func(r *Request) { r.TimeSlot.EndingTime = types.MustTimeString("08:00") }, wantErr: ErrInvalidTimeSlot},
		{name: "empty group", mutate: func(r *Request) { r.Reports = []domain.ReportGroup{{Name: "CBC"}} }, wantErr: ErrInvalidInput},
		{name: "duplicate group", mutate: func(r *Request) {
			r.Reports = []domain.ReportGroup{{Name: "CBC", Files: []string{"a"}}, {Name: " CBC", Files: []string{"b"}}}
		}, wantErr: ErrInvalidInput},
		{name: "unknown doctor", mutate: func(r *Request) { r.DoctorID = uuid.New() }, wantErr: ErrDoctorNotFound},
		{name: "unknown patient", mutate: func(r *Request) { r.PatientID = uuid.New() }, wantErr: ErrPatientNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			req := f.request()
			tt.mutate(req)

			_, err := f.uc.Execute(context.Background(), req)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.ledger.bookings)
		})
	}
}

func TestExecute_UnapprovedDoctor(t *testing.T) {
	f := newFixture()
	f.doctor.IsApproved = domain.ApprovalPending

	_, err := f.uc.Execute(context.Background(), f.request())

	assert.ErrorIs(t, err, ErrDoctorNotAvailable)
}

func TestExecute_ConcurrentAttemptsOneWins(t *testing.T) {
	f := newFixture()

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.Execute(context.Background(), f.request())
		}(i)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrSlotConflict):
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, conflicts)
	assert.Equal(t, attempts-1, f.metrics.conflicts)
}

func TestExecute_CancelledBookingFreesSlot(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.uc.Execute(ctx, f.request())
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, f.request())
	require.ErrorIs(t, err, ErrSlotConflict)

	cancelled := *first.Booking
	cancelled.Status = domain.StatusCancelled
	require.NoError(t, f.ledger.Update(ctx, &cancelled))

	second, err := f.uc.Execute(ctx, f.request())
	require.NoError(t, err)
	assert.NotEqual(t, first.Booking.ID, second.Booking.ID)
}

func TestExecute_PaymentFailureReleasesSlot(t *testing.T) {
	f := newFixture()
	f.payments.err = payments.ErrProviderRejected
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, f.request())

	require.ErrorIs(t, err, ErrUpstream)
	require.Len(t, f.ledger.bookings, 1)
	for _, b := range f.ledger.bookings {
		assert.Equal(t, domain.StatusCancelled, b.Status)
	}
	// после создания и еще раз после отмены
	assert.Equal(t, []uuid.UUID{f.doctor.ID, f.doctor.ID}, f.cache.invalidated)

	f.payments.err = nil
	_, err = f.uc.Execute(ctx, f.request())
	assert.NoError(t, err)
}
