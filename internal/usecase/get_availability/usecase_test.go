package get_availability

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	doctorRepo "github.com/m04kA/SMC-DoctorBooking/internal/infra/storage/doctor"
	"github.com/m04kA/SMC-DoctorBooking/pkg/logger"
)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type fakeBookings struct {
	mu    sync.Mutex
	slots []domain.BookedSlot
	calls int
	// afterRead вызывается после чтения слотов, до возврата результата
	afterRead func(ctx context.Context)
}

func (f *fakeBookings) ListOccupiedSlots(ctx context.Context, _ uuid.UUID, from time.Time) ([]domain.BookedSlot, error) {
	f.mu.Lock()
	f.calls++
	out := make([]domain.BookedSlot, 0, len(f.slots))
	for _, s := range f.slots {
		if !s.Date.Before(from) {
			out = append(out, s)
		}
	}
	hook := f.afterRead
	f.mu.Unlock()

	if hook != nil {
		hook(ctx)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type fakeDoctors struct {
	doctors map[uuid.UUID]*domain.Doctor
}

func (f *fakeDoctors) GetByID(_ context.Context, id uuid.UUID) (*domain.Doctor, error) {
	d, ok := f.doctors[id]
	if !ok {
		return nil, doctorRepo.ErrDoctorNotFound
	}
	return d, nil
}

type cacheKey struct {
	doctorID   uuid.UUID
	generation int64
}

// memoryCache повторяет схему redis-кэша: проекция лежит под ключом поколения
type memoryCache struct {
	mu    sync.Mutex
	gens  map[uuid.UUID]int64
	items map[cacheKey]*domain.Projection
}

func newMemoryCache() *memoryCache {
	return &memoryCache{gens: map[uuid.UUID]int64{}, items: map[cacheKey]*domain.Projection{}}
}

func (c *memoryCache) Generation(_ context.Context, id uuid.UUID) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[id], nil
}

func (c *memoryCache) Get(_ context.Context, id uuid.UUID, today time.Time) (*domain.Projection, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.items[cacheKey{id, c.gens[id]}]
	if !ok || !p.Today.Equal(today) {
		return nil, false, nil
	}
	return p, true, nil
}

func (c *memoryCache) Set(_ context.Context, p *domain.Projection, generation int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[cacheKey{p.DoctorID, generation}] = p
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, ids ...uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		c.gens[id]++
	}
	return nil
}

type countingMetrics struct {
	mu           sync.Mutex
	hits, misses int
}

func (m *countingMetrics) ObserveCacheLookup(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

type fixture struct {
	uc       *UseCase
	bookings *fakeBookings
	cache    *memoryCache
	metrics  *countingMetrics
	doctorID uuid.UUID
}

func newFixture(template ...domain.TimeSlot) *fixture {
	doctorID := uuid.New()
	f := &fixture{
		bookings: &fakeBookings{},
		cache:    newMemoryCache(),
		metrics:  &countingMetrics{},
		doctorID: doctorID,
	}
	doctors := &fakeDoctors{doctors: map[uuid.UUID]*domain.Doctor{
		doctorID: {ID: doctorID, IsApproved: domain.ApprovalApproved, TimeSlots: template},
	}}
	f.uc = NewUseCase(f.bookings, doctors, f.cache, f.metrics, 30, time.UTC, logger.NewNop())
	// Sunday afternoon
	f.uc.timeProvider = fixedTime{now: today.Add(15 * time.Hour)}
	return f
}

func TestProject_UsesCacheForSameDay(t *testing.T) {
	f := newFixture(slot(domain.Monday, "09:00", "09:30", true))
	ctx := context.Background()

	_, err := f.uc.Project(ctx, f.doctorID)
	require.NoError(t, err)
	_, err = f.uc.Project(ctx, f.doctorID)
	require.NoError(t, err)

	assert.Equal(t, 1, f.bookings.calls)
	assert.Equal(t, 1, f.metrics.hits)
	assert.Equal(t, 1, f.metrics.misses)

	// next day the cached projection is stale
	f.uc.timeProvider = fixedTime{now: today.AddDate(0, 0, 1).Add(time.Hour)}
	p, err := f.uc.Project(ctx, f.doctorID)
	require.NoError(t, err)
	assert.Equal(t, 2, f.bookings.calls)
	assert.Equal(t, today.AddDate(0, 0, 1), p.Today)
}

func TestProject_TodayFollowsConfiguredZone(t *testing.T) {
	f := newFixture(slot(domain.Monday, "09:00", "09:30", true))
	zone := time.FixedZone("UTC+5", 5*60*60)
	f.uc.location = zone
	// 20:00 UTC on Sunday is already Monday in UTC+5
	f.uc.timeProvider = fixedTime{now: today.Add(20 * time.Hour)}

	p, err := f.uc.Project(context.Background(), f.doctorID)

	require.NoError(t, err)
	assert.Equal(t, today.AddDate(0, 0, 1), p.Today)
}

func TestProject_DoctorNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Project(context.Background(), uuid.New())

	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestProject_ConcurrentCallsShareOneComputation(t *testing.T) {
	f := newFixture(slot(domain.Monday, "09:00", "09:30", true))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.AvailableDates(context.Background(), f.doctorID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// every call either hit the cache or shared a computation; never one per call
	assert.LessOrEqual(t, f.bookings.calls, 20)
	assert.Equal(t, 20, f.metrics.hits+f.metrics.misses)
}

func TestMondayScenario_BookThenCancel(t *testing.T) {
	f := newFixture(slot(domain.Monday, "09:00", "09:30", true))
	ctx := context.Background()
	monday := today.AddDate(0, 0, 1)

	f.bookings.slots = []domain.BookedSlot{booked(monday, "09:00", "09:30")}
	blocked, err := f.uc.BlockedDates(ctx, f.doctorID)
	require.NoError(t, err)
	assert.Contains(t, blocked, monday)

	// the cancellation releases the slot and invalidates the cache
	f.bookings.slots = nil
	require.NoError(t, f.cache.Invalidate(ctx, f.doctorID))

	m, err := f.uc.BlockedDatesWithSlots(ctx, f.doctorID)
	require.NoError(t, err)
	assert.Equal(t, []string{}, m[monday.Format(domain.DateFormat)])

	available, err := f.uc.AvailableDates(ctx, f.doctorID)
	require.NoError(t, err)
	assert.Contains(t, available, monday)
}

func TestProject_CancelDuringComputationIsNotCached(t *testing.T) {
	f := newFixture(slot(domain.Monday, "09:00", "09:30", true))
	ctx := context.Background()
	monday := today.AddDate(0, 0, 1)
	f.bookings.slots = []domain.BookedSlot{booked(monday, "09:00", "09:30")}

	// отмена коммитится и сбрасывает кэш между чтением записей и записью проекции
	var once sync.Once
	f.bookings.afterRead = func(context.Context) {
		once.Do(func() {
			f.bookings.mu.Lock()
			f.bookings.slots = nil
			f.bookings.mu.Unlock()
			assert.NoError(t, f.cache.Invalidate(ctx, f.doctorID))
		})
	}

	blocked, err := f.uc.BlockedDates(ctx, f.doctorID)
	require.NoError(t, err)
	assert.Contains(t, blocked, monday)

	blocked, err = f.uc.BlockedDates(ctx, f.doctorID)
	require.NoError(t, err)
	assert.NotContains(t, blocked, monday)
	assert.Equal(t, 2, f.bookings.calls)
}

func TestProject_SharedComputationSurvivesCallerCancel(t *testing.T) {
	f := newFixture(slot(domain.Monday, "09:00", "09:30", true))

	entered := make(chan struct{})
	release := make(chan struct{})
	computeErr := make(chan error, 1)
	var once sync.Once
	f.bookings.afterRead = func(ctx context.Context) {
		once.Do(func() {
			close(entered)
			<-release
			computeErr <- ctx.Err()
		})
	}

	callerCtx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := f.uc.Project(callerCtx, f.doctorID)
		first <- err
	}()
	<-entered

	second := make(chan error, 1)
	go func() {
		_, err := f.uc.Project(context.Background(), f.doctorID)
		second <- err
	}()

	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)

	close(release)
	assert.NoError(t, <-computeErr, "shared computation must not inherit the first caller's cancellation")
	assert.NoError(t, <-second)
}

func TestFreeSlots(t *testing.T) {
	f := newFixture(
		slot(domain.Monday, "09:00", "09:30", true),
		slot(domain.Monday, "09:30", "10:00", true),
	)
	ctx := context.Background()
	monday := today.AddDate(0, 0, 1)
	f.bookings.slots = []domain.BookedSlot{booked(monday, "09:00", "09:30")}

	resp, err := f.uc.FreeSlots(ctx, f.doctorID, monday.Add(13*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, domain.Monday, resp.Weekday)
	require.Len(t, resp.Slots, 1)
	assert.Equal(t, "09:30-10:00", resp.Slots[0].Key())

	_, err = f.uc.FreeSlots(ctx, f.doctorID, today.AddDate(0, 0, 30))
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = f.uc.FreeSlots(ctx, f.doctorID, today.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = f.uc.FreeSlots(ctx, f.doctorID, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
