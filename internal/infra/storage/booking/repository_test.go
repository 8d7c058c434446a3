package booking

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	"github.com/m04kA/SMC-DoctorBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-DoctorBooking/pkg/ptr"
	"github.com/m04kA/SMC-DoctorBooking/pkg/types"
)

func newRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(dbmetrics.Wrap(db, nil, "test")), mock
}

func mondaySlot() domain.TimeSlot {
	return domain.TimeSlot{
		Day:          domain.Monday,
		StartingTime: types.MustTimeString("09:00"),
		EndingTime:   types.MustTimeString("09:30"),
		IsAvailable:  true,
	}
}

func newBooking() *domain.Booking {
	now := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)
	return &domain.Booking{
		ID:                  uuid.New(),
		DoctorID:            uuid.New(),
		PatientID:           uuid.New(),
		TicketPrice:         500,
		AppointmentDate:     time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		TimeSlot:            mondaySlot(),
		Status:              domain.StatusPending,
		CurrentHealthIssues: "headache",
		HealthIssuesHistory: []domain.TextEntry{{Text: "headache", UpdatedAt: now}},
		CurrentReports:      []domain.ReportGroup{{Name: "CBC", Files: []string{"u1", "u2"}}},
		ReportsHistory: []domain.ReportEvent{
			{Name: ptr.Ptr("CBC"), Action: domain.ReportAdded, ReportURL: ptr.Ptr("u1"), UpdatedAt: now},
			{Name: ptr.Ptr("CBC"), Action: domain.ReportAdded, ReportURL: ptr.Ptr("u2"), UpdatedAt: now},
		},
	}
}

func TestCreate_WritesBookingAndHistory(t *testing.T) {
	repo, mock := newRepo(t)
	b := newBooking()
	created := time.Now()

	mock.ExpectQuery("INSERT INTO bookings").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(created, created))
	mock.ExpectExec("INSERT INTO booking_health_issues").
		WithArgs(b.ID, "headache", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO booking_report_events").
		WillReturnResult(sqlmock.NewResult(2, 2))

	err := repo.Create(context.Background(), b)

	require.NoError(t, err)
	assert.Equal(t, created, b.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_UniqueViolationIsSlotTaken(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery("INSERT INTO bookings").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "bookings_active_slot_uq"})

	err := repo.Create(context.Background(), newBooking())

	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = \\$1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetByID_LoadsHistory(t *testing.T) {
	repo, mock := newRepo(t)
	b := newBooking()
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = \\$1").
		WithArgs(b.ID).
		WillReturnRows(sqlmock.NewRows(bookingColumns).AddRow(
			b.ID.String(), b.DoctorID.String(), b.PatientID.String(), "500.00",
			b.AppointmentDate, "monday", "09:00", "09:30",
			"approved", true, "headache", []byte(`[{"name":"CBC","files":["u1","u2"]}]`),
			1, 2, nil, now, nil, "cs_test_1", now, now,
		))
	mock.ExpectQuery("SELECT text, updated_at FROM booking_health_issues").
		WillReturnRows(sqlmock.NewRows([]string{"text", "updated_at"}).AddRow("headache", now))
	mock.ExpectQuery("SELECT text, updated_at FROM booking_doctor_responses").
		WillReturnRows(sqlmock.NewRows([]string{"text", "updated_at"}))
	mock.ExpectQuery("SELECT name, action, report_url, updated_at FROM booking_report_events").
		WillReturnRows(sqlmock.NewRows([]string{"name", "action", "report_url", "updated_at"}).
			AddRow("CBC", "added", "u1", now).
			AddRow("CBC", "removed", nil, now))

	got, err := repo.GetByID(context.Background(), b.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, got.Status)
	assert.Equal(t, 500.0, got.TicketPrice)
	assert.Equal(t, "09:00-09:30", got.TimeSlot.Key())
	assert.Equal(t, []domain.ReportGroup{{Name: "CBC", Files: []string{"u1", "u2"}}}, got.CurrentReports)
	assert.Equal(t, 2, got.UnreadPatientUpdates)
	assert.Nil(t, got.LastViewedByDoctor)
	require.NotNil(t, got.LastViewedByPatient)
	require.NotNil(t, got.PaymentSessionID)
	assert.Equal(t, "cs_test_1", *got.PaymentSessionID)
	assert.Len(t, got.HealthIssuesHistory, 1)
	assert.Empty(t, got.DoctorResponses)
	require.Len(t, got.ReportsHistory, 2)
	assert.Nil(t, got.ReportsHistory[1].ReportURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasActiveBooking(t *testing.T) {
	repo, mock := newRepo(t)
	b := newBooking()

	mock.ExpectQuery("SELECT id FROM bookings WHERE (.+) status NOT IN \\(\\$6,\\$7\\) LIMIT 1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))

	taken, err := repo.HasActiveBooking(context.Background(), b.DoctorID, b.AppointmentDate, b.TimeSlot)

	require.NoError(t, err)
	assert.True(t, taken)

	mock.ExpectQuery("SELECT id FROM bookings").WillReturnError(sql.ErrNoRows)

	taken, err = repo.HasActiveBooking(context.Background(), b.DoctorID, b.AppointmentDate, b.TimeSlot)

	require.NoError(t, err)
	assert.False(t, taken)
}

func TestListOccupiedSlots(t *testing.T) {
	repo, mock := newRepo(t)
	doctorID := uuid.New()
	from := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT appointment_date, slot_start, slot_end FROM bookings").
		WithArgs(doctorID, from, "cancelled", "completed").
		WillReturnRows(sqlmock.NewRows([]string{"appointment_date", "slot_start", "slot_end"}).
			AddRow(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), "09:00", "09:30"))

	slots, err := repo.ListOccupiedSlots(context.Background(), doctorID, from)

	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "09:00-09:30", slots[0].Key())
}

func TestResetUnread(t *testing.T) {
	repo, mock := newRepo(t)
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	mock.ExpectExec("UPDATE bookings SET updated_at = NOW\\(\\), unread_patient_updates = \\$1, last_viewed_by_doctor = \\$2 WHERE id IN \\(\\$3,\\$4\\)").
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.ResetUnread(context.Background(), ids, domain.RoleDoctor, time.Now())

	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = repo.ResetUnread(context.Background(), ids, domain.RoleReceptionist, time.Now())
	assert.ErrorIs(t, err, ErrBuildQuery)
}

func TestCancelForDoctorDate(t *testing.T) {
	repo, mock := newRepo(t)
	cancelled := uuid.New()

	mock.ExpectQuery("UPDATE bookings SET status = \\$1, unread_doctor_responses = unread_doctor_responses \\+ 1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(cancelled.String()))

	ids, err := repo.CancelForDoctorDate(context.Background(), uuid.New(),
		time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), ptr.Ptr("09:00"), nil)

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{cancelled}, ids)
}

func TestSetAIAnalysis_NotFound(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec("UPDATE bookings SET ai_analysis").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetAIAnalysis(context.Background(), uuid.New(), []byte(`{"overallSummary":"ok"}`))

	assert.ErrorIs(t, err, ErrBookingNotFound)
}
