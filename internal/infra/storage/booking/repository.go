package booking

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	"github.com/m04kA/SMC-DoctorBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-DoctorBooking/pkg/psqlbuilder"
)

const (
	pqUniqueViolation      = "23505"
	pqSerializationFailure = "40001"
	activeSlotUniqueIndex  = "bookings_active_slot_uq"
	bookingsTable          = "bookings"
	healthIssuesTable      = "booking_health_issues"
	reportEventsTable      = "booking_report_events"
	doctorResponsesTable   = "booking_doctor_responses"
)

var bookingColumns = []string{
	"id",
	"doctor_id",
	"patient_id",
	"ticket_price",
	"appointment_date",
	"slot_day",
	"slot_start",
	"slot_end",
	"status",
	"is_paid",
	"current_health_issues",
	"current_reports",
	"unread_doctor_responses",
	"unread_patient_updates",
	"last_viewed_by_doctor",
	"last_viewed_by_patient",
	"ai_analysis",
	"payment_session_id",
	"created_at",
	"updated_at",
}

// Repository репозиторий журнала бронирований
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новое бронирование вместе с начальной историей
// Вызывать внутри транзакции: вставка записи и истории должна быть атомарной.
// Конфликт по частичному уникальному индексу слота возвращается как ErrSlotTaken.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	reports, err := encodeReports(booking.CurrentReports)
	if err != nil {
		return fmt.Errorf("%w: Create - encode reports: %v", ErrEncode, err)
	}

	query, args, err := psqlbuilder.Insert(bookingsTable).
		Columns(
			"id",
			"doctor_id",
			"patient_id",
			"ticket_price",
			"appointment_date",
			"slot_day",
			"slot_start",
			"slot_end",
			"status",
			"is_paid",
			"current_health_issues",
			"current_reports",
		).
		Values(
			booking.ID,
			booking.DoctorID,
			booking.PatientID,
			booking.TicketPrice,
			booking.AppointmentDate,
			booking.TimeSlot.Day,
			booking.TimeSlot.StartingTime,
			booking.TimeSlot.EndingTime,
			booking.Status,
			booking.IsPaid,
			booking.CurrentHealthIssues,
			reports,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if err != nil {
		if isSlotConflict(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	for _, entry := range booking.HealthIssuesHistory {
		if err := r.AppendHealthIssue(ctx, booking.ID, entry); err != nil {
			return err
		}
	}

	if err := r.AppendReportEvents(ctx, booking.ID, booking.ReportsHistory); err != nil {
		return err
	}

	return nil
}

// GetByID получает бронирование со всей историей
// Внутри транзакции строка блокируется (FOR UPDATE): так мутации одной записи выполняются последовательно
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From(bookingsTable).
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	if err := r.loadHistory(ctx, booking); err != nil {
		return nil, err
	}

	return booking, nil
}

// GetByIDs получает бронирования без истории (для пакетных операций)
// Отсутствующие id просто не попадают в результат
func (r *Repository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Booking, error) {
	if len(ids) == 0 {
		return []*domain.Booking{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From(bookingsTable).
		Where(squirrel.Eq{"id": ids}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByIDs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByIDs - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// HasActiveBooking проверяет, занят ли слот на дату активной записью
// Внутри транзакции найденная строка блокируется
func (r *Repository) HasActiveBooking(ctx context.Context, doctorID uuid.UUID, date time.Time, slot domain.TimeSlot) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("id").
		From(bookingsTable).
		Where(squirrel.Eq{
			"doctor_id":        doctorID,
			"appointment_date": date,
			"slot_day":         slot.Day,
			"slot_start":       slot.StartingTime,
			"slot_end":         slot.EndingTime,
		}).
		Where(squirrel.NotEq{"status": releasingStatuses()}).
		Limit(1)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: HasActiveBooking - build select query: %v", ErrBuildQuery, err)
	}

	var id uuid.UUID
	err = executor.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: HasActiveBooking - scan: %v", ErrScanRow, err)
	}

	return true, nil
}

// ListOccupiedSlots возвращает пары (дата, слот), занятые активными записями, начиная с from
func (r *Repository) ListOccupiedSlots(ctx context.Context, doctorID uuid.UUID, from time.Time) ([]domain.BookedSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("appointment_date", "slot_start", "slot_end").
		From(bookingsTable).
		Where(squirrel.Eq{"doctor_id": doctorID}).
		Where(squirrel.GtOrEq{"appointment_date": from}).
		Where(squirrel.NotEq{"status": releasingStatuses()}).
		OrderBy("appointment_date ASC", "slot_start ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListOccupiedSlots - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListOccupiedSlots - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	slots := make([]domain.BookedSlot, 0)
	for rows.Next() {
		var s domain.BookedSlot
		if err := rows.Scan(&s.Date, &s.StartingTime, &s.EndingTime); err != nil {
			return nil, fmt.Errorf("%w: ListOccupiedSlots - scan row: %v", ErrScanRow, err)
		}
		s.Date = domain.NormalizeDate(s.Date)
		slots = append(slots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListOccupiedSlots - rows error: %v", ErrScanRow, err)
	}

	return slots, nil
}

// ListByPatient получает записи пациента, новые первыми
func (r *Repository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From(bookingsTable).
		Where(squirrel.Eq{"patient_id": patientID}).
		OrderBy("created_at DESC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByPatient - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByPatient - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ListByDoctor получает записи врача с фильтрацией по дате и слоту
//
// Примеры:
//   - все записи: DoctorAppointmentsFilter{DoctorID: id}
//   - на дату: указать Date
//   - на конкретный слот: Date + StartingTime + EndingTime
func (r *Repository) ListByDoctor(ctx context.Context, filter domain.DoctorAppointmentsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From(bookingsTable).
		Where(squirrel.Eq{"doctor_id": filter.DoctorID})

	if filter.Date != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"appointment_date": *filter.Date})
	}
	if filter.StartingTime != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"slot_start": *filter.StartingTime})
	}
	if filter.EndingTime != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"slot_end": *filter.EndingTime})
	}

	query, args, err := selectBuilder.
		OrderBy("appointment_date ASC", "slot_start ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByDoctor - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByDoctor - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// Update сохраняет изменяемые поля записи
// История не трогается: она только дописывается через Append*
func (r *Repository) Update(ctx context.Context, booking *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	reports, err := encodeReports(booking.CurrentReports)
	if err != nil {
		return fmt.Errorf("%w: Update - encode reports: %v", ErrEncode, err)
	}

	query, args, err := psqlbuilder.Update(bookingsTable).
		Set("status", booking.Status).
		Set("is_paid", booking.IsPaid).
		Set("current_health_issues", booking.CurrentHealthIssues).
		Set("current_reports", reports).
		Set("unread_doctor_responses", booking.UnreadDoctorResponses).
		Set("unread_patient_updates", booking.UnreadPatientUpdates).
		Set("last_viewed_by_doctor", booking.LastViewedByDoctor).
		Set("last_viewed_by_patient", booking.LastViewedByPatient).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": booking.ID}).
		Suffix("RETURNING updated_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	var updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBookingNotFound
	}
	if err != nil {
		if isSlotConflict(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	booking.UpdatedAt = updatedAt.Time
	return nil
}

// ResetUnread обнуляет счетчик непрочитанного для стороны role и ставит отметку просмотра
// Пациент сбрасывает ответы врача, врач - обновления пациента
func (r *Repository) ResetUnread(ctx context.Context, ids []uuid.UUID, role domain.Role, now time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update(bookingsTable).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": ids})

	switch role {
	case domain.RolePatient:
		updateBuilder = updateBuilder.
			Set("unread_doctor_responses", 0).
			Set("last_viewed_by_patient", now)
	case domain.RoleDoctor:
		updateBuilder = updateBuilder.
			Set("unread_patient_updates", 0).
			Set("last_viewed_by_doctor", now)
	default:
		return 0, fmt.Errorf("%w: ResetUnread - unsupported role %q", ErrBuildQuery, role)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: ResetUnread - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: ResetUnread - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: ResetUnread - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected, nil
}

// CancelForDoctorDate отменяет незавершённые записи врача на дату (опционально на один слот)
// Пациенту добавляется одно непрочитанное уведомление. Возвращает id отменённых записей.
func (r *Repository) CancelForDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time, start, end *string) ([]uuid.UUID, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update(bookingsTable).
		Set("status", domain.StatusCancelled).
		Set("unread_doctor_responses", squirrel.Expr("unread_doctor_responses + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"doctor_id": doctorID, "appointment_date": date}).
		Where(squirrel.NotEq{"status": releasingStatuses()})

	if start != nil {
		updateBuilder = updateBuilder.Where(squirrel.Eq{"slot_start": *start})
	}
	if end != nil {
		updateBuilder = updateBuilder.Where(squirrel.Eq{"slot_end": *end})
	}

	query, args, err := updateBuilder.Suffix("RETURNING id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CancelForDoctorDate - build update query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: CancelForDoctorDate - execute update: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: CancelForDoctorDate - scan id: %v", ErrScanRow, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: CancelForDoctorDate - rows error: %v", ErrScanRow, err)
	}

	return ids, nil
}

// SetAIAnalysis сохраняет результат AI-анализа как есть
func (r *Repository) SetAIAnalysis(ctx context.Context, id uuid.UUID, analysis json.RawMessage) error {
	return r.setColumn(ctx, "SetAIAnalysis", id, "ai_analysis", []byte(analysis))
}

// SetPaymentSession сохраняет id платежной сессии
func (r *Repository) SetPaymentSession(ctx context.Context, id uuid.UUID, sessionID string) error {
	return r.setColumn(ctx, "SetPaymentSession", id, "payment_session_id", sessionID)
}

func (r *Repository) setColumn(ctx context.Context, op string, id uuid.UUID, column string, value interface{}) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(bookingsTable).
		Set(column, value).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		booking              domain.Booking
		reports, aiAnalysis  []byte
		lastDoctor, lastPat  sql.NullTime
		sessionID            sql.NullString
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&booking.ID,
		&booking.DoctorID,
		&booking.PatientID,
		&booking.TicketPrice,
		&booking.AppointmentDate,
		&booking.TimeSlot.Day,
		&booking.TimeSlot.StartingTime,
		&booking.TimeSlot.EndingTime,
		&booking.Status,
		&booking.IsPaid,
		&booking.CurrentHealthIssues,
		&reports,
		&booking.UnreadDoctorResponses,
		&booking.UnreadPatientUpdates,
		&lastDoctor,
		&lastPat,
		&aiAnalysis,
		&sessionID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.AppointmentDate = domain.NormalizeDate(booking.AppointmentDate)
	booking.TimeSlot.IsAvailable = true

	booking.CurrentReports, err = decodeReports(reports)
	if err != nil {
		return nil, err
	}

	if len(aiAnalysis) > 0 {
		booking.AIAnalysis = json.RawMessage(aiAnalysis)
	}
	if lastDoctor.Valid {
		t := lastDoctor.Time
		booking.LastViewedByDoctor = &t
	}
	if lastPat.Valid {
		t := lastPat.Time
		booking.LastViewedByPatient = &t
	}
	if sessionID.Valid {
		s := sessionID.String
		booking.PaymentSessionID = &s
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

func encodeReports(groups []domain.ReportGroup) ([]byte, error) {
	if groups == nil {
		groups = []domain.ReportGroup{}
	}
	return json.Marshal(groups)
}

func decodeReports(data []byte) ([]domain.ReportGroup, error) {
	groups := make([]domain.ReportGroup, 0)
	if len(data) == 0 {
		return groups, nil
	}
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("decode current_reports: %w", err)
	}
	return groups, nil
}

func releasingStatuses() []string {
	statuses := make([]string, len(domain.SlotReleasingStatuses))
	for i, s := range domain.SlotReleasingStatuses {
		statuses[i] = string(s)
	}
	return statuses
}

// isSlotConflict распознает нарушение уникального индекса слота и конфликт сериализации
func isSlotConflict(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code {
	case pqUniqueViolation:
		return pqErr.Constraint == "" || pqErr.Constraint == activeSlotUniqueIndex
	case pqSerializationFailure:
		return true
	default:
		return false
	}
}
