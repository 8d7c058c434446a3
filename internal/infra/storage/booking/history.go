package booking

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	"github.com/m04kA/SMC-DoctorBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-DoctorBooking/pkg/psqlbuilder"
)

// Журналы истории только дописываются; порядок задается serial id

// AppendHealthIssue дописывает запись в историю жалоб
func (r *Repository) AppendHealthIssue(ctx context.Context, bookingID uuid.UUID, entry domain.TextEntry) error {
	return r.appendText(ctx, "AppendHealthIssue", healthIssuesTable, bookingID, entry)
}

// AppendDoctorResponse дописывает ответ врача
func (r *Repository) AppendDoctorResponse(ctx context.Context, bookingID uuid.UUID, entry domain.TextEntry) error {
	return r.appendText(ctx, "AppendDoctorResponse", doctorResponsesTable, bookingID, entry)
}

// AppendReportEvents дописывает события по отчетам одним запросом
func (r *Repository) AppendReportEvents(ctx context.Context, bookingID uuid.UUID, events []domain.ReportEvent) error {
	if len(events) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert(reportEventsTable).
		Columns("booking_id", "name", "action", "report_url", "updated_at")

	for _, e := range events {
		insertBuilder = insertBuilder.Values(bookingID, e.Name, e.Action, e.ReportURL, e.UpdatedAt)
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: AppendReportEvents - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: AppendReportEvents - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

func (r *Repository) appendText(ctx context.Context, op, table string, bookingID uuid.UUID, entry domain.TextEntry) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns("booking_id", "text", "updated_at").
		Values(bookingID, entry.Text, entry.UpdatedAt).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: %s - build insert query: %v", ErrBuildQuery, op, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %s - execute insert: %v", ErrExecQuery, op, err)
	}

	return nil
}

// loadHistory заполняет три журнала записи
func (r *Repository) loadHistory(ctx context.Context, booking *domain.Booking) error {
	var err error

	booking.HealthIssuesHistory, err = r.loadText(ctx, "loadHealthIssues", healthIssuesTable, booking.ID)
	if err != nil {
		return err
	}

	booking.DoctorResponses, err = r.loadText(ctx, "loadDoctorResponses", doctorResponsesTable, booking.ID)
	if err != nil {
		return err
	}

	booking.ReportsHistory, err = r.loadReportEvents(ctx, booking.ID)
	return err
}

func (r *Repository) loadText(ctx context.Context, op, table string, bookingID uuid.UUID) ([]domain.TextEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("text", "updated_at").
		From(table).
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	entries := make([]domain.TextEntry, 0)
	for rows.Next() {
		var e domain.TextEntry
		if err := rows.Scan(&e.Text, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}

	return entries, nil
}

func (r *Repository) loadReportEvents(ctx context.Context, bookingID uuid.UUID) ([]domain.ReportEvent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("name", "action", "report_url", "updated_at").
		From(reportEventsTable).
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: loadReportEvents - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: loadReportEvents - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	events := make([]domain.ReportEvent, 0)
	for rows.Next() {
		var (
			e         domain.ReportEvent
			name, url sql.NullString
		)
		if err := rows.Scan(&name, &e.Action, &url, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: loadReportEvents - scan row: %v", ErrScanRow, err)
		}
		if name.Valid {
			n := name.String
			e.Name = &n
		}
		if url.Valid {
			u := url.String
			e.ReportURL = &u
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: loadReportEvents - rows error: %v", ErrScanRow, err)
	}

	return events, nil
}
