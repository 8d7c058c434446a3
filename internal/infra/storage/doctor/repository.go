package doctor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	"github.com/m04kA/SMC-DoctorBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-DoctorBooking/pkg/psqlbuilder"
)

var doctorColumns = []string{
	"id",
	"name",
	"email",
	"phone",
	"photo",
	"ticket_price",
	"specialization",
	"bio",
	"about",
	"is_approved",
	"created_at",
	"updated_at",
}

// likeEscaper экранирует спецсимволы ILIKE в поисковой строке
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Repository репозиторий врачей и их недельных шаблонов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория врачей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает врача вместе с шаблоном слотов
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Doctor, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(doctorColumns...).
		From("doctors").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	doc, err := scanDoctor(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDoctorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan doctor: %v", ErrScanRow, err)
	}

	doc.TimeSlots, err = r.GetTimeSlots(ctx, id)
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// GetTimeSlots получает шаблон врача в порядке, в котором он был сохранен
func (r *Repository) GetTimeSlots(ctx context.Context, doctorID uuid.UUID) ([]domain.TimeSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("day", "starting_time", "ending_time", "is_available").
		From("doctor_time_slots").
		Where(squirrel.Eq{"doctor_id": doctorID}).
		OrderBy("position ASC", "id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetTimeSlots - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetTimeSlots - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	slots := make([]domain.TimeSlot, 0)
	for rows.Next() {
		var s domain.TimeSlot
		if err := rows.Scan(&s.Day, &s.StartingTime, &s.EndingTime, &s.IsAvailable); err != nil {
			return nil, fmt.Errorf("%w: GetTimeSlots - scan row: %v", ErrScanRow, err)
		}
		slots = append(slots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetTimeSlots - rows error: %v", ErrScanRow, err)
	}

	return slots, nil
}

// ReplaceTimeSlots полностью заменяет шаблон врача
// Вызывать внутри транзакции: удаление и вставка должны быть атомарными
func (r *Repository) ReplaceTimeSlots(ctx context.Context, doctorID uuid.UUID, slots []domain.TimeSlot) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("doctor_time_slots").
		Where(squirrel.Eq{"doctor_id": doctorID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: ReplaceTimeSlots - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ReplaceTimeSlots - execute delete: %v", ErrExecQuery, err)
	}

	if len(slots) == 0 {
		return nil
	}

	insertBuilder := psqlbuilder.Insert("doctor_time_slots").
		Columns("doctor_id", "day", "starting_time", "ending_time", "is_available", "position")

	for i, s := range slots {
		insertBuilder = insertBuilder.Values(doctorID, s.Day, s.StartingTime, s.EndingTime, s.IsAvailable, i)
	}

	query, args, err = insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceTimeSlots - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ReplaceTimeSlots - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// Search ищет одобренных врачей по имени или специализации (без учета регистра)
// Пустой запрос возвращает всех одобренных врачей
func (r *Repository) Search(ctx context.Context, text string) ([]*domain.Doctor, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(doctorColumns...).
		From("doctors").
		Where(squirrel.Eq{"is_approved": domain.ApprovalApproved})

	if text = strings.TrimSpace(text); text != "" {
		pattern := "%" + likeEscaper.Replace(text) + "%"
		selectBuilder = selectBuilder.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"specialization": pattern},
		})
	}

	query, args, err := selectBuilder.OrderBy("name ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Search - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: Search - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	doctors := make([]*domain.Doctor, 0)
	for rows.Next() {
		doc, err := scanDoctor(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: Search - scan row: %v", ErrScanRow, err)
		}
		doctors = append(doctors, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: Search - rows error: %v", ErrScanRow, err)
	}

	return doctors, nil
}

// AddAppointment добавляет обратную ссылку врача на запись (повторный вызов ничего не меняет)
func (r *Repository) AddAppointment(ctx context.Context, doctorID, bookingID uuid.UUID) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("doctor_appointments").
		Columns("doctor_id", "booking_id").
		Values(doctorID, bookingID).
		Suffix("ON CONFLICT (doctor_id, booking_id) DO NOTHING").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: AddAppointment - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: AddAppointment - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDoctor(row rowScanner) (*domain.Doctor, error) {
	var (
		doc                                     domain.Doctor
		phone, photo, specialization, bio, about sql.NullString
		createdAt, updatedAt                    sql.NullTime
	)

	err := row.Scan(
		&doc.ID,
		&doc.Name,
		&doc.Email,
		&phone,
		&photo,
		&doc.TicketPrice,
		&specialization,
		&bio,
		&about,
		&doc.IsApproved,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	doc.Phone = nullString(phone)
	doc.Photo = nullString(photo)
	doc.Specialization = nullString(specialization)
	doc.Bio = nullString(bio)
	doc.About = nullString(about)
	doc.TimeSlots = []domain.TimeSlot{}
	doc.CreatedAt = createdAt.Time
	doc.UpdatedAt = updatedAt.Time

	return &doc, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
