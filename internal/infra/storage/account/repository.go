package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	"github.com/m04kA/SMC-DoctorBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-DoctorBooking/pkg/psqlbuilder"
)

// source описывает таблицу, в которой хранятся учетные записи одной роли
type source struct {
	role    domain.Role
	table   string
	columns []string
}

// Все источники возвращают одинаковый набор колонок:
// id, name, email, phone, password_hash, doctor_id, is_active
var sources = []source{
	{
		role:    domain.RolePatient,
		table:   "patients",
		columns: []string{"id", "name", "email", "phone", "password_hash", "NULL::uuid AS doctor_id", "TRUE AS is_active"},
	},
	{
		role:    domain.RoleDoctor,
		table:   "doctors",
		columns: []string{"id", "name", "email", "phone", "password_hash", "NULL::uuid AS doctor_id", "TRUE AS is_active"},
	},
	{
		role:    domain.RoleReceptionist,
		table:   "receptionists",
		columns: []string{"id", "name", "email", "phone", "password_hash", "doctor_id", "is_active"},
	},
}

var patientColumns = []string{
	"id",
	"name",
	"email",
	"phone",
	"gender",
	"age",
	"blood_type",
	"bp_value",
	"bp_known",
	"diabetic_value",
	"diabetic_known",
	"thyroid_value",
	"thyroid_known",
}

// Repository поиск учетных записей пациентов, врачей и регистраторов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория учетных записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// FindByEmail ищет учетную запись по email во всех ролях (без учета регистра)
func (r *Repository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrAccountNotFound
	}

	for _, src := range sources {
		acc, err := r.findOne(ctx, src, squirrel.Expr("LOWER(email) = LOWER(?)", email))
		if errors.Is(err, ErrAccountNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("FindByEmail - %s: %w", src.table, err)
		}
		return acc, nil
	}

	return nil, ErrAccountNotFound
}

// FindByID получает учетную запись заданной роли
func (r *Repository) FindByID(ctx context.Context, role domain.Role, id uuid.UUID) (*domain.Account, error) {
	for _, src := range sources {
		if src.role != role {
			continue
		}
		return r.findOne(ctx, src, squirrel.Eq{"id": id})
	}

	return nil, fmt.Errorf("%w: FindByID - %q", ErrUnknownRole, role)
}

// VerifyPassword проверяет пароль по bcrypt-хешу и возвращает учетную запись
// Неизвестный email, неверный пароль и неактивная учетная запись неразличимы для вызывающего
func (r *Repository) VerifyPassword(ctx context.Context, email, password string) (*domain.Account, error) {
	acc, err := r.FindByEmail(ctx, email)
	if errors.Is(err, ErrAccountNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !acc.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return acc, nil
}

// GetPatient получает демографические данные пациента
func (r *Repository) GetPatient(ctx context.Context, id uuid.UUID) (*domain.Patient, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(patientColumns...).
		From("patients").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetPatient - build select query: %v", ErrBuildQuery, err)
	}

	var (
		p                                    domain.Patient
		phone, gender, bloodType             sql.NullString
		age                                  sql.NullInt64
		bpValue, diabeticValue, thyroidValue sql.NullString
	)

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&phone,
		&gender,
		&age,
		&bloodType,
		&bpValue,
		&p.BloodPressure.Known,
		&diabeticValue,
		&p.Diabetic.Known,
		&thyroidValue,
		&p.Hyperthyroidism.Known,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetPatient - scan patient: %v", ErrScanRow, err)
	}

	p.Phone = nullString(phone)
	p.Gender = nullString(gender)
	p.BloodType = nullString(bloodType)
	if age.Valid {
		v := int(age.Int64)
		p.Age = &v
	}
	p.BloodPressure.Value = bpValue.String
	p.Diabetic.Value = diabeticValue.String
	p.Hyperthyroidism.Value = thyroidValue.String

	return &p, nil
}

func (r *Repository) findOne(ctx context.Context, src source, pred squirrel.Sqlizer) (*domain.Account, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(src.columns...).
		From(src.table).
		Where(pred).
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: findOne - build select query: %v", ErrBuildQuery, err)
	}

	var (
		acc      = domain.Account{Role: src.role}
		phone    sql.NullString
		doctorID uuid.NullUUID
	)

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&acc.ID,
		&acc.Name,
		&acc.Email,
		&phone,
		&acc.PasswordHash,
		&doctorID,
		&acc.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: findOne - scan account: %v", ErrScanRow, err)
	}

	acc.Phone = nullString(phone)
	if doctorID.Valid {
		id := doctorID.UUID
		acc.LinkedDoctorID = &id
	}

	return &acc, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
