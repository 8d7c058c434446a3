package account

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	"github.com/m04kA/SMC-DoctorBooking/pkg/dbmetrics"
)

var accountColumns = []string{"id", "name", "email", "phone", "password_hash", "doctor_id", "is_active"}

func newRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(dbmetrics.Wrap(db, nil, "test")), mock
}

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestFindByEmail_FallsThroughRoles(t *testing.T) {
	repo, mock := newRepo(t)
	id, doctorID := uuid.New(), uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM patients WHERE LOWER\\(email\\) = LOWER\\(\\$1\\) LIMIT 1").
		WithArgs("desk@clinic.test").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT (.+) FROM doctors").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT (.+) FROM receptionists").
		WillReturnRows(sqlmock.NewRows(accountColumns).
			AddRow(id.String(), "Desk", "desk@clinic.test", nil, "x", doctorID.String(), true))

	acc, err := repo.FindByEmail(context.Background(), " desk@clinic.test ")

	require.NoError(t, err)
	assert.Equal(t, domain.RoleReceptionist, acc.Role)
	require.NotNil(t, acc.LinkedDoctorID)
	assert.Equal(t, doctorID, acc.Identity().DoctorID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByEmail_NotFound(t *testing.T) {
	repo, mock := newRepo(t)

	for range sources {
		mock.ExpectQuery("SELECT").WillReturnError(sql.ErrNoRows)
	}

	_, err := repo.FindByEmail(context.Background(), "ghost@clinic.test")

	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestFindByID_UnknownRole(t *testing.T) {
	repo, _ := newRepo(t)

	_, err := repo.FindByID(context.Background(), domain.Role("admin"), uuid.New())

	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestVerifyPassword(t *testing.T) {
	id := uuid.New()
	pwHash := hash(t, "s3cret")

	tests := []struct {
		name     string
		password string
		active   bool
		wantErr  error
	}{
		{name: "valid", password: "s3cret", active: true},
		{name: "wrong password", password: "nope", active: true, wantErr: ErrInvalidCredentials},
		{name: "inactive", password: "s3cret", active: false, wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepo(t)
			mock.ExpectQuery("SELECT (.+) FROM patients").
				WillReturnRows(sqlmock.NewRows(accountColumns).
					AddRow(id.String(), "Ann", "ann@mail.test", "+15550001", pwHash, nil, tt.active))

			acc, err := repo.VerifyPassword(context.Background(), "ann@mail.test", tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.RolePatient, acc.Role)
			assert.Nil(t, acc.LinkedDoctorID)
			require.NotNil(t, acc.Phone)
		})
	}
}

func TestGetPatient(t *testing.T) {
	repo, mock := newRepo(t)
	id := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM patients WHERE id = \\$1").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(patientColumns).
			AddRow(id.String(), "Ann", "ann@mail.test", nil, "female", 34, "O+", "high", true, nil, false, "no", true))

	p, err := repo.GetPatient(context.Background(), id)

	require.NoError(t, err)
	require.NotNil(t, p.Age)
	assert.Equal(t, 34, *p.Age)
	assert.Equal(t, domain.Flag{Value: "high", Known: true}, p.BloodPressure)
	assert.Equal(t, domain.Flag{}, p.Diabetic)
	assert.Nil(t, p.Phone)
}
