package domain

import "github.com/google/uuid"

// Role of an authenticated account
type Role string

const (
	RolePatient      Role = "patient"
	RoleDoctor       Role = "doctor"
	RoleReceptionist Role = "receptionist"
)

func (r Role) IsValid() bool {
	return r == RolePatient || r == RoleDoctor || r == RoleReceptionist
}

// Account is a tagged union over patients, doctors and receptionists.
// Role is the tag; LinkedDoctorID is set only for receptionists.
type Account struct {
	ID             uuid.UUID
	Role           Role
	Name           string
	Email          string
	Phone          *string
	PasswordHash   string
	LinkedDoctorID *uuid.UUID
	IsActive       bool
}

// Identity returns the request identity derived from the account
func (a *Account) Identity() Identity {
	id := Identity{UserID: a.ID, Role: a.Role}
	switch a.Role {
	case RoleDoctor:
		id.DoctorID = a.ID
	case RoleReceptionist:
		if a.LinkedDoctorID != nil {
			id.DoctorID = *a.LinkedDoctorID
		}
	}
	return id
}

// Identity is the authenticated caller of an operation.
// DoctorID is the doctor the caller acts for (doctor itself or a receptionist's doctor).
type Identity struct {
	UserID   uuid.UUID
	Role     Role
	DoctorID uuid.UUID
}

func (i Identity) IsPatient() bool {
	return i.Role == RolePatient
}

func (i Identity) IsDoctor() bool {
	return i.Role == RoleDoctor
}

func (i Identity) IsReceptionist() bool {
	return i.Role == RoleReceptionist
}

// ActsForDoctor returns true for the doctor and its receptionists
func (i Identity) ActsForDoctor(doctorID uuid.UUID) bool {
	return (i.IsDoctor() || i.IsReceptionist()) && i.DoctorID == doctorID
}

// Flag is a yes/no medical fact the patient may not know
type Flag struct {
	Value string `json:"value"`
	Known bool   `json:"known"`
}

// Patient is the demographic subset used by notifications and AI analysis
type Patient struct {
	ID              uuid.UUID
	Name            string
	Email           string
	Phone           *string
	Gender          *string
	Age             *int
	BloodType       *string
	BloodPressure   Flag
	Diabetic        Flag
	Hyperthyroidism Flag
}
