package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	bookingModels "github.com/m04kA/SMC-DoctorBooking/internal/service/bookings/models"
)

// Request модели

// AppointmentsFilterRequest фильтр записей врача
// Все поля опциональны; время в формате HH:MM
type AppointmentsFilterRequest struct {
	Date         string `json:"date,omitempty"` // "2025-10-15"
	StartingTime string `json:"startingTime,omitempty"`
	EndingTime   string `json:"endingTime,omitempty"`
}

// CancelAppointmentsRequest отмена записей врача на дату (опционально на один слот)
type CancelAppointmentsRequest struct {
	Date         string `json:"date"`
	StartingTime string `json:"startingTime,omitempty"`
	EndingTime   string `json:"endingTime,omitempty"`
}

// ReplaceTimeSlotsRequest новый недельный шаблон врача
type ReplaceTimeSlotsRequest struct {
	TimeSlots []domain.TimeSlot `json:"timeSlots"`
}

// Response модели

// DoctorResponse профиль врача с шаблоном слотов
type DoctorResponse struct {
	ID             uuid.UUID         `json:"id"`
	Name           string            `json:"name"`
	Email          string            `json:"email"`
	Phone          *string           `json:"phone,omitempty"`
	Photo          *string           `json:"photo,omitempty"`
	TicketPrice    float64           `json:"ticketPrice"`
	Specialization *string           `json:"specialization,omitempty"`
	Bio            *string           `json:"bio,omitempty"`
	About          *string           `json:"about,omitempty"`
	IsApproved     string            `json:"isApproved"`
	TimeSlots      []domain.TimeSlot `json:"timeSlots"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// DoctorListResponse результат поиска врачей
type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
}

// ProfileResponse профиль врача вместе с его записями
type ProfileResponse struct {
	Doctor       *DoctorResponse                   `json:"doctor"`
	Appointments *bookingModels.BookingListResponse `json:"appointments"`
}

// CancelAppointmentsResponse результат массовой отмены
type CancelAppointmentsResponse struct {
	Cancelled  int         `json:"cancelled"`
	BookingIDs []uuid.UUID `json:"bookingIds"`
}

// Методы конвертации

// FromDomainDoctor конвертирует domain модель в DTO
func FromDomainDoctor(d *domain.Doctor) *DoctorResponse {
	if d == nil {
		return nil
	}

	resp := &DoctorResponse{
		ID:             d.ID,
		Name:           d.Name,
		Email:          d.Email,
		Phone:          d.Phone,
		Photo:          d.Photo,
		TicketPrice:    d.TicketPrice,
		Specialization: d.Specialization,
		Bio:            d.Bio,
		About:          d.About,
		IsApproved:     string(d.IsApproved),
		TimeSlots:      d.TimeSlots,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}

	if resp.TimeSlots == nil {
		resp.TimeSlots = []domain.TimeSlot{}
	}

	return resp
}

// FromDomainDoctorList конвертирует список врачей в DTO
func FromDomainDoctorList(doctors []*domain.Doctor) *DoctorListResponse {
	resp := &DoctorListResponse{
		Doctors: make([]DoctorResponse, 0, len(doctors)),
	}

	for _, d := range doctors {
		resp.Doctors = append(resp.Doctors, *FromDomainDoctor(d))
	}

	return resp
}
