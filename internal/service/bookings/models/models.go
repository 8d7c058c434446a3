package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	"github.com/m04kA/SMC-DoctorBooking/pkg/types"
)

// Request модели

// ReportAction действие над одиночным отчетом
type ReportAction string

const (
	ReportActionAdd    ReportAction = "add"
	ReportActionRemove ReportAction = "remove"
)

// UpdateReportsRequest добавление или удаление одного URL отчета
type UpdateReportsRequest struct {
	Action    ReportAction `json:"action"`
	ReportURL string       `json:"reportUrl"`
	GroupName string       `json:"name,omitempty"` // для add; по умолчанию "Reports"
}

// SaveReportGroupRequest добавление файлов в именованную группу
type SaveReportGroupRequest struct {
	Name string   `json:"name"`
	URLs []string `json:"urls"`
}

// RenameReportGroupRequest переименование группы
type RenameReportGroupRequest struct {
	NewName string `json:"newName"`
}

// RemoveFileRequest удаление файла из группы
type RemoveFileRequest struct {
	FileURL string `json:"fileUrl"`
}

// Response модели

// TimeSlotResponse слот записи
type TimeSlotResponse struct {
	Day          domain.Weekday   `json:"day"`
	StartingTime types.TimeString `json:"startingTime"`
	EndingTime   types.TimeString `json:"endingTime"`
}

// TextEntryResponse запись текстовой истории
type TextEntryResponse struct {
	Text      string    `json:"text"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReportEventResponse запись истории отчетов
type ReportEventResponse struct {
	Name      *string             `json:"name,omitempty"`
	Action    domain.ReportAction `json:"action"`
	ReportURL *string             `json:"reportUrl,omitempty"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID              uuid.UUID        `json:"id"`
	DoctorID        uuid.UUID        `json:"doctor"`
	PatientID       uuid.UUID        `json:"user"`
	TicketPrice     float64          `json:"ticketPrice"`
	AppointmentDate string           `json:"appointmentDate"` // "2025-10-15"
	TimeSlot        TimeSlotResponse `json:"timeSlot"`
	IsPaid          bool             `json:"isPaid"`
	Status          string           `json:"status"`

	CurrentHealthIssues string                `json:"currentHealthIssues"`
	HealthIssuesHistory []TextEntryResponse   `json:"healthIssuesHistory"`
	CurrentReports      []domain.ReportGroup  `json:"currentReports"`
	ReportsHistory      []ReportEventResponse `json:"reportsHistory"`
	DoctorResponses     []TextEntryResponse   `json:"doctorResponses"`

	UnreadDoctorResponses int        `json:"unreadDoctorResponses"`
	UnreadPatientUpdates  int        `json:"unreadPatientUpdates"`
	LastViewedByDoctor    *time.Time `json:"lastViewedByDoctor,omitempty"`
	LastViewedByPatient   *time.Time `json:"lastViewedByPatient,omitempty"`

	AIAnalysis json.RawMessage `json:"aiAnalysis"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// ResetUnreadResponse результат пакетного сброса счетчиков
type ResetUnreadResponse struct {
	Updated int64 `json:"updated"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:              b.ID,
		DoctorID:        b.DoctorID,
		PatientID:       b.PatientID,
		TicketPrice:     b.TicketPrice,
		AppointmentDate: b.AppointmentDate.Format(domain.DateFormat),
		TimeSlot: TimeSlotResponse{
			Day:          b.TimeSlot.Day,
			StartingTime: b.TimeSlot.StartingTime,
			EndingTime:   b.TimeSlot.EndingTime,
		},
		IsPaid:                b.IsPaid,
		Status:                string(b.Status),
		CurrentHealthIssues:   b.CurrentHealthIssues,
		HealthIssuesHistory:   fromTextEntries(b.HealthIssuesHistory),
		CurrentReports:        b.CurrentReports,
		ReportsHistory:        make([]ReportEventResponse, 0, len(b.ReportsHistory)),
		DoctorResponses:       fromTextEntries(b.DoctorResponses),
		UnreadDoctorResponses: b.UnreadDoctorResponses,
		UnreadPatientUpdates:  b.UnreadPatientUpdates,
		LastViewedByDoctor:    b.LastViewedByDoctor,
		LastViewedByPatient:   b.LastViewedByPatient,
		AIAnalysis:            b.AIAnalysis,
		CreatedAt:             b.CreatedAt,
		UpdatedAt:             b.UpdatedAt,
	}

	if resp.CurrentReports == nil {
		resp.CurrentReports = []domain.ReportGroup{}
	}

	for _, e := range b.ReportsHistory {
		resp.ReportsHistory = append(resp.ReportsHistory, ReportEventResponse{
			Name:      e.Name,
			Action:    e.Action,
			ReportURL: e.ReportURL,
			UpdatedAt: e.UpdatedAt,
		})
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, b := range bookings {
		resp.Bookings = append(resp.Bookings, *FromDomainBooking(b))
	}

	return resp
}

func fromTextEntries(entries []domain.TextEntry) []TextEntryResponse {
	out := make([]TextEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, TextEntryResponse{Text: e.Text, UpdatedAt: e.UpdatedAt})
	}
	return out
}
