package manage_reports

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	"github.com/m04kA/SMC-DoctorBooking/internal/service/bookings/models"
)

// ReportsService операции пациента над группами отчетов записи
type ReportsService interface {
	UpdateReports(ctx context.Context, identity domain.Identity, bookingID uuid.UUID, req *models.UpdateReportsRequest) (*models.BookingResponse, error)
	SaveReportGroup(ctx context.Context, identity domain.Identity, bookingID uuid.UUID, req *models.SaveReportGroupRequest) (*models.BookingResponse, error)
	RenameReportGroup(ctx context.Context, identity domain.Identity, bookingID uuid.UUID, oldName string, req *models.RenameReportGroupRequest) (*models.BookingResponse, error)
	DeleteReportGroup(ctx context.Context, identity domain.Identity, bookingID uuid.UUID, name string) (*models.BookingResponse, error)
	RemoveFileFromGroup(ctx context.Context, identity domain.Identity, bookingID uuid.UUID, name string, req *models.RemoveFileRequest) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
