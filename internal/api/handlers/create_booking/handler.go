package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-DoctorBooking/internal/api/handlers"
	"github.com/m04kA/SMC-DoctorBooking/internal/api/middleware"
	createBooking "github.com/m04kA/SMC-DoctorBooking/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDoctorID    = "некорректный ID врача"
	msgInvalidDate        = "некорректный формат даты приема, ожидается YYYY-MM-DD"
	msgMissingIdentity    = "требуется авторизация"
	msgPatientsOnly       = "записываться на прием могут только пациенты"
	msgSlotConflict       = "выбранный слот уже занят"
	msgDoctorNotFound     = "врач не найден"
	msgPatientNotFound    = "пациент не найден"
	msgDoctorNotAvailable = "врач не принимает записи"
	msgInvalidBookingDate = "дата приема в прошлом или слишком далеко в будущем"
	msgInvalidTimeSlot    = "слот не совпадает с расписанием врача"
	msgInvalidInput       = "некорректные данные записи"
	msgPaymentFailed      = "не удалось создать сессию оплаты"
	msgCreated            = "сессия оплаты создана"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/checkout-session/{doctorId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	doctorID, err := handlers.PathUUID(r, "doctorId")
	if err != nil {
		h.logger.Warn("POST /bookings/checkout-session - Invalid doctor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDoctorID)
		return
	}

	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}
	if !identity.IsPatient() {
		h.logger.Warn("POST /bookings/checkout-session - Non-patient caller: user_id=%s, role=%s", identity.UserID, identity.Role)
		handlers.RespondForbidden(w, msgPatientsOnly)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/checkout-session - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(identity.UserID, doctorID)
	if err != nil {
		h.logger.Warn("POST /bookings/checkout-session - Invalid date %q: %v", req.AppointmentDate, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrSlotConflict):
			h.logger.Warn("POST /bookings/checkout-session - Slot conflict: doctor_id=%s, date=%s, slot=%s",
				doctorID, req.AppointmentDate, req.TimeSlot.Key())
			handlers.RespondConflict(w, msgSlotConflict)

		case errors.Is(err, createBooking.ErrDoctorNotFound):
			h.logger.Warn("POST /bookings/checkout-session - Doctor not found: doctor_id=%s", doctorID)
			handlers.RespondNotFound(w, msgDoctorNotFound)

		case errors.Is(err, createBooking.ErrPatientNotFound):
			h.logger.Warn("POST /bookings/checkout-session - Patient not found: user_id=%s", identity.UserID)
			handlers.RespondNotFound(w, msgPatientNotFound)

		case errors.Is(err, createBooking.ErrDoctorNotAvailable):
			h.logger.Warn("POST /bookings/checkout-session - Doctor not available: doctor_id=%s", doctorID)
			handlers.RespondBadRequest(w, msgDoctorNotAvailable)

		case errors.Is(err, createBooking.ErrInvalidDate):
			h.logger.Warn("POST /bookings/checkout-session - Invalid booking date: %s", req.AppointmentDate)
			handlers.RespondBadRequest(w, msgInvalidBookingDate)

		case errors.Is(err, createBooking.ErrInvalidTimeSlot):
			h.logger.Warn("POST /bookings/checkout-session - Invalid time slot: doctor_id=%s, slot=%s", doctorID, req.TimeSlot.Key())
			handlers.RespondBadRequest(w, msgInvalidTimeSlot)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings/checkout-session - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createBooking.ErrUpstream):
			h.logger.Error("POST /bookings/checkout-session - Payment provider failed: doctor_id=%s, error=%v", doctorID, err)
			handlers.RespondBadGateway(w, msgPaymentFailed)

		default:
			h.logger.Error("POST /bookings/checkout-session - Failed to create booking: doctor_id=%s, user_id=%s, error=%v",
				doctorID, identity.UserID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/checkout-session - Booking created: booking_id=%s, doctor_id=%s, user_id=%s",
		result.Booking.ID, doctorID, identity.UserID)
	handlers.RespondMessage(w, http.StatusOK, msgCreated, FromUseCaseResponse(result))
}
