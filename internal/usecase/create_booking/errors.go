package create_booking

import "errors"

var (
	// ErrDoctorNotFound возвращается, когда врач не найден
	ErrDoctorNotFound = errors.New("create_booking: doctor not found")

	// ErrPatientNotFound возвращается, когда пациент не найден
	ErrPatientNotFound = errors.New("create_booking: patient not found")

	// ErrDoctorNotAvailable возвращается, когда врач не одобрен и не принимает записи
	ErrDoctorNotAvailable = errors.New("create_booking: doctor does not accept bookings")

	// ErrInvalidDate возвращается, когда дата в прошлом или за горизонтом записи
	ErrInvalidDate = errors.New("create_booking: invalid booking date")

	// ErrInvalidTimeSlot возвращается, когда слот не совпадает с включенным слотом шаблона врача
	// или его день недели не совпадает с датой
	ErrInvalidTimeSlot = errors.New("create_booking: invalid time slot")

	// ErrSlotConflict возвращается, когда слот уже занят активной записью
	ErrSlotConflict = errors.New("create_booking: slot is already booked")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrUpstream возвращается, когда платежный провайдер не создал сессию оплаты
	ErrUpstream = errors.New("create_booking: payment provider failure")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
