package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав на операцию с записью
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInvalidTransition возвращается при недопустимой смене статуса
	ErrInvalidTransition = errors.New("invalid booking status transition")

	// ErrReportGroupNotFound возвращается, когда группа отчетов не найдена
	ErrReportGroupNotFound = errors.New("report group not found")

	// ErrReportGroupExists возвращается при переименовании в уже занятое имя
	ErrReportGroupExists = errors.New("report group already exists")

	// ErrReportNotFound возвращается, когда файла отчета нет в записи
	ErrReportNotFound = errors.New("report file not found")

	// ErrUpstream возвращается, когда внешний AI-сервис недоступен
	ErrUpstream = errors.New("analysis service unavailable")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
