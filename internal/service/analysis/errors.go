package analysis

import "errors"

var (
	// ErrDisabled возвращается, когда AI-анализ выключен в конфигурации
	ErrDisabled = errors.New("analysis: summarizer is disabled")

	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("analysis: booking not found")

	// ErrUpstream возвращается при ошибке внешнего AI-сервиса
	ErrUpstream = errors.New("analysis: summarizer failed")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("analysis: internal error")
)
