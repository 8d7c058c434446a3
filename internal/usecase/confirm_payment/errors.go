package confirm_payment

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("confirm_payment: booking not found")

	// ErrBookingClosed возвращается при оплате отмененной или завершенной записи
	ErrBookingClosed = errors.New("confirm_payment: booking is cancelled or completed")

	// ErrSessionMismatch возвращается, если сессия оплаты не совпадает с сохраненной для записи
	ErrSessionMismatch = errors.New("confirm_payment: checkout session does not match booking")

	// ErrInternal возвращается при внутренних ошибках
	ErrInternal = errors.New("confirm_payment: internal error")
)
