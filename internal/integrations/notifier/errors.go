package notifier

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("notifier client: internal error")

	// ErrNoPhone возвращается, когда у получателя не указан номер телефона
	ErrNoPhone = errors.New("notifier client: recipient phone is empty")

	// ErrDeliveryFailed возвращается, когда провайдер отклонил сообщение или недоступен
	ErrDeliveryFailed = errors.New("notifier client: delivery failed")
)
