package payments

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("payments client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе провайдера
	ErrInvalidResponse = errors.New("payments client: invalid response")

	// ErrProviderRejected возвращается, когда провайдер отклонил создание сессии или недоступен
	ErrProviderRejected = errors.New("payments client: checkout session rejected")
)
