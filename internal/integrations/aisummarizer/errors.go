package aisummarizer

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("aisummarizer client: internal error")

	// ErrInvalidResponse возвращается, когда в ответе модели нет корректного JSON объекта
	ErrInvalidResponse = errors.New("aisummarizer client: invalid response")

	// ErrUnavailable возвращается при недоступности сервиса или ответе с ошибкой
	ErrUnavailable = errors.New("aisummarizer client: service unavailable")
)
