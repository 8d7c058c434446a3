package doctors

import "errors"

var (
	// ErrDoctorNotFound возвращается, когда врач не найден или скрыт из поиска
	ErrDoctorNotFound = errors.New("doctor not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
