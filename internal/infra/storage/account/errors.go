package account

import "errors"

var (
	// ErrAccountNotFound возвращается, когда учетная запись не найдена
	ErrAccountNotFound = errors.New("account.repository: account not found")

	// ErrInvalidCredentials возвращается при неверной паре email/пароль или неактивной учетной записи
	ErrInvalidCredentials = errors.New("account.repository: invalid credentials")

	// ErrUnknownRole возвращается при запросе учетной записи неизвестной роли
	ErrUnknownRole = errors.New("account.repository: unknown role")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("account.repository: failed to build query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("account.repository: failed to scan row")
)
