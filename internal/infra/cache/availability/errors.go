package availability

import "errors"

var (
	// ErrCacheRead возвращается при ошибке чтения проекции из кэша
	ErrCacheRead = errors.New("availability.cache: failed to read projection")

	// ErrCacheWrite возвращается при ошибке записи проекции в кэш
	ErrCacheWrite = errors.New("availability.cache: failed to write projection")
)
