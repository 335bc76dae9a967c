// api/errors/cache_errors.go
package errors

import "errors"

var (
	// ErrCacheUnavailable means the cache store could not be reached.
	// Callers degrade to always-miss; the request itself never fails.
	ErrCacheUnavailable = errors.New("cache store unavailable")
)
