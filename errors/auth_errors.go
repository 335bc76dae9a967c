// api/errors/auth_errors.go
package errors

import "errors"

var (
	// ErrAuthenticationRejected means a credential was presented and is
	// invalid. The request fails immediately, before any handler runs.
	ErrAuthenticationRejected = errors.New("authentication rejected")

	// ErrPermissionDenied means the principal resolved but lacks
	// permission for the requested operation.
	ErrPermissionDenied = errors.New("insufficient permission")

	// ErrIdentityMismatch means the path-derived identity claims do not
	// match the fetched object. Surfaced as not-found, never forbidden,
	// so that existence is not confirmed to an unauthorized caller.
	ErrIdentityMismatch = errors.New("object does not match request path")

	ErrInvisibleNotRequested = errors.New("invisible resources must be requested explicitly with include_invisible")
)
