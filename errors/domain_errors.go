// api/errors/domain_errors.go
package errors

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidUserData = errors.New("invalid user data")

	ErrDataSetNotFound    = errors.New("dataset not found")
	ErrDataSetConflict    = errors.New("dataset conflict")
	ErrInvalidDataSetData = errors.New("invalid dataset data")

	ErrPlaceNotFound    = errors.New("place not found")
	ErrInvalidPlaceData = errors.New("invalid place data")

	ErrSubmissionNotFound    = errors.New("submission not found")
	ErrInvalidSubmissionData = errors.New("invalid submission data")

	ErrAttachmentNotFound    = errors.New("attachment not found")
	ErrInvalidAttachmentData = errors.New("invalid attachment data")

	ErrDatabaseOperation = errors.New("database operation failed")
	ErrInternalServer    = errors.New("internal server error")
	ErrInvalidPagination = errors.New("invalid pagination parameters")
)
