package repository

import "errors"

var (
	ErrNotFound      = errors.New("entity not found")
	ErrUpdateFailed  = errors.New("update failed")
	ErrDeleteFailed  = errors.New("delete failed")
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrTxConflict is surfaced when the transactional backend aborts an
	// atomic multi-write. No writes are visible; the caller may retry.
	ErrTxConflict = errors.New("transaction conflict: operation aborted, safe to retry")

	ErrConnectionFailed = errors.New("database connection failed")
	ErrQueryFailed      = errors.New("database query failed")
)
