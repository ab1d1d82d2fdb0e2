package errors

import "errors"

var (
	ErrDropNotFound           = errors.New("drop not found")
	ErrProfileNotFound        = errors.New("profile not found")
	ErrNotificationNotFound   = errors.New("notification not found")
	ErrNoSubscriptions        = errors.New("caller has no subscriptions")
	ErrNotDropCreator         = errors.New("caller is not the drop creator")
	ErrNotNotificationOwner   = errors.New("caller is not the notification owner")
	ErrInvalidDropRequest     = errors.New("invalid drop request")
	ErrInvalidProfileRequest  = errors.New("invalid profile request")
	ErrDropAlreadyExists      = errors.New("drop already exists")
	ErrIdempotencyKeyRequired = errors.New("idempotency key required")
	ErrIdempotencyConflict    = errors.New("idempotency key reused with a different request")
)
