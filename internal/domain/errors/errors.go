package errors

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrNoCredentials     = errors.New("no stored credentials")
	ErrReauthRequired    = errors.New("reauthorization required")
	ErrValidation        = errors.New("validation failed")
	ErrDuplicateNumber   = errors.New("order number already in use")
	ErrRateLimited       = errors.New("external service rate limit exhausted")
	ErrInvalidTransition = errors.New("invalid negotiation transition")
	ErrSuggestionPending = errors.New("order already has a pending suggestion")
)
