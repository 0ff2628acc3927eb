package services

import "errors"

var (
	// ErrBusinessNotFound means no business matches the webhook's
	// business id or "to" number. Terminal for the message; the
	// boundary still acknowledges receipt.
	ErrBusinessNotFound = errors.New("business not found")

	// ErrBusinessInactive means the business exists but is disabled.
	ErrBusinessInactive = errors.New("business is inactive")
)
