package domain

import (
	"errors"
	"fmt"
)

// Core error taxonomy. Every failure crossing a package boundary is one of
// these, matched with errors.Is. No operation retries on any of them.
var (
	// ErrValidation covers malformed input, e.g. a recipient address
	// without a domain separator.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidOrExpiredToken is returned for a wrong token value, a wrong
	// token/recipient pairing, and an elapsed TTL alike. Callers cannot
	// tell those apart from the error.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")

	// ErrUnauthorized means no valid session accompanied the request.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned both for rows that do not exist and for rows
	// the caller does not own or that are soft-deleted.
	ErrNotFound = errors.New("not found")

	// ErrRateLimited means magic-link issuance was throttled for the recipient.
	ErrRateLimited = errors.New("too many requests")
)

// StoreError wraps an underlying persistence failure. The driver error is
// kept for internal logging; callers only ever see a generic message.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError wraps err unless it is already part of the taxonomy.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidOrExpiredToken) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// IsStoreError reports whether err is a persistence failure.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
