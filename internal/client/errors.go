package client

import (
	"errors"
	"fmt"
)

var (
	ErrMissingName       = errors.New("name is required")
	ErrMissingPhone      = errors.New("phone is required")
	ErrMissingEmail      = errors.New("email is required")
	ErrInvalidNationalID = errors.New("national identifier must contain exactly 11 digits")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrClientNotFound    = errors.New("client not found")
)

// DuplicateIdentifierError reports a create attempt with a national
// identifier already owned by another client. ExistingName may be empty
// when the duplicate was detected by the storage constraint rather than
// the pre-check.
type DuplicateIdentifierError struct {
	NationalID   string
	ExistingID   int64
	ExistingName string
}

func (e *DuplicateIdentifierError) Error() string {
	if e.ExistingName != "" {
		return fmt.Sprintf("national identifier already registered for client %q", e.ExistingName)
	}
	return "national identifier already registered"
}

// IsDuplicateIdentifier reports whether err is a DuplicateIdentifierError.
func IsDuplicateIdentifier(err error) bool {
	var dup *DuplicateIdentifierError
	return errors.As(err, &dup)
}
