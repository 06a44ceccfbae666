package domain

import (
	"errors"
	"fmt"
)

// Failure kinds surfaced by the summary store.
var (
	ErrNotFound          = errors.New("not found")
	ErrGenerationFailure = errors.New("generation failed")
	ErrValidation        = errors.New("validation failed")
	ErrTransport         = errors.New("transport failure")
)

// StoreError carries a human-readable message derived from the store
// response together with its failure kind.
type StoreError struct {
	Kind    error
	Op      string
	Status  int
	Message string
}

func (e *StoreError) Error() string {
	if e == nil {
		return ""
	}
	if e.Op == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap exposes the kind so callers can use errors.Is.
func (e *StoreError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Kind
}

// Describe returns the message a person should see for err.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var storeErr *StoreError
	if errors.As(err, &storeErr) && storeErr.Message != "" {
		return storeErr.Message
	}
	return err.Error()
}
