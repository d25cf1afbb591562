package service

import (
	"fmt"
	"strings"
)

// ValidationError reports bad entry input that the caller can correct.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func validationf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// PersistenceError wraps a failed write to the durable store. The in-memory
// ledger is left at the last successfully persisted snapshot.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

type LookupReason string

const (
	LookupNotFound       LookupReason = "not_found"
	LookupTimeout        LookupReason = "timeout"
	LookupMalformed      LookupReason = "malformed"
	LookupUnavailable    LookupReason = "unavailable"
	LookupInvalidBarcode LookupReason = "invalid_barcode"
)

// LookupError means product data could not be obtained. Manual entry is
// always still possible.
type LookupError struct {
	Barcode string
	Reason  LookupReason
	Err     error
}

func (e *LookupError) Error() string {
	var b strings.Builder
	switch e.Reason {
	case LookupNotFound:
		fmt.Fprintf(&b, "no product found for barcode %q", e.Barcode)
	case LookupTimeout:
		fmt.Fprintf(&b, "lookup for barcode %q timed out", e.Barcode)
	case LookupMalformed:
		fmt.Fprintf(&b, "invalid product data for barcode %q", e.Barcode)
	case LookupInvalidBarcode:
		fmt.Fprintf(&b, "invalid barcode %q (expected 8-14 digits)", e.Barcode)
	default:
		fmt.Fprintf(&b, "could not fetch product data for barcode %q", e.Barcode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *LookupError) Unwrap() error {
	return e.Err
}
