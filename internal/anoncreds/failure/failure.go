// Package failure is the error taxonomy shared by the identifier codec, the
// endpoint resolver and the resource fetcher. The registry maps it onto the
// public resolution metadata in exactly one place.
package failure

import (
	"errors"
	"fmt"
)

// Category defines the normalized failure taxonomy.
type Category string

const (
	// MalformedIdentifier: the identifier is not a did:web composite identifier.
	MalformedIdentifier Category = "malformed_identifier"

	// DidResolutionFailed: the DID document could not be obtained.
	DidResolutionFailed Category = "did_resolution_failed"

	// ServiceNotFound: the DID document has no usable entry for the named service.
	ServiceNotFound Category = "service_not_found"

	// NotFound: the remote endpoint answered with a non-200 status.
	NotFound Category = "not_found"

	// ResourceIDMismatch: the fetched content does not hash to the identifier's resource id.
	ResourceIDMismatch Category = "resource_id_mismatch"

	// Canonicalization: the object cannot be canonicalized.
	Canonicalization Category = "canonicalization"

	// Transport: network failures and undecodable responses.
	Transport Category = "transport"
)

// MessageWrongResourceID is the message carried by ResourceIDMismatch failures.
const MessageWrongResourceID = "Wrong resource Id"

// Error wraps a failure with its category.
type Error struct {
	Category   Category
	Message    string
	Status     int // HTTP status for NotFound, kept for diagnostics
	Underlying error
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s] %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// New creates a categorized failure.
func New(category Category, message string, underlying error) *Error {
	return &Error{Category: category, Message: message, Underlying: underlying}
}

// Newf creates a categorized failure with a formatted message.
func Newf(category Category, format string, args ...any) *Error {
	return &Error{Category: category, Message: fmt.Sprintf(format, args...)}
}

// NewNotFound records the status the remote endpoint answered with.
func NewNotFound(url string, status int) *Error {
	return &Error{
		Category: NotFound,
		Message:  fmt.Sprintf("resource at %s not found (status %d)", url, status),
		Status:   status,
	}
}

// CategoryOf extracts the category from an error chain. Errors outside the
// taxonomy are treated as Transport.
func CategoryOf(err error) Category {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Category
	}
	return Transport
}

// MessageOf returns the human readable message of a failure, without the
// category prefix and underlying cause.
func MessageOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// Is reports whether err belongs to category.
func Is(err error, category Category) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Category == category
}
