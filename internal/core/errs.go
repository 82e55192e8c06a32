package core

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when a batch start or status clear collides with a
// batch that is still running. No partial state is mutated.
var ErrBusy = errors.New("a processing batch is already running")

// ValidationError rejects malformed input before any I/O happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// FetchError is a network or timeout failure while fetching a page or PDF.
// Inside a batch it is recorded per item and never aborts sibling items.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError is unparseable HTML. Not retried.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StorageError is an object-store failure. Recorded, not retried, and it
// never aborts the rest of the batch.
type StorageError struct {
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("object store: %v", e.Err)
	}
	return fmt.Sprintf("object store %s: %v", e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// SyncUnavailableError means the retrieval service could not be reached.
// Stored documents are unaffected; a later manual sync can recover.
type SyncUnavailableError struct {
	Err error
}

func (e *SyncUnavailableError) Error() string {
	return fmt.Sprintf("retrieval service unavailable: %v", e.Err)
}

func (e *SyncUnavailableError) Unwrap() error { return e.Err }
