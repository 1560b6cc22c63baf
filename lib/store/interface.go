package store

import (
	"fmt"
	"io"

	"github.com/ValentinKolb/aKV/lib/backend"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// TransformFunc computes the new value for a key path from its old value.
// loaded is false when no value exists at the path; old is nil in that case.
type TransformFunc = backend.TransformFunc

// IStore is the generic interface for interacting with a consistency-aware
// key-value store. All operations run under the per-key lock of the first
// path element, so concurrent operations on the same key serialize while
// operations on distinct keys proceed in parallel.
//
// Errors returned by the store are of type *Error and carry a RetCode that
// distinguishes backend failures from semantic violations.
type IStore interface {
	// Exists returns whether a value exists at the given key path.
	Exists(path []string) (loaded bool, err error)
	// Get returns the value at the given key path. The boolean return value
	// indicates whether a value was found.
	Get(path []string) (value backend.Value, loaded bool, err error)
	// Update atomically transforms the value at the given key path and
	// returns the value before and after the transformation. The transform
	// runs exactly once, inside the key's critical section.
	Update(path []string, fn TransformFunc) (oldVal, newVal backend.Value, err error)
	// Assoc sets the value at the given key path, creating intermediate
	// containers as needed. Like Update it returns the value before and
	// after the write (Assoc is Update with a constant transform).
	Assoc(path []string, value backend.Value) (oldVal, newVal backend.Value, err error)

	// Append appends an element to the journal stored at the given key,
	// creating the journal if the key is absent. It returns the
	// content-derived ID of the new entry. If the key holds a value that is
	// not a journal head, the error carries RetCNotAJournal.
	Append(key string, element backend.Value) (entryID string, err error)
	// ReadLog returns all elements of the journal at the given key in
	// append order (oldest first). A missing key yields an empty slice.
	// If the key holds a value that is not a journal head, the error
	// carries RetCNotAJournal.
	ReadLog(key string) (elements []backend.Value, err error)

	// BGet streams the binary payload stored under the given key to fn.
	// The reader passed to fn is only valid for the duration of the call.
	BGet(key string, fn func(r io.Reader) error) (err error)
	// BAssoc stores the contents of r as the binary payload of the given key.
	BAssoc(key string, r io.Reader) (err error)

	// GetBackendInfo returns metadata about the backend underlying the store.
	// It is not guaranteed that all fields are filled in or that the
	// information is up-to-date!
	GetBackendInfo() (info backend.BackendInfo, err error)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("StoreError (code %s): %s", e.Code, e.Msg)
}

// NewError creates a new store error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// NewErrorf creates a new store error with a formatted message.
func NewErrorf(code RetCode, format string, args ...any) *Error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// CodeOf extracts the return code from an error. Errors that are not store
// errors map to RetCBackendFailure; a nil error maps to RetCSuccess.
func CodeOf(err error) RetCode {
	if err == nil {
		return RetCSuccess
	}
	if se, ok := err.(*Error); ok {
		return se.Code
	}
	return RetCBackendFailure
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess              RetCode = iota // 0: Command executed successfully.
	RetCBackendFailure                      // 1: Command failed inside the storage backend.
	RetCNotAJournal                         // 2: Key holds a value that is not a journal head.
	RetCUnsupportedOperation                // 3: Operation is not supported by this store.
	RetCInvalidOperation                    // 4: Invalid operation (bad arguments).
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCBackendFailure:
		return "BackendFailure"
	case RetCNotAJournal:
		return "NotAJournal"
	case RetCUnsupportedOperation:
		return "UnsupportedOperation"
	case RetCInvalidOperation:
		return "InvalidOperation"
	default:
		return "Unknown"
	}
}
