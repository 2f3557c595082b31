// Package errors provides the unified storage error returned by every
// objectstore operation.
package errors

import (
	"errors"
	"fmt"
)

// Error is the failure type returned by every objectstore operation. Op names
// the client operation, Bucket and Key locate the object when known, and Err
// carries the classified cause.
type Error struct {
	Op     string
	Bucket string
	Key    string
	Err    error
}

func (e *Error) Error() string {
	var where string
	switch {
	case e.Bucket != "" && e.Key != "":
		where = " " + e.Bucket + "/" + e.Key
	case e.Bucket != "":
		where = " bucket " + e.Bucket
	case e.Key != "":
		where = " object " + e.Key
	}
	return fmt.Sprintf("objectstore.%s%s: %v", e.Op, where, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Code classifies the wrapped cause.
func (e *Error) Code() ErrorCode {
	return Code(e.Err)
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError wraps err for operation op.
func NewError(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}

// NewObjectError wraps err for operation op on bucket/key.
func NewObjectError(op, bucket, key string, err error) *Error {
	return &Error{Op: op, Bucket: bucket, Key: key, Err: err}
}

// Mark attaches a classification sentinel to err while keeping err reachable
// through errors.As, so callers can still inspect SDK error types.
func Mark(sentinel, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// Classification sentinels, matched with errors.Is.
var (
	ErrObjectNotFound   = errors.New("objectstore: object not found")
	ErrInvalidInput     = errors.New("objectstore: invalid input")
	ErrInvalidObjectKey = errors.New("objectstore: invalid object key")
	// ErrProtocol marks a request the backend understood and rejected.
	ErrProtocol = errors.New("objectstore: protocol error")
	// ErrTransport marks network, DNS and timeout failures.
	ErrTransport = errors.New("objectstore: transport error")
	// ErrLocalResource marks temporary file failures.
	ErrLocalResource = errors.New("objectstore: local resource error")
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsObjectNotFound checks if an error indicates that an object was not found.
func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// IsInvalidInput checks if an error indicates invalid input, including invalid keys.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrInvalidObjectKey)
}

// IsProtocol checks if the backend rejected the request.
func IsProtocol(err error) bool {
	return errors.Is(err, ErrProtocol)
}

// IsTransport checks if an error came from the network layer.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsLocalResource checks if an error came from temporary file handling.
func IsLocalResource(err error) bool {
	return errors.Is(err, ErrLocalResource)
}
