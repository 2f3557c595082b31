package errors

// ErrorCode classifies a storage failure.
// Codes are string-based for debuggability and natural log output.
type ErrorCode string

const (
	// CodeInvalidInput indicates the caller supplied an invalid path, part list, or option.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeNotFound indicates the object or multipart upload does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeProtocol indicates the backend rejected the request shape
	// (unknown upload id, bad part number, missing bucket, undersized part).
	CodeProtocol ErrorCode = "PROTOCOL_ERROR"

	// CodeTransport indicates a network or timeout failure in the underlying transport.
	CodeTransport ErrorCode = "TRANSPORT_ERROR"

	// CodeLocalResource indicates a temporary file could not be created, written, or removed.
	CodeLocalResource ErrorCode = "LOCAL_RESOURCE_ERROR"

	// CodeUnknown indicates an unclassified error.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// Code walks the error chain and returns the most specific classification.
// Invalid input wins over not-found, which wins over protocol errors, so a
// NoSuchKey response is reported as CodeNotFound rather than CodeProtocol.
func Code(err error) ErrorCode {
	switch {
	case err == nil:
		return ""
	case Is(err, ErrInvalidInput), Is(err, ErrInvalidObjectKey):
		return CodeInvalidInput
	case Is(err, ErrObjectNotFound):
		return CodeNotFound
	case Is(err, ErrLocalResource):
		return CodeLocalResource
	case Is(err, ErrProtocol):
		return CodeProtocol
	case Is(err, ErrTransport):
		return CodeTransport
	default:
		return CodeUnknown
	}
}
