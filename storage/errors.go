package storage

// ErrorCode classifies storage failures. Not-found is never an error:
// lookups return nil or false instead.
type ErrorCode string

const (
	// ErrStorageFailure is an unexpected I/O failure (permission, device).
	ErrStorageFailure ErrorCode = "StorageFailure"
	// ErrUnsupported is returned for operations or backends a provider
	// cannot serve. It is distinct from not-found.
	ErrUnsupported ErrorCode = "Unsupported"
	// ErrInvalidConfig rejects an unknown storage type.
	ErrInvalidConfig ErrorCode = "InvalidConfig"
)
