package model

import "errors"

// Failure categories surfaced to the shell. Components wrap these with
// fmt.Errorf("%w: ...") so callers can classify with errors.Is while still
// getting a human-readable message.
var (
	// ErrStorage marks a durable-log I/O failure. Fatal to the current
	// operation and never partially applied.
	ErrStorage = errors.New("storage failure")

	// ErrAuth means no API credential is configured for the selected
	// provider. Reported before any network call is made.
	ErrAuth = errors.New("no API credential configured")

	// ErrNetwork marks a transport failure or non-2xx status from the
	// completion service. The response body is carried in the wrapped
	// message for diagnostics. Never retried.
	ErrNetwork = errors.New("completion request failed")

	// ErrParse marks malformed input or a malformed success response.
	ErrParse = errors.New("malformed data")
)
