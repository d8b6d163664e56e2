package model

import "context"

// Completer is the contract the orchestrator holds against a completion
// service. A single call sends the assembled message sequence and returns
// the response text.
//
// Implementations must:
//   - treat any non-success status as a hard failure wrapping ErrNetwork,
//     carrying the response body for diagnostics;
//   - return the NoResponse placeholder (nil error) when a successful
//     response is missing the expected content, so a malformed-but-200
//     response degrades instead of breaking the turn;
//   - never retry. A failed call surfaces immediately.
type Completer interface {
	Complete(ctx context.Context, messages []Message, maxTokens int64) (string, error)
}

// NoResponse is the placeholder a Completer returns when the service
// answered successfully but the expected content field was absent.
const NoResponse = "No response"
