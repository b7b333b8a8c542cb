// Package idempotency defines the contract used to replay duplicate write requests.
package idempotency

import (
	"context"
	"time"
)

// Status is the state of a keyed operation.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// StaleAfter is how long a pending key may stay unfinished before another request reclaims it.
const StaleAfter = time.Minute

// Replay is a stored HTTP response.
type Replay struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Store persists idempotency keys.
type Store interface {
	// AcquireKey returns (nil, nil) when the caller now owns the key, a Replay when
	// the operation already finished, or an error when the key is in flight or
	// was used for a different request.
	AcquireKey(ctx context.Context, key, userID, operation, requestHash string) (*Replay, error)

	CompleteKey(ctx context.Context, key string, statusCode int, contentType string, response any) error
	FailKey(ctx context.Context, key string, statusCode int, contentType string, response any) error

	// CleanupExpired removes expired keys and returns how many were removed.
	CleanupExpired(ctx context.Context) (int64, error)
}

// NormalizeReplay fills defaults for records stored without status or content type.
func NormalizeReplay(r *Replay) *Replay {
	if r.StatusCode == 0 {
		r.StatusCode = 200
	}
	if r.ContentType == "" && r.StatusCode != 204 {
		r.ContentType = "application/json"
	}
	return r
}
