package usecase

import (
	"context"

	"github.com/roamio/backend/domain"
)

// ObjectStore abstracts the remote binary media store. Implementations must
// bound every call with a timeout; a timeout surfaces as a plain error and
// callers treat it like any other failure.
type ObjectStore interface {
	Upload(ctx context.Context, filename string, data []byte) (domain.AssetRef, error)
	Delete(ctx context.Context, assetID string) error
}

// CleanupQueue accepts asset ids whose remote deletion could not be
// completed inline. A background sweeper retries them later so remote
// orphans are eventually released.
type CleanupQueue interface {
	EnqueueAssetDelete(ctx context.Context, assetID, reason string) error
}

// NotifyEvent is the structured summary handed to the notifier after a
// successful state change.
type NotifyEvent struct {
	Kind           string            `json:"kind"`
	RecipientEmail string            `json:"recipient_email"`
	Payload        map[string]string `json:"payload,omitempty"`
}

// Notifier delivers events best-effort. Failures are logged by the caller
// and never fail the enclosing operation.
type Notifier interface {
	Notify(ctx context.Context, event NotifyEvent) error
}
