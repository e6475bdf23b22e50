package buffer

import (
	"time"

	"github.com/google/uuid"
)

// Item is one deferred object-store deletion. Assets land here when an
// inline delete failed or when an upload was stranded by an aborted entity
// write; the sweeper retries them until MaxRetries.
type Item struct {
	ID        string    `json:"id"`
	AssetID   string    `json:"asset_id"`
	Reason    string    `json:"reason,omitempty"`
	Retries   int       `json:"retries"`
	Timestamp time.Time `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
