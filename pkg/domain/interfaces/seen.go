package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/atlas/pkg/domain/model"
)

// SeenRepository stores which issues were recently reported in which channel
type SeenRepository interface {
	// Put stores record, replacing any record with the same key. Backends with
	// native expiry drop the record at record.ExpiresAt.
	Put(ctx context.Context, record *model.SeenRecord) error

	// Get returns the record for key, or nil when none is stored. A returned
	// record may already be expired; callers check ExpiresAt themselves.
	Get(ctx context.Context, key model.SeenKey) (*model.SeenRecord, error)

	// Prune deletes records that expired before the given time and returns the
	// number deleted. Backends with native expiry return 0.
	Prune(ctx context.Context, before time.Time) (int, error)
}
