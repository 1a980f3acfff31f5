package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/atlas/pkg/domain/model"
)

type seenRepository struct {
	mu      sync.RWMutex
	records map[model.SeenKey]*model.SeenRecord
}

func newSeenRepository() *seenRepository {
	return &seenRepository{
		records: make(map[model.SeenKey]*model.SeenRecord),
	}
}

func copySeenRecord(r *model.SeenRecord) *model.SeenRecord {
	copied := *r
	return &copied
}

func (r *seenRepository) Put(ctx context.Context, record *model.SeenRecord) error {
	if err := record.Key.Validate(); err != nil {
		return goerr.Wrap(err, "invalid seen record")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Expired records are dropped on write so the map stays bounded by the
	// number of mentions within one blackout period.
	r.pruneLocked(record.SeenAt)
	r.records[record.Key] = copySeenRecord(record)
	return nil
}

func (r *seenRepository) Get(ctx context.Context, key model.SeenKey) (*model.SeenRecord, error) {
	if err := key.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid seen key")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[key]
	if !ok {
		return nil, nil
	}
	return copySeenRecord(record), nil
}

func (r *seenRepository) Prune(ctx context.Context, before time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.pruneLocked(before), nil
}

func (r *seenRepository) pruneLocked(before time.Time) int {
	deleted := 0
	for key, record := range r.records {
		if record.IsExpired(before) {
			delete(r.records, key)
			deleted++
		}
	}
	return deleted
}
