package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/atlas/pkg/domain/types"
)

// SeenKey identifies an issue mention within a channel. It is kept as a struct
// so that channel names containing any separator cannot collide.
type SeenKey struct {
	Channel string
	Issue   types.IssueKey
}

// Validate checks if the SeenKey is usable as a store key
func (k SeenKey) Validate() error {
	if k.Channel == "" {
		return goerr.New("channel cannot be empty", goerr.V("issue", k.Issue))
	}
	if err := k.Issue.Validate(); err != nil {
		return goerr.Wrap(err, "invalid issue key", goerr.V("channel", k.Channel))
	}
	return nil
}

// SeenRecord records that an issue was reported in a channel
type SeenRecord struct {
	Key       SeenKey
	SeenAt    time.Time
	ExpiresAt time.Time
}

// NewSeenRecord creates a record for key reported at now, live for blackout
func NewSeenRecord(key SeenKey, now time.Time, blackout time.Duration) *SeenRecord {
	return &SeenRecord{
		Key:       key,
		SeenAt:    now,
		ExpiresAt: now.Add(blackout),
	}
}

// IsExpired reports whether the record is no longer live at now
func (x *SeenRecord) IsExpired(now time.Time) bool {
	return !now.Before(x.ExpiresAt)
}

// TTL returns the remaining lifetime at now, never negative
func (x *SeenRecord) TTL(now time.Time) time.Duration {
	if d := x.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}
