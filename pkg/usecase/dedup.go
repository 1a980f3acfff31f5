package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/atlas/pkg/domain/interfaces"
	"github.com/secmon-lab/atlas/pkg/domain/model"
	"github.com/secmon-lab/atlas/pkg/domain/types"
	"github.com/secmon-lab/atlas/pkg/utils/logging"
)

// DefaultBlackout is how long an issue stays quiet in a channel after it was
// reported there
const DefaultBlackout = 5 * time.Minute

// DedupCache remembers which issues were recently reported in which channel
type DedupCache struct {
	repo     interfaces.SeenRepository
	blackout time.Duration
	policy   types.DedupFailurePolicy
}

// DedupOption is a functional option for DedupCache
type DedupOption func(*DedupCache)

// WithFailurePolicy sets how WasSeen answers when the store fails
func WithFailurePolicy(policy types.DedupFailurePolicy) DedupOption {
	return func(x *DedupCache) {
		x.policy = policy
	}
}

// NewDedupCache creates a DedupCache over repo. A non-positive blackout falls
// back to DefaultBlackout.
func NewDedupCache(repo interfaces.SeenRepository, blackout time.Duration, opts ...DedupOption) *DedupCache {
	if blackout <= 0 {
		blackout = DefaultBlackout
	}

	x := &DedupCache{
		repo:     repo,
		blackout: blackout,
		policy:   types.DedupFailOpen,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Blackout returns the configured quiet period
func (x *DedupCache) Blackout() time.Duration {
	return x.blackout
}

// MarkSeen records that key was reported in channel at now, replacing any
// earlier record
func (x *DedupCache) MarkSeen(ctx context.Context, channel string, key types.IssueKey, now time.Time) error {
	record := model.NewSeenRecord(model.SeenKey{Channel: channel, Issue: key}, now, x.blackout)
	if err := x.repo.Put(ctx, record); err != nil {
		return goerr.Wrap(err, "failed to mark issue as seen",
			goerr.V(ChannelKey, channel),
			goerr.V(IssueKeyKey, key),
		)
	}
	return nil
}

// WasSeen returns when key was last reported in channel, if that report is
// still inside the blackout window at now. Store failures are answered
// according to the failure policy.
func (x *DedupCache) WasSeen(ctx context.Context, channel string, key types.IssueKey, now time.Time) (time.Time, bool) {
	record, err := x.repo.Get(ctx, model.SeenKey{Channel: channel, Issue: key})
	if err != nil {
		logging.From(ctx).Warn("dedup store unavailable",
			ChannelKey, channel,
			IssueKeyKey, key,
			"policy", x.policy,
			"error", err,
		)
		return time.Time{}, x.policy == types.DedupFailClosed
	}

	if record == nil || record.IsExpired(now) {
		return time.Time{}, false
	}
	return record.SeenAt, true
}

// Prune deletes records that expired before now
func (x *DedupCache) Prune(ctx context.Context, now time.Time) (int, error) {
	n, err := x.repo.Prune(ctx, now)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to prune seen records")
	}
	return n, nil
}
