package usecase

import (
	"sync"
	"time"
)

const (
	eventGuardTTL = 10 * time.Minute
)

type eventKey struct {
	channelID string
	ts        string
}

// eventGuard admits each Slack message once. A post that mentions the bot
// arrives both as app_mention and as message, and Slack redelivers events it
// considers unacknowledged.
type eventGuard struct {
	seen sync.Map
}

func newEventGuard() *eventGuard {
	return &eventGuard{}
}

// claim returns true for the first delivery of (channelID, ts) within
// eventGuardTTL and false for every later one
func (g *eventGuard) claim(channelID, ts string, now time.Time) bool {
	if ts == "" {
		return true
	}

	g.seen.Range(func(k, v any) bool {
		if !now.Before(v.(time.Time)) {
			g.seen.CompareAndDelete(k, v)
		}
		return true
	})

	key := eventKey{channelID: channelID, ts: ts}
	expiresAt := now.Add(eventGuardTTL)
	for {
		prev, loaded := g.seen.LoadOrStore(key, expiresAt)
		if !loaded {
			return true
		}
		if now.Before(prev.(time.Time)) {
			return false
		}
		if g.seen.CompareAndSwap(key, prev, expiresAt) {
			return true
		}
	}
}
