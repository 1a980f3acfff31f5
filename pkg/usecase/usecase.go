package usecase

import (
	"time"

	"github.com/secmon-lab/atlas/pkg/domain/interfaces"
	"github.com/secmon-lab/atlas/pkg/domain/model"
	"github.com/secmon-lab/atlas/pkg/domain/types"
)

const (
	// DefaultBotName is the sender name Slack uses for its own messages
	DefaultBotName = "slackbot"

	// DefaultConcurrency bounds concurrent tracker lookups for one message
	DefaultConcurrency = 4
)

type UseCases struct {
	tracker interfaces.IssueTracker
	dedup   *DedupCache
	auth    *TokenAuthenticator
	chat    interfaces.ChatPoster
	events  *eventGuard

	botName    string
	botUserID  string
	projects   map[string]struct{}
	ignoreKeys map[types.IssueKey]struct{}

	separator   string
	concurrency int
	now         func() time.Time
}

type Option func(*UseCases)

// WithAuthenticator sets the token gate for webhooks and slash commands
func WithAuthenticator(auth *TokenAuthenticator) Option {
	return func(uc *UseCases) {
		uc.auth = auth
	}
}

// WithChatPoster enables replies to Events API messages
func WithChatPoster(chat interfaces.ChatPoster) Option {
	return func(uc *UseCases) {
		uc.chat = chat
	}
}

// WithBotName sets the sender name whose messages are ignored
func WithBotName(name string) Option {
	return func(uc *UseCases) {
		uc.botName = name
	}
}

// WithBotUserID sets the sender user ID whose messages are ignored
func WithBotUserID(id string) Option {
	return func(uc *UseCases) {
		uc.botUserID = id
	}
}

// WithProjects restricts replies to issues of the given project keys. An empty
// list allows every project.
func WithProjects(projects ...string) Option {
	return func(uc *UseCases) {
		for _, p := range projects {
			if uc.projects == nil {
				uc.projects = make(map[string]struct{})
			}
			uc.projects[p] = struct{}{}
		}
	}
}

// WithIgnoreKeys silences keys that look like issues but are not, e.g. UTF-8
func WithIgnoreKeys(keys ...types.IssueKey) Option {
	return func(uc *UseCases) {
		for _, k := range keys {
			if uc.ignoreKeys == nil {
				uc.ignoreKeys = make(map[types.IssueKey]struct{})
			}
			uc.ignoreKeys[k] = struct{}{}
		}
	}
}

// WithSeparator sets the text placed between issue blocks of one reply
func WithSeparator(sep string) Option {
	return func(uc *UseCases) {
		uc.separator = sep
	}
}

// WithConcurrency bounds concurrent tracker lookups for one message
func WithConcurrency(n int) Option {
	return func(uc *UseCases) {
		if n > 0 {
			uc.concurrency = n
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(tracker interfaces.IssueTracker, dedup *DedupCache, opts ...Option) *UseCases {
	uc := &UseCases{
		tracker:     tracker,
		dedup:       dedup,
		events:      newEventGuard(),
		botName:     DefaultBotName,
		separator:   model.DefaultReplySeparator,
		concurrency: DefaultConcurrency,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Dedup returns the dedup cache used by the use cases
func (uc *UseCases) Dedup() *DedupCache {
	return uc.dedup
}
