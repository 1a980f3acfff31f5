package slack

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

const (
	// DefaultCacheTTL is the default TTL for channel name cache
	DefaultCacheTTL = 10 * time.Minute
)

// cacheEntry holds a cached channel name with expiration
type cacheEntry struct {
	name      string
	expiresAt time.Time
}

// client implements Service interface
type client struct {
	api        *slack.Client
	apiOptions []slack.Option
	cacheTTL   time.Duration

	mu    sync.RWMutex
	cache map[string]cacheEntry

	identityMu sync.Mutex
	identity   *Identity
}

var _ Service = &client{}

// Option is a functional option for client configuration
type Option func(*client)

// WithCacheTTL sets the TTL for channel name cache
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *client) {
		c.cacheTTL = ttl
	}
}

// WithAPIURL points the client at another Slack API endpoint, e.g. a test server
func WithAPIURL(url string) Option {
	return func(c *client) {
		c.apiOptions = append(c.apiOptions, slack.OptionAPIURL(url))
	}
}

// New creates a new Slack service with the provided bot token
func New(token string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	c := &client{
		cacheTTL: DefaultCacheTTL,
		cache:    make(map[string]cacheEntry),
	}

	for _, opt := range opts {
		opt(c)
	}
	c.api = slack.New(token, c.apiOptions...)

	return c, nil
}

// PostThreadReply posts text as a reply in the thread rooted at threadTS
func (c *client) PostThreadReply(ctx context.Context, channelID, threadTS, text string) error {
	options := []slack.MsgOption{
		slack.MsgOptionText(text, false),
		slack.MsgOptionDisableLinkUnfurl(),
	}
	if threadTS != "" {
		options = append(options, slack.MsgOptionTS(threadTS))
	}

	if _, _, err := c.api.PostMessageContext(ctx, channelID, options...); err != nil {
		return goerr.Wrap(err, "failed to post message", goerr.V("channel_id", channelID), goerr.V("thread_ts", threadTS))
	}
	return nil
}

// GetChannelNames retrieves channel names for the given IDs with caching
func (c *client) GetChannelNames(ctx context.Context, ids []string) (map[string]string, error) {
	result := make(map[string]string)
	var missingIDs []string

	now := time.Now()

	// Check cache first
	c.mu.RLock()
	for _, id := range ids {
		if entry, ok := c.cache[id]; ok && entry.expiresAt.After(now) {
			result[id] = entry.name
		} else {
			missingIDs = append(missingIDs, id)
		}
	}
	c.mu.RUnlock()

	if len(missingIDs) == 0 {
		return result, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range missingIDs {
		// Double-check cache after acquiring write lock
		if entry, ok := c.cache[id]; ok && entry.expiresAt.After(now) {
			result[id] = entry.name
			continue
		}

		info, err := c.api.GetConversationInfoContext(ctx, &slack.GetConversationInfoInput{
			ChannelID: id,
		})
		if err != nil {
			// Unresolvable channels are left out; the caller falls back to the ID
			continue
		}

		result[id] = info.Name
		c.cache[id] = cacheEntry{
			name:      info.Name,
			expiresAt: now.Add(c.cacheTTL),
		}
	}

	return result, nil
}

// BotIdentity calls auth.test once and caches the answer
func (c *client) BotIdentity(ctx context.Context) (*Identity, error) {
	c.identityMu.Lock()
	defer c.identityMu.Unlock()

	if c.identity != nil {
		return c.identity, nil
	}

	resp, err := c.api.AuthTestContext(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call auth.test")
	}

	c.identity = &Identity{
		UserID: resp.UserID,
		User:   resp.User,
		BotID:  resp.BotID,
		TeamID: resp.TeamID,
	}
	return c.identity, nil
}
