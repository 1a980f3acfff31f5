package slack

import "time"

// CachedChannelName returns the cached name for id, if present and not expired
func CachedChannelName(svc Service, id string) (string, bool) {
	c := svc.(*client)
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[id]
	if !ok || !entry.expiresAt.After(time.Now()) {
		return "", false
	}
	return entry.name, true
}
