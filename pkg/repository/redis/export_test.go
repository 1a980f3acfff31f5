package redis

import "github.com/secmon-lab/atlas/pkg/domain/model"

// RedisKey is exported for testing
func RedisKey(r *Redis, key model.SeenKey) string {
	return r.seen.redisKey(key)
}
