package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
	"github.com/secmon-lab/atlas/pkg/domain/model"
)

type seenRepository struct {
	client    *redis.Client
	keyPrefix string
}

func newSeenRepository(client *redis.Client) *seenRepository {
	return &seenRepository{
		client:    client,
		keyPrefix: DefaultKeyPrefix,
	}
}

// redisKey encodes key as <prefix><len(channel)>:<channel>:<issue>. The length
// prefix keeps the encoding unambiguous whatever the channel name contains.
func (r *seenRepository) redisKey(key model.SeenKey) string {
	return r.keyPrefix + strconv.Itoa(len(key.Channel)) + ":" + key.Channel + ":" + key.Issue.String()
}

func (r *seenRepository) Put(ctx context.Context, record *model.SeenRecord) error {
	if err := record.Key.Validate(); err != nil {
		return goerr.Wrap(err, "invalid seen record")
	}

	ttl := record.TTL(record.SeenAt)
	if ttl <= 0 {
		return goerr.New("seen record has no lifetime",
			goerr.V("channel", record.Key.Channel),
			goerr.V("issue", record.Key.Issue),
		)
	}

	value := record.SeenAt.UTC().Format(time.RFC3339Nano)
	if err := r.client.Set(ctx, r.redisKey(record.Key), value, ttl).Err(); err != nil {
		return goerr.Wrap(err, "failed to put seen record to redis",
			goerr.V("channel", record.Key.Channel),
			goerr.V("issue", record.Key.Issue),
		)
	}
	return nil
}

func (r *seenRepository) Get(ctx context.Context, key model.SeenKey) (*model.SeenRecord, error) {
	if err := key.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid seen key")
	}

	redisKey := r.redisKey(key)
	var getCmd *redis.StringCmd
	var ttlCmd *redis.DurationCmd
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		getCmd = pipe.Get(ctx, redisKey)
		ttlCmd = pipe.PTTL(ctx, redisKey)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, goerr.Wrap(err, "failed to get seen record from redis",
			goerr.V("channel", key.Channel),
			goerr.V("issue", key.Issue),
		)
	}

	value, err := getCmd.Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get seen record from redis", goerr.V("issue", key.Issue))
	}

	// PTTL reports "no expiry" and "gone" as negative durations; such keys
	// were not written by Put and are ignored.
	ttl := ttlCmd.Val()
	if ttl <= 0 {
		return nil, nil
	}

	seenAt, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid seen record value in redis", goerr.V("value", value), goerr.V("issue", key.Issue))
	}

	return &model.SeenRecord{
		Key:       key,
		SeenAt:    seenAt,
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

// Prune is a no-op: Redis expires keys by itself
func (r *seenRepository) Prune(ctx context.Context, before time.Time) (int, error) {
	return 0, nil
}
