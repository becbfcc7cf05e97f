package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/josh-kwaku/liquid-bank-api/internal/domain"
)

const challengeKeyPrefix = "otp:challenge:"

// A challenge is a hash of h (the code hash) and n (misses so far).
var consumeScript = redis.NewScript(`
local h = redis.call("HGET", KEYS[1], "h")
if not h then
	return 0
end
if h == ARGV[1] then
	redis.call("DEL", KEYS[1])
	return 1
end
if redis.call("HINCRBY", KEYS[1], "n", 1) >= tonumber(ARGV[2]) then
	redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore shares pending challenges between server replicas. Expiry is
// handled by the key TTL.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func challengeKey(accountID uuid.UUID) string {
	return challengeKeyPrefix + accountID.String()
}

func (s *RedisStore) Put(ctx context.Context, accountID uuid.UUID, codeHash string, ttl time.Duration) error {
	key := challengeKey(accountID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, "h", codeHash, "n", 0)
		pipe.PExpire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("RedisStore.Put: %w", transient(err))
	}
	return nil
}

func (s *RedisStore) Consume(ctx context.Context, accountID uuid.UUID, codeHash string) (bool, error) {
	n, err := consumeScript.Run(ctx, s.client, []string{challengeKey(accountID)}, codeHash, maxChallengeAttempts).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("RedisStore.Consume: %w", transient(err))
	}
	return n == 1, nil
}

func transient(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrTransient, err)
}
