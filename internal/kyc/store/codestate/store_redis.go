package codestate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"idproof/internal/kyc/models"
	"idproof/pkg/platform/sentinel"
)

const keyPrefix = "kyc:code:"

// addAttempts increments only an existing hash so a late submission can never
// resurrect a code state without a TTL.
var addAttempts = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return -1
end
return redis.call('HINCRBY', KEYS[1], 'attempts', ARGV[1])
`)

// RedisStore keeps code state in a Redis hash per session and channel, so resend
// cooldowns and attempt counters hold across instances.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(id models.SessionID, ch models.Channel) string {
	return keyPrefix + id.String() + ":" + string(ch)
}

func (s *RedisStore) Issue(ctx context.Context, id models.SessionID, ch models.Channel, state models.CodeState, retention time.Duration) error {
	k := redisKey(id, ch)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, k)
		pipe.HSet(ctx, k,
			"purpose", string(state.Purpose),
			"masked", state.MaskedContact,
			"sent_at", state.SentAt.UnixNano(),
			"expires_at", state.ExpiresAt.UnixNano(),
			"attempts", state.Attempts,
		)
		pipe.Expire(ctx, k, retention)
		return nil
	})
	if err != nil {
		return fmt.Errorf("issue code state: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id models.SessionID, ch models.Channel) (models.CodeState, error) {
	fields, err := s.client.HGetAll(ctx, redisKey(id, ch)).Result()
	if err != nil {
		return models.CodeState{}, fmt.Errorf("get code state: %w", err)
	}
	if len(fields) == 0 {
		return models.CodeState{}, sentinel.ErrNotFound
	}
	return decode(fields)
}

func (s *RedisStore) AddAttempts(ctx context.Context, id models.SessionID, ch models.Channel, delta int) (int, error) {
	n, err := addAttempts.Run(ctx, s.client, []string{redisKey(id, ch)}, delta).Int()
	if err != nil {
		return 0, fmt.Errorf("add code attempts: %w", err)
	}
	if n < 0 {
		return 0, sentinel.ErrNotFound
	}
	return n, nil
}

func (s *RedisStore) Delete(ctx context.Context, id models.SessionID) error {
	err := s.client.Del(ctx, redisKey(id, models.ChannelEmail), redisKey(id, models.ChannelPhone)).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("delete code state: %w", err)
	}
	return nil
}

func decode(fields map[string]string) (models.CodeState, error) {
	sentAt, err := strconv.ParseInt(fields["sent_at"], 10, 64)
	if err != nil {
		return models.CodeState{}, fmt.Errorf("decode sent_at: %w", err)
	}
	expiresAt, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return models.CodeState{}, fmt.Errorf("decode expires_at: %w", err)
	}
	attempts, err := strconv.Atoi(fields["attempts"])
	if err != nil {
		return models.CodeState{}, fmt.Errorf("decode attempts: %w", err)
	}
	return models.CodeState{
		Purpose:       models.Purpose(fields["purpose"]),
		MaskedContact: fields["masked"],
		SentAt:        time.Unix(0, sentAt).UTC(),
		ExpiresAt:     time.Unix(0, expiresAt).UTC(),
		Attempts:      attempts,
	}, nil
}
