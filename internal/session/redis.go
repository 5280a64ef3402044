package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix        = "shopbot:session:"
	maxUpdateRetries = 5
)

// RedisStore keeps sessions as JSON documents. Updates use WATCH so that a
// concurrent writer on the same key forces a retry instead of a lost update.
type RedisStore struct {
	client  *redis.Client
	idleTTL time.Duration
	now     func() time.Time
}

func NewRedisStore(client *redis.Client, idleTTL time.Duration) *RedisStore {
	return &RedisStore{client: client, idleTTL: idleTTL, now: time.Now}
}

func key(userID string) string {
	return keyPrefix + userID
}

func decode(data []byte) (State, error) {
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("decode session: %w", err)
	}
	return st, nil
}

func (s *RedisStore) Get(ctx context.Context, userID string) (State, error) {
	data, err := s.client.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return State{Flow: Idle{}}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("get session: %w", err)
	}
	return decode(data)
}

func (s *RedisStore) Update(ctx context.Context, userID string, p Patch) (State, error) {
	k := key(userID)
	var next State

	txf := func(tx *redis.Tx) error {
		cur := State{Flow: Idle{}}
		data, err := tx.Get(ctx, k).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			if cur, err = decode(data); err != nil {
				return err
			}
		}

		next = p.Apply(cur, s.now().UTC())
		payload, err := json.Marshal(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, payload, s.idleTTL)
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := s.client.Watch(ctx, txf, k)
		if err == nil {
			return next, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return State{}, fmt.Errorf("update session: %w", err)
	}
	return State{}, fmt.Errorf("update session %s: too many concurrent writers", userID)
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
