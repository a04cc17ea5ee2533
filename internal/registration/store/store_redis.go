package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"eventlift/internal/registration"
	"eventlift/pkg/domain"
	"eventlift/pkg/platform/sentinel"
)

const (
	pendingEmailKeyPrefix = "pending:email:"
	pendingIDKeyPrefix    = "pending:id:"
)

// Redis persists pending registrations with native key TTL, so expired
// records disappear without a sweeper. Readers still re-check the record's
// own expiry: key TTL is hygiene, not the source of truth.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (s *Redis) Replace(ctx context.Context, pending *registration.PendingRegistration) error {
	payload, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("marshal pending registration: %w", err)
	}
	ttl := time.Until(pending.ExpiresAt)
	if ttl <= 0 {
		return sentinel.ErrExpired
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, pendingEmailKeyPrefix+emailKey(pending.Email), payload, ttl)
	pipe.Set(ctx, pendingIDKeyPrefix+pending.ID.String(), emailKey(pending.Email), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store pending registration: %w", err)
	}
	return nil
}

func (s *Redis) FindByEmail(ctx context.Context, email string) (*registration.PendingRegistration, error) {
	payload, err := s.client.Get(ctx, pendingEmailKeyPrefix+emailKey(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch pending registration: %w", err)
	}
	var pending registration.PendingRegistration
	if err := json.Unmarshal(payload, &pending); err != nil {
		return nil, fmt.Errorf("unmarshal pending registration: %w", err)
	}
	return &pending, nil
}

func (s *Redis) FindByID(ctx context.Context, id domain.PendingID) (*registration.PendingRegistration, error) {
	email, err := s.client.Get(ctx, pendingIDKeyPrefix+id.String()).Result()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve pending id: %w", err)
	}
	pending, err := s.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	// The id key can outlive a replacement of the email slot; only hand the
	// record back if it is still the one the id was minted for.
	if pending.ID != id {
		return nil, sentinel.ErrNotFound
	}
	return pending, nil
}

func (s *Redis) Delete(ctx context.Context, email string) error {
	pending, err := s.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, pendingEmailKeyPrefix+emailKey(email))
	pipe.Del(ctx, pendingIDKeyPrefix+pending.ID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete pending registration: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op: redis key TTL already removes stale records.
func (s *Redis) DeleteExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}
