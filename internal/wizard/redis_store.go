package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const sessionKeyPrefix = "wizard_session:"

// DefaultSessionTTL bounds how long an idle wizard survives in Redis.
const DefaultSessionTTL = 2 * time.Hour

// RedisStore keeps wizard states as JSON values with a sliding TTL.
type RedisStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewRedisStore creates a Redis-backed store. A non-positive ttl uses DefaultSessionTTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisStore{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("booking-wizard.internal.wizard.redis_store"),
	}
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (State, bool, error) {
	if sessionID == "" {
		return State{}, false, errors.New("wizard: session id required")
	}
	ctx, span := s.tracer.Start(ctx, "wizard.session.load")
	defer span.End()

	raw, err := s.redis.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return State{}, false, nil
	}
	if err != nil {
		span.RecordError(err)
		return State{}, false, fmt.Errorf("wizard: load session: %w", err)
	}

	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		span.RecordError(err)
		return State{}, false, fmt.Errorf("wizard: decode session: %w", err)
	}
	return st, true, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, state State) error {
	if sessionID == "" {
		return errors.New("wizard: session id required")
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("wizard: encode session: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "wizard.session.save")
	defer span.End()

	if err := s.redis.Set(ctx, sessionKey(sessionID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("wizard: save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "wizard.session.delete")
	defer span.End()

	if err := s.redis.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("wizard: delete session: %w", err)
	}
	return nil
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}
