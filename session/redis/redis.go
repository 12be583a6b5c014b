package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/intakehq/intake/session/sessionmodels"
)

const keyPrefix = "clarification:"

// Store is the redis-backed session backend. TTL maps onto key expiry.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(ctx context.Context, host, port, password string, db int, ttl time.Duration) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Store{client: client, ttl: ttl}, nil
}

func (s *Store) Put(ctx context.Context, requestID string, record sessionmodels.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+requestID, data, s.ttl).Err()
}

// Take deletes the key atomically with the read via GETDEL, so a record
// is consumed at most once even across processes.
func (s *Store) Take(ctx context.Context, requestID string) (sessionmodels.Record, bool, error) {
	val, err := s.client.GetDel(ctx, keyPrefix+requestID).Result()
	if err == redis.Nil {
		return sessionmodels.Record{}, false, nil
	}
	if err != nil {
		return sessionmodels.Record{}, false, err
	}
	var record sessionmodels.Record
	if err := json.Unmarshal([]byte(val), &record); err != nil {
		return sessionmodels.Record{}, false, err
	}
	return record, true, nil
}
