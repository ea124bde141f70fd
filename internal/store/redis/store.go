package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"enterprise-portal/internal/store"

	goredis "github.com/redis/go-redis/v9"
)

type expiry struct {
	keyPrefix string
	ttl       time.Duration
}

type Store struct {
	client   goredis.UniversalClient
	prefix   string
	expiries []expiry
}

type Option func(*Store)

// WithExpiry makes keys starting with keyPrefix expire ttl after their last
// write.
func WithExpiry(keyPrefix string, ttl time.Duration) Option {
	return func(s *Store) {
		s.expiries = append(s.expiries, expiry{keyPrefix: keyPrefix, ttl: ttl})
	}
}

func NewStore(client goredis.UniversalClient, prefix string, opts ...Option) *Store {
	s := &Store{client: client, prefix: prefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, store.ErrNotFound
		}
		return nil, wrapError("get", key, err)
	}
	return value, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl(key)).Err(); err != nil {
		return wrapError("set", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return wrapError("del", key, err)
	}
	return nil
}

func (s *Store) ttl(key string) time.Duration {
	for _, e := range s.expiries {
		if strings.HasPrefix(key, e.keyPrefix) {
			return e.ttl
		}
	}
	return 0
}

func (s *Store) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

func wrapError(op, key string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, goredis.ErrClosed) {
		return fmt.Errorf("redis %s %s: %w: %v", op, key, store.ErrUnavailable, err)
	}
	return fmt.Errorf("redis %s %s: %w", op, key, err)
}
