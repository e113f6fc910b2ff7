package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("key not found in cache")
	ErrInvalidValue = errors.New("invalid value for cache")
)

type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Get(ctx context.Context, key string, value interface{}) error

	Delete(ctx context.Context, key string) error

	Close() error
}

type Options struct {
	DefaultTTL time.Duration

	RedisAddr string

	RedisPassword string

	RedisDB int
}

func DefaultOptions() Options {
	return Options{
		DefaultTTL: 5 * time.Minute,
	}
}

// Noop is used when no cache backend is configured. Every lookup misses.
type Noop struct{}

func (Noop) Set(context.Context, string, interface{}, time.Duration) error { return nil }

func (Noop) Get(context.Context, string, interface{}) error { return ErrNotFound }

func (Noop) Delete(context.Context, string) error { return nil }

func (Noop) Close() error { return nil }
