package actions

import (
	"context"
	"fmt"
	"strings"
)

const (
	// DocumentKey is the backend key holding the action document.
	DocumentKey = "actions"
	// UserCacheKey is the backend key holding the last resolved username.
	UserCacheKey = "user"
)

// Backend is an async key-value store the action document is persisted
// to. Get returns ErrNotFound for a missing key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// BackendKind names a Backend implementation.
type BackendKind string

const (
	BackendFile   BackendKind = "file"
	BackendSQLite BackendKind = "sqlite"
	BackendRedis  BackendKind = "redis"
	BackendMemory BackendKind = "memory"
)

// BackendOptions selects and configures a Backend.
type BackendOptions struct {
	Kind BackendKind

	// Dir is the data directory for the file and sqlite backends.
	Dir string

	// RedisURL is a redis:// URL for the redis backend.
	RedisURL string
}

// OpenBackend opens the configured backend. Any failure is wrapped with
// ErrBackendUnavailable so callers can fall back to NewMemoryBackend.
func OpenBackend(ctx context.Context, opts BackendOptions) (Backend, error) {
	kind := BackendKind(strings.ToLower(strings.TrimSpace(string(opts.Kind))))
	var (
		b   Backend
		err error
	)
	switch kind {
	case "", BackendFile:
		b, err = NewFileBackend(opts.Dir)
	case BackendSQLite:
		b, err = OpenSQLiteBackend(ctx, opts.Dir)
	case BackendRedis:
		b, err = OpenRedisBackend(ctx, opts.RedisURL)
	case BackendMemory:
		return NewMemoryBackend(), nil
	default:
		err = fmt.Errorf("unknown backend %q", opts.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return b, nil
}
