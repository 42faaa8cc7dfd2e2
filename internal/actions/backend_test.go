package actions

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func exerciseBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()
	if _, err := b.Get(ctx, DocumentKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing key, got %v", err)
	}
	if err := b.Set(ctx, DocumentKey, []byte(`{"version":1}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := b.Set(ctx, DocumentKey, []byte(`{"version":1,"byUser":{}}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := b.Get(ctx, DocumentKey)
	if err != nil || string(got) != `{"version":1,"byUser":{}}` {
		t.Fatalf("unexpected value %q err=%v", got, err)
	}
	if err := b.Delete(ctx, DocumentKey); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := b.Get(ctx, DocumentKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestFileBackend(t *testing.T) {
	b, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	exerciseBackend(t, b)
}

func TestSQLiteBackend(t *testing.T) {
	b, err := OpenSQLiteBackend(context.Background(), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	exerciseBackend(t, b)
}

func TestRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	b, err := OpenRedisBackend(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := b.Set(ctx, UserCacheKey, []byte("pg")); err != nil {
		t.Fatal(err)
	}
	if v, err := mr.Get("hnterm:user"); err != nil || v != "pg" {
		t.Fatalf("expected prefixed key in redis, got %q err=%v", v, err)
	}
	exerciseBackend(t, b)
}

func TestMemoryBackend(t *testing.T) {
	exerciseBackend(t, NewMemoryBackend())
}

func TestOpenBackend_UnavailableIsWrapped(t *testing.T) {
	_, err := OpenBackend(context.Background(), BackendOptions{Kind: BackendRedis, RedisURL: "::not a url"})
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
	_, err = OpenBackend(context.Background(), BackendOptions{Kind: "etcd"})
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable for unknown kind, got %v", err)
	}
	b, err := OpenBackend(context.Background(), BackendOptions{Kind: BackendMemory})
	if err != nil || b == nil {
		t.Fatalf("memory backend: %v", err)
	}
}
