package dbcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/querygate/internal/db"
)

// --- Mocks ---

type mockLister struct {
	dbs   []string
	err   error
	calls int
}

func (m *mockLister) List(_ context.Context) ([]string, error) {
	m.calls++
	return m.dbs, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCachedLister(t *testing.T, inner *mockLister) (*CachedLister, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	cl := New(inner, ms, "test:", time.Minute, nil, zap.NewNop())
	return cl, ms
}
