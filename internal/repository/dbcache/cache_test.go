package dbcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/querygate/internal/db"
)

func TestList_CacheMiss(t *testing.T) {
	inner := &mockLister{dbs: []string{"News", "Archive"}}
	cl, ms := newTestCachedLister(t, inner)

	var (
		setKey  string
		setData []byte
		setTTL  time.Duration
	)
	ms.setFn = func(_ context.Context, key string, value []byte, ttl time.Duration) error {
		setKey, setData, setTTL = key, value, ttl
		return nil
	}

	got, err := cl.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"News", "Archive"}, got); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
	if setKey != "test:databases" {
		t.Errorf("key = %q", setKey)
	}
	if string(setData) != `["News","Archive"]` {
		t.Errorf("cached data = %s", setData)
	}
	if setTTL != time.Minute {
		t.Errorf("ttl = %v", setTTL)
	}
}

func TestList_CacheHit(t *testing.T) {
	inner := &mockLister{dbs: []string{"upstream"}}
	cl, ms := newTestCachedLister(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte(`["cached"]`), nil
	}

	got, err := cl.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"cached"}, got); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
	if inner.calls != 0 {
		t.Errorf("expected no upstream call on hit, got %d", inner.calls)
	}
}

func TestList_CachedEmptyList(t *testing.T) {
	inner := &mockLister{dbs: []string{"upstream"}}
	cl, ms := newTestCachedLister(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte(`[]`), nil
	}

	got, err := cl.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 || inner.calls != 0 {
		t.Errorf("expected cached empty list, got %#v (calls %d)", got, inner.calls)
	}
}

func TestList_InnerError(t *testing.T) {
	inner := &mockLister{err: errors.New("backend down")}
	cl, ms := newTestCachedLister(t, inner)

	var setCalled bool
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		setCalled = true
		return nil
	}

	if _, err := cl.List(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if setCalled {
		t.Error("errors must not be cached")
	}
}

func TestList_StoreErrorsDegradeToUpstream(t *testing.T) {
	inner := &mockLister{dbs: []string{"News"}}
	cl, ms := newTestCachedLister(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, &db.Error{Op: db.OpGet, Err: errors.New("connection reset")}
	}
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		return &db.Error{Op: db.OpSet, Err: errors.New("connection reset")}
	}

	got, err := cl.List(context.Background())
	if err != nil {
		t.Fatalf("store failures must not fail List, got %v", err)
	}
	if diff := cmp.Diff([]string{"News"}, got); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestList_CorruptEntryIsMiss(t *testing.T) {
	inner := &mockLister{dbs: []string{"News"}}
	cl, ms := newTestCachedLister(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte("{not json"), nil
	}

	got, err := cl.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 || len(got) != 1 {
		t.Errorf("expected upstream fetch, got %v (calls %d)", got, inner.calls)
	}
}

func TestList_CountsHitsAndMisses(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_databases_cache_total"}, []string{"result"})
	inner := &mockLister{dbs: []string{"News"}}

	var stored []byte
	ms := &mockKVStore{
		getFn: func(_ context.Context, _ string) ([]byte, error) {
			if stored == nil {
				return nil, db.ErrKeyNotFound
			}
			return stored, nil
		},
		setFn: func(_ context.Context, _ string, value []byte, _ time.Duration) error {
			stored = value
			return nil
		},
	}
	cl := New(inner, ms, "", time.Minute, counter, zap.NewNop())

	for range 3 {
		if _, err := cl.List(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("miss")); got != 1 {
		t.Errorf("misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("hit")); got != 2 {
		t.Errorf("hits = %v, want 2", got)
	}
	if inner.calls != 1 {
		t.Errorf("upstream calls = %d, want 1", inner.calls)
	}
}
