// Package databases provides the list of databases the backend currently serves.
package databases

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultRefresh is how long a fetched list is served before refreshing.
const DefaultRefresh = 60 * time.Second

const flightKey = "databases"

// Service keeps an in-process copy of the database list. Concurrent refreshes
// collapse into one upstream call. When a refresh fails and an older list is
// held, the older list is served.
type Service struct {
	source  Source
	refresh time.Duration
	logger  *zap.Logger
	now     func() time.Time

	group singleflight.Group

	mu      sync.RWMutex
	loaded  bool
	cached  []string
	expires time.Time
}

// New creates a Service. A non-positive refresh uses DefaultRefresh.
func New(source Source, refresh time.Duration, logger *zap.Logger) *Service {
	if refresh <= 0 {
		refresh = DefaultRefresh
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, refresh: refresh, logger: logger, now: time.Now}
}

// List returns the available databases. The caller owns the returned slice.
func (s *Service) List(ctx context.Context) ([]string, error) {
	if dbs, ok := s.fresh(); ok {
		return dbs, nil
	}

	// Shared by every waiting caller; not tied to the first caller's lifetime.
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(flightKey, func() (any, error) {
		if dbs, ok := s.fresh(); ok {
			return dbs, nil
		}
		dbs, err := s.source.List(flightCtx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cached = append([]string(nil), dbs...)
		s.loaded = true
		s.expires = s.now().Add(s.refresh)
		s.mu.Unlock()
		s.logger.Debug("Refreshed database list", zap.Int("count", len(dbs)))
		return dbs, nil
	})
	if err != nil {
		if stale, ok := s.stale(); ok {
			s.logger.Warn("Database list refresh failed, serving previous list", zap.Error(err))
			return stale, nil
		}
		return nil, err
	}
	return append([]string(nil), v.([]string)...), nil
}

// Invalidate drops the held list so the next List refreshes.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.expires = time.Time{}
	s.mu.Unlock()
}

func (s *Service) fresh() ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded || !s.now().Before(s.expires) {
		return nil, false
	}
	return append([]string(nil), s.cached...), true
}

func (s *Service) stale() ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, false
	}
	return append([]string(nil), s.cached...), true
}
