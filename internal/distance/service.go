package distance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	h3 "github.com/uber/h3-go/v4"
)

// ServiceConfig holds configuration for the caching distance service.
type ServiceConfig struct {
	// Provider is the underlying distance provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long travel estimates stay fresh (default: 30 minutes).
	// Travel times change slowly intra-day, so a generous TTL is safe.
	CacheTTL time.Duration

	// StaleIfErrorTTL allows serving stale estimates when the provider
	// errors (default: 2 hours).
	StaleIfErrorTTL time.Duration

	// CleanupInterval is how often expired entries are purged (default: 10 minutes).
	CleanupInterval time.Duration

	// CellResolution is the H3 resolution for cache keys (default: 9,
	// ~0.1 km² cells). Coordinates in the same cell share cached estimates.
	CellResolution int
}

// Service memoizes travel lookups around any Provider. Identical
// (origin cell, destination cell, day) queries within the TTL hit the cache
// instead of the network.
type Service struct {
	provider        Provider
	logger          zerolog.Logger
	cacheTTL        time.Duration
	staleIfErrorTTL time.Duration
	cleanupInterval time.Duration
	cellResolution  int

	mu          sync.RWMutex
	cache       map[string]*cachedResult
	lastCleanup time.Time
}

type cachedResult struct {
	result    Result
	fetchedAt time.Time
	expiresAt time.Time
}

// NewService creates a caching wrapper around the given provider.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 30 * time.Minute
	}
	staleTTL := cfg.StaleIfErrorTTL
	if staleTTL == 0 {
		staleTTL = 2 * time.Hour
	}
	cleanup := cfg.CleanupInterval
	if cleanup == 0 {
		cleanup = 10 * time.Minute
	}
	resolution := cfg.CellResolution
	if resolution == 0 {
		resolution = 9
	}

	return &Service{
		provider:        cfg.Provider,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		staleIfErrorTTL: staleTTL,
		cleanupInterval: cleanup,
		cellResolution:  resolution,
		cache:           make(map[string]*cachedResult),
	}
}

// Name returns the underlying provider's identifier.
func (s *Service) Name() string { return s.provider.Name() }

// Travel returns a travel estimate, served from cache when possible.
func (s *Service) Travel(ctx context.Context, origin, dest Coordinate, departAt time.Time) (Result, error) {
	if err := ValidateCoordinate(origin); err != nil {
		return Result{}, err
	}
	if err := ValidateCoordinate(dest); err != nil {
		return Result{}, err
	}

	key := s.cacheKey(origin, dest, departAt)

	s.mu.RLock()
	if cached, ok := s.cache[key]; ok && time.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		return cached.result, nil
	}
	s.mu.RUnlock()

	return s.fetch(ctx, origin, dest, departAt, key)
}

func (s *Service) fetch(ctx context.Context, origin, dest Coordinate, departAt time.Time, key string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after taking the write lock to avoid a thundering herd
	// of identical vendor calls.
	if cached, ok := s.cache[key]; ok && time.Now().Before(cached.expiresAt) {
		return cached.result, nil
	}

	result, err := s.provider.Travel(ctx, origin, dest, departAt)
	if err != nil {
		if cached, ok := s.cache[key]; ok && time.Now().Before(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
			s.logger.Warn().
				Str("cache_key", key).
				Time("fetched_at", cached.fetchedAt).
				Msg("serving stale travel estimate after provider error")
			return cached.result, nil
		}
		return Result{}, err
	}

	now := time.Now()
	s.cache[key] = &cachedResult{
		result:    result,
		fetchedAt: now,
		expiresAt: now.Add(s.cacheTTL),
	}

	s.cleanupIfNeeded(now)

	return result, nil
}

// Prefetch warms the cache with all origin→destination pairs needed for a
// run, issuing lookups concurrently. Ordering of the subsequent tour build
// is unaffected: this only populates the cache. Errors are returned so the
// caller can fall back, but partial results stay cached.
func (s *Service) Prefetch(ctx context.Context, points []Coordinate, departAt time.Time) error {
	if len(points) < 2 {
		return nil
	}

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	for i := range points {
		for j := range points {
			if i == j {
				continue
			}
			wg.Add(1)
			go func(o, d Coordinate) {
				defer wg.Done()
				if _, err := s.Travel(ctx, o, d, departAt); err != nil {
					errOnce.Do(func() { firstErr = err })
				}
			}(points[i], points[j])
		}
	}

	wg.Wait()
	return firstErr
}

// cacheKey quantizes both endpoints to H3 cells and scopes the entry to the
// departure day. Format: {originCell}:{destCell}:{yyyy-mm-dd}.
func (s *Service) cacheKey(origin, dest Coordinate, departAt time.Time) string {
	originCell, err := h3.LatLngToCell(h3.NewLatLng(origin.Lat, origin.Lng), s.cellResolution)
	if err != nil {
		// Out-of-range coordinates were rejected earlier; fall back to the
		// raw values so a key always exists.
		return fmt.Sprintf("%.5f,%.5f:%.5f,%.5f:%s",
			origin.Lat, origin.Lng, dest.Lat, dest.Lng, departAt.Format("2006-01-02"))
	}
	destCell, err := h3.LatLngToCell(h3.NewLatLng(dest.Lat, dest.Lng), s.cellResolution)
	if err != nil {
		return fmt.Sprintf("%.5f,%.5f:%.5f,%.5f:%s",
			origin.Lat, origin.Lng, dest.Lat, dest.Lng, departAt.Format("2006-01-02"))
	}

	return fmt.Sprintf("%s:%s:%s", originCell, destCell, departAt.Format("2006-01-02"))
}

func (s *Service) cleanupIfNeeded(now time.Time) {
	if now.Sub(s.lastCleanup) < s.cleanupInterval {
		return
	}
	s.lastCleanup = now

	expired := 0
	for key, cached := range s.cache {
		if now.After(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
			delete(s.cache, key)
			expired++
		}
	}
	if expired > 0 {
		s.logger.Debug().Int("expired_entries", expired).Msg("purged expired travel cache entries")
	}
}

// CacheSize returns the number of cached entries.
func (s *Service) CacheSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}
