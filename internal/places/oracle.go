package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// DefaultCacheTTL is how long a cached schedule stays valid. Opening
	// hours change on the order of weeks, so a day is comfortably safe.
	DefaultCacheTTL = 24 * time.Hour

	// DefaultLookupTimeout bounds a single live lookup so one slow place
	// query can never stall an optimization run.
	DefaultLookupTimeout = 4 * time.Second

	cacheKeyPrefix = "visitaroute:hours"
)

// OracleConfig holds configuration for the caching oracle.
type OracleConfig struct {
	// Source fetches schedules from the live places vendor.
	Source HoursSource

	// Redis is the durable schedule cache. Optional: without it the oracle
	// falls back to an in-process map, losing cross-run reuse.
	Redis *redis.Client

	// Logger for oracle operations.
	Logger zerolog.Logger

	// CacheTTL overrides DefaultCacheTTL.
	CacheTTL time.Duration

	// LookupTimeout overrides DefaultLookupTimeout.
	LookupTimeout time.Duration
}

// CachedOracle answers open-at queries from a (municipality, kind) keyed
// schedule cache, refreshing lazily from the live source on miss or expiry.
// Every failure path degrades to StatusUnknown.
type CachedOracle struct {
	source        HoursSource
	redis         *redis.Client
	logger        zerolog.Logger
	cacheTTL      time.Duration
	lookupTimeout time.Duration

	mu    sync.RWMutex
	local map[string]localEntry
}

type localEntry struct {
	schedule  *WeekSchedule
	expiresAt time.Time
}

// NewCachedOracle creates a caching oracle over the given source.
func NewCachedOracle(cfg OracleConfig) *CachedOracle {
	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	timeout := cfg.LookupTimeout
	if timeout == 0 {
		timeout = DefaultLookupTimeout
	}

	return &CachedOracle{
		source:        cfg.Source,
		redis:         cfg.Redis,
		logger:        cfg.Logger,
		cacheTTL:      ttl,
		lookupTimeout: timeout,
		local:         make(map[string]localEntry),
	}
}

// Name reports the wrapped source's registered identifier, so health
// lookups keyed by provider name resolve through the cache wrapper.
func (o *CachedOracle) Name() string {
	if o.source != nil {
		return o.source.Name()
	}
	return "places-cached"
}

// IsOpenAt evaluates the establishment's schedule at the given time.
// Cache miss triggers a bounded live lookup; on any failure the answer is
// StatusUnknown and the run proceeds.
func (o *CachedOracle) IsOpenAt(ctx context.Context, ref PlaceRef, at time.Time) Status {
	schedule, err := o.schedule(ctx, ref)
	if err != nil || schedule == nil {
		return StatusUnknown
	}
	return schedule.StatusAt(at)
}

// Refresh forces a live lookup and cache write for the given reference.
// Used by the warm-up worker; unlike IsOpenAt it reports errors.
func (o *CachedOracle) Refresh(ctx context.Context, ref PlaceRef) error {
	schedule, err := o.fetch(ctx, ref)
	if err != nil {
		return err
	}
	o.store(ctx, ref, schedule)
	return nil
}

func (o *CachedOracle) schedule(ctx context.Context, ref PlaceRef) (*WeekSchedule, error) {
	key := cacheKey(ref)

	if schedule := o.cached(ctx, key); schedule != nil {
		return schedule, nil
	}

	schedule, err := o.fetch(ctx, ref)
	if err != nil {
		o.logger.Debug().
			Err(err).
			Str("municipality", ref.Municipality).
			Str("kind", string(ref.Kind)).
			Msg("live hours lookup failed, answering unknown")
		return nil, err
	}

	o.store(ctx, ref, schedule)
	return schedule, nil
}

func (o *CachedOracle) cached(ctx context.Context, key string) *WeekSchedule {
	if o.redis != nil {
		payload, err := o.redis.Get(ctx, key).Result()
		switch {
		case err == nil:
			var schedule WeekSchedule
			if err := json.Unmarshal([]byte(payload), &schedule); err == nil {
				return &schedule
			}
			// Corrupt entry: drop it and refetch.
			o.redis.Del(ctx, key)
		case !errors.Is(err, redis.Nil):
			o.logger.Warn().Err(err).Str("key", key).Msg("schedule cache read failed")
		}
		return nil
	}

	o.mu.RLock()
	defer o.mu.RUnlock()
	if entry, ok := o.local[key]; ok && time.Now().Before(entry.expiresAt) {
		return entry.schedule
	}
	return nil
}

func (o *CachedOracle) fetch(ctx context.Context, ref PlaceRef) (*WeekSchedule, error) {
	if o.source == nil {
		return nil, ErrProviderUnavailable
	}

	lookupCtx, cancel := context.WithTimeout(ctx, o.lookupTimeout)
	defer cancel()

	return o.source.OpeningHours(lookupCtx, ref)
}

func (o *CachedOracle) store(ctx context.Context, ref PlaceRef, schedule *WeekSchedule) {
	key := cacheKey(ref)

	if o.redis != nil {
		payload, err := json.Marshal(schedule)
		if err != nil {
			return
		}
		if err := o.redis.Set(ctx, key, payload, o.cacheTTL).Err(); err != nil {
			o.logger.Warn().Err(err).Str("key", key).Msg("schedule cache write failed")
		}
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.local[key] = localEntry{schedule: schedule, expiresAt: time.Now().Add(o.cacheTTL)}
}

func cacheKey(ref PlaceRef) string {
	return fmt.Sprintf("%s:%s:%s", cacheKeyPrefix, ref.Municipality, ref.Kind)
}
