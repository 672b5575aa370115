package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/visitaroute/visitaroute/internal/distance"
	"github.com/visitaroute/visitaroute/internal/optimizer"
	"github.com/visitaroute/visitaroute/internal/places"
)

// HoursRefresher forces a live schedule lookup and cache write.
type HoursRefresher interface {
	Refresh(ctx context.Context, ref places.PlaceRef) error
}

// DistancePrefetcher warms the travel cache for a set of points.
type DistancePrefetcher interface {
	Prefetch(ctx context.Context, points []distance.Coordinate, departAt time.Time) error
}

// RefreshJob warms the business-hours and travel caches so morning
// optimization runs start hot.
type RefreshJob struct {
	config RefreshConfig
	logger zerolog.Logger

	// Services (optional, nil if not configured)
	hours     HoursRefresher
	distances DistancePrefetcher

	metrics *RefreshMetrics
}

// RefreshMetrics tracks warm-up job statistics.
type RefreshMetrics struct {
	mu sync.RWMutex

	TotalRuns          int64
	SuccessfulRefresh  int64
	FailedRefreshes    int64
	DistancePrefetches int64

	LastRunAt       time.Time
	LastRunDuration time.Duration
	TotalDuration   time.Duration
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config    RefreshConfig
	Logger    zerolog.Logger
	Hours     HoursRefresher
	Distances DistancePrefetcher
}

// NewRefreshJob creates a new warm-up job processor.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	config := cfg.Config
	if len(config.Targets) == 0 {
		config = DefaultRefreshConfig()
	}

	return &RefreshJob{
		config:    config,
		logger:    cfg.Logger,
		hours:     cfg.Hours,
		distances: cfg.Distances,
		metrics:   &RefreshMetrics{},
	}
}

// RefreshResult contains the result of a warm-up run.
type RefreshResult struct {
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	TotalRefs  int
	Successful int
	Failed     int
	Errors     []RefreshError
}

// RefreshError represents an error during a warm-up run.
type RefreshError struct {
	Municipality string
	Kind         places.Kind
	Error        string
}

// Run executes the warm-up job for all configured targets.
func (j *RefreshJob) Run(ctx context.Context) *RefreshResult {
	startTime := time.Now()
	result := &RefreshResult{
		StartTime: startTime,
		TotalRefs: j.config.TotalRefs(),
	}

	j.logger.Info().
		Int("total_refs", result.TotalRefs).
		Int("concurrency", j.config.Concurrency).
		Msg("starting cache warm-up job")

	if j.config.RefreshHours && j.hours != nil {
		j.refreshHours(ctx, result)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("cache warm-up job completed")

	return result
}

type refResult struct {
	ref places.PlaceRef
	err error
}

func (j *RefreshJob) refreshHours(ctx context.Context, result *RefreshResult) {
	refs := j.config.AllRefs()

	refsChan := make(chan places.PlaceRef, len(refs))
	resultsChan := make(chan refResult, len(refs))

	concurrency := j.config.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.refreshWorker(ctx, refsChan, resultsChan)
		}()
	}

	for _, ref := range refs {
		refsChan <- ref
	}
	close(refsChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for rr := range resultsChan {
		if rr.err == nil {
			result.Successful++
			continue
		}
		result.Failed++
		result.Errors = append(result.Errors, RefreshError{
			Municipality: rr.ref.Municipality,
			Kind:         rr.ref.Kind,
			Error:        rr.err.Error(),
		})
	}
}

func (j *RefreshJob) refreshWorker(ctx context.Context, refs <-chan places.PlaceRef, results chan<- refResult) {
	for ref := range refs {
		select {
		case <-ctx.Done():
			results <- refResult{ref: ref, err: ctx.Err()}
		default:
			refCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
			err := j.hours.Refresh(refCtx, ref)
			cancel()
			results <- refResult{ref: ref, err: err}
		}
	}
}

// PrefetchDistances warms the travel cache between the centroids of all
// covered municipalities for a departure tomorrow morning.
func (j *RefreshJob) PrefetchDistances(ctx context.Context) error {
	if !j.config.PrefetchDistances || j.distances == nil {
		return nil
	}

	j.logger.Debug().Msg("prefetching municipality travel matrix")

	points := make([]distance.Coordinate, 0, len(j.config.Targets)+1)
	points = append(points, optimizer.DefaultOrigin)
	for _, target := range j.config.Targets {
		if coord, ok := optimizer.MunicipalityCentroid(target.Municipality); ok {
			points = append(points, coord)
		}
	}

	departAt := nextMorning(time.Now())
	if err := j.distances.Prefetch(ctx, points, departAt); err != nil {
		j.logger.Error().Err(err).Msg("travel matrix prefetch failed")
		return err
	}

	j.metrics.mu.Lock()
	j.metrics.DistancePrefetches++
	j.metrics.mu.Unlock()
	return nil
}

// nextMorning returns 08:00 on the next day in the local zone.
func nextMorning(now time.Time) time.Time {
	tomorrow := now.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 8, 0, 0, 0, now.Location())
}

func (j *RefreshJob) updateMetrics(result *RefreshResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.SuccessfulRefresh += int64(result.Successful)
	j.metrics.FailedRefreshes += int64(result.Failed)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *RefreshJob) GetMetrics() RefreshMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return RefreshMetrics{
		TotalRuns:          j.metrics.TotalRuns,
		SuccessfulRefresh:  j.metrics.SuccessfulRefresh,
		FailedRefreshes:    j.metrics.FailedRefreshes,
		DistancePrefetches: j.metrics.DistancePrefetches,
		LastRunAt:          j.metrics.LastRunAt,
		LastRunDuration:    j.metrics.LastRunDuration,
		TotalDuration:      j.metrics.TotalDuration,
	}
}
