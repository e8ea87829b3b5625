package artwork

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	fetchStatusOK    = "ok"
	fetchStatusError = "error"
)

// Resolver maps media references to high-resolution artwork URLs, caching successes.
// Concurrent misses for the same reference share a single oEmbed request.
type Resolver struct {
	fetcher  Fetcher
	cache    Cache
	logger   *zap.Logger
	recorder Recorder
	timeout  time.Duration
	now      func() time.Time
	inflight singleflight.Group
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRecorder sets the metrics recorder.
func WithRecorder(recorder Recorder) Option {
	return func(r *Resolver) {
		if recorder != nil {
			r.recorder = recorder
		}
	}
}

// WithFetchTimeout bounds each upstream lookup.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(r *Resolver) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// NewResolver creates a resolver backed by the given fetcher and cache.
func NewResolver(fetcher Fetcher, cache Cache, logger *zap.Logger, opts ...Option) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Resolver{
		fetcher:  fetcher,
		cache:    cache,
		logger:   logger,
		recorder: nopRecorder{},
		timeout:  DefaultFetchTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the artwork URL for mediaURL.
//
// Blank references fail with ErrInvalidReference before any I/O. Upstream
// failures wrap ErrArtworkUnavailable and are never cached. If ctx is done
// before the lookup finishes, Resolve returns ctx.Err() while the lookup keeps
// running and still stores its result.
func (r *Resolver) Resolve(ctx context.Context, mediaURL string) (string, error) {
	key := strings.TrimSpace(mediaURL)
	if key == "" {
		return "", ErrInvalidReference
	}

	if entry, ok := r.cache.Get(key); ok {
		r.recorder.RecordCacheHit()
		return entry.URL, nil
	}
	r.recorder.RecordCacheMiss()

	fetchCtx := context.WithoutCancel(ctx)
	result := r.inflight.DoChan(key, func() (interface{}, error) {
		return r.fetch(fetchCtx, key)
	})

	select {
	case res := <-result:
		if res.Err != nil {
			return "", res.Err
		}
		artworkURL, _ := res.Val.(string)
		return artworkURL, nil
	case <-ctx.Done():
		r.logger.Debug("Caller abandoned artwork lookup", zap.String("url", key))
		return "", ctx.Err()
	}
}

func (r *Resolver) fetch(ctx context.Context, key string) (string, error) {
	// A lookup that finished between the caller's miss and this call already stored the entry.
	if entry, ok := r.cache.Get(key); ok {
		return entry.URL, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	thumbnail, err := r.fetcher.FetchThumbnail(ctx, key)
	r.recordFetch(err, time.Since(start))
	if err != nil {
		r.logger.Warn("Failed to resolve artwork",
			zap.String("url", key),
			zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrArtworkUnavailable, err)
	}

	entry := Entry{
		Key:        key,
		URL:        HighResolution(thumbnail),
		ResolvedAt: r.now(),
	}
	r.cache.Put(entry)

	r.logger.Debug("Resolved artwork",
		zap.String("url", key),
		zap.String("artwork", entry.URL))

	return entry.URL, nil
}

func (r *Resolver) recordFetch(err error, duration time.Duration) {
	status := fetchStatusOK
	if err != nil {
		status = fetchStatusError
	}
	r.recorder.RecordFetch(status, duration)
}
