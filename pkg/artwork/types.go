// Package artwork resolves SoundCloud track links to high-resolution cover art URLs.
package artwork

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidReference is returned when the media reference is empty.
	ErrInvalidReference = errors.New("invalid media reference")
	// ErrArtworkUnavailable is returned when artwork could not be derived from the oEmbed endpoint.
	ErrArtworkUnavailable = errors.New("artwork unavailable")
)

// Entry is a resolved artwork URL for a single media reference.
type Entry struct {
	Key        string    // Media reference the entry was resolved from.
	URL        string    // High-resolution artwork URL.
	ResolvedAt time.Time // When the URL was resolved.
}

// Fetcher looks up the thumbnail URL for a media reference.
type Fetcher interface {
	FetchThumbnail(ctx context.Context, mediaURL string) (string, error)
}

// Cache stores resolved entries keyed by media reference.
type Cache interface {
	Get(key string) (Entry, bool)
	Put(entry Entry)
}

// Recorder receives resolver events for metrics.
type Recorder interface {
	RecordCacheHit()
	RecordCacheMiss()
	RecordFetch(status string, duration time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordCacheHit()                   {}
func (nopRecorder) RecordCacheMiss()                  {}
func (nopRecorder) RecordFetch(string, time.Duration) {}
