// Package core holds the service configuration shared by the command and its components.
package core

import (
	"time"

	"coverart/internal/store"
	"coverart/pkg/artwork"
)

const (
	// DefaultServerPort is the default HTTP listen port.
	DefaultServerPort = 8080
	// DefaultBackendTimeout bounds requests to the releases/shows API.
	DefaultBackendTimeout = 10 * time.Second
	// DefaultArtworkTimeout bounds a single oEmbed lookup.
	DefaultArtworkTimeout = artwork.DefaultFetchTimeout
	// DefaultArtworkCacheSize is the default number of cached artwork URLs.
	DefaultArtworkCacheSize = store.DefaultMaxEntries
	// DefaultArtworkRateLimitPerMinute is the default per-client allowance of the artwork endpoint.
	DefaultArtworkRateLimitPerMinute = 60
)

type Config struct {
	Server  ServerConfig
	Log     LogConfig
	Artwork ArtworkConfig
	Backend BackendConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// ArtworkConfig configures artwork resolution and its cache.
type ArtworkConfig struct {
	OEmbedURL string
	Timeout   time.Duration
	CacheSize int
	// CacheTTL of zero keeps entries until evicted by capacity.
	CacheTTL time.Duration
	// RateLimitPerMinute of zero disables per-client limiting.
	RateLimitPerMinute int
}

// BackendConfig points at the REST API serving releases and shows.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         DefaultServerPort,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Artwork: ArtworkConfig{
			OEmbedURL:          artwork.SoundCloudOEmbedURL,
			Timeout:            DefaultArtworkTimeout,
			CacheSize:          DefaultArtworkCacheSize,
			RateLimitPerMinute: DefaultArtworkRateLimitPerMinute,
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:3000/api",
			Timeout: DefaultBackendTimeout,
		},
	}
}
