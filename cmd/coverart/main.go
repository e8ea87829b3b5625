// Package main provides the coverart service entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"coverart/internal/backend"
	"coverart/internal/core"
	"coverart/internal/flood"
	httpserver "coverart/internal/http"
	"coverart/internal/store"
	"coverart/pkg/artwork"
)

const (
	defaultServerHost = "0.0.0.0"
	envPrefix         = "COVERART"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "coverart",
	Short: "coverart - SoundCloud artwork for the release pages",
	Long: `coverart serves the release and show listings of the site API together with
high-resolution SoundCloud cover art resolved through oEmbed and cached in memory.`,
	RunE: runCoverart,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := core.DefaultConfig()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().String("log-level", defaults.Log.Level, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("server-host", defaultServerHost, "HTTP server host")
	rootCmd.PersistentFlags().Int("server-port", defaults.Server.Port, "HTTP server port")
	rootCmd.PersistentFlags().String("backend-url", defaults.Backend.BaseURL, "Base URL of the releases/shows API")
	rootCmd.PersistentFlags().Int("backend-timeout-secs", int(defaults.Backend.Timeout/time.Second), "Backend request timeout in seconds")
	rootCmd.PersistentFlags().String("oembed-url", defaults.Artwork.OEmbedURL, "SoundCloud oEmbed endpoint")
	rootCmd.PersistentFlags().Int("artwork-timeout-secs", int(defaults.Artwork.Timeout/time.Second), "oEmbed lookup timeout in seconds")
	rootCmd.PersistentFlags().Int("artwork-cache-size", defaults.Artwork.CacheSize, "Maximum number of cached artwork URLs")
	rootCmd.PersistentFlags().Int("artwork-cache-ttl-mins", 0, "Artwork cache entry lifetime in minutes (0 keeps entries until evicted)")
	rootCmd.PersistentFlags().Int("artwork-rate-limit-per-minute", defaults.Artwork.RateLimitPerMinute, "Artwork lookups per client per minute (0 disables)")
	rootCmd.PersistentFlags().Bool("generate-env-example", false, "Generate .env.example file from current configuration and exit")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	// Load .env file explicitly using gotenv
	envFile := ".env"
	if cfgFile != "" {
		envFile = cfgFile
	}

	if err := gotenv.Load(envFile); err != nil {
		// Don't exit if .env file doesn't exist, just warn
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	config = buildConfig()
	logger = buildLogger(config.Log.Level)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	configureServer(cfg)
	configureBackend(cfg)
	configureArtwork(cfg)

	return cfg
}

func configureServer(cfg *core.Config) {
	cfg.Server.Host = viper.GetString("server-host")
	if cfg.Server.Host == "" {
		cfg.Server.Host = defaultServerHost
	}
	cfg.Server.Port = viper.GetInt("server-port")
	cfg.Log.Level = viper.GetString("log-level")
}

func configureBackend(cfg *core.Config) {
	cfg.Backend.BaseURL = viper.GetString("backend-url")
	if secs := viper.GetInt("backend-timeout-secs"); secs > 0 {
		cfg.Backend.Timeout = time.Duration(secs) * time.Second
	}
}

func configureArtwork(cfg *core.Config) {
	if oembedURL := viper.GetString("oembed-url"); oembedURL != "" {
		cfg.Artwork.OEmbedURL = oembedURL
	}
	if secs := viper.GetInt("artwork-timeout-secs"); secs > 0 {
		cfg.Artwork.Timeout = time.Duration(secs) * time.Second
	}

	cfg.Artwork.CacheSize = viper.GetInt("artwork-cache-size")
	if cfg.Artwork.CacheSize <= 0 {
		fmt.Printf("Warning: Invalid artwork cache size (%d), using default (%d)\n",
			cfg.Artwork.CacheSize, core.DefaultArtworkCacheSize)
		cfg.Artwork.CacheSize = core.DefaultArtworkCacheSize
	}

	if mins := viper.GetInt("artwork-cache-ttl-mins"); mins > 0 {
		cfg.Artwork.CacheTTL = time.Duration(mins) * time.Minute
	}

	cfg.Artwork.RateLimitPerMinute = viper.GetInt("artwork-rate-limit-per-minute")
	if cfg.Artwork.RateLimitPerMinute < 0 {
		cfg.Artwork.RateLimitPerMinute = 0
	}
}

func buildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func runCoverart(cmd *cobra.Command, _ []string) error {
	if viper.GetBool("generate-env-example") {
		return generateEnvExample(cmd)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Starting coverart",
		zap.String("backend_url", config.Backend.BaseURL),
		zap.String("oembed_url", config.Artwork.OEmbedURL),
		zap.Int("artwork_cache_size", config.Artwork.CacheSize),
		zap.Duration("artwork_cache_ttl", config.Artwork.CacheTTL))

	if err := validateConfig(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	svcs := initializeServices(config)
	defer svcs.stop()

	return runServices(ctx, svcs.httpServer)
}

type services struct {
	httpServer *httpserver.Server
	limiter    *flood.Floodgate
}

func (s *services) stop() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

func initializeServices(cfg *core.Config) *services {
	metrics := httpserver.NewMetrics()

	cache := store.NewArtworkCache(cfg.Artwork.CacheSize, cfg.Artwork.CacheTTL, store.DefaultBloomFalsePositiveRate)
	metrics.ObserveCacheSize(cache.Len)

	fetcher := artwork.NewSoundCloudFetcher(cfg.Artwork.Timeout, artwork.WithOEmbedURL(cfg.Artwork.OEmbedURL))
	resolver := artwork.NewResolver(fetcher, cache, logger.Named("artwork"),
		artwork.WithRecorder(metrics),
		artwork.WithFetchTimeout(cfg.Artwork.Timeout))

	catalog := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, logger.Named("backend"))

	var limiter *flood.Floodgate
	if cfg.Artwork.RateLimitPerMinute > 0 {
		limiter = flood.New(cfg.Artwork.RateLimitPerMinute)
	}

	return &services{
		httpServer: httpserver.NewServer(&cfg.Server, logger.Named("http"), metrics, resolver, catalog, limiter),
		limiter:    limiter,
	}
}

func runServices(ctx context.Context, httpServer *httpserver.Server) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return httpServer.Start(gCtx)
	})

	logger.Info("coverart started successfully",
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)))

	if err := g.Wait(); err != nil {
		logger.Error("coverart stopped with error", zap.Error(err))
		return err
	}

	logger.Info("coverart stopped gracefully")
	return nil
}

func validateConfig(cfg *core.Config) error {
	if err := validateURL("backend URL", cfg.Backend.BaseURL); err != nil {
		return err
	}

	if err := validateURL("oEmbed URL", cfg.Artwork.OEmbedURL); err != nil {
		return err
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	return nil
}

func validateURL(name, rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("%s is required", name)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New(name + " must use http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host", name)
	}

	return nil
}
