package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// defaultTimeout is used when no timeout is configured.
	defaultTimeout = 10 * time.Second
	// maxResponseSize caps how much of an API response is decoded.
	maxResponseSize = 4 << 20
)

var (
	// ErrNotFound is returned when the API responds with 404.
	ErrNotFound = errors.New("not found")
	// ErrMissingURLTitle is returned when a release lookup has no url title.
	ErrMissingURLTitle = errors.New("URL title is required")
)

// Client reads releases and shows from the site API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// ListReleases returns every release.
func (c *Client) ListReleases(ctx context.Context) ([]Release, error) {
	var releases []Release
	if err := c.getJSON(ctx, "/releases", &releases); err != nil {
		return nil, fmt.Errorf("failed to list releases: %w", err)
	}
	return releases, nil
}

// GetRelease returns the release published under urlTitle.
func (c *Client) GetRelease(ctx context.Context, urlTitle string) (*Release, error) {
	if strings.TrimSpace(urlTitle) == "" {
		return nil, ErrMissingURLTitle
	}

	var release Release
	if err := c.getJSON(ctx, "/releases/"+url.PathEscape(urlTitle), &release); err != nil {
		return nil, fmt.Errorf("failed to get release %q: %w", urlTitle, err)
	}
	return &release, nil
}

// ListShows returns every show.
func (c *Client) ListShows(ctx context.Context) ([]Show, error) {
	var shows []Show
	if err := c.getJSON(ctx, "/shows", &shows); err != nil {
		return nil, fmt.Errorf("failed to list shows: %w", err)
	}
	return shows, nil
}

// UpcomingShows returns the shows that have not happened yet.
func (c *Client) UpcomingShows(ctx context.Context) (*UpcomingShows, error) {
	var upcoming UpcomingShows
	if err := c.getJSON(ctx, "/shows/upcoming", &upcoming); err != nil {
		return nil, fmt.Errorf("failed to list upcoming shows: %w", err)
	}
	return &upcoming, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	c.logger.Debug("Backend request completed",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
