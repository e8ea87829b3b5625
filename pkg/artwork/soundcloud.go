package artwork

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	// SoundCloudOEmbedURL is the SoundCloud oEmbed API endpoint.
	SoundCloudOEmbedURL = "https://soundcloud.com/oembed"

	thumbnailSize   = "-t500x500"
	artworkSize     = "-t1080x1080"
	thumbnailFormat = ".jpg"
	artworkFormat   = ".png"
)

// SoundCloudOEmbedResponse represents the response from SoundCloud's oEmbed API.
type SoundCloudOEmbedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	AuthorURL    string `json:"author_url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// SoundCloudFetcher looks up track thumbnails through SoundCloud's oEmbed API.
type SoundCloudFetcher struct {
	client    *http.Client
	oembedURL string
}

// SoundCloudOption configures a SoundCloudFetcher.
type SoundCloudOption func(*SoundCloudFetcher)

// WithOEmbedURL overrides the oEmbed endpoint.
func WithOEmbedURL(oembedURL string) SoundCloudOption {
	return func(f *SoundCloudFetcher) {
		if oembedURL != "" {
			f.oembedURL = strings.TrimRight(oembedURL, "/")
		}
	}
}

// WithHTTPClient replaces the HTTP client used for oEmbed requests.
func WithHTTPClient(client *http.Client) SoundCloudOption {
	return func(f *SoundCloudFetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// NewSoundCloudFetcher creates a fetcher whose requests are bounded by timeout.
func NewSoundCloudFetcher(timeout time.Duration, opts ...SoundCloudOption) *SoundCloudFetcher {
	f := &SoundCloudFetcher{
		client:    newHTTPClient(timeout),
		oembedURL: SoundCloudOEmbedURL,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchThumbnail returns the thumbnail_url reported by the oEmbed API for mediaURL.
func (f *SoundCloudFetcher) FetchThumbnail(ctx context.Context, mediaURL string) (string, error) {
	var oembedResp SoundCloudOEmbedResponse
	if err := fetchOEmbedJSON(ctx, f.client, f.oembedURL, mediaURL, &oembedResp); err != nil {
		return "", fmt.Errorf("failed to fetch oEmbed data: %w", err)
	}

	thumbnail := strings.TrimSpace(oembedResp.ThumbnailURL)
	if thumbnail == "" {
		return "", errors.New("thumbnail not found in oEmbed response")
	}

	return thumbnail, nil
}

// HighResolution upgrades a SoundCloud thumbnail URL to the 1080x1080 PNG variant.
// The size marker is replaced once; the extension only when it ends the URL.
func HighResolution(thumbnailURL string) string {
	upgraded := strings.Replace(thumbnailURL, thumbnailSize, artworkSize, 1)
	if strings.HasSuffix(upgraded, thumbnailFormat) {
		upgraded = strings.TrimSuffix(upgraded, thumbnailFormat) + artworkFormat
	}
	return upgraded
}
