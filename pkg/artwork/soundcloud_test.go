package artwork

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHighResolution(t *testing.T) {
	t.Helper()

	tests := []struct {
		name      string
		thumbnail string
		expected  string
	}{
		{
			name:      "Standard thumbnail",
			thumbnail: "https://i1.sndcdn.com/artworks-XYZ-t500x500.jpg",
			expected:  "https://i1.sndcdn.com/artworks-XYZ-t1080x1080.png",
		},
		{
			name:      "PNG thumbnail keeps extension",
			thumbnail: "https://i1.sndcdn.com/artworks-XYZ-t500x500.png",
			expected:  "https://i1.sndcdn.com/artworks-XYZ-t1080x1080.png",
		},
		{
			name:      "Different size still gets PNG",
			thumbnail: "https://i1.sndcdn.com/artworks-XYZ-large.jpg",
			expected:  "https://i1.sndcdn.com/artworks-XYZ-large.png",
		},
		{
			name:      "Already upgraded is unchanged",
			thumbnail: "https://i1.sndcdn.com/artworks-XYZ-t1080x1080.png",
			expected:  "https://i1.sndcdn.com/artworks-XYZ-t1080x1080.png",
		},
		{
			name:      "Only first size marker is replaced",
			thumbnail: "https://i1.sndcdn.com/-t500x500/artworks-XYZ-t500x500.jpg",
			expected:  "https://i1.sndcdn.com/-t1080x1080/artworks-XYZ-t500x500.png",
		},
		{
			name:      "JPG in path but not at end",
			thumbnail: "https://i1.sndcdn.com/a.jpg/artworks-XYZ-t500x500.webp",
			expected:  "https://i1.sndcdn.com/a.jpg/artworks-XYZ-t1080x1080.webp",
		},
		{
			name:      "Empty string",
			thumbnail: "",
			expected:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := HighResolution(tt.thumbnail)
			if result != tt.expected {
				t.Errorf("HighResolution(%q) = %q, want %q", tt.thumbnail, result, tt.expected)
			}
		})
	}
}

func TestSoundCloudFetcher_FetchThumbnail(t *testing.T) {
	trackURL := "https://soundcloud.com/artist/track-name"

	queries := make(chan map[string][]string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries <- r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"Track by Artist","thumbnail_url":"https://i1.sndcdn.com/artworks-abc-t500x500.jpg"}`))
	}))
	defer server.Close()

	fetcher := NewSoundCloudFetcher(time.Second, WithOEmbedURL(server.URL+"/oembed/"))

	thumbnail, err := fetcher.FetchThumbnail(context.Background(), trackURL)
	if err != nil {
		t.Fatalf("FetchThumbnail() unexpected error: %v", err)
	}

	if thumbnail != "https://i1.sndcdn.com/artworks-abc-t500x500.jpg" {
		t.Errorf("FetchThumbnail() = %q", thumbnail)
	}
	query := <-queries
	gotFormat, gotURL := query["format"][0], query["url"][0]
	if gotFormat != "json" {
		t.Errorf("format query = %q, want %q", gotFormat, "json")
	}
	if gotURL != trackURL {
		t.Errorf("url query = %q, want %q", gotURL, trackURL)
	}
}

func TestSoundCloudFetcher_FetchThumbnailErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "Not found", status: http.StatusNotFound, body: `{"thumbnail_url":"https://i1.sndcdn.com/a-t500x500.jpg"}`},
		{name: "Server error", status: http.StatusInternalServerError, body: ``},
		{name: "Missing thumbnail", status: http.StatusOK, body: `{}`},
		{name: "Blank thumbnail", status: http.StatusOK, body: `{"thumbnail_url":"  "}`},
		{name: "Malformed JSON", status: http.StatusOK, body: `{"thumbnail_url":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			fetcher := NewSoundCloudFetcher(time.Second, WithOEmbedURL(server.URL))
			if _, err := fetcher.FetchThumbnail(context.Background(), "https://soundcloud.com/a/b"); err == nil {
				t.Error("FetchThumbnail() expected error, got nil")
			}
		})
	}
}

func TestSoundCloudFetcher_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewSoundCloudFetcher(time.Second, WithOEmbedURL(server.URL))
	_, err := fetcher.FetchThumbnail(context.Background(), "https://soundcloud.com/a/b")

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("FetchThumbnail() error = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want %d", statusErr.StatusCode, http.StatusNotFound)
	}
}

func TestSoundCloudFetcher_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	fetcher := NewSoundCloudFetcher(50*time.Millisecond, WithOEmbedURL(server.URL))
	if _, err := fetcher.FetchThumbnail(context.Background(), "https://soundcloud.com/a/b"); err == nil {
		t.Error("FetchThumbnail() expected timeout error, got nil")
	}
}

func TestOEmbedRequestURL(t *testing.T) {
	got := oEmbedRequestURL(SoundCloudOEmbedURL, "https://soundcloud.com/artist/track?in=artist/sets/x")
	want := "https://soundcloud.com/oembed?format=json&url=https%3A%2F%2Fsoundcloud.com%2Fartist%2Ftrack%3Fin%3Dartist%2Fsets%2Fx"
	if got != want {
		t.Errorf("oEmbedRequestURL() = %q, want %q", got, want)
	}
}
