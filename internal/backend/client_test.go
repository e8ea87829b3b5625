package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestBackend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/releases", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":1,"title":"First","url_title":"first","soundcloud_url":"https://soundcloud.com/a/first","release_date":"2024-01-05",
			 "links":[{"id":7,"release_id":1,"platform":"spotify","url":"https://open.spotify.com/track/1","created_at":"2024-01-01"}]},
			{"id":2,"title":"Second","url_title":"second","soundcloud_url":"","collaborators":"Someone","release_date":"2024-03-01"}
		]`))
	})
	mux.HandleFunc("/api/releases/first", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":1,"title":"First","url_title":"first","soundcloud_url":"https://soundcloud.com/a/first"}`))
	})
	mux.HandleFunc("/api/releases/broken", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/api/shows", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"s1","venue":"Club","city":"Berlin","state_province":"BE","country":"DE","show_date":"2024-06-01"}]`))
	})
	mux.HandleFunc("/api/shows/upcoming", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"shows":[{"id":"s2","venue":"Hall","city":"Zurich","state_province":"ZH","country":"CH","show_date":"2030-01-01"}],"count":1,"hasUpcomingShows":true}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClient_ListReleases(t *testing.T) {
	server := newTestBackend(t)
	client := NewClient(server.URL+"/api/", time.Second, zap.NewNop())

	releases, err := client.ListReleases(context.Background())
	if err != nil {
		t.Fatalf("ListReleases() unexpected error: %v", err)
	}

	if len(releases) != 2 {
		t.Fatalf("ListReleases() returned %d releases, want 2", len(releases))
	}

	first := releases[0]
	if first.URLTitle != "first" || first.SoundCloudURL != "https://soundcloud.com/a/first" {
		t.Errorf("Unexpected first release: %+v", first)
	}
	if len(first.Links) != 1 || first.Links[0].Platform != PlatformSpotify {
		t.Errorf("Unexpected links: %+v", first.Links)
	}
	if releases[1].Collaborators != "Someone" {
		t.Errorf("Collaborators = %q, want %q", releases[1].Collaborators, "Someone")
	}
}

func TestClient_GetRelease(t *testing.T) {
	server := newTestBackend(t)
	client := NewClient(server.URL+"/api", time.Second, zap.NewNop())

	release, err := client.GetRelease(context.Background(), "first")
	if err != nil {
		t.Fatalf("GetRelease() unexpected error: %v", err)
	}
	if release.ID != 1 || release.Title != "First" {
		t.Errorf("Unexpected release: %+v", release)
	}
}

func TestClient_GetReleaseErrors(t *testing.T) {
	server := newTestBackend(t)
	client := NewClient(server.URL+"/api", time.Second, zap.NewNop())

	tests := []struct {
		name     string
		urlTitle string
		wantErr  error
	}{
		{name: "Empty url title", urlTitle: "", wantErr: ErrMissingURLTitle},
		{name: "Unknown release", urlTitle: "missing", wantErr: ErrNotFound},
		{name: "Server error", urlTitle: "broken", wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.GetRelease(context.Background(), tt.urlTitle)
			if err == nil {
				t.Fatal("GetRelease() expected error, got nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("GetRelease() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestClient_Shows(t *testing.T) {
	server := newTestBackend(t)
	client := NewClient(server.URL+"/api", time.Second, zap.NewNop())

	shows, err := client.ListShows(context.Background())
	if err != nil {
		t.Fatalf("ListShows() unexpected error: %v", err)
	}
	if len(shows) != 1 || shows[0].Venue != "Club" || shows[0].StateProvince != "BE" {
		t.Errorf("Unexpected shows: %+v", shows)
	}

	upcoming, err := client.UpcomingShows(context.Background())
	if err != nil {
		t.Fatalf("UpcomingShows() unexpected error: %v", err)
	}
	if !upcoming.HasUpcomingShows || upcoming.Count != 1 || upcoming.Shows[0].City != "Zurich" {
		t.Errorf("Unexpected upcoming shows: %+v", upcoming)
	}
}
