package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"coverart/internal/backend"
	"coverart/pkg/artwork"
)

// ReleaseView is a release annotated with its resolved artwork.
type ReleaseView struct {
	backend.Release
	ArtworkURL string `json:"artwork_url,omitempty"`
}

type artworkResponse struct {
	URL string `json:"url"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handlers) artwork(w http.ResponseWriter, r *http.Request) {
	mediaURL := r.URL.Query().Get("url")

	artworkURL, err := h.resolver.Resolve(r.Context(), mediaURL)
	if err != nil {
		switch {
		case errors.Is(err, artwork.ErrInvalidReference):
			h.writeError(w, http.StatusBadRequest, err)
		case errors.Is(err, context.Canceled):
			// Client went away; nobody is left to read the response.
			return
		default:
			h.writeError(w, http.StatusBadGateway, artwork.ErrArtworkUnavailable)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, artworkResponse{URL: artworkURL})
}

func (h *handlers) listReleases(w http.ResponseWriter, r *http.Request) {
	releases, err := h.catalog.ListReleases(r.Context())
	if err != nil {
		h.logger.Error("Failed to list releases", zap.Error(err))
		h.writeError(w, http.StatusBadGateway, errors.New("error loading releases"))
		return
	}

	h.writeJSON(w, http.StatusOK, h.withArtwork(r.Context(), releases))
}

func (h *handlers) getRelease(w http.ResponseWriter, r *http.Request) {
	release, err := h.catalog.GetRelease(r.Context(), r.PathValue("urlTitle"))
	if err != nil {
		switch {
		case errors.Is(err, backend.ErrNotFound):
			h.writeError(w, http.StatusNotFound, errors.New("release not found"))
		case errors.Is(err, backend.ErrMissingURLTitle):
			h.writeError(w, http.StatusBadRequest, err)
		default:
			h.logger.Error("Failed to get release", zap.Error(err))
			h.writeError(w, http.StatusBadGateway, errors.New("error loading release"))
		}
		return
	}

	views := h.withArtwork(r.Context(), []backend.Release{*release})
	h.writeJSON(w, http.StatusOK, views[0])
}

func (h *handlers) listShows(w http.ResponseWriter, r *http.Request) {
	shows, err := h.catalog.ListShows(r.Context())
	if err != nil {
		h.logger.Error("Failed to list shows", zap.Error(err))
		h.writeError(w, http.StatusBadGateway, errors.New("error loading shows"))
		return
	}

	h.writeJSON(w, http.StatusOK, shows)
}

func (h *handlers) upcomingShows(w http.ResponseWriter, r *http.Request) {
	upcoming, err := h.catalog.UpcomingShows(r.Context())
	if err != nil {
		h.logger.Error("Failed to list upcoming shows", zap.Error(err))
		h.writeError(w, http.StatusBadGateway, errors.New("error loading upcoming shows"))
		return
	}

	h.writeJSON(w, http.StatusOK, upcoming)
}

// withArtwork resolves artwork for every release that links a track.
// Releases whose artwork cannot be resolved are returned without it.
func (h *handlers) withArtwork(ctx context.Context, releases []backend.Release) []ReleaseView {
	views := make([]ReleaseView, len(releases))

	var g errgroup.Group
	g.SetLimit(maxArtworkFanOut)

	for i := range releases {
		views[i].Release = releases[i]
		if releases[i].SoundCloudURL == "" {
			continue
		}

		g.Go(func() error {
			artworkURL, err := h.resolver.Resolve(ctx, releases[i].SoundCloudURL)
			if err != nil {
				h.metrics.RecordMissingArtwork()
				h.logger.Debug("Serving release without artwork",
					zap.Int("release_id", releases[i].ID),
					zap.Error(err))
				return nil
			}
			views[i].ArtworkURL = artworkURL
			return nil
		})
	}

	_ = g.Wait()
	return views
}

func (h *handlers) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Debug("Failed to write JSON response", zap.Error(err))
	}
}

func (h *handlers) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}
