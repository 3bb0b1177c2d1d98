// Package search wraps the external catalog providers, one per media kind.
// Providers are best-effort black boxes: a failed or slow provider returns
// an error the handler turns into an empty result list, never a crash.
package search

import (
	"context"
	"net/http"
	"time"

	"npcfinder/internal/config"
	"npcfinder/internal/shared"
)

// Result is the provider-neutral search hit.
type Result struct {
	ExternalID  string `json:"external_id"`
	Title       string `json:"title"`
	ImageURL    string `json:"image_url,omitempty"`
	ReleaseDate string `json:"release_date,omitempty"`
	Genre       string `json:"genre,omitempty"`
	Artist      string `json:"artist,omitempty"`
	MediaType   string `json:"media_type,omitempty"` // movies only: "movie" or "tv"
	Source      string `json:"source"`
}

type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

// Registry maps media kinds to their provider.
type Registry map[shared.MediaKind]Provider

// NewRegistry wires the four catalog clients from config.
func NewRegistry(cfg *config.Config) Registry {
	client := &http.Client{Timeout: 10 * time.Second}
	return Registry{
		shared.KindMovies: NewTMDBClient(cfg.TMDBAPIURL, cfg.TMDBAPIKey, client),
		shared.KindBooks:  NewOpenLibraryClient(cfg.OpenLibraryAPIURL, client),
		shared.KindGames:  NewRAWGClient(cfg.RAWGAPIURL, cfg.RAWGAPIKey, client),
		shared.KindMusic:  NewITunesClient(cfg.ITunesAPIURL, client),
	}
}

func clamp(limit, max int) int {
	if limit < 1 || limit > max {
		return max
	}
	return limit
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
