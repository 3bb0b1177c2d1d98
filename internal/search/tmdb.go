package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"
)

// TMDBClient searches The Movie Database for movies and TV shows.
type TMDBClient struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

func NewTMDBClient(baseURL, apiKey string, httpClient *http.Client) *TMDBClient {
	return &TMDBClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		// TMDB allows ~50 req/s; stay far under it
		rateLimiter: rate.NewLimiter(rate.Limit(10), 5),
	}
}

func (c *TMDBClient) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/search/multi?api_key=%s&query=%s&include_adult=false",
		c.baseURL, url.QueryEscape(c.apiKey), url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tmdb search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tmdb search: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Results []struct {
			ID           int64  `json:"id"`
			MediaType    string `json:"media_type"`
			Title        string `json:"title"`
			Name         string `json:"name"` // TV shows use name instead of title
			PosterPath   string `json:"poster_path"`
			ReleaseDate  string `json:"release_date"`
			FirstAirDate string `json:"first_air_date"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("tmdb search: decode: %w", err)
	}

	out := make([]Result, 0, limit)
	for _, r := range parsed.Results {
		if r.MediaType != "movie" && r.MediaType != "tv" {
			continue // skip people results from /search/multi
		}
		if len(out) >= clamp(limit, 20) {
			break
		}
		imageURL := ""
		if r.PosterPath != "" {
			imageURL = "https://image.tmdb.org/t/p/w342" + r.PosterPath
		}
		out = append(out, Result{
			ExternalID:  strconv.FormatInt(r.ID, 10),
			Title:       firstNonEmpty(r.Title, r.Name),
			ImageURL:    imageURL,
			ReleaseDate: firstNonEmpty(r.ReleaseDate, r.FirstAirDate),
			MediaType:   r.MediaType,
			Source:      "tmdb",
		})
	}
	return out, nil
}
