package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"
)

// ITunesClient searches the iTunes music catalog. No API key required.
type ITunesClient struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

func NewITunesClient(baseURL string, httpClient *http.Client) *ITunesClient {
	return &ITunesClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		// iTunes allows roughly 20 calls per minute per IP.
		rateLimiter: rate.NewLimiter(rate.Limit(0.3), 2),
	}
}

func (c *ITunesClient) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/search?term=%s&media=music&entity=album,song&limit=%d",
		c.baseURL, url.QueryEscape(query), clamp(limit, 20))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("itunes search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("itunes search: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Results []struct {
			TrackID        int64  `json:"trackId"`
			CollectionID   int64  `json:"collectionId"`
			TrackName      string `json:"trackName"`
			CollectionName string `json:"collectionName"`
			ArtistName     string `json:"artistName"`
			ArtworkURL100  string `json:"artworkUrl100"`
			ReleaseDate    string `json:"releaseDate"`
			PrimaryGenre   string `json:"primaryGenreName"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("itunes search: decode: %w", err)
	}

	out := make([]Result, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		id := r.TrackID
		if id == 0 {
			id = r.CollectionID
		}
		if id == 0 {
			continue
		}
		out = append(out, Result{
			ExternalID:  strconv.FormatInt(id, 10),
			Title:       firstNonEmpty(r.TrackName, r.CollectionName),
			ImageURL:    upscaleArtwork(r.ArtworkURL100),
			ReleaseDate: r.ReleaseDate,
			Genre:       r.PrimaryGenre,
			Artist:      r.ArtistName,
			Source:      "itunes",
		})
	}
	return out, nil
}

// upscaleArtwork swaps the 100x100 thumbnail path for a larger rendition.
func upscaleArtwork(u string) string {
	return strings.Replace(u, "100x100bb", "300x300bb", 1)
}
