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

// RAWGClient searches the RAWG video game catalog.
type RAWGClient struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

func NewRAWGClient(baseURL, apiKey string, httpClient *http.Client) *RAWGClient {
	return &RAWGClient{
		baseURL:     baseURL,
		apiKey:      apiKey,
		httpClient:  httpClient,
		rateLimiter: rate.NewLimiter(rate.Limit(5), 3),
	}
}

func (c *RAWGClient) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/games?key=%s&search=%s&page_size=%d",
		c.baseURL, url.QueryEscape(c.apiKey), url.QueryEscape(query), clamp(limit, 20))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rawg search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rawg search: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Results []struct {
			ID              int64  `json:"id"`
			Name            string `json:"name"`
			BackgroundImage string `json:"background_image"`
			Released        string `json:"released"`
			Platforms       []struct {
				Platform struct {
					Name string `json:"name"`
				} `json:"platform"`
			} `json:"platforms"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("rawg search: decode: %w", err)
	}

	out := make([]Result, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		platform := ""
		if len(r.Platforms) > 0 {
			platform = r.Platforms[0].Platform.Name
		}
		out = append(out, Result{
			ExternalID:  strconv.FormatInt(r.ID, 10),
			Title:       r.Name,
			ImageURL:    r.BackgroundImage,
			ReleaseDate: r.Released,
			Genre:       platform, // platform string rides the genre field
			Source:      "rawg",
		})
	}
	return out, nil
}
