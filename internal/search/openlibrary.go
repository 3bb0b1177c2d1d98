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

// OpenLibraryClient searches Open Library works. No API key required.
type OpenLibraryClient struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

func NewOpenLibraryClient(baseURL string, httpClient *http.Client) *OpenLibraryClient {
	return &OpenLibraryClient{
		baseURL:     baseURL,
		httpClient:  httpClient,
		rateLimiter: rate.NewLimiter(rate.Limit(5), 3),
	}
}

func (c *OpenLibraryClient) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/search.json?q=%s&limit=%d&fields=key,title,author_name,cover_i,first_publish_year,subject",
		c.baseURL, url.QueryEscape(query), clamp(limit, 20))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openlibrary search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openlibrary search: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Docs []struct {
			Key              string   `json:"key"` // "/works/OL27448W"
			Title            string   `json:"title"`
			AuthorName       []string `json:"author_name"`
			CoverID          int64    `json:"cover_i"`
			FirstPublishYear int      `json:"first_publish_year"`
			Subject          []string `json:"subject"`
		} `json:"docs"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("openlibrary search: decode: %w", err)
	}

	out := make([]Result, 0, len(parsed.Docs))
	for _, d := range parsed.Docs {
		imageURL := ""
		if d.CoverID != 0 {
			imageURL = fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-M.jpg", d.CoverID)
		}
		author := ""
		if len(d.AuthorName) > 0 {
			author = d.AuthorName[0]
		}
		genre := ""
		if len(d.Subject) > 0 {
			genre = d.Subject[0]
		}
		year := ""
		if d.FirstPublishYear != 0 {
			year = strconv.Itoa(d.FirstPublishYear)
		}
		out = append(out, Result{
			ExternalID:  strings.TrimPrefix(d.Key, "/works/"),
			Title:       d.Title,
			ImageURL:    imageURL,
			ReleaseDate: year,
			Genre:       genre,
			Artist:      author, // author rides the artist field in the neutral shape
			Source:      "openlibrary",
		})
	}
	return out, nil
}
