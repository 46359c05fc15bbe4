// Package catalog looks up books in the Google Books volumes API.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mrlokans/booknotes/internal/config"
)

var (
	ErrTitleRequired      = errors.New("title is required")
	ErrUnexpectedStatus   = errors.New("unexpected catalog status")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

// Candidate is a book offered to the user for adding to their library.
type Candidate struct {
	Title    string
	Author   string
	CoverURL string
}

type volumesResponse struct {
	Items []volume `json:"items"`
}

type volume struct {
	VolumeInfo struct {
		Title      string   `json:"title"`
		Authors    []string `json:"authors"`
		ImageLinks *struct {
			Thumbnail string `json:"thumbnail"`
		} `json:"imageLinks"`
	} `json:"volumeInfo"`
}

// Client queries the catalog. Requests are paced by a shared token bucket
// and bounded by both the client timeout and the caller's context.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	rateLimiter *rate.Limiter
}

// NewClient creates a catalog client from configuration.
func NewClient(cfg config.Catalog) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = config.DefaultCatalogBaseURL
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		rateLimiter: rate.NewLimiter(limit, 1),
	}
}

// Search returns the volumes matching title and, when given, author. Items
// without a title, an author or a thumbnail are skipped. A non-2xx answer
// fails the whole lookup.
func (c *Client) Search(ctx context.Context, title, author string) ([]Candidate, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	params := url.Values{}
	params.Set("q", buildQuery(title, author))
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/volumes?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var body volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode volumes response: %w", err)
	}

	candidates := make([]Candidate, 0, len(body.Items))
	for _, item := range body.Items {
		if candidate, ok := toCandidate(item); ok {
			candidates = append(candidates, candidate)
		}
	}
	return candidates, nil
}

// buildQuery uses the volumes API field syntax; url encoding turns the
// space into '+', giving "title+inauthor:author".
func buildQuery(title, author string) string {
	author = strings.TrimSpace(author)
	if author == "" {
		return title
	}
	return title + " inauthor:" + author
}

func toCandidate(item volume) (Candidate, bool) {
	info := item.VolumeInfo
	if info.Title == "" || len(info.Authors) == 0 || info.Authors[0] == "" {
		return Candidate{}, false
	}
	if info.ImageLinks == nil || info.ImageLinks.Thumbnail == "" {
		return Candidate{}, false
	}

	return Candidate{
		Title:    info.Title,
		Author:   info.Authors[0],
		CoverURL: secureThumbnail(info.ImageLinks.Thumbnail),
	}, true
}

// secureThumbnail upgrades Google's http thumbnail links so they load under
// an https-only image policy.
func secureThumbnail(link string) string {
	if strings.HasPrefix(link, "http://") {
		return "https://" + strings.TrimPrefix(link, "http://")
	}
	return link
}
