package mediaserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"reeldex/internal/services"
)

const userAgent = "Reeldex/0.1.0"

// DefaultPageSize is the /Items page size when none is configured.
const DefaultPageSize = 200

// Item is one movie entry from the media server.
type Item struct {
	ID              string
	Title           string
	Year            *int
	ProviderID      string
	Path            string
	CriticRating    *float64
	CommunityRating *float64
	Genres          []string
	Overview        string
}

// HTTPDoer is the request seam; *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client pages the /Items endpoint of a Jellyfin-compatible server.
type Client struct {
	baseURL  string
	apiKey   string
	pageSize int
	doer     HTTPDoer
}

// NewClient builds a client for the server at baseURL authenticated with
// apiKey. Page size falls back to DefaultPageSize when not positive.
func NewClient(baseURL, apiKey string, pageSize int) *Client {
	return NewClientWithDoer(baseURL, apiKey, pageSize, &http.Client{Timeout: 30 * time.Second})
}

// NewClientWithDoer allows injecting a custom HTTP doer for testing.
func NewClientWithDoer(baseURL, apiKey string, pageSize int, doer HTTPDoer) *Client {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if doer == nil {
		doer = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:   strings.TrimSpace(apiKey),
		pageSize: pageSize,
		doer:     doer,
	}
}

type itemsResponse struct {
	Items            []rawItem `json:"Items"`
	TotalRecordCount int       `json:"TotalRecordCount"`
}

type rawItem struct {
	ID              string            `json:"Id"`
	Name            string            `json:"Name"`
	ProductionYear  *int              `json:"ProductionYear"`
	ProviderIDs     map[string]string `json:"ProviderIds"`
	Path            string            `json:"Path"`
	CriticRating    *float64          `json:"CriticRating"`
	CommunityRating *float64          `json:"CommunityRating"`
	Genres          []string          `json:"Genres"`
	Overview        string            `json:"Overview"`
}

// FetchMovies pages through the server's movie items until the reported
// total is reached or a page comes back short.
func (c *Client) FetchMovies(ctx context.Context) ([]Item, error) {
	if c.baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "mediaserver", "fetch", "server URL not configured", nil)
	}

	var items []Item
	for start := 0; ; start += c.pageSize {
		page, total, err := c.fetchPage(ctx, start)
		if err != nil {
			return nil, err
		}
		items = append(items, page...)
		if len(items) >= total || len(page) < c.pageSize {
			break
		}
	}
	return items, nil
}

func (c *Client) fetchPage(ctx context.Context, startIndex int) ([]Item, int, error) {
	query := url.Values{
		"IncludeItemTypes": {"Movie"},
		"Recursive":        {"true"},
		"Fields":           {"Path,ProviderIds,Genres,Overview,CriticRating,CommunityRating"},
		"StartIndex":       {strconv.Itoa(startIndex)},
		"Limit":            {strconv.Itoa(c.pageSize)},
	}
	endpoint := c.baseURL + "/Items?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build items request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Emby-Token", c.apiKey)
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, 0, services.Wrap(services.ErrTransient, "mediaserver", "fetch", "items request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, 0, services.Wrap(
			services.ErrExternalTool,
			"mediaserver", "fetch",
			fmt.Sprintf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			nil,
		)
	}

	var decoded itemsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, 0, services.Wrap(services.ErrExternalTool, "mediaserver", "fetch", "decode items response", err)
	}

	items := make([]Item, 0, len(decoded.Items))
	for _, raw := range decoded.Items {
		items = append(items, Item{
			ID:              raw.ID,
			Title:           raw.Name,
			Year:            raw.ProductionYear,
			ProviderID:      providerID(raw.ProviderIDs),
			Path:            raw.Path,
			CriticRating:    raw.CriticRating,
			CommunityRating: raw.CommunityRating,
			Genres:          raw.Genres,
			Overview:        raw.Overview,
		})
	}
	return items, decoded.TotalRecordCount, nil
}

// providerID prefers the IMDb id; any other provider id is a fallback so a
// server with only TMDb tagging still matches on stable ids.
func providerID(ids map[string]string) string {
	if ids == nil {
		return ""
	}
	for key, value := range ids {
		if strings.EqualFold(key, "imdb") && value != "" {
			return value
		}
	}
	for _, key := range []string{"Tmdb", "tmdb"} {
		if value := ids[key]; value != "" {
			return "tmdb:" + value
		}
	}
	return ""
}
