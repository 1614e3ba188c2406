package stock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrNoAPIKey is returned when the client was built without a credential.
var ErrNoAPIKey = errors.New("stock footage API key not configured")

// Searcher finds one stock video for a query, or nothing.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// Client searches a Pexels-style stock footage API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a stock footage search client.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.pexels.com/videos"
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type searchResponse struct {
	Videos []struct {
		VideoFiles []struct {
			Quality string `json:"quality"`
			Link    string `json:"link"`
		} `json:"video_files"`
	} `json:"videos"`
}

// Search returns the top-ranked portrait video link for the query, or ""
// when the provider has nothing.
func (c *Client) Search(ctx context.Context, query string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	endpoint := fmt.Sprintf("%s/search?query=%s&per_page=1&orientation=portrait",
		c.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("stock search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("stock search status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("parse stock search response: %w", err)
	}

	if len(parsed.Videos) == 0 || len(parsed.Videos[0].VideoFiles) == 0 {
		return "", nil
	}

	files := parsed.Videos[0].VideoFiles
	for _, f := range files {
		if f.Quality == "hd" {
			return f.Link, nil
		}
	}
	return files[0].Link, nil
}
