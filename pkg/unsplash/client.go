package unsplash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/itempurchase/pkg/errors"
)

const (
	defaultBaseURL              = "https://api.unsplash.com"
	searchPath                  = "search/photos"
	acceptVersion               = "v1"
	requestBodyReadLimit  int64 = 1024
	defaultResultsPerPage       = 1
)

var (
	errAccessKeyRequired = errors.New("unsplash access key is required")
)

// Client wraps the Unsplash photo search API used to enrich new items with an image.
type Client struct {
	httpClient *http.Client
	baseURL    string
	accessKey  string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the Unsplash client given an access key.
func NewClient(accessKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(accessKey)
	if trimmedKey == "" {
		return nil, errAccessKeyRequired
	}

	client := &Client{
		accessKey:  trimmedKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}

	return client, nil
}

// Photo is the normalized subset of a search result.
type Photo struct {
	ID          string
	Description string
	RegularURL  string
	SmallURL    string
	Author      string
}

// SearchPhotos returns up to perPage photos matching the query, most relevant first.
func (c *Client) SearchPhotos(ctx context.Context, query string, perPage int) ([]Photo, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "unsplash client not configured")
	}
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search query is required")
	}
	if perPage <= 0 {
		perPage = defaultResultsPerPage
	}

	params := url.Values{}
	params.Set("query", trimmed)
	params.Set("per_page", fmt.Sprintf("%d", perPage))
	endpoint := c.buildURL(searchPath) + "?" + params.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build photo search request")
	}
	httpReq.Header.Set("Authorization", "Client-ID "+c.accessKey)
	httpReq.Header.Set("Accept-Version", acceptVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute photo search request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, requestBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "photo search request failed")
	}

	var apiResp struct {
		Results []struct {
			ID             string `json:"id"`
			AltDescription string `json:"alt_description"`
			URLs           struct {
				Regular string `json:"regular"`
				Small   string `json:"small"`
			} `json:"urls"`
			User struct {
				Name string `json:"name"`
			} `json:"user"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode photo search response")
	}

	photos := make([]Photo, 0, len(apiResp.Results))
	for _, r := range apiResp.Results {
		photos = append(photos, Photo{
			ID:          r.ID,
			Description: r.AltDescription,
			RegularURL:  r.URLs.Regular,
			SmallURL:    r.URLs.Small,
			Author:      r.User.Name,
		})
	}
	return photos, nil
}

// FirstPhotoURL returns the regular-size URL of the best match, or "" when nothing matched.
func (c *Client) FirstPhotoURL(ctx context.Context, query string) (string, error) {
	photos, err := c.SearchPhotos(ctx, query, 1)
	if err != nil {
		return "", err
	}
	for _, photo := range photos {
		if photo.RegularURL != "" {
			return photo.RegularURL, nil
		}
	}
	return "", nil
}

func (c *Client) buildURL(path string) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s", trimmed, path)
}
