// Package registry discovers available image versions from the Docker Hub
// tag-listing API and buckets them by major version.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/netzint/nextcloudctl/internal/observe"
)

const (
	// DefaultBaseURL is the Docker Hub API endpoint.
	DefaultBaseURL = "https://hub.docker.com"

	// pageSize is the number of tags requested per page.
	pageSize = 50

	// maxPages bounds worst-case latency against a misbehaving registry.
	// It does not express a real limit on tags.
	maxPages = 100

	// DefaultMaxMajors is the default cap on distinct major versions.
	DefaultMaxMajors = 10

	requestTimeout = 10 * time.Second
)

// tagPage is one page of the Hub tag-listing response.
type tagPage struct {
	Next    string `json:"next"`
	Results []struct {
		Name string `json:"name"`
	} `json:"results"`
}

// Catalog fetches and normalizes registry tags. It holds no cache; every
// fetch sees the registry fresh.
type Catalog struct {
	baseURL  string
	client   *http.Client
	observer observe.Observer
}

// NewCatalog creates a catalog against Docker Hub.
func NewCatalog(observer observe.Observer) *Catalog {
	return &Catalog{
		baseURL:  DefaultBaseURL,
		client:   &http.Client{Timeout: requestTimeout},
		observer: observer,
	}
}

// NewCatalogWithBaseURL creates a catalog against a custom registry
// endpoint. Used by tests.
func NewCatalogWithBaseURL(baseURL string, observer observe.Observer) *Catalog {
	c := NewCatalog(observer)
	c.baseURL = baseURL
	return c
}

// FetchMajorVersions pages through the repository's tags, keeps tags
// passing the filter that parse as semantic versions, and returns the
// highest tag per major version, descending, capped at maxMajors.
//
// Any transport or decode failure degrades to an empty result; the caller
// must treat an empty catalog as "no usable version found", not success.
func (c *Catalog) FetchMajorVersions(ctx context.Context, repo string, filter Filter, maxMajors int) []VersionTag {
	if maxMajors <= 0 {
		maxMajors = DefaultMaxMajors
	}
	c.observer.Notify(observe.LevelInfo, "Fetching available versions for %s...", repo)

	var all []VersionTag
	seen := make(map[string]bool)
	for page := 1; page <= maxPages; page++ {
		tags, next, err := c.fetchPage(ctx, repo, page)
		if err != nil {
			c.observer.Notify(observe.LevelError, "Error fetching versions for %s: %v", repo, err)
			return nil
		}
		if len(tags) == 0 {
			break
		}
		for _, raw := range tags {
			if seen[raw] {
				continue
			}
			seen[raw] = true
			vt, err := ParseTag(raw, filter)
			if err != nil {
				// Non-version tags like "latest" are expected.
				continue
			}
			all = append(all, vt)
		}
		if next == "" {
			break
		}
	}

	sortDescending(all)
	return collapseMajors(all, maxMajors)
}

func (c *Catalog) fetchPage(ctx context.Context, repo string, page int) ([]string, string, error) {
	url := fmt.Sprintf("%s/v2/repositories/%s/tags?page_size=%d&page=%d", c.baseURL, repo, pageSize, page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("registry returned status %d for %s", resp.StatusCode, repo)
	}

	var body tagPage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, "", fmt.Errorf("decoding tag page: %w", err)
	}

	names := make([]string, 0, len(body.Results))
	for _, r := range body.Results {
		names = append(names, r.Name)
	}
	return names, body.Next, nil
}
