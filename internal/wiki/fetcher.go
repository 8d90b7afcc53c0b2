// Package wiki resolves a search query to a Wikipedia article's plain text
// and canonical URL using the MediaWiki action API. A direct title lookup
// is tried first; when the page does not exist, a full-text search picks
// the best-matching title and the lookup is retried with it.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL   = "https://en.wikipedia.org"
	defaultUserAgent = "wiki-summary/1.0 (+https://github.com/baam28/wiki-summary)"
	requestTimeout   = 10 * time.Second
)

// Fetcher retrieves Wikipedia article text. Safe for concurrent use.
type Fetcher struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

// NewFetcher creates a Fetcher against en.wikipedia.org. baseURL overrides
// the wiki host (tests point it at a local server); pass "" for the default.
func NewFetcher(baseURL string) *Fetcher {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Fetcher{
		client:    &http.Client{Timeout: requestTimeout},
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: defaultUserAgent,
	}
}

// Fetch returns the article's plain text and canonical URL for query.
// A query with no matching article returns empty strings and a nil error;
// only transport and decoding failures are reported as errors.
func (f *Fetcher) Fetch(ctx context.Context, query string) (string, string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", "", nil
	}

	text, title, err := f.extract(ctx, query)
	if err != nil {
		return "", "", err
	}
	if text == "" {
		// No page under that exact title; fall back to search.
		found, err := f.search(ctx, query)
		if err != nil {
			return "", "", err
		}
		if found == "" {
			return "", "", nil
		}
		text, title, err = f.extract(ctx, found)
		if err != nil {
			return "", "", err
		}
		if text == "" {
			return "", "", nil
		}
	}

	return text, f.articleURL(title), nil
}

func (f *Fetcher) articleURL(title string) string {
	slug := strings.ReplaceAll(title, " ", "_")
	return f.baseURL + "/wiki/" + url.PathEscape(slug)
}

type extractResponse struct {
	Query struct {
		Pages map[string]struct {
			PageID  int     `json:"pageid"`
			Title   string  `json:"title"`
			Extract string  `json:"extract"`
			Missing *string `json:"missing"`
		} `json:"pages"`
	} `json:"query"`
}

// extract fetches the plain-text rendering of the page titled title.
// Returns ("", "", nil) when the page does not exist.
func (f *Fetcher) extract(ctx context.Context, title string) (text, resolvedTitle string, err error) {
	params := url.Values{
		"action":      {"query"},
		"prop":        {"extracts"},
		"explaintext": {"1"},
		"redirects":   {"1"},
		"format":      {"json"},
		"titles":      {title},
	}

	var resp extractResponse
	if err := f.get(ctx, params, &resp); err != nil {
		return "", "", err
	}

	for _, page := range resp.Query.Pages {
		if page.Missing != nil || page.PageID == 0 {
			continue
		}
		if strings.TrimSpace(page.Extract) == "" {
			continue
		}
		return page.Extract, page.Title, nil
	}
	return "", "", nil
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

// search returns the title of the best full-text search match, or "".
func (f *Fetcher) search(ctx context.Context, query string) (string, error) {
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {"1"},
		"format":   {"json"},
	}

	var resp searchResponse
	if err := f.get(ctx, params, &resp); err != nil {
		return "", err
	}
	if len(resp.Query.Search) == 0 {
		return "", nil
	}
	return resp.Query.Search[0].Title, nil
}

func (f *Fetcher) get(ctx context.Context, params url.Values, out interface{}) error {
	endpoint := f.baseURL + "/w/api.php?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build wikipedia request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("wikipedia request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return fmt.Errorf("wikipedia returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode wikipedia response: %w", err)
	}
	return nil
}
