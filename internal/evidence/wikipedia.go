package evidence

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

	"github.com/Lirov/claim-checker/internal/model"
)

// DefaultWikipediaTimeout bounds a single Wikipedia request
const DefaultWikipediaTimeout = 10 * time.Second

// WikipediaOptions configures a WikipediaClient
type WikipediaOptions struct {
	APIURL    string // MediaWiki action API, e.g. https://en.wikipedia.org/w/api.php
	RESTURL   string // REST base, e.g. https://en.wikipedia.org/api/rest_v1
	PageURL   string // article prefix, e.g. https://en.wikipedia.org/wiki/
	UserAgent string
	Timeout   time.Duration
}

// WikipediaClient searches Wikipedia directly and uses page summaries as snippets
type WikipediaClient struct {
	opts       WikipediaOptions
	httpClient *http.Client
}

// NewWikipediaClient creates a Wikipedia-backed gateway
func NewWikipediaClient(opts WikipediaOptions) *WikipediaClient {
	if opts.APIURL == "" {
		opts.APIURL = "https://en.wikipedia.org/w/api.php"
	}
	if opts.RESTURL == "" {
		opts.RESTURL = "https://en.wikipedia.org/api/rest_v1"
	}
	if opts.PageURL == "" {
		opts.PageURL = "https://en.wikipedia.org/wiki/"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultWikipediaTimeout
	}
	opts.RESTURL = strings.TrimRight(opts.RESTURL, "/")

	return &WikipediaClient{
		opts:       opts,
		httpClient: newHTTPClient(opts.Timeout),
	}
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type summaryResponse struct {
	Extract string `json:"extract"`
}

// Search runs a main-namespace full-text search and fetches each hit's summary.
// Hits without a usable summary are dropped.
func (c *WikipediaClient) Search(ctx context.Context, keyword string, limit int) ([]model.Snippet, error) {
	q := url.Values{}
	q.Set("action", "query")
	q.Set("format", "json")
	q.Set("list", "search")
	q.Set("srsearch", keyword)
	q.Set("srlimit", strconv.Itoa(limit))
	q.Set("srnamespace", "0")
	q.Set("srprop", "snippet|title")

	var sr searchResponse
	if err := c.getJSON(ctx, c.opts.APIURL+"?"+q.Encode(), &sr); err != nil {
		return nil, fmt.Errorf("wikipedia search: %w", err)
	}

	snippets := make([]model.Snippet, 0, len(sr.Query.Search))
	for _, hit := range sr.Query.Search {
		extract, err := c.summary(ctx, hit.Title)
		if err != nil || extract == "" {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		snippets = append(snippets, model.Snippet{
			Source:  model.DefaultEvidenceSource,
			Title:   hit.Title,
			URL:     c.opts.PageURL + titlePath(hit.Title),
			Snippet: extract,
		})
	}
	return snippets, nil
}

func (c *WikipediaClient) summary(ctx context.Context, title string) (string, error) {
	var s summaryResponse
	if err := c.getJSON(ctx, c.opts.RESTURL+"/page/summary/"+titlePath(title), &s); err != nil {
		return "", err
	}
	return s.Extract, nil
}

func (c *WikipediaClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// titlePath converts an article title into its URL path segment
func titlePath(title string) string {
	return url.PathEscape(strings.ReplaceAll(title, " ", "_"))
}
