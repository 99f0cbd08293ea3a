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

// DefaultServiceTimeout bounds a single evidence service request
const DefaultServiceTimeout = 30 * time.Second

// ServiceClient queries the evidence service over HTTP
type ServiceClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewServiceClient creates a client for the evidence service at baseURL
func NewServiceClient(baseURL string, timeout time.Duration) *ServiceClient {
	if timeout <= 0 {
		timeout = DefaultServiceTimeout
	}
	return &ServiceClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClient(timeout),
	}
}

type serviceResult struct {
	Source  string `json:"source"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Search calls GET {base}/wikipedia/search?query=&limit=
func (c *ServiceClient) Search(ctx context.Context, keyword string, limit int) ([]model.Snippet, error) {
	q := url.Values{}
	q.Set("query", keyword)
	q.Set("limit", strconv.Itoa(limit))
	endpoint := c.baseURL + "/wikipedia/search?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("evidence service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("evidence service: unexpected status %d", resp.StatusCode)
	}

	var results []serviceResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode evidence response: %w", err)
	}

	snippets := make([]model.Snippet, 0, len(results))
	for _, r := range results {
		source := r.Source
		if source == "" {
			source = model.DefaultEvidenceSource
		}
		snippets = append(snippets, model.Snippet{
			Source:  source,
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Snippet,
		})
	}
	return snippets, nil
}
