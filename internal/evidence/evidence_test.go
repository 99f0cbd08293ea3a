package evidence

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Lirov/claim-checker/internal/cache"
	"github.com/Lirov/claim-checker/internal/model"
	"github.com/Lirov/claim-checker/internal/worker"
)

func TestServiceClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wikipedia/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != "eiffel" {
			t.Errorf("expected query 'eiffel', got %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "3" {
			t.Errorf("expected limit 3, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"source":"wikipedia","title":"Eiffel Tower","url":"https://en.wikipedia.org/wiki/Eiffel_Tower","snippet":"Wrought-iron tower in Paris"},
			{"title":"Gustave Eiffel","snippet":"French engineer"}
		]`))
	}))
	defer server.Close()

	client := NewServiceClient(server.URL+"/", 5*time.Second)
	snippets, err := client.Search(context.Background(), "eiffel", 3)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(snippets) != 2 {
		t.Fatalf("expected 2 snippets, got %d", len(snippets))
	}
	if snippets[0].Title != "Eiffel Tower" || snippets[0].URL == "" {
		t.Errorf("unexpected first snippet: %+v", snippets[0])
	}
	if snippets[1].Source != model.DefaultEvidenceSource {
		t.Errorf("expected default source, got %q", snippets[1].Source)
	}
}

func TestServiceClient_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("query") {
		case "bad-status":
			w.WriteHeader(http.StatusBadGateway)
		case "bad-json":
			_, _ = w.Write([]byte(`{not json`))
		}
	}))
	defer server.Close()

	client := NewServiceClient(server.URL, time.Second)
	for _, q := range []string{"bad-status", "bad-json"} {
		if _, err := client.Search(context.Background(), q, 3); err == nil {
			t.Errorf("%s: expected error", q)
		}
	}
}

func TestServiceClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewServiceClient(server.URL, 20*time.Millisecond)
	if _, err := client.Search(context.Background(), "slow", 3); err == nil {
		t.Error("expected timeout error")
	}
}

func newWikipediaServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/w/api.php":
			q := r.URL.Query()
			if q.Get("list") != "search" || q.Get("srnamespace") != "0" || q.Get("srlimit") != "3" {
				t.Errorf("unexpected search params: %s", r.URL.RawQuery)
			}
			_, _ = w.Write([]byte(`{"query":{"search":[{"title":"Eiffel Tower"},{"title":"Missing Page"},{"title":"Empty Page"}]}}`))
		case r.URL.Path == "/api/rest_v1/page/summary/Eiffel_Tower":
			_, _ = w.Write([]byte(`{"extract":"The Eiffel Tower is a wrought-iron lattice tower in Paris."}`))
		case r.URL.Path == "/api/rest_v1/page/summary/Empty_Page":
			_, _ = w.Write([]byte(`{"extract":""}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestWikipediaClient_Search(t *testing.T) {
	server := newWikipediaServer(t)
	defer server.Close()

	client := NewWikipediaClient(WikipediaOptions{
		APIURL:  server.URL + "/w/api.php",
		RESTURL: server.URL + "/api/rest_v1/",
		PageURL: "https://en.wikipedia.org/wiki/",
		Timeout: 5 * time.Second,
	})

	snippets, err := client.Search(context.Background(), "eiffel", 3)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(snippets) != 1 {
		t.Fatalf("expected hits without summary to be dropped, got %d snippets", len(snippets))
	}
	got := snippets[0]
	if got.URL != "https://en.wikipedia.org/wiki/Eiffel_Tower" {
		t.Errorf("unexpected url %q", got.URL)
	}
	if got.Source != "wikipedia" || !strings.Contains(got.Snippet, "lattice tower") {
		t.Errorf("unexpected snippet %+v", got)
	}
}

func TestWikipediaClient_SearchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewWikipediaClient(WikipediaOptions{APIURL: server.URL, RESTURL: server.URL})
	if _, err := client.Search(context.Background(), "eiffel", 3); err == nil {
		t.Error("expected error when search endpoint fails")
	}
}

type countingGateway struct {
	calls atomic.Int32
	err   error
}

func (g *countingGateway) Search(ctx context.Context, keyword string, limit int) ([]model.Snippet, error) {
	g.calls.Add(1)
	if g.err != nil {
		return nil, g.err
	}
	return []model.Snippet{{Source: "wikipedia", Title: keyword, Snippet: "about " + keyword}}, nil
}

func TestCachedGateway_HitsCache(t *testing.T) {
	next := &countingGateway{}
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	gw := NewCachedGateway(next, c, ProviderService, time.Minute, zap.NewNop())
	ctx := context.Background()

	first, err := gw.Search(ctx, "paris", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := gw.Search(ctx, "paris", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if next.calls.Load() != 1 {
		t.Errorf("expected 1 upstream call, got %d", next.calls.Load())
	}
	if len(second) != 1 || second[0] != first[0] {
		t.Errorf("cached result differs: %+v vs %+v", second, first)
	}

	if _, err := gw.Search(ctx, "paris", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.calls.Load() != 2 {
		t.Errorf("expected different limit to miss cache, got %d calls", next.calls.Load())
	}
}

func TestCachedGateway_DoesNotCacheErrors(t *testing.T) {
	next := &countingGateway{err: errors.New("upstream down")}
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	gw := NewCachedGateway(next, c, ProviderService, time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := gw.Search(ctx, "paris", 3); err == nil {
			t.Fatal("expected error")
		}
	}
	if next.calls.Load() != 2 {
		t.Errorf("expected errors to bypass cache, got %d calls", next.calls.Load())
	}
}

func TestCachedGateway_CorruptEntry(t *testing.T) {
	next := &countingGateway{}
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	ctx := context.Background()
	_ = c.Set(ctx, cache.EvidenceKey(ProviderService, "paris", 3), []byte("garbage"), 0)

	gw := NewCachedGateway(next, c, ProviderService, time.Minute, nil)
	snippets, err := gw.Search(ctx, "paris", 3)
	if err != nil || len(snippets) != 1 {
		t.Fatalf("expected fallback to upstream, got %v, %v", snippets, err)
	}

	data, _ := c.Get(ctx, cache.EvidenceKey(ProviderService, "paris", 3))
	var cached []model.Snippet
	if err := json.Unmarshal(data, &cached); err != nil {
		t.Errorf("expected corrupt entry to be replaced, got %q", data)
	}
}

func TestLimitedGateway_RespectsContext(t *testing.T) {
	next := &countingGateway{}
	limiter := worker.NewLimiter(0.01, 1)
	gw := NewLimitedGateway(next, limiter, "http://evidence.local:8001")

	if _, err := gw.Search(context.Background(), "a", 3); err != nil {
		t.Fatalf("first search should pass: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := gw.Search(ctx, "b", 3); err == nil {
		t.Error("expected rate limit error")
	}
	if next.calls.Load() != 1 {
		t.Errorf("expected limited call to skip upstream, got %d calls", next.calls.Load())
	}
}

func TestNew_Providers(t *testing.T) {
	cfg := model.DefaultConfig().Evidence

	gw, err := New(cfg, "ua", nil, 0, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := gw.(*ServiceClient); !ok {
		t.Errorf("expected bare ServiceClient, got %T", gw)
	}

	cfg.Provider = ProviderWikipedia
	gw, err = New(cfg, "ua", cache.NewMemoryCache(time.Minute, time.Minute), time.Minute, worker.NewLimiter(5, 5), zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := gw.(*CachedGateway); !ok {
		t.Errorf("expected CachedGateway outermost, got %T", gw)
	}

	cfg.Provider = "bing"
	if _, err := New(cfg, "ua", nil, 0, nil, zap.NewNop()); err == nil {
		t.Error("expected error for unknown provider")
	}
}
