// Package evidence retrieves candidate snippets from an external knowledge source.
package evidence

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Lirov/claim-checker/internal/cache"
	"github.com/Lirov/claim-checker/internal/model"
	"github.com/Lirov/claim-checker/internal/worker"
)

const (
	ProviderService   = "service"
	ProviderWikipedia = "wikipedia"
)

// Gateway looks up evidence snippets for a keyword
type Gateway interface {
	Search(ctx context.Context, keyword string, limit int) ([]model.Snippet, error)
}

// New builds the configured provider wrapped with caching and rate limiting.
// Either c or limiter may be nil.
func New(cfg model.EvidenceConfig, userAgent string, c cache.Cache, cacheTTL time.Duration, limiter *worker.Limiter, logger *zap.Logger) (Gateway, error) {
	var (
		gw      Gateway
		baseURL string
	)

	switch cfg.Provider {
	case "", ProviderService:
		gw = NewServiceClient(cfg.ServiceURL, cfg.Timeout)
		baseURL = cfg.ServiceURL
	case ProviderWikipedia:
		gw = NewWikipediaClient(WikipediaOptions{
			APIURL:    cfg.WikipediaAPIURL,
			RESTURL:   cfg.WikipediaRESTURL,
			PageURL:   cfg.WikipediaPageURL,
			UserAgent: userAgent,
			Timeout:   cfg.Timeout,
		})
		baseURL = cfg.WikipediaAPIURL
	default:
		return nil, fmt.Errorf("unknown evidence provider %q", cfg.Provider)
	}

	if limiter != nil {
		gw = NewLimitedGateway(gw, limiter, baseURL)
	}
	if c != nil {
		gw = NewCachedGateway(gw, c, cfg.Provider, cacheTTL, logger)
	}

	return gw, nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
