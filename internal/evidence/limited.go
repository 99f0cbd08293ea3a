package evidence

import (
	"context"
	"fmt"

	"github.com/Lirov/claim-checker/internal/model"
	"github.com/Lirov/claim-checker/internal/worker"
)

// LimitedGateway waits on a per-host rate limiter before each lookup
type LimitedGateway struct {
	next    Gateway
	limiter *worker.Limiter
	key     string
}

// NewLimitedGateway limits next by the host of upstreamURL
func NewLimitedGateway(next Gateway, limiter *worker.Limiter, upstreamURL string) *LimitedGateway {
	key, err := worker.HostKey(upstreamURL)
	if err != nil {
		key = upstreamURL
	}
	return &LimitedGateway{next: next, limiter: limiter, key: key}
}

// Search waits for a token and delegates
func (g *LimitedGateway) Search(ctx context.Context, keyword string, limit int) ([]model.Snippet, error) {
	if err := g.limiter.Wait(ctx, g.key); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return g.next.Search(ctx, keyword, limit)
}
