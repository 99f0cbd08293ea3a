package evidence

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/Lirov/claim-checker/internal/cache"
	"github.com/Lirov/claim-checker/internal/model"
)

// CachedGateway memoizes successful lookups. Errors are never cached.
type CachedGateway struct {
	next     Gateway
	cache    cache.Cache
	provider string
	ttl      time.Duration
	logger   *zap.Logger
}

// NewCachedGateway wraps next with c
func NewCachedGateway(next Gateway, c cache.Cache, provider string, ttl time.Duration, logger *zap.Logger) *CachedGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedGateway{next: next, cache: c, provider: provider, ttl: ttl, logger: logger}
}

// Search returns cached snippets when present, otherwise delegates
func (g *CachedGateway) Search(ctx context.Context, keyword string, limit int) ([]model.Snippet, error) {
	key := cache.EvidenceKey(g.provider, keyword, limit)

	if data, ok := g.cache.Get(ctx, key); ok {
		var snippets []model.Snippet
		if err := json.Unmarshal(data, &snippets); err == nil {
			return snippets, nil
		}
		_ = g.cache.Delete(ctx, key)
	}

	snippets, err := g.next.Search(ctx, keyword, limit)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(snippets); err == nil {
		if err := g.cache.Set(ctx, key, data, g.ttl); err != nil {
			g.logger.Debug("evidence cache write failed", zap.String("keyword", keyword), zap.Error(err))
		}
	}
	return snippets, nil
}
