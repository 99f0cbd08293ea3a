// Package pipeline verifies claims: keywords, evidence lookup, scoring,
// verdict synthesis and persistence.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Lirov/claim-checker/internal/evidence"
	"github.com/Lirov/claim-checker/internal/extract"
	"github.com/Lirov/claim-checker/internal/metrics"
	"github.com/Lirov/claim-checker/internal/model"
	"github.com/Lirov/claim-checker/internal/score"
	"github.com/Lirov/claim-checker/internal/verdict"
)

const (
	DefaultKeywordLimit      = 3
	DefaultResultsPerKeyword = 3
	DefaultTopK              = 5
	DefaultLookupWorkers     = 3
)

// Store is the persistence the pipeline needs
type Store interface {
	CreateClaim(ctx context.Context, req model.VerifyRequest) (*model.Claim, error)
	CompleteClaim(ctx context.Context, claimID string, evidence []model.EvidenceItem, verdict model.Verdict) error
	FailClaim(ctx context.Context, claimID string) error
	GetClaim(ctx context.Context, claimID string) (*model.Claim, error)
	GetVerdict(ctx context.Context, claimID string) (*model.Verdict, error)
	ListEvidence(ctx context.Context, claimID string) ([]model.EvidenceItem, error)
}

// Resolver turns a url claim into the text to verify
type Resolver interface {
	Resolve(ctx context.Context, rawURL string) (string, error)
}

// Options tunes a Pipeline. Zero values select the defaults.
type Options struct {
	KeywordLimit      int
	ResultsPerKeyword int
	TopK              int
	LookupWorkers     int
	Resolver          Resolver
	Metrics           *metrics.Metrics
}

// OptionsFromConfig maps configuration onto pipeline options
func OptionsFromConfig(cfg *model.Config) Options {
	return Options{
		KeywordLimit:      cfg.Evidence.KeywordLimit,
		ResultsPerKeyword: cfg.Evidence.ResultsPerKeyword,
		TopK:              cfg.Evidence.TopK,
		LookupWorkers:     cfg.Concurrency.LookupWorkers,
	}
}

// Pipeline orchestrates a claim verification
type Pipeline struct {
	store    Store
	gateway  evidence.Gateway
	scorer   score.Scorer
	logger   *zap.Logger
	metrics  *metrics.Metrics
	resolver Resolver

	keywordLimit      int
	resultsPerKeyword int
	topK              int
	lookupWorkers     int
}

// New creates a pipeline
func New(store Store, gateway evidence.Gateway, scorer score.Scorer, logger *zap.Logger, opts Options) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pipeline{
		store:             store,
		gateway:           gateway,
		scorer:            scorer,
		logger:            logger,
		metrics:           opts.Metrics,
		resolver:          opts.Resolver,
		keywordLimit:      opts.KeywordLimit,
		resultsPerKeyword: opts.ResultsPerKeyword,
		topK:              opts.TopK,
		lookupWorkers:     opts.LookupWorkers,
	}
	if p.keywordLimit <= 0 {
		p.keywordLimit = DefaultKeywordLimit
	}
	if p.resultsPerKeyword <= 0 {
		p.resultsPerKeyword = DefaultResultsPerKeyword
	}
	if p.topK <= 0 {
		p.topK = DefaultTopK
	}
	if p.lookupWorkers <= 0 {
		p.lookupWorkers = DefaultLookupWorkers
	}
	return p
}

// Verify runs the full verification for one claim. The claim is persisted
// as pending first; any later failure marks it error and is returned.
func (p *Pipeline) Verify(ctx context.Context, req model.VerifyRequest) (*model.VerifyResult, error) {
	start := time.Now()

	claim, err := p.store.CreateClaim(ctx, req)
	if err != nil {
		p.metrics.ObserveFailure(time.Since(start))
		return nil, fmt.Errorf("create claim: %w", err)
	}

	logger := p.logger.With(zap.String("claim_id", claim.ID), zap.String("input_type", string(req.InputType)))

	result, err := p.run(ctx, logger, claim)
	if err != nil {
		// The caller's context may be gone; the status update must still land.
		if failErr := p.store.FailClaim(context.WithoutCancel(ctx), claim.ID); failErr != nil {
			logger.Error("mark claim failed", zap.Error(failErr))
		}
		p.metrics.ObserveFailure(time.Since(start))
		logger.Warn("verification failed", zap.Error(err))
		return nil, err
	}

	p.metrics.ObserveVerdict(result.Verdict.Label, time.Since(start))
	logger.Info("claim verified",
		zap.String("label", string(result.Verdict.Label)),
		zap.Float64("confidence", result.Verdict.Confidence),
		zap.Int("evidence", len(result.TopEvidence)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, logger *zap.Logger, claim *model.Claim) (*model.VerifyResult, error) {
	text, err := p.claimText(ctx, claim)
	if err != nil {
		return nil, err
	}

	keywords := extract.Keywords(text)
	if len(keywords) > p.keywordLimit {
		keywords = keywords[:p.keywordLimit]
	}
	logger.Debug("keywords extracted", zap.Strings("keywords", keywords))

	pool := p.lookup(ctx, logger, keywords)

	scored := make([]model.EvidenceItem, len(pool))
	for i, s := range pool {
		scored[i] = model.NewEvidenceItem(s, p.scorer.Score(text, s.Snippet))
	}

	top := rank(scored, p.topK)
	v := verdict.Synthesize(text, top)

	if err := p.store.CompleteClaim(ctx, claim.ID, top, v); err != nil {
		return nil, fmt.Errorf("save results: %w", err)
	}

	return &model.VerifyResult{
		ClaimID:     claim.ID,
		Verdict:     v,
		TopEvidence: top,
	}, nil
}

// claimText returns the text to verify: the raw input, or the resolved
// page text for url claims when a resolver is configured
func (p *Pipeline) claimText(ctx context.Context, claim *model.Claim) (string, error) {
	if claim.InputType != model.InputTypeURL || p.resolver == nil {
		return claim.RawInput, nil
	}
	text, err := p.resolver.Resolve(ctx, claim.RawInput)
	if err != nil {
		return "", fmt.Errorf("resolve url: %w", err)
	}
	return text, nil
}

// lookup queries the gateway once per keyword and pools the snippets in
// keyword order then result order. A failed lookup contributes nothing.
func (p *Pipeline) lookup(ctx context.Context, logger *zap.Logger, keywords []string) []model.Snippet {
	perKeyword := make([][]model.Snippet, len(keywords))

	var wg sync.WaitGroup
	sem := make(chan struct{}, p.lookupWorkers)
	for i, kw := range keywords {
		wg.Add(1)
		go func(i int, kw string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			snippets, err := p.gateway.Search(ctx, kw, p.resultsPerKeyword)
			if err != nil {
				p.metrics.GatewayError()
				logger.Warn("evidence lookup failed", zap.String("keyword", kw), zap.Error(err))
				return
			}
			if len(snippets) > p.resultsPerKeyword {
				snippets = snippets[:p.resultsPerKeyword]
			}
			perKeyword[i] = snippets
		}(i, kw)
	}
	wg.Wait()

	var pool []model.Snippet
	for _, snippets := range perKeyword {
		pool = append(pool, snippets...)
	}
	return pool
}

// rank sorts by score descending, keeping pool order among ties, and keeps
// the first k items
func rank(items []model.EvidenceItem, k int) []model.EvidenceItem {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
	if len(items) > k {
		items = items[:k]
	}
	for i := range items {
		items[i].Rank = i
	}
	return items
}

// GetClaim returns the stored view of a claim, or store.ErrNotFound
func (p *Pipeline) GetClaim(ctx context.Context, claimID string) (*model.ClaimDetails, error) {
	claim, err := p.store.GetClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}

	v, err := p.store.GetVerdict(ctx, claimID)
	if err != nil {
		return nil, err
	}

	items, err := p.store.ListEvidence(ctx, claimID)
	if err != nil {
		return nil, err
	}

	return model.NewClaimDetails(claim, v, items), nil
}
