package worker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Lirov/claim-checker/internal/model"
)

// textClaimKey is the limiter key shared by all text claims
const textClaimKey = "text"

// ErrNotProcessed marks claims the batch stopped before verifying
var ErrNotProcessed = errors.New("claim not processed")

// Verifier runs a single claim verification
type Verifier interface {
	Verify(ctx context.Context, req model.VerifyRequest) (*model.VerifyResult, error)
}

// VerifyJob verifies one claim
type VerifyJob struct {
	Index    int
	Request  model.VerifyRequest
	Verifier Verifier
	Limiter  *Limiter
}

// Execute waits on the limiter and verifies the claim
func (j *VerifyJob) Execute(ctx context.Context) Result {
	start := time.Now()
	res := &ClaimResult{Index: j.Index, Request: j.Request}

	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, limiterKey(j.Request)); err != nil {
			res.Error = fmt.Errorf("rate limit: %w", err)
			res.Duration = time.Since(start)
			return res
		}
	}

	out, err := j.Verifier.Verify(ctx, j.Request)
	res.Result = out
	res.Error = err
	res.Duration = time.Since(start)
	return res
}

// ClaimResult is the outcome of a VerifyJob
type ClaimResult struct {
	Index    int
	Request  model.VerifyRequest
	Result   *model.VerifyResult
	Error    error
	Duration time.Duration
}

// GetError returns the verification error, if any
func (r *ClaimResult) GetError() error {
	return r.Error
}

// BatchProcessor verifies many claims concurrently
type BatchProcessor struct {
	verifier    Verifier
	concurrency int
	limiter     *Limiter
}

// NewBatchProcessor creates a batch processor. URL claims are rate-limited
// per host and text claims share one key.
func NewBatchProcessor(verifier Verifier, concurrency int, requestsPerSecond float64, burst int) *BatchProcessor {
	return &BatchProcessor{
		verifier:    verifier,
		concurrency: concurrency,
		limiter:     NewLimiter(requestsPerSecond, burst),
	}
}

// ProcessClaims verifies requests concurrently and returns one result per
// request, in input order. When ctx ends early the claims that produced no
// result carry ErrNotProcessed wrapping the context error.
func (b *BatchProcessor) ProcessClaims(ctx context.Context, reqs []model.VerifyRequest) []*ClaimResult {
	results := make([]*ClaimResult, len(reqs))
	if len(reqs) == 0 {
		return results
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()
	stop := context.AfterFunc(ctx, pool.Shutdown)
	defer stop()

	go func() {
		defer pool.Close()
		for i, req := range reqs {
			job := &VerifyJob{
				Index:    i,
				Request:  req,
				Verifier: b.verifier,
				Limiter:  b.limiter,
			}
			if !pool.Submit(job) {
				return
			}
		}
	}()

	for r := range pool.Results() {
		res := r.(*ClaimResult)
		results[res.Index] = res
	}

	for i, res := range results {
		if res == nil {
			results[i] = &ClaimResult{Index: i, Request: reqs[i], Error: notProcessed(ctx)}
		}
	}
	return results
}

func notProcessed(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrNotProcessed, err)
	}
	return ErrNotProcessed
}

// ProcessFile reads claims from a file and verifies them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath, userID string) ([]*ClaimResult, error) {
	reqs, err := ReadClaimsFromFile(filePath, userID)
	if err != nil {
		return nil, fmt.Errorf("read claims: %w", err)
	}

	return b.ProcessClaims(ctx, reqs), nil
}

// ReadClaimsFromFile reads one claim per line. Lines starting with http://
// or https:// become url claims, everything else is text. Blank lines,
// # comments and duplicates are skipped.
func ReadClaimsFromFile(filePath, userID string) ([]model.VerifyRequest, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var reqs []model.VerifyRequest
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true

		inputType := model.InputTypeText
		if strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://") {
			inputType = model.InputTypeURL
		}

		reqs = append(reqs, model.VerifyRequest{
			InputType: inputType,
			RawInput:  line,
			UserID:    userID,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return reqs, nil
}

func limiterKey(req model.VerifyRequest) string {
	if req.InputType == model.InputTypeURL {
		if host, err := HostKey(req.RawInput); err == nil {
			return host
		}
	}
	return textClaimKey
}
