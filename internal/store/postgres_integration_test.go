//go:build integration

package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Lirov/claim-checker/internal/model"
)

func startPostgres(t *testing.T, ctx context.Context) string {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "claimcheck",
			"POSTGRES_PASSWORD": "claimcheck",
			"POSTGRES_DB":       "claimcheck",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(90 * time.Second),
	}
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("failed to start postgres: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("postgres host: %v", err)
	}
	port, err := c.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("postgres port: %v", err)
	}
	return fmt.Sprintf("postgres://claimcheck:claimcheck@%s:%s/claimcheck?sslmode=disable", host, port.Port())
}

func TestPostgresStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	dsn := startPostgres(t, ctx)

	if err := Migrate(DriverPostgres, dsn, MigrateUp); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	s, err := Open(ctx, "postgresql", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = s.Close() }()

	claim, err := s.CreateClaim(ctx, model.VerifyRequest{InputType: model.InputTypeURL, RawInput: "https://example.com", UserID: "it"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	evidence := []model.EvidenceItem{
		{Source: "wikipedia", Title: "first", Score: 0.8},
		{Source: "wikipedia", Title: "second", Score: 0.1},
	}
	v := model.Verdict{Label: model.VerdictSupport, Confidence: 0.55, Explanation: "ok"}
	if err := s.CompleteClaim(ctx, claim.ID, evidence, v); err != nil {
		t.Fatalf("complete: %v", err)
	}

	got, err := s.GetClaim(ctx, claim.ID)
	if err != nil || got.Status != model.ClaimStatusDone || got.InputType != model.InputTypeURL {
		t.Fatalf("unexpected claim %+v, %v", got, err)
	}

	items, err := s.ListEvidence(ctx, claim.ID)
	if err != nil || len(items) != 2 || items[0].Title != "first" {
		t.Fatalf("unexpected evidence %+v, %v", items, err)
	}

	if err := s.FailClaim(ctx, claim.ID); !errors.Is(err, model.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}

	if _, err := s.GetClaim(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := Migrate(DriverPostgres, dsn, MigrateDown); err != nil {
		t.Fatalf("migrate down: %v", err)
	}
}
