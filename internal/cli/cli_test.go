package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Lirov/claim-checker/internal/model"
	"github.com/Lirov/claim-checker/internal/worker"
)

func TestLoadConfig_DefaultsAndEnv(t *testing.T) {
	t.Setenv("CLAIMCHECK_DATABASE_DRIVER", "postgres")
	t.Setenv("CLAIMCHECK_EVIDENCE_TIMEOUT", "5s")
	t.Setenv("CLAIMCHECK_RATE_LIMITING_REQUESTS_PER_SECOND", "2.5")

	v := viper.New()
	if err := registerDefaults(v, model.DefaultConfig()); err != nil {
		t.Fatalf("register defaults: %v", err)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Database.Driver != "postgres" {
		t.Errorf("expected env driver override, got %q", cfg.Database.Driver)
	}
	if cfg.Evidence.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", cfg.Evidence.Timeout)
	}
	if cfg.RateLimiting.RequestsPerSecond != 2.5 {
		t.Errorf("expected 2.5 rps, got %v", cfg.RateLimiting.RequestsPerSecond)
	}

	def := model.DefaultConfig()
	if cfg.Server.Addr != def.Server.Addr || cfg.Evidence.TopK != def.Evidence.TopK || cfg.Cache.TTL != def.Cache.TTL {
		t.Errorf("defaults not preserved: %+v", cfg)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "scoring:\n  strategy: jaccard\nevidence:\n  provider: wikipedia\n  top_k: 3\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	if err := registerDefaults(v, model.DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("read config: %v", err)
	}
	v.Set("verbose", true)

	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Scoring.Strategy != "jaccard" || cfg.Evidence.Provider != "wikipedia" || cfg.Evidence.TopK != 3 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Evidence.KeywordLimit != 3 || cfg.Evidence.ServiceURL != "http://localhost:8001" {
		t.Errorf("defaults lost next to file values: %+v", cfg.Evidence)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected verbose to force debug logging, got %q", cfg.Log.Level)
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var cfg model.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("written config is not valid YAML: %v", err)
	}
	if cfg.Evidence.TopK != 5 || cfg.Database.Driver != "sqlite" {
		t.Errorf("unexpected written config: %+v", cfg)
	}

	if err := writeDefaultConfig(path); err == nil {
		t.Error("expected refusal to overwrite existing config")
	}
}

// testConfig points the app at a temp SQLite file and a fake evidence service
func testConfig(t *testing.T, serviceURL string) *model.Config {
	t.Helper()
	cfg := model.DefaultConfig()
	cfg.Database.DSN = filepath.Join(t.TempDir(), "cli.db")
	cfg.Evidence.ServiceURL = serviceURL
	cfg.Evidence.Timeout = 5 * time.Second
	cfg.RateLimiting.RequestsPerSecond = 0
	return cfg
}

func TestApp_VerifyAndRead(t *testing.T) {
	var calls atomic.Int32
	service := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/wikipedia/search" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]string{{
			"title":   "Eiffel Tower",
			"url":     "https://en.wikipedia.org/wiki/Eiffel_Tower",
			"snippet": "The Eiffel Tower is a wrought-iron lattice tower located in Paris",
		}})
	}))
	defer service.Close()

	ctx := context.Background()
	a, err := newApp(ctx, testConfig(t, service.URL), zap.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	req := model.VerifyRequest{InputType: model.InputTypeText, RawInput: "The Eiffel Tower is located in Paris", UserID: "cli"}
	result, err := a.pipeline.Verify(ctx, req)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if result.Verdict.Label != model.VerdictSupport {
		t.Errorf("expected support, got %+v", result.Verdict)
	}
	if len(result.TopEvidence) != 3 {
		t.Errorf("expected one snippet per keyword, got %d", len(result.TopEvidence))
	}

	// Same keywords again are served from the cache.
	before := calls.Load()
	if _, err := a.pipeline.Verify(ctx, req); err != nil {
		t.Fatalf("second verify: %v", err)
	}
	if calls.Load() != before {
		t.Errorf("expected cached lookups, service saw %d new calls", calls.Load()-before)
	}

	details, err := a.pipeline.GetClaim(ctx, result.ClaimID)
	if err != nil {
		t.Fatalf("get claim: %v", err)
	}

	var out bytes.Buffer
	printClaim(&out, details)
	for _, want := range []string{result.ClaimID, "Status:      done", "support", "Eiffel Tower"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in output:\n%s", want, out.String())
		}
	}
}

func TestApp_UnknownScorer(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Scoring.Strategy = "bm25"
	if _, err := newApp(context.Background(), cfg, zap.NewNop()); err == nil {
		t.Fatal("expected error for unknown scoring strategy")
	}
}

func TestPrintBatchSummary(t *testing.T) {
	results := []*worker.ClaimResult{
		{
			Index:   0,
			Request: model.VerifyRequest{RawInput: "Water boils at 100 degrees"},
			Result: &model.VerifyResult{
				ClaimID: "c-1",
				Verdict: model.Verdict{Label: model.VerdictSupport, Confidence: 0.55},
			},
		},
		{
			Index:   1,
			Request: model.VerifyRequest{RawInput: "https://example.com/missing"},
			Error:   context.DeadlineExceeded,
		},
	}

	var out bytes.Buffer
	failures := printBatchSummary(&out, results)
	if failures != 1 {
		t.Errorf("expected 1 failure, got %d", failures)
	}
	for _, want := range []string{"VERDICT", "support", "0.55", "c-1", "error"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in summary:\n%s", want, out.String())
		}
	}
}

func TestBatchError(t *testing.T) {
	if err := batchError(0, 3); err != nil {
		t.Errorf("expected nil with no failures, got %v", err)
	}
	err := batchError(2, 20)
	if err == nil || err.Error() != "2 of 20 claims failed" {
		t.Errorf("unexpected error %v", err)
	}
}

func TestApp_ClearCache_MemoryOnly(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Cache.RedisAddr = ""

	a := &app{cfg: cfg, logger: zap.NewNop()}
	defer a.Close()

	shared, err := a.clearCache(context.Background())
	if err != nil {
		t.Fatalf("clearCache failed: %v", err)
	}
	if shared {
		t.Error("expected no shared layer without redis_addr")
	}
}

func TestApp_ClearCache_RedisUnreachable(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Cache.RedisAddr = "127.0.0.1:1"

	a := &app{cfg: cfg, logger: zap.NewNop()}
	defer a.Close()

	if _, err := a.clearCache(context.Background()); err == nil {
		t.Error("expected error for unreachable redis")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("unexpected %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Errorf("unexpected %q", got)
	}
}
