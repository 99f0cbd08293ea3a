package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestEvidenceKey(t *testing.T) {
	k1 := EvidenceKey("service", "paris", 3)
	k2 := EvidenceKey("service", "paris", 3)
	if k1 != k2 {
		t.Errorf("expected stable key, got %s and %s", k1, k2)
	}
	if !strings.HasPrefix(k1, KeyPrefix+"evidence:") {
		t.Errorf("unexpected key prefix: %s", k1)
	}
	if k1 == EvidenceKey("service", "paris", 5) {
		t.Error("expected limit to change the key")
	}
	if k1 == EvidenceKey("wikipedia", "paris", 3) {
		t.Error("expected provider to change the key")
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Fatal("expected miss for unknown key")
	}

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, ok := c.Get(ctx, "k")
	if !ok || string(got) != "v" {
		t.Fatalf("expected hit 'v', got %q (ok=%v)", got, ok)
	}

	_ = c.Delete(ctx, "k")
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("expected miss after delete")
	}

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	for _, key := range []string{"a", "b"} {
		if _, ok := c.Get(ctx, key); ok {
			t.Errorf("expected %s to miss after clear", key)
		}
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute, time.Minute)

	_ = c.Set(ctx, "short", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, ok := c.Get(ctx, "short"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestLayeredCache_PromotesSharedHits(t *testing.T) {
	ctx := context.Background()
	local := NewMemoryCache(time.Minute, time.Minute)
	shared := NewMemoryCache(time.Minute, time.Minute)
	c := NewLayeredCache(local, shared)

	_ = shared.Set(ctx, "k", []byte("from-shared"), 0)

	got, ok := c.Get(ctx, "k")
	if !ok || string(got) != "from-shared" {
		t.Fatalf("expected shared hit, got %q (ok=%v)", got, ok)
	}
	if _, ok := local.Get(ctx, "k"); !ok {
		t.Error("expected shared hit to be promoted to local layer")
	}
}

func TestLayeredCache_SetWritesBothLayers(t *testing.T) {
	ctx := context.Background()
	local := NewMemoryCache(time.Minute, time.Minute)
	shared := NewMemoryCache(time.Minute, time.Minute)
	c := NewLayeredCache(local, shared)

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, ok := local.Get(ctx, "k"); !ok {
		t.Error("expected local layer to hold value")
	}
	if _, ok := shared.Get(ctx, "k"); !ok {
		t.Error("expected shared layer to hold value")
	}

	_ = c.Delete(ctx, "k")
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("expected miss after delete")
	}

	_ = c.Set(ctx, "x", []byte("1"), 0)
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, ok := local.Get(ctx, "x"); ok {
		t.Error("expected local layer to be cleared")
	}
	if _, ok := shared.Get(ctx, "x"); ok {
		t.Error("expected shared layer to be cleared")
	}
}
