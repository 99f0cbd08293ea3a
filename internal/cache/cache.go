package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// Cache stores opaque byte values with a TTL
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// KeyPrefix namespaces every key written by this package
const KeyPrefix = "claimcheck:v1:"

// EvidenceKey builds the cache key for an evidence lookup
func EvidenceKey(provider, keyword string, limit int) string {
	hash := sha256.Sum256([]byte(provider + "|" + keyword + "|" + strconv.Itoa(limit)))
	return KeyPrefix + "evidence:" + hex.EncodeToString(hash[:])
}
