// Package cache stores fetched page bodies and expensive extraction results.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

const keyPrefix = "groundex:v1:"

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey generates a cache key from a URL
func CacheKey(url string) string {
	return keyPrefix + "page:" + digest(url)
}

// ExtractionKey generates a cache key for the result of running an extractor over text
func ExtractionKey(extractor, text string) string {
	return keyPrefix + extractor + ":" + digest(text)
}

func digest(s string) string {
	hash := sha256.Sum256([]byte(s))
	return hex.EncodeToString(hash[:])
}
