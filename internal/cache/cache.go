// Package cache stores JSON values with a TTL. It backs the resource-search
// cache; a miss is never an error.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"
)

type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Key builds a namespaced key. Free-form parts (search queries) are hashed so
// keys stay short and safe for redis-cli.
func Key(namespace string, parts ...string) string {
	h := sha1.New()
	for _, p := range parts {
		h.Write([]byte(strings.ToLower(strings.TrimSpace(p))))
		h.Write([]byte{0})
	}
	return namespace + ":" + hex.EncodeToString(h.Sum(nil))[:16]
}
