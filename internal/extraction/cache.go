package extraction

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"shipdesk/internal/payload"
	"shipdesk/internal/port"
)

// CachingExtractor remembers successful payloads for identical uploads so a
// re-submitted document set does not hit the extraction service again.
// Failures, including "no data", are never cached.
type CachingExtractor struct {
	next  port.Extractor
	store *gocache.Cache
}

// NewCachingExtractor wraps next with a TTL cache.
func NewCachingExtractor(next port.Extractor, ttl time.Duration) *CachingExtractor {
	return &CachingExtractor{
		next:  next,
		store: gocache.New(ttl, 2*ttl),
	}
}

func (c *CachingExtractor) Extract(ctx context.Context, files []port.UploadFile) (payload.Payload, error) {
	key := fingerprint(files)
	if v, ok := c.store.Get(key); ok {
		log.Printf("extraction.CachingExtractor: cache hit for %d file(s)", len(files))
		return v.(payload.Payload), nil
	}

	out, err := c.next.Extract(ctx, files)
	if err != nil {
		return nil, err
	}
	c.store.Set(key, out, gocache.DefaultExpiration)
	return out, nil
}

// ItemCount returns the number of cached payloads.
func (c *CachingExtractor) ItemCount() int {
	return c.store.ItemCount()
}

// fingerprint hashes the file set independently of upload order.
func fingerprint(files []port.UploadFile) string {
	sums := make([]string, 0, len(files))
	for _, f := range files {
		h := sha256.New()
		h.Write([]byte(f.Name))
		h.Write([]byte{0})
		h.Write(f.Content)
		sums = append(sums, hex.EncodeToString(h.Sum(nil)))
	}
	sort.Strings(sums)

	h := sha256.New()
	for _, s := range sums {
		h.Write([]byte(s))
	}
	return hex.EncodeToString(h.Sum(nil))
}
