package extractor

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"sync"
)

type profileCache struct {
	mu sync.RWMutex
	m  map[string]Profile
}

func newProfileCache() *profileCache {
	return &profileCache{m: make(map[string]Profile)}
}

func (c *profileCache) get(key string) (Profile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.m[key]
	return p, ok
}

func (c *profileCache) put(key string, p Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = p
}

// Fingerprint hashes the sampled row content so identical samples map to the
// same cached profile.
func Fingerprint(rows []Row, sampleCap int) string {
	if sampleCap <= 0 {
		sampleCap = defaultSampleCap
	}
	if len(rows) > sampleCap {
		rows = rows[:sampleCap]
	}
	h := sha1.New()
	for _, row := range rows {
		h.Write([]byte(strings.Join(row.Texts, "\x1f")))
		h.Write([]byte{'\x1e'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
