package tasks

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/lysyi3m/liveblog-comb/app/feed"
)

// Memo remembers parse results by document revision so an unchanged
// document is not parsed again within one scheduler interval. Entries expire
// after ttl so draft timestamps keep following the clock.
type Memo struct {
	cache *expirable.LRU[string, *feed.State]
}

func NewMemo(size int, ttl time.Duration) (*Memo, error) {
	if size <= 0 {
		return nil, fmt.Errorf("failed to create parse memo: size must be positive, got %d", size)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("failed to create parse memo: ttl must be positive, got %s", ttl)
	}
	return &Memo{cache: expirable.NewLRU[string, *feed.State](size, nil, ttl)}, nil
}

// Revision identifies a document by its content hash.
func Revision(document []byte) string {
	hash := sha256.Sum256(document)
	return hex.EncodeToString(hash[:])
}

func (m *Memo) Get(revision string) (*feed.State, bool) {
	return m.cache.Get(revision)
}

// Add stores a successful parse. Fallback states are not remembered so the
// revision is parsed again next time.
func (m *Memo) Add(revision string, state *feed.State) {
	if state == nil || state.Status == feed.StatusError {
		return
	}
	m.cache.Add(revision, state)
}

func (m *Memo) Purge() {
	m.cache.Purge()
}

func (m *Memo) Len() int {
	return m.cache.Len()
}
