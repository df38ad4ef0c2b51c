package feed

import (
	"sync"
	"time"
)

// Current holds the most recent state produced by the parser so readers can
// serve it while the next parse runs.
type Current struct {
	mu        sync.RWMutex
	state     *State
	updatedAt time.Time
	revision  string
}

func NewCurrent() *Current {
	return &Current{}
}

func (c *Current) Set(state *State, revision string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
	c.revision = revision
	c.updatedAt = time.Now()
}

// Get returns the current state, or nil before the first parse completed.
// The returned value must not be modified.
func (c *Current) Get() *State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Current) UpdatedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updatedAt
}

// Revision is the document hash the current state was parsed from.
func (c *Current) Revision() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.revision
}
