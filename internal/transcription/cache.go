package transcription

import (
	"context"
	"sync"

	"starreview/internal/services"
	"starreview/internal/services/whisperx"
)

// ModelLoader provisions the local speech model.
type ModelLoader func(ctx context.Context) (whisperx.Model, error)

// ModelCache holds the local model for the lifetime of its engine. The first
// caller loads it while concurrent callers wait on the same lock; a failed
// load is remembered until Reset.
type ModelCache struct {
	load ModelLoader

	mu     sync.Mutex
	model  whisperx.Model
	err    error
	loaded bool
	loads  int
}

// NewModelCache wraps loader in a single-flight cache.
func NewModelCache(loader ModelLoader) *ModelCache {
	return &ModelCache{load: loader}
}

// Get returns the cached model, loading it on first use.
func (c *ModelCache) Get(ctx context.Context) (whisperx.Model, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.model, c.err
	}
	c.loads++
	model, err := c.load(ctx)
	if err != nil {
		c.err = services.Wrap(services.ErrModelUnavailable, "transcription", "load model", "", err)
	} else {
		c.model = model
	}
	c.loaded = true
	return c.model, c.err
}

// Loads reports how many times the loader has run.
func (c *ModelCache) Loads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loads
}

// Reset forgets the cached model or failure so the next Get reloads.
func (c *ModelCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = whisperx.Model{}
	c.err = nil
	c.loaded = false
}
