package registry

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ClipLoader fetches and decodes the stored audio for one sound into a PCM
// clip. Implementations typically pull the encoded object from blob storage
// and run it through the opus package.
type ClipLoader func(ctx context.Context, soundID string) ([]int16, error)

// Registry owns the per-sound decoded clip cache. The first play of a sound
// decodes it; later plays reuse the cached buffer for the process lifetime.
// Clips are immutable once stored. A failed decode leaves no entry behind,
// so the next play retries, and concurrent first plays of the same sound are
// collapsed into a single in-flight decode.
type Registry struct {
	load ClipLoader

	mu      sync.RWMutex
	entries map[string][]int16

	inflight singleflight.Group
}

func New(load ClipLoader) *Registry {
	return &Registry{
		load:    load,
		entries: make(map[string][]int16),
	}
}

// Clip returns the decoded PCM for soundID, decoding and caching it on
// first use.
func (r *Registry) Clip(ctx context.Context, soundID string) ([]int16, error) {
	r.mu.RLock()
	clip, ok := r.entries[soundID]
	r.mu.RUnlock()
	if ok {
		return clip, nil
	}

	// The load runs once for every caller collapsed onto it, so it must not
	// inherit the first caller's cancellation.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := r.inflight.Do(soundID, func() (any, error) {
		clip, err := r.load(loadCtx, soundID)
		if err != nil {
			return nil, fmt.Errorf("load clip %s: %w", soundID, err)
		}
		r.mu.Lock()
		r.entries[soundID] = clip
		r.mu.Unlock()
		return clip, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]int16), nil
}

// Invalidate drops the cached clip for soundID, forcing the next play to
// decode again. Used when a sound's audio is replaced or removed.
func (r *Registry) Invalidate(soundID string) {
	r.mu.Lock()
	delete(r.entries, soundID)
	r.mu.Unlock()
}

// Cached reports whether soundID currently has a decoded clip.
func (r *Registry) Cached(soundID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[soundID]
	return ok
}
