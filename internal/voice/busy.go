package voice

import "sync"

// Busy is the per-guild playout guard: at most one playout session may run
// per voice destination, and periodic work (like the idle-channel check)
// consults it to stay out of the way while audio is playing.
type Busy struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func NewBusy() *Busy {
	return &Busy{active: make(map[string]struct{})}
}

// TryAcquire claims the guild for a playout. It reports false if a playout
// is already running there.
func (b *Busy) TryAcquire(guildID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, taken := b.active[guildID]; taken {
		return false
	}
	b.active[guildID] = struct{}{}
	return true
}

// Release frees the guild. Releasing an unclaimed guild is a no-op.
func (b *Busy) Release(guildID string) {
	b.mu.Lock()
	delete(b.active, guildID)
	b.mu.Unlock()
}

// Active reports whether a playout is running in the guild.
func (b *Busy) Active(guildID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, taken := b.active[guildID]
	return taken
}
