package handler

import "sync"

// BoardTracker remembers which messages are active soundboard posts so the
// reaction handler can tell board reactions apart from ordinary ones. A
// guild keeps only its most recent board; posting a new one forgets the old.
type BoardTracker struct {
	mu       sync.RWMutex
	byGuild  map[string]string // guildID -> messageID
	messages map[string]string // messageID -> guildID
}

func NewBoardTracker() *BoardTracker {
	return &BoardTracker{
		byGuild:  make(map[string]string),
		messages: make(map[string]string),
	}
}

// Track registers messageID as the board for guildID, replacing any
// previous board message.
func (b *BoardTracker) Track(guildID, messageID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if old, ok := b.byGuild[guildID]; ok {
		delete(b.messages, old)
	}
	b.byGuild[guildID] = messageID
	b.messages[messageID] = guildID
}

// IsBoard reports whether messageID is a tracked board message.
func (b *BoardTracker) IsBoard(messageID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, ok := b.messages[messageID]
	return ok
}
