package router

import "sync"

// ChatLocks serializes turns within a chat. Each chat ID maps to a
// refcounted mutex that exists only while some worker holds or waits for
// it, so the map never outgrows the number of chats with work in flight.
type ChatLocks struct {
	mu    sync.Mutex
	chats map[string]*chatLock
}

type chatLock struct {
	mu      sync.Mutex
	holders int // workers holding or queued on mu
}

// NewChatLocks returns an empty lock table.
func NewChatLocks() *ChatLocks {
	return &ChatLocks{chats: make(map[string]*chatLock)}
}

// Lock blocks until the calling worker owns chatID's turn.
func (c *ChatLocks) Lock(chatID string) {
	c.mu.Lock()
	cl, ok := c.chats[chatID]
	if !ok {
		cl = &chatLock{}
		c.chats[chatID] = cl
	}
	cl.holders++
	c.mu.Unlock()

	cl.mu.Lock()
}

// Unlock ends the current turn for chatID. The entry is dropped once no
// other worker is queued behind it. Unlocking an unknown chat is a no-op.
func (c *ChatLocks) Unlock(chatID string) {
	c.mu.Lock()
	cl, ok := c.chats[chatID]
	if !ok {
		c.mu.Unlock()
		return
	}
	cl.holders--
	if cl.holders == 0 {
		delete(c.chats, chatID)
	}
	c.mu.Unlock()

	cl.mu.Unlock()
}

// Busy reports whether a worker holds or waits for chatID. The eviction
// sweep keeps such sessions alive.
func (c *ChatLocks) Busy(chatID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.chats[chatID]
	return ok
}

// Len returns the number of chats with a turn in progress or queued.
func (c *ChatLocks) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.chats)
}
