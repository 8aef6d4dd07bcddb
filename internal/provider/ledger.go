package provider

import (
	"strings"
	"sync"
	"time"
)

// Ledger is the ordered set of API keys with a rotating cursor and a
// per-key cool-down deadline. Each method is individually atomic; a
// controller's read-then-act sequence is not, so concurrent callers treat
// the cursor as a best-effort hint.
type Ledger struct {
	mu            sync.Mutex
	keys          []string
	cursor        int
	coolDownUntil []time.Time

	// now is injectable for testing. Defaults to time.Now.
	now func() time.Time
}

// KeyStatus is a point-in-time view of one credential. The key itself is
// masked.
type KeyStatus struct {
	Index        int       `json:"index"`
	Key          string    `json:"key"`
	Current      bool      `json:"current"`
	Usable       bool      `json:"usable"`
	CoolingUntil time.Time `json:"cooling_until,omitzero"`
}

// NewLedger creates a ledger over the given keys. At least one non-blank
// key is required.
func NewLedger(keys ...string) (*Ledger, error) {
	if len(keys) == 0 {
		return nil, ErrNoCredentials
	}
	for _, k := range keys {
		if strings.TrimSpace(k) == "" {
			return nil, ErrNoCredentials
		}
	}
	return &Ledger{
		keys:          append([]string(nil), keys...),
		coolDownUntil: make([]time.Time, len(keys)),
		now:           time.Now,
	}, nil
}

// Len returns the number of credentials.
func (l *Ledger) Len() int {
	return len(l.keys)
}

// Current returns the cursor and the credential it points to, read under
// one lock.
func (l *Ledger) Current() (int, string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cursor, l.keys[l.cursor]
}

// Cursor returns the index of the active credential.
func (l *Ledger) Cursor() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cursor
}

// IsUsable reports whether credential i is outside any cool-down window.
// Cool-downs expire lazily on read. Out-of-range indexes are never usable.
func (l *Ledger) IsUsable(i int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.usableLocked(i, l.now())
}

func (l *Ledger) usableLocked(i int, now time.Time) bool {
	if i < 0 || i >= len(l.keys) {
		return false
	}
	until := l.coolDownUntil[i]
	return until.IsZero() || !now.Before(until)
}

// Rotate advances the cursor by one, wrapping around, and returns the new
// cursor. It is the only way the cursor changes.
func (l *Ledger) Rotate() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cursor = (l.cursor + 1) % len(l.keys)
	return l.cursor
}

// MarkCooling makes credential i unusable for d from now.
func (l *Ledger) MarkCooling(i int, d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.keys) {
		return
	}
	l.coolDownUntil[i] = l.now().Add(d)
}

// UsableCount returns how many credentials are currently usable.
func (l *Ledger) UsableCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	n := 0
	for i := range l.keys {
		if l.usableLocked(i, now) {
			n++
		}
	}
	return n
}

// Snapshot returns the status of every credential.
func (l *Ledger) Snapshot() []KeyStatus {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	out := make([]KeyStatus, len(l.keys))
	for i, k := range l.keys {
		st := KeyStatus{
			Index:   i,
			Key:     maskKey(k),
			Current: i == l.cursor,
			Usable:  l.usableLocked(i, now),
		}
		if !st.Usable {
			st.CoolingUntil = l.coolDownUntil[i]
		}
		out[i] = st
	}
	return out
}

// maskKey keeps the last four characters of a credential.
func maskKey(k string) string {
	if len(k) <= 4 {
		return "****"
	}
	return "****" + k[len(k)-4:]
}
