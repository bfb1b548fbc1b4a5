package health

import (
	"sync"
	"time"
)

// MessageTTL is how long a status message stays visible.
const MessageTTL = 5 * time.Second

type StatusKind string

const (
	StatusLoading StatusKind = "loading"
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

type Message struct {
	ID       uint64     `json:"id"`
	Kind     StatusKind `json:"kind"`
	Text     string     `json:"text"`
	PostedAt time.Time  `json:"posted_at"`
}

// Clock is the time source; tests replace it.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// StatusBoard keeps transient status messages, dropping them once they are
// older than the TTL.
type StatusBoard struct {
	mu       sync.Mutex
	clock    Clock
	ttl      time.Duration
	seq      uint64
	messages []Message
}

func NewStatusBoard(clock Clock, ttl time.Duration) *StatusBoard {
	if clock == nil {
		clock = realClock{}
	}
	if ttl <= 0 {
		ttl = MessageTTL
	}
	return &StatusBoard{clock: clock, ttl: ttl}
}

func (b *StatusBoard) Post(kind StatusKind, text string) Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	m := Message{ID: b.seq, Kind: kind, Text: text, PostedAt: b.clock.Now()}
	b.pruneLocked()
	b.messages = append(b.messages, m)
	return m
}

// Active returns the messages that have not expired, oldest first.
func (b *StatusBoard) Active() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pruneLocked()
	out := make([]Message, len(b.messages))
	copy(out, b.messages)
	return out
}

func (b *StatusBoard) pruneLocked() {
	now := b.clock.Now()
	kept := b.messages[:0]
	for _, m := range b.messages {
		if now.Sub(m.PostedAt) < b.ttl {
			kept = append(kept, m)
		}
	}
	b.messages = kept
}
