// Package history stores a room's message log in a fixed-capacity ring,
// evicting the oldest entries once the cap is reached.
package history

import "github.com/campfire-chat/campfire/internal/domain"

const DefaultCap = 500

type Ring struct {
	buf   []domain.Message
	head  int // index of the oldest entry
	count int
}

func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	return &Ring{buf: make([]domain.Message, capacity)}
}

// Append adds a message, evicting the oldest entry when full.
func (r *Ring) Append(msg domain.Message) {
	if r.count < len(r.buf) {
		r.buf[(r.head+r.count)%len(r.buf)] = msg
		r.count++
		return
	}
	r.buf[r.head] = msg
	r.head = (r.head + 1) % len(r.buf)
}

// Recent returns the last n entries in arrival order. It never mutates
// storage; the returned slice is freshly allocated.
func (r *Ring) Recent(n int) []domain.Message {
	if n > r.count {
		n = r.count
	}
	if n <= 0 {
		return []domain.Message{}
	}
	out := make([]domain.Message, n)
	start := r.head + r.count - n
	for i := 0; i < n; i++ {
		out[i] = r.buf[(start+i)%len(r.buf)]
	}
	return out
}

// Len reports how many entries are currently stored.
func (r *Ring) Len() int {
	return r.count
}

// Cap reports the storage bound.
func (r *Ring) Cap() int {
	return len(r.buf)
}
