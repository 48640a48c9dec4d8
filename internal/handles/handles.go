// Package handles hands out opaque integer tokens for Go values that native
// code holds on to.
package handles

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrInvalidToken is returned for the zero token.
	ErrInvalidToken = errors.New("invalid token")
	// ErrStaleToken is returned for a token whose value was removed.
	ErrStaleToken = errors.New("stale token")
)

// Token is an opaque handle: slot generation in the high 32 bits, slot
// index plus one in the low 32 bits. Zero is never issued.
type Token uint64

func makeToken(index int, gen uint32) Token {
	return Token(uint64(gen)<<32 | uint64(index+1))
}

func (t Token) index() int  { return int(uint32(t)) - 1 }
func (t Token) gen() uint32 { return uint32(t >> 32) }
func (t Token) String() string {
	return fmt.Sprintf("%d:%d", t.index(), t.gen())
}

type slot[T any] struct {
	gen   uint32
	live  bool
	value T
}

// Registry is a generational arena of T. Removed slots are reused with a
// bumped generation, so old tokens for a reused slot stay stale.
type Registry[T any] struct {
	mu    sync.RWMutex
	slots []slot[T]
	free  []int
	live  int
}

// New returns an empty registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{}
}

// Insert stores v and returns its token.
func (r *Registry[T]) Insert(v T) Token {
	r.mu.Lock()
	defer r.mu.Unlock()

	var i int
	if n := len(r.free); n > 0 {
		i = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		i = len(r.slots)
		r.slots = append(r.slots, slot[T]{gen: 1})
	}
	s := &r.slots[i]
	s.live = true
	s.value = v
	r.live++
	return makeToken(i, s.gen)
}

// Get returns the value for tok.
func (r *Registry[T]) Get(tok Token) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, err := r.lookup(tok)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.value, nil
}

// Remove releases tok and returns its value. Removing an unknown or already
// removed token is a no-op that reports false.
func (r *Registry[T]) Remove(tok Token) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	s, err := r.lookup(tok)
	if err != nil {
		return zero, false
	}
	v := s.value
	r.release(tok.index())
	return v, true
}

// Drain removes every live value and returns them in slot order.
func (r *Registry[T]) Drain() []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]T, 0, r.live)
	for i := range r.slots {
		if r.slots[i].live {
			out = append(out, r.slots[i].value)
			r.release(i)
		}
	}
	return out
}

// Len returns the number of live values.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.live
}

// Range calls fn for every live value in slot order until fn returns false.
// fn must not call back into r.
func (r *Registry[T]) Range(fn func(Token, T) bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i, s := range r.slots {
		if s.live && !fn(makeToken(i, s.gen), s.value) {
			return
		}
	}
}

func (r *Registry[T]) lookup(tok Token) (*slot[T], error) {
	if tok == 0 {
		return nil, ErrInvalidToken
	}
	i := tok.index()
	if i < 0 || i >= len(r.slots) {
		return nil, fmt.Errorf("token %s: %w", tok, ErrStaleToken)
	}
	s := &r.slots[i]
	if !s.live || s.gen != tok.gen() {
		return nil, fmt.Errorf("token %s: %w", tok, ErrStaleToken)
	}
	return s, nil
}

func (r *Registry[T]) release(i int) {
	var zero T
	s := &r.slots[i]
	s.live = false
	s.value = zero
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	r.free = append(r.free, i)
	r.live--
}
