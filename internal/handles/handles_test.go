package handles

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertGetRemove(t *testing.T) {
	r := New[string]()
	a := r.Insert("a")
	b := r.Insert("b")
	assert.NotZero(t, a)
	assert.NotEqual(t, a, b)

	v, err := r.Get(b)
	require.NoError(t, err)
	assert.Equal(t, "b", v)
	assert.Equal(t, 2, r.Len())

	v, ok := r.Remove(a)
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	_, err = r.Get(a)
	assert.ErrorIs(t, err, ErrStaleToken)

	_, ok = r.Remove(a)
	assert.False(t, ok, "second remove is a no-op")
	assert.Equal(t, 1, r.Len())
}

func TestReusedSlotKeepsOldTokenStale(t *testing.T) {
	r := New[int]()
	old := r.Insert(1)
	r.Remove(old)

	fresh := r.Insert(2)
	assert.Equal(t, old.index(), fresh.index())
	assert.NotEqual(t, old, fresh)

	_, err := r.Get(old)
	assert.ErrorIs(t, err, ErrStaleToken)
	_, ok := r.Remove(old)
	assert.False(t, ok)

	v, err := r.Get(fresh)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestZeroAndForeignTokens(t *testing.T) {
	r := New[int]()
	_, err := r.Get(0)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = r.Get(makeToken(40, 1))
	assert.ErrorIs(t, err, ErrStaleToken)
}

func TestDrainAndRange(t *testing.T) {
	r := New[int]()
	for i := 0; i < 4; i++ {
		r.Insert(i)
	}
	second := makeToken(1, 1)
	r.Remove(second)

	var seen []int
	r.Range(func(_ Token, v int) bool {
		seen = append(seen, v)
		return true
	})
	assert.Equal(t, []int{0, 2, 3}, seen)

	assert.Equal(t, []int{0, 2, 3}, r.Drain())
	assert.Zero(t, r.Len())
}

func TestConcurrentLookupAndRemove(t *testing.T) {
	r := New[int]()
	toks := make([]Token, 64)
	for i := range toks {
		toks[i] = r.Insert(i)
	}

	var wg sync.WaitGroup
	for i := range toks {
		wg.Add(2)
		go func(tok Token) {
			defer wg.Done()
			r.Remove(tok)
		}(toks[i])
		go func(tok Token) {
			defer wg.Done()
			_, _ = r.Get(tok)
		}(toks[i])
	}
	wg.Wait()
	assert.Zero(t, r.Len())
}
