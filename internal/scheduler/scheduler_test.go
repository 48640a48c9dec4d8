package scheduler

import (
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFlushRunsInPostOrder(t *testing.T) {
	s := New(nil)
	var got []int
	for i := 0; i < 5; i++ {
		s.Post(Func(func() { got = append(got, i) }))
	}
	assert.Equal(t, 5, s.Pending())
	assert.Equal(t, 5, s.Flush())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
	assert.Zero(t, s.Pending())
}

func TestSelfRepostingContinuationRunsOncePerFlush(t *testing.T) {
	s := New(nil)
	counter := 0
	var tick Continuation
	tick = func() error {
		counter++
		s.Post(tick)
		return nil
	}
	s.Post(tick)

	for frame := 1; frame <= 4; frame++ {
		assert.Equal(t, 1, s.Flush())
		assert.Equal(t, frame, counter)
	}
}

func TestClearThenFlushRunsNothing(t *testing.T) {
	s := New(nil)
	ran := 0
	for i := 0; i < 3; i++ {
		s.Post(Func(func() { ran++ }))
	}
	s.Clear()
	assert.Zero(t, s.Flush())
	assert.Zero(t, ran)
}

func TestPollersSurviveClear(t *testing.T) {
	s := New(nil)
	var got []string
	polls := 0
	s.EveryFrame(func() bool {
		polls++
		got = append(got, "poll")
		return polls < 3
	})
	s.EveryFrame(func() bool { panic("broken poller") })
	s.Post(Func(func() { got = append(got, "work") }))

	assert.Equal(t, 1, s.Flush(), "pollers are not counted")
	assert.Equal(t, []string{"work", "poll"}, got)

	s.Clear()
	assert.Zero(t, s.Flush())
	assert.Equal(t, 2, polls)
	assert.Equal(t, 2, s.Pollers())

	s.Flush()
	assert.Equal(t, 3, polls)
	assert.Equal(t, 1, s.Pollers(), "a poller returning false is dropped")
	assert.Equal(t, int64(3), s.Faults())
}

func TestClearDuringFlushDropsTheRest(t *testing.T) {
	s := New(nil)
	var got []string
	s.Post(Func(func() { got = append(got, "a") }))
	s.Post(Func(func() { got = append(got, "b"); s.Clear() }))
	s.Post(Func(func() { got = append(got, "c") }))

	assert.Equal(t, 2, s.Flush())
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Zero(t, s.Flush())
}

func TestFaultsAreIsolated(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	s := New(zap.New(core))

	ran := false
	s.Post(func() error { return errors.New("boom") })
	s.Post(Func(func() { panic("kaboom") }))
	s.Post(Func(func() { ran = true }))

	assert.Equal(t, 3, s.Flush())
	assert.True(t, ran)
	assert.Equal(t, int64(2), s.Faults())

	entries := logs.FilterMessage("continuation failed").All()
	require.Len(t, entries, 2)
	assert.Contains(t, entries[1].ContextMap()["stack"], "scheduler")
}

func TestSendRunsInlineOnEngineThread(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	s := New(nil)
	s.Install()
	if !s.OnEngineThread() {
		t.Skip("no thread identity on this platform")
	}

	ran := false
	s.Send(Func(func() { ran = true }))
	assert.True(t, ran)
	assert.Zero(t, s.Pending())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Send(Func(func() {}))
	}()
	wg.Wait()
	assert.Equal(t, 1, s.Pending())

	s.EnsureInstalledHere()
	assert.True(t, s.OnEngineThread())
}

func TestSendWithoutEngineThreadPosts(t *testing.T) {
	s := New(nil)
	ran := false
	s.Send(Func(func() { ran = true }))
	assert.False(t, ran)
	assert.Equal(t, 1, s.Flush())
	assert.True(t, ran)
}

func TestAfterResumesInsideFlush(t *testing.T) {
	s := New(nil)
	done := false
	s.After(time.Millisecond, Func(func() { done = true }))

	deadline := time.Now().Add(2 * time.Second)
	for !done && time.Now().Before(deadline) {
		s.Flush()
		time.Sleep(time.Millisecond)
	}
	assert.True(t, done)
}

func TestAfterFrames(t *testing.T) {
	s := New(nil)
	done := false
	s.AfterFrames(3, Func(func() { done = true }))

	s.Flush()
	s.Flush()
	assert.False(t, done)
	s.Flush()
	assert.True(t, done)
}

func TestConcurrentPost(t *testing.T) {
	s := New(nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Post(Func(func() {}))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, s.Flush())
}
