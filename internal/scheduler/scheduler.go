// Package scheduler runs deferred script work on the engine thread.
package scheduler

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Continuation is a unit of deferred work. A returned error or a panic is
// reported as a ContinuationFault; it never stops the drain.
type Continuation func() error

// Func adapts fn to a Continuation.
func Func(fn func()) Continuation {
	return func() error {
		fn()
		return nil
	}
}

// ContinuationFault wraps a failure raised while running a continuation.
type ContinuationFault struct {
	Err   error
	Stack string
}

func (f *ContinuationFault) Error() string { return fmt.Sprintf("continuation fault: %v", f.Err) }
func (f *ContinuationFault) Unwrap() error { return f.Err }

// Scheduler is a multi-producer, single-consumer FIFO of continuations,
// drained once per frame on the engine thread.
type Scheduler struct {
	mu      sync.Mutex
	queue   []Continuation
	epoch   uint64
	pollers []func() bool

	engineTID atomic.Int64
	faults    atomic.Int64
	log       *zap.Logger
}

// New returns a scheduler with no engine thread installed.
func New(log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scheduler{log: log.Named("scheduler")}
	s.engineTID.Store(-1)
	return s
}

// Install records the calling OS thread as the engine thread. Go callers must
// hold runtime.LockOSThread for the identity to stay meaningful.
func (s *Scheduler) Install() {
	tid := currentThreadID()
	s.engineTID.Store(tid)
	s.log.Debug("engine thread installed", zap.Int64("tid", tid))
}

// EnsureInstalledHere installs the calling thread unless it is already the
// engine thread.
func (s *Scheduler) EnsureInstalledHere() {
	if !s.OnEngineThread() {
		s.Install()
	}
}

// OnEngineThread reports whether the caller runs on the installed engine
// thread.
func (s *Scheduler) OnEngineThread() bool {
	tid := s.engineTID.Load()
	return tid >= 0 && tid == currentThreadID()
}

// Post enqueues c for the next Flush. It never runs c inline.
func (s *Scheduler) Post(c Continuation) {
	if c == nil {
		return
	}
	s.mu.Lock()
	s.queue = append(s.queue, c)
	s.mu.Unlock()
}

// Send runs c immediately on the engine thread, and posts it from any other
// thread.
func (s *Scheduler) Send(c Continuation) {
	if c == nil {
		return
	}
	if s.OnEngineThread() {
		s.run(c)
		return
	}
	s.Post(c)
}

// Flush runs the continuations queued when it was called, in order.
// Continuations posted while flushing run on the next Flush. It returns the
// number of continuations run.
func (s *Scheduler) Flush() int {
	s.mu.Lock()
	batch := s.queue
	s.queue = nil
	epoch := s.epoch
	s.mu.Unlock()

	ran := 0
	for i, c := range batch {
		if s.cleared(epoch) {
			s.log.Debug("flush interrupted by clear", zap.Int("dropped", len(batch)-i))
			break
		}
		s.run(c)
		ran++
	}
	s.poll()
	return ran
}

// EveryFrame calls p at the end of every Flush until p returns false. Pollers
// are not continuations: Clear leaves them in place and Flush does not count
// them.
func (s *Scheduler) EveryFrame(p func() bool) {
	if p == nil {
		return
	}
	s.mu.Lock()
	s.pollers = append(s.pollers, p)
	s.mu.Unlock()
}

// Pollers returns the number of registered pollers.
func (s *Scheduler) Pollers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pollers)
}

func (s *Scheduler) poll() {
	s.mu.Lock()
	current := s.pollers
	s.pollers = nil
	s.mu.Unlock()
	if len(current) == 0 {
		return
	}

	kept := current[:0]
	for _, p := range current {
		// a poller that panics keeps its place
		keep := true
		s.run(func() error {
			keep = p()
			return nil
		})
		if keep {
			kept = append(kept, p)
		}
	}

	s.mu.Lock()
	s.pollers = append(kept, s.pollers...)
	s.mu.Unlock()
}

// Clear drops every pending continuation, including the rest of a flush in
// progress.
func (s *Scheduler) Clear() {
	s.mu.Lock()
	n := len(s.queue)
	s.queue = nil
	s.epoch++
	s.mu.Unlock()
	if n > 0 {
		s.log.Debug("continuations cleared", zap.Int("dropped", n))
	}
}

// Pending returns the number of queued continuations.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Faults returns how many continuations have failed.
func (s *Scheduler) Faults() int64 { return s.faults.Load() }

// After posts c once d has elapsed. The timer runs off the engine thread; c
// itself still runs inside a Flush.
func (s *Scheduler) After(d time.Duration, c Continuation) *time.Timer {
	return time.AfterFunc(d, func() { s.Post(c) })
}

// AfterFrames posts c so that it runs n flushes from now. n <= 1 is the next
// flush.
func (s *Scheduler) AfterFrames(n int, c Continuation) {
	if n <= 1 {
		s.Post(c)
		return
	}
	s.Post(func() error {
		s.AfterFrames(n-1, c)
		return nil
	})
}

func (s *Scheduler) cleared(epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch != epoch
}

func (s *Scheduler) run(c Continuation) {
	err := protect(c)
	if err == nil {
		return
	}
	s.faults.Add(1)
	var fault *ContinuationFault
	if errors.As(err, &fault) && fault.Stack != "" {
		s.log.Error("continuation failed", zap.Error(fault.Err), zap.String("stack", fault.Stack))
		return
	}
	s.log.Error("continuation failed", zap.Error(err))
}

func protect(c Continuation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ContinuationFault{Err: fmt.Errorf("panic: %v", r), Stack: zap.Stack("").String}
		}
	}()
	if err := c(); err != nil {
		return &ContinuationFault{Err: err}
	}
	return nil
}
