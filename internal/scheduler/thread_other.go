//go:build !linux && !windows

package scheduler

// No portable thread id: nothing counts as the engine thread, so Send always
// posts.
func currentThreadID() int64 { return -2 }
