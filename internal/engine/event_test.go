package engine

import "testing"

func TestEventInvokeOrder(t *testing.T) {
	var e Event
	var order []int
	e.AddListener(func() { order = append(order, 1) })
	e.AddListener(func() { order = append(order, 2) })

	e.Invoke()

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("Expected listeners in order [1 2], got %v", order)
	}
}

func TestEventRemoveListener(t *testing.T) {
	var e Event
	calls := 0
	id := e.AddListener(func() { calls++ })

	if !e.RemoveListener(id) {
		t.Fatal("RemoveListener should report the listener was found")
	}
	if e.RemoveListener(id) {
		t.Error("Removing twice should report false")
	}

	e.Invoke()
	if calls != 0 {
		t.Errorf("Removed listener was called %d times", calls)
	}
}

func TestEventRemoveDuringInvoke(t *testing.T) {
	var e Event
	var second ListenerID
	calls := 0
	e.AddListener(func() { e.RemoveListener(second) })
	second = e.AddListener(func() { calls++ })

	e.Invoke()
	if calls != 1 {
		t.Errorf("Listener removed mid-invoke should still run this time, got %d calls", calls)
	}

	e.Invoke()
	if calls != 1 {
		t.Errorf("Listener should not run after removal, got %d calls", calls)
	}
}

func TestEventNilListener(t *testing.T) {
	var e Event
	if id := e.AddListener(nil); id != 0 {
		t.Errorf("Expected id 0 for nil listener, got %d", id)
	}
	if e.ListenerCount() != 0 {
		t.Errorf("Expected 0 listeners, got %d", e.ListenerCount())
	}
}

func TestEventWithArg(t *testing.T) {
	var e EventWithArg[bool]
	var got []bool
	e.AddListener(func(ok bool) { got = append(got, ok) })
	e.Invoke(true)
	e.Invoke(false)

	if len(got) != 2 || !got[0] || got[1] {
		t.Errorf("Expected [true false], got %v", got)
	}

	e.RemoveAllListeners()
	if e.ListenerCount() != 0 {
		t.Errorf("Expected 0 listeners after RemoveAllListeners, got %d", e.ListenerCount())
	}
}
