package engine

import "slices"

// ListenerID identifies a listener added to an Event, for removal.
type ListenerID int

// Event is a multicast event. Listeners run in the order they were added.
// Events belong to the engine thread.
type Event struct {
	listeners []listener[func()]
	next      ListenerID
}

type listener[F any] struct {
	id ListenerID
	fn F
}

// AddListener adds a callback to be invoked when the event fires.
func (e *Event) AddListener(callback func()) ListenerID {
	if callback == nil {
		return 0
	}
	e.next++
	e.listeners = append(e.listeners, listener[func()]{id: e.next, fn: callback})
	return e.next
}

// RemoveListener removes the listener added under id.
func (e *Event) RemoveListener(id ListenerID) bool {
	for i, l := range e.listeners {
		if l.id == id {
			e.listeners = slices.Delete(slices.Clone(e.listeners), i, i+1)
			return true
		}
	}
	return false
}

// RemoveAllListeners clears all listeners
func (e *Event) RemoveAllListeners() {
	e.listeners = nil
}

// Invoke calls all registered listeners. Changes made by a listener take
// effect from the next Invoke on.
func (e *Event) Invoke() {
	for _, l := range e.listeners {
		l.fn()
	}
}

// ListenerCount returns the number of registered listeners.
func (e *Event) ListenerCount() int {
	return len(e.listeners)
}

// EventWithArg is an Event whose listeners take one argument.
type EventWithArg[T any] struct {
	listeners []listener[func(T)]
	next      ListenerID
}

func (e *EventWithArg[T]) AddListener(callback func(T)) ListenerID {
	if callback == nil {
		return 0
	}
	e.next++
	e.listeners = append(e.listeners, listener[func(T)]{id: e.next, fn: callback})
	return e.next
}

func (e *EventWithArg[T]) RemoveListener(id ListenerID) bool {
	for i, l := range e.listeners {
		if l.id == id {
			e.listeners = slices.Delete(slices.Clone(e.listeners), i, i+1)
			return true
		}
	}
	return false
}

func (e *EventWithArg[T]) RemoveAllListeners() {
	e.listeners = nil
}

func (e *EventWithArg[T]) Invoke(arg T) {
	for _, l := range e.listeners {
		l.fn(arg)
	}
}

func (e *EventWithArg[T]) ListenerCount() int {
	return len(e.listeners)
}
