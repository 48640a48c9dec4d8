package components

import (
	"claybridge/internal/engine"
)

// ButtonState is the state of a button as of the last frame.
type ButtonState int

const (
	ButtonNormal ButtonState = iota
	ButtonHovered
	ButtonPressed
)

// Button is a native UI button. Once attached it polls native at the end of
// every Flush and raises its events on the engine thread. Clearing the
// scheduler does not stop the polling.
type Button struct {
	facade

	OnClick      engine.Event
	OnHoverEnter engine.Event
	OnHoverExit  engine.Event
	OnPress      engine.Event

	state   ButtonState
	stopped bool
}

func (*Button) ComponentName() string { return "Button" }

func (b *Button) attach(e engine.Entity) {
	b.facade.attach(e)
	e.Env().Sched.EveryFrame(b.pump)
}

// State returns the state observed by the last poll.
func (b *Button) State() ButtonState { return b.state }

func (b *Button) Hovered() bool { return b.calls().Button.IsHovered(b.id()) }

func (b *Button) Pressed() bool { return b.calls().Button.IsPressed(b.id()) }

// Clicked reports whether the button was clicked this frame.
func (b *Button) Clicked() bool { return b.calls().Button.WasClicked(b.id()) }

// Close stops polling. The button is closed when it is removed, its entity
// is destroyed or the script module reloads.
func (b *Button) Close() { b.stopped = true }

func (b *Button) pump() bool {
	if b.stopped {
		return false
	}
	b.poll()
	return true
}

func (b *Button) poll() {
	hovered, pressed := b.Hovered(), b.Pressed()
	was := b.state

	switch {
	case pressed:
		b.state = ButtonPressed
	case hovered:
		b.state = ButtonHovered
	default:
		b.state = ButtonNormal
	}

	if hovered && was == ButtonNormal {
		b.OnHoverEnter.Invoke()
	}
	if !hovered && was != ButtonNormal {
		b.OnHoverExit.Invoke()
	}
	if pressed && was != ButtonPressed {
		b.OnPress.Invoke()
	}
	if b.Clicked() {
		b.OnClick.Invoke()
	}
}
