package engine

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Key codes follow the native (GLFW) numbering.
type Key int32

const (
	KeySpace  Key = 32
	KeyA      Key = 65
	KeyD      Key = 68
	KeyE      Key = 69
	KeyF      Key = 70
	KeyQ      Key = 81
	KeyR      Key = 82
	KeyS      Key = 83
	KeyW      Key = 87
	KeyEscape Key = 256
	KeyEnter  Key = 257
	KeyTab    Key = 258
	KeyRight  Key = 262
	KeyLeft   Key = 263
	KeyDown   Key = 264
	KeyUp     Key = 265
	KeyShift  Key = 340
	KeyCtrl   Key = 341
)

type MouseButton int32

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
)

type MouseMode int32

const (
	MouseNormal MouseMode = iota
	MouseHidden
	MouseLocked
)

// Input reads native input state.
type Input struct {
	env *Env
}

// KeyHeld reports whether key is down this frame.
func (in Input) KeyHeld(key Key) bool {
	return in.env != nil && in.env.Calls.Input.Fn.IsKeyHeld(int32(key)) != 0
}

// KeyDown reports whether key went down this frame.
func (in Input) KeyDown(key Key) bool {
	return in.env != nil && in.env.Calls.Input.Fn.IsKeyDown(int32(key)) != 0
}

func (in Input) MouseDown(b MouseButton) bool {
	return in.env != nil && in.env.Calls.Input.Fn.IsMouseDown(int32(b)) != 0
}

// MouseDelta is the cursor movement since the previous frame.
func (in Input) MouseDelta() rl.Vector2 {
	var d rl.Vector2
	if in.env != nil {
		in.env.Calls.Input.Fn.GetMouseDelta(&d.X, &d.Y)
	}
	return d
}

func (in Input) SetMouseMode(m MouseMode) {
	if in.env != nil {
		in.env.Calls.Input.Fn.SetMouseMode(int32(m))
	}
}
