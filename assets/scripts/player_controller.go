package scripts

import (
	"claybridge/internal/engine"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// PlayerController provides first-person controls with WASD movement and
// mouse look.
type PlayerController struct {
	engine.BaseScript
	Yaw          float32
	Pitch        float32
	MoveSpeed    float32
	LookSpeed    float32
	Gravity      float32
	JumpStrength float32
	EyeHeight    float32
	// runtime state, not serialized
	velocityY float32
	grounded  bool
}

func (p *PlayerController) Defaults() {
	p.Yaw = -135
	p.Pitch = -30
	p.MoveSpeed = 8
	p.LookSpeed = 0.1
	p.Gravity = 20
	p.JumpStrength = 8
	p.EyeHeight = 1.6
}

func (p *PlayerController) OnCreate() {
	p.Input().SetMouseMode(engine.MouseLocked)
}

func (p *PlayerController) OnUpdate(deltaTime float32) {
	in := p.Input()

	// Mouse look
	mouseDelta := in.MouseDelta()
	p.Yaw += mouseDelta.X * p.LookSpeed
	p.Pitch -= mouseDelta.Y * p.LookSpeed
	p.Pitch = rl.Clamp(p.Pitch, -89, 89)
	p.Transform().SetRotation(rl.Vector3{X: p.Pitch, Y: p.Yaw})

	forward, right := p.directions()

	var move rl.Vector3
	if in.KeyHeld(engine.KeyW) {
		move = rl.Vector3Add(move, forward)
	}
	if in.KeyHeld(engine.KeyS) {
		move = rl.Vector3Subtract(move, forward)
	}
	if in.KeyHeld(engine.KeyA) {
		move = rl.Vector3Add(move, right)
	}
	if in.KeyHeld(engine.KeyD) {
		move = rl.Vector3Subtract(move, right)
	}
	// Normalize diagonal movement
	if rl.Vector3Length(move) > 0 {
		move = rl.Vector3Scale(rl.Vector3Normalize(move), p.MoveSpeed)
	}

	if in.KeyDown(engine.KeySpace) && p.grounded {
		p.velocityY = p.JumpStrength
		p.grounded = false
	}
	if !p.grounded {
		p.velocityY -= p.Gravity * deltaTime
	}
	move.Y = p.velocityY

	pos := rl.Vector3Add(p.Transform().Position(), rl.Vector3Scale(move, deltaTime))

	// Simple ground check - floor is at Y=0
	if pos.Y-p.EyeHeight <= 0 {
		pos.Y = p.EyeHeight
		p.velocityY = 0
		p.grounded = true
	} else {
		p.grounded = false
	}
	p.Transform().SetPosition(pos)
}

// directions returns the horizontal forward and right vectors for the
// current yaw.
func (p *PlayerController) directions() (forward, right rl.Vector3) {
	yawRad := float64(p.Yaw) * math.Pi / 180
	forward = rl.Vector3{X: float32(math.Cos(yawRad)), Z: float32(math.Sin(yawRad))}
	right = rl.Vector3{X: float32(math.Sin(yawRad)), Z: float32(-math.Cos(yawRad))}
	return
}

// LookDirection is the unit vector the player is looking along.
func (p *PlayerController) LookDirection() rl.Vector3 {
	yawRad := float64(p.Yaw) * math.Pi / 180
	pitchRad := float64(p.Pitch) * math.Pi / 180
	return rl.Vector3{
		X: float32(math.Cos(yawRad) * math.Cos(pitchRad)),
		Y: float32(math.Sin(pitchRad)),
		Z: float32(math.Sin(yawRad) * math.Cos(pitchRad)),
	}
}

func (p *PlayerController) Grounded() bool { return p.grounded }
