package scripts

import (
	"claybridge/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Rotator spins its entity around the Y axis.
type Rotator struct {
	engine.BaseScript
	Speed float32
}

func (r *Rotator) Defaults() { r.Speed = 90 }

func (r *Rotator) OnUpdate(deltaTime float32) {
	r.Transform().Rotate(rl.Vector3{Y: r.Speed * deltaTime})
}
