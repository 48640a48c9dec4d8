package scripts

import (
	"claybridge/internal/components"
	"claybridge/internal/engine"
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Shooter fires physics spheres along the entity's forward axis while the
// left mouse button is held.
type Shooter struct {
	engine.BaseScript
	Cooldown    float32
	ShotSpeed   float32
	Lifetime    float32
	cooldown    float32
	shotCounter int
}

func (s *Shooter) Defaults() {
	s.Cooldown = 0.2
	s.ShotSpeed = 30
	s.Lifetime = 3
}

func (s *Shooter) OnUpdate(deltaTime float32) {
	s.cooldown -= deltaTime
	if s.Input().MouseDown(engine.MouseLeft) && s.cooldown <= 0 {
		s.Shoot()
		s.cooldown = s.Cooldown
	}
}

func (s *Shooter) Shoot() {
	env := s.Entity().Env()
	s.shotCounter++

	shot, ok := env.Create(fmt.Sprintf("Shot_%d", s.shotCounter))
	if !ok {
		s.Log("Shooter: native refused to create a shot")
		return
	}

	forward := s.Transform().Forward()
	shot.Transform().SetPosition(rl.Vector3Add(s.Transform().Position(), rl.Vector3Scale(forward, 3)))
	shot.Transform().SetScale(rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5})

	if rb := components.Add[components.RigidBody](shot); rb != nil {
		rb.SetLinearVelocity(rl.Vector3Scale(forward, s.ShotSpeed))
	}

	s.After(time.Duration(s.Lifetime*float32(time.Second)), shot.Destroy)
}

// --- Generated registration below ---

func init() {
	Catalog.Add(func() engine.Script {
		s := &Shooter{}
		s.Defaults()
		return s
	})
}

// Shooter fields: cooldown, shot_speed, lifetime
