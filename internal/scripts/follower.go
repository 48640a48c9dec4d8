package scripts

import (
	"claybridge/internal/components"
	"claybridge/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Follower walks to the target with its NavAgent and repaths every Interval
// seconds. Set Target in the scene to another entity's id.
type Follower struct {
	engine.BaseScript
	Target   engine.EntityRef
	Offset   rl.Vector3
	Interval float32
	elapsed  float32
	arrived  int
}

func (f *Follower) Defaults() {
	f.Target = engine.NoRef
	f.Interval = 1
}

func (f *Follower) OnCreate() {
	components.Add[components.NavAgent](f.Entity())
	f.repath()
}

func (f *Follower) OnUpdate(deltaTime float32) {
	f.elapsed += deltaTime
	if f.elapsed >= f.Interval {
		f.elapsed = 0
		f.repath()
	}
}

func (f *Follower) repath() {
	target, ok := f.Target.Get(f.Entity().Env())
	if !ok {
		return
	}
	agent := components.Get[components.NavAgent](f.Entity())
	if agent == nil {
		return
	}
	dest := rl.Vector3Add(target.Transform().Position(), f.Offset)
	agent.MoveTo(dest, func(success bool) {
		if success {
			f.arrived++
			f.Log("Follower reached " + target.String())
		}
	})
}

// --- Generated registration below ---

func init() {
	Catalog.Add(func() engine.Script {
		s := &Follower{}
		s.Defaults()
		return s
	})
}

// Follower fields: target, offset, interval
