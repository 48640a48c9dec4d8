package scripts

import (
	"claybridge/internal/engine"
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Collectible bobs in place and is picked up when the collector gets within
// Radius.
type Collectible struct {
	engine.BaseScript
	Points    int32
	Radius    float32
	BobSpeed  float32
	Collector engine.EntityRef
	time      float32
	baseY     float32
	collected bool
}

func (c *Collectible) Defaults() {
	c.Points = 10
	c.Radius = 1
	c.BobSpeed = 2
	c.Collector = engine.NoRef
}

func (c *Collectible) OnCreate() {
	c.baseY = c.Transform().Position().Y
}

func (c *Collectible) OnUpdate(deltaTime float32) {
	if c.collected {
		return
	}

	c.time += deltaTime
	pos := c.Transform().Position()
	pos.Y = c.baseY + 0.25*float32(math.Sin(float64(c.time*c.BobSpeed)))
	c.Transform().SetPosition(pos)
	c.Transform().Rotate(rl.Vector3{Y: 45 * deltaTime})

	collector, ok := c.Collector.Get(c.Entity().Env())
	if !ok {
		return
	}
	if rl.Vector3Distance(collector.Transform().Position(), pos) > c.Radius {
		return
	}

	c.collected = true
	c.Log(fmt.Sprintf("Collected! +%d points", c.Points))
	if score, ok := engine.GetScript[*ScoreManager](collector); ok {
		score.Add(c.Points)
	}
	c.Entity().Destroy()
}
