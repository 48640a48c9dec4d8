package components

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// LightType matches the native light kinds.
type LightType int32

const (
	DirectionalLight LightType = iota
	PointLight
	SpotLight
)

type Light struct {
	facade
}

func (*Light) ComponentName() string { return "Light" }

func (l *Light) Type() LightType { return LightType(l.calls().Light.GetType(l.id())) }

func (l *Light) SetType(t LightType) { l.calls().Light.SetType(l.id(), int32(t)) }

// Color is linear RGB in [0, 1].
func (l *Light) Color() rl.Vector3 {
	var c rl.Vector3
	l.calls().Light.GetColor(l.id(), &c.X, &c.Y, &c.Z)
	return c
}

func (l *Light) SetColor(c rl.Vector3) { l.calls().Light.SetColor(l.id(), c.X, c.Y, c.Z) }

func (l *Light) Intensity() float32 { return l.calls().Light.GetIntensity(l.id()) }

func (l *Light) SetIntensity(v float32) { l.calls().Light.SetIntensity(l.id(), v) }
