package engine

import (
	"claybridge/internal/scheduler"
	"reflect"
	"time"
)

// Script is a unit of user game logic attached to one entity. The bridge calls
// Bind, then OnCreate once, then OnUpdate at most once per frame.
type Script interface {
	Bind(e Entity)
	Entity() Entity
	OnCreate()
	OnUpdate(dt float32)
}

// BaseScript provides default implementations for Script. Embed it and
// override the lifecycle methods you need.
type BaseScript struct {
	entity Entity
}

func (b *BaseScript) Bind(e Entity)       { b.entity = e }
func (b *BaseScript) Entity() Entity      { return b.entity }
func (b *BaseScript) OnCreate()           {}
func (b *BaseScript) OnUpdate(dt float32) {}

func (b *BaseScript) Transform() Transform { return b.entity.Transform() }

func (b *BaseScript) Input() Input {
	return Input{env: b.entity.env}
}

// Log writes msg to the native console.
func (b *BaseScript) Log(msg string) {
	if b.entity.env != nil {
		b.entity.env.NativeLog(msg)
	}
}

// After runs fn on the engine thread once d has elapsed.
func (b *BaseScript) After(d time.Duration, fn func()) {
	if b.entity.env == nil {
		return
	}
	b.entity.env.Sched.After(d, scheduler.Func(fn))
}

// NextFrame runs fn during the next frame's flush.
func (b *BaseScript) NextFrame(fn func()) {
	if b.entity.env == nil {
		return
	}
	b.entity.env.Sched.Post(scheduler.Func(fn))
}

// GetScript returns the script of type T attached to e.
//
//	if health, ok := engine.GetScript[*Health](target); ok {
//	    health.Damage(10)
//	}
func GetScript[T Script](e Entity) (T, bool) {
	var zero T
	if !e.Valid() {
		return zero, false
	}
	s, ok := e.env.Script(e.id, reflect.TypeFor[T]())
	if !ok {
		return zero, false
	}
	typed, ok := s.(T)
	return typed, ok
}
