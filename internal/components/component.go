// Package components wraps native components attached to entities. Façades
// hold no state of their own beyond event wiring; every read and write goes
// through the native component call table.
package components

import (
	"claybridge/internal/calltable"
	"claybridge/internal/engine"
	"reflect"
)

// Component is implemented by every façade in this package.
type Component interface {
	// ComponentName is the native name of the component.
	ComponentName() string
	attach(e engine.Entity)
}

type facade struct {
	entity engine.Entity
}

func (f *facade) attach(e engine.Entity) { f.entity = e }

// Entity returns the entity the component is attached to.
func (f *facade) Entity() engine.Entity { return f.entity }

func (f *facade) id() int32 { return int32(f.entity.ID()) }

func (f *facade) calls() *calltable.ComponentTable {
	return &f.entity.Env().Calls.Component.Fn
}

// Get returns the T attached to e, or nil when native reports none. Façades
// are cached per entity until removed or until the script module reloads.
func Get[T any, P interface {
	*T
	Component
}](e engine.Entity) P {
	if !e.Valid() {
		return nil
	}
	v := e.Env().Memo(e.ID(), reflect.TypeFor[T](), func() any {
		var c P = new(T)
		if !e.HasComponent(c.ComponentName()) {
			return nil
		}
		c.attach(e)
		return c
	})
	if v == nil {
		return nil
	}
	return v.(P)
}

// Add attaches a T to e unless one is already attached, and returns it.
func Add[T any, P interface {
	*T
	Component
}](e engine.Entity) P {
	if !e.Valid() {
		return nil
	}
	if c := Get[T, P](e); c != nil {
		return c
	}
	var probe P = new(T)
	e.Env().Calls.Component.Fn.Add(int32(e.ID()), probe.ComponentName())
	return Get[T, P](e)
}

// Remove detaches T from e.
func Remove[T any, P interface {
	*T
	Component
}](e engine.Entity) {
	if !e.Valid() {
		return
	}
	var probe P = new(T)
	e.Env().Calls.Component.Fn.Remove(int32(e.ID()), probe.ComponentName())
	e.Env().Forget(e.ID(), reflect.TypeFor[T]())
}

// Has reports whether native has a T attached to e.
func Has[T any, P interface {
	*T
	Component
}](e engine.Entity) bool {
	var probe P = new(T)
	return e.HasComponent(probe.ComponentName())
}

// nativeString reads a string that native copies into a caller buffer.
func nativeString(read func(buf *byte, size int32) int32) string {
	buf := make([]byte, 256)
	n := read(&buf[0], int32(len(buf)))
	if n <= 0 {
		return ""
	}
	if int(n) > len(buf) {
		n = int32(len(buf))
	}
	for i := 0; i < int(n); i++ {
		if buf[i] == 0 {
			return string(buf[:i])
		}
	}
	return string(buf[:n])
}

// named maps native component names to the façade types cached for them.
var named = map[string]reflect.Type{
	"Light":        reflect.TypeFor[Light](),
	"RigidBody":    reflect.TypeFor[RigidBody](),
	"BlendShape":   reflect.TypeFor[BlendShape](),
	"Animator":     reflect.TypeFor[Animator](),
	"Button":       reflect.TypeFor[Button](),
	"UnifiedMorph": reflect.TypeFor[UnifiedMorph](),
	"NavAgent":     reflect.TypeFor[NavAgent](),
	"IK":           reflect.TypeFor[IK](),
}

// AddNamed attaches the native component called name to e, for callers that
// only know components by name.
func AddNamed(e engine.Entity, name string) {
	if !e.Valid() || e.HasComponent(name) {
		return
	}
	e.Env().Calls.Component.Fn.Add(int32(e.ID()), name)
}

// RemoveNamed detaches the native component called name from e and drops its
// cached façade, if any.
func RemoveNamed(e engine.Entity, name string) {
	if !e.Valid() {
		return
	}
	e.Env().Calls.Component.Fn.Remove(int32(e.ID()), name)
	if typ, ok := named[name]; ok {
		e.Env().Forget(e.ID(), typ)
	}
}
