package engine

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Entity is a value-type view of a native entity. It holds no native
// resources; copying it is free.
type Entity struct {
	id  EntityID
	env *Env
}

func (e Entity) ID() EntityID { return e.id }

// Env returns the environment e belongs to, nil for the zero Entity.
func (e Entity) Env() *Env { return e.env }

// Valid reports whether e refers to an entity at all. It does not ask native
// whether the entity still exists.
func (e Entity) Valid() bool { return e.env != nil && e.id >= 0 }

func (e Entity) Transform() Transform { return Transform{e: e} }

func (e Entity) SetLinearVelocity(v rl.Vector3) {
	if !e.Valid() {
		return
	}
	e.env.Calls.Entity.Fn.SetLinearVelocity(int32(e.id), v.X, v.Y, v.Z)
}

func (e Entity) SetAngularVelocity(v rl.Vector3) {
	if !e.Valid() {
		return
	}
	e.env.Calls.Entity.Fn.SetAngularVelocity(int32(e.id), v.X, v.Y, v.Z)
}

// Destroy destroys the native entity and drops its cached façades.
func (e Entity) Destroy() {
	if !e.Valid() {
		return
	}
	e.env.Calls.Entity.Fn.Destroy(int32(e.id))
	e.env.ForgetEntity(e.id)
}

// HasComponent asks native whether a component named name is attached.
func (e Entity) HasComponent(name string) bool {
	if !e.Valid() {
		return false
	}
	return e.env.Calls.Component.Fn.Has(int32(e.id), name)
}

func (e Entity) String() string {
	return fmt.Sprintf("Entity(%d)", e.id)
}
