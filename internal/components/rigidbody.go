package components

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

type RigidBody struct {
	facade
}

func (*RigidBody) ComponentName() string { return "RigidBody" }

func (r *RigidBody) Mass() float32 { return r.calls().RigidBody.GetMass(r.id()) }

func (r *RigidBody) SetMass(m float32) { r.calls().RigidBody.SetMass(r.id(), m) }

// Kinematic bodies move but are not pushed by the simulation.
func (r *RigidBody) Kinematic() bool { return r.calls().RigidBody.GetKinematic(r.id()) }

func (r *RigidBody) SetKinematic(k bool) { r.calls().RigidBody.SetKinematic(r.id(), k) }

func (r *RigidBody) LinearVelocity() rl.Vector3 {
	var v rl.Vector3
	r.calls().RigidBody.GetLinearVelocity(r.id(), &v.X, &v.Y, &v.Z)
	return v
}

func (r *RigidBody) SetLinearVelocity(v rl.Vector3) {
	r.calls().RigidBody.SetLinearVelocity(r.id(), v.X, v.Y, v.Z)
}

// AngularVelocity is in degrees per second on each axis.
func (r *RigidBody) AngularVelocity() rl.Vector3 {
	var v rl.Vector3
	r.calls().RigidBody.GetAngularVelocity(r.id(), &v.X, &v.Y, &v.Z)
	return v
}

func (r *RigidBody) SetAngularVelocity(v rl.Vector3) {
	r.calls().RigidBody.SetAngularVelocity(r.id(), v.X, v.Y, v.Z)
}

// AddImpulse changes the velocity by impulse / mass.
func (r *RigidBody) AddImpulse(impulse rl.Vector3) {
	m := r.Mass()
	if m <= 0 {
		return
	}
	r.SetLinearVelocity(rl.Vector3Add(r.LinearVelocity(), rl.Vector3Scale(impulse, 1/m)))
}
