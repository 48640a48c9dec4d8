package engine

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Transform reads and writes an entity's native transform. Rotation is Euler
// angles in degrees.
type Transform struct {
	e Entity
}

func (t Transform) Position() rl.Vector3 {
	var v rl.Vector3
	if t.e.Valid() {
		t.e.env.Calls.Entity.Fn.GetPosition(int32(t.e.id), &v.X, &v.Y, &v.Z)
	}
	return v
}

func (t Transform) SetPosition(v rl.Vector3) {
	if t.e.Valid() {
		t.e.env.Calls.Entity.Fn.SetPosition(int32(t.e.id), v.X, v.Y, v.Z)
	}
}

func (t Transform) Rotation() rl.Vector3 {
	var v rl.Vector3
	if t.e.Valid() {
		t.e.env.Calls.Entity.Fn.GetRotation(int32(t.e.id), &v.X, &v.Y, &v.Z)
	}
	return v
}

func (t Transform) SetRotation(v rl.Vector3) {
	if t.e.Valid() {
		t.e.env.Calls.Entity.Fn.SetRotation(int32(t.e.id), v.X, v.Y, v.Z)
	}
}

func (t Transform) Quaternion() rl.Quaternion {
	q := rl.QuaternionIdentity()
	if t.e.Valid() {
		t.e.env.Calls.Entity.Fn.GetRotationQuat(int32(t.e.id), &q.X, &q.Y, &q.Z, &q.W)
	}
	return q
}

func (t Transform) SetQuaternion(q rl.Quaternion) {
	if t.e.Valid() {
		t.e.env.Calls.Entity.Fn.SetRotationQuat(int32(t.e.id), q.X, q.Y, q.Z, q.W)
	}
}

func (t Transform) Scale() rl.Vector3 {
	v := rl.Vector3{X: 1, Y: 1, Z: 1}
	if t.e.Valid() {
		t.e.env.Calls.Entity.Fn.GetScale(int32(t.e.id), &v.X, &v.Y, &v.Z)
	}
	return v
}

func (t Transform) SetScale(v rl.Vector3) {
	if t.e.Valid() {
		t.e.env.Calls.Entity.Fn.SetScale(int32(t.e.id), v.X, v.Y, v.Z)
	}
}

// Translate moves the entity by delta in world space.
func (t Transform) Translate(delta rl.Vector3) {
	t.SetPosition(rl.Vector3Add(t.Position(), delta))
}

// Rotate adds delta degrees to the Euler rotation, wrapping each axis into
// [0, 360).
func (t Transform) Rotate(delta rl.Vector3) {
	r := rl.Vector3Add(t.Rotation(), delta)
	t.SetRotation(rl.Vector3{X: wrapDegrees(r.X), Y: wrapDegrees(r.Y), Z: wrapDegrees(r.Z)})
}

// Forward is the entity's local +Z axis in world space.
func (t Transform) Forward() rl.Vector3 {
	return rl.Vector3RotateByQuaternion(rl.Vector3{Z: 1}, t.Quaternion())
}

// Right is the entity's local +X axis in world space.
func (t Transform) Right() rl.Vector3 {
	return rl.Vector3RotateByQuaternion(rl.Vector3{X: 1}, t.Quaternion())
}

// Up is the entity's local +Y axis in world space.
func (t Transform) Up() rl.Vector3 {
	return rl.Vector3RotateByQuaternion(rl.Vector3{Y: 1}, t.Quaternion())
}

func wrapDegrees(d float32) float32 {
	for d >= 360 {
		d -= 360
	}
	for d < 0 {
		d += 360
	}
	return d
}
