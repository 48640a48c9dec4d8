package calltable

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// The table types below are the native call contract. Field order is entry
// order; entries are appended at the end, never inserted.

// EntityTable is the entity sub-table (14 entries).
type EntityTable struct {
	GetPosition        func(id int32, x, y, z *float32)
	SetPosition        func(id int32, x, y, z float32)
	FindByName         func(name string) int32
	Create             func(name string) int32
	Destroy            func(id int32)
	GetByID            func(id int32) int32
	GetRotation        func(id int32, x, y, z *float32)
	SetRotation        func(id int32, x, y, z float32)
	GetRotationQuat    func(id int32, x, y, z, w *float32)
	SetRotationQuat    func(id int32, x, y, z, w float32)
	GetScale           func(id int32, x, y, z *float32)
	SetScale           func(id int32, x, y, z float32)
	SetLinearVelocity  func(id int32, x, y, z float32)
	SetAngularVelocity func(id int32, x, y, z float32)
}

// ComponentTable is forwarded the remainder of the entity init call
// (36 entries).
type ComponentTable struct {
	Has    func(id int32, component string) bool
	Add    func(id int32, component string)
	Remove func(id int32, component string)

	Light        LightTable
	RigidBody    RigidBodyTable
	BlendShape   BlendShapeTable
	Animator     AnimatorTable
	Button       ButtonTable
	UnifiedMorph UnifiedMorphTable
}

type LightTable struct {
	GetType      func(id int32) int32
	SetType      func(id int32, kind int32)
	GetColor     func(id int32, r, g, b *float32)
	SetColor     func(id int32, r, g, b float32)
	GetIntensity func(id int32) float32
	SetIntensity func(id int32, intensity float32)
}

type RigidBodyTable struct {
	GetMass            func(id int32) float32
	SetMass            func(id int32, mass float32)
	GetKinematic       func(id int32) bool
	SetKinematic       func(id int32, kinematic bool)
	GetLinearVelocity  func(id int32, x, y, z *float32)
	SetLinearVelocity  func(id int32, x, y, z float32)
	GetAngularVelocity func(id int32, x, y, z *float32)
	SetAngularVelocity func(id int32, x, y, z float32)
}

type BlendShapeTable struct {
	SetWeight func(id int32, shape string, weight float32)
	GetWeight func(id int32, shape string) float32
	GetCount  func(id int32) int32
	// GetName copies the NUL-terminated name of shape index into buf.
	GetName   func(id int32, index int32, buf *byte, size int32) int32
}

type AnimatorTable struct {
	SetBool      func(id int32, param string, v bool)
	SetInt       func(id int32, param string, v int32)
	SetFloat     func(id int32, param string, v float32)
	SetTrigger   func(id int32, param string)
	ResetTrigger func(id int32, param string)
	GetBool      func(id int32, param string) bool
	GetInt       func(id int32, param string) int32
	GetFloat     func(id int32, param string) float32
	GetTrigger   func(id int32, param string) bool
}

type ButtonTable struct {
	IsHovered  func(id int32) bool
	IsPressed  func(id int32) bool
	WasClicked func(id int32) bool
}

type UnifiedMorphTable struct {
	GetCount  func(id int32) int32
	GetName   func(id int32, index int32, buf *byte, size int32) int32
	SetWeight func(id int32, index int32, weight float32)
}

// InputTable is the input sub-table (6 entries).
type InputTable struct {
	IsKeyHeld     func(key int32) int32
	IsKeyDown     func(key int32) int32
	IsMouseDown   func(button int32) int32
	GetMouseDelta func(dx, dy *float32)
	Log           func(msg string)
	SetMouseMode  func(mode int32)
}

// AgentParams mirrors the native navigation agent parameter block.
type AgentParams struct {
	Radius      float32
	Height      float32
	MaxSlopeDeg float32
	MaxStep     float32
	MaxSpeed    float32
	MaxAccel    float32
}

// DefaultAgentParams matches the native defaults.
var DefaultAgentParams = AgentParams{
	Radius:      0.4,
	Height:      1.8,
	MaxSlopeDeg: 45,
	MaxStep:     0.4,
	MaxSpeed:    3,
	MaxAccel:    8,
}

// NavigationTable is the navigation sub-table (6 entries).
type NavigationTable struct {
	FindPath func(navMesh int32, start, end *rl.Vector3, params *AgentParams,
		include, exclude uint32, out *rl.Vector3, capacity int32, count *int32) bool
	AgentSetDestination     func(agent int32, x, y, z float32)
	AgentStop               func(agent int32)
	AgentWarp               func(agent int32, x, y, z float32)
	AgentRemainingDistance  func(agent int32) float32
	// SetPathCompleteCallback registers a native-callable
	// func(agent uint64, success bool).
	SetPathCompleteCallback func(cb uintptr)
}

// IKTable is the inverse kinematics sub-table (5 entries).
type IKTable struct {
	SetWeight      func(id int32, weight float32)
	SetTarget      func(id int32, target int32)
	SetPole        func(id int32, pole int32)
	SetChain       func(id int32, bones *int32, count int32)
	GetErrorMeters func(id int32) float32
}
