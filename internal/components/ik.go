package components

import (
	"claybridge/internal/calltable"
	"claybridge/internal/engine"
)

// IK is a native inverse kinematics chain.
type IK struct {
	facade
}

func (*IK) ComponentName() string { return "IK" }

func (k *IK) ik() *calltable.IKTable { return &k.entity.Env().Calls.IK.Fn }

// SetWeight blends between animation (0) and the solved pose (1).
func (k *IK) SetWeight(w float32) { k.ik().SetWeight(k.id(), w) }

func (k *IK) SetTarget(target engine.Entity) { k.ik().SetTarget(k.id(), int32(target.ID())) }

func (k *IK) SetPole(pole engine.Entity) { k.ik().SetPole(k.id(), int32(pole.ID())) }

// SetChain sets the bone entities from root to tip.
func (k *IK) SetChain(bones []engine.Entity) {
	ids := make([]int32, len(bones))
	for i, b := range bones {
		ids[i] = int32(b.ID())
	}
	if len(ids) == 0 {
		k.ik().SetChain(k.id(), nil, 0)
		return
	}
	k.ik().SetChain(k.id(), &ids[0], int32(len(ids)))
}

// ErrorMeters is the distance left between the chain tip and the target
// after the last solve.
func (k *IK) ErrorMeters() float32 { return k.ik().GetErrorMeters(k.id()) }
