package components

import (
	"claybridge/internal/calltable"
	"claybridge/internal/engine"
	"math"
	"reflect"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// NavAgent steers an entity over the navigation mesh.
type NavAgent struct {
	facade

	// OnPathComplete fires with the outcome of every destination reached or
	// abandoned.
	OnPathComplete engine.EventWithArg[bool]

	waiters []func(success bool)
}

func (*NavAgent) ComponentName() string { return "NavAgent" }

func (n *NavAgent) nav() *calltable.NavigationTable {
	return &n.entity.Env().Calls.Navigation.Fn
}

func (n *NavAgent) SetDestination(dest rl.Vector3) {
	n.nav().AgentSetDestination(n.id(), dest.X, dest.Y, dest.Z)
}

// MoveTo sets the destination and calls done once native reports the path
// complete or failed.
func (n *NavAgent) MoveTo(dest rl.Vector3, done func(success bool)) {
	if done != nil {
		n.waiters = append(n.waiters, done)
	}
	n.SetDestination(dest)
}

func (n *NavAgent) Stop() { n.nav().AgentStop(n.id()) }

// Warp teleports the agent without pathing.
func (n *NavAgent) Warp(pos rl.Vector3) { n.nav().AgentWarp(n.id(), pos.X, pos.Y, pos.Z) }

// RemainingDistance is math.MaxFloat32 when navigation is unavailable.
func (n *NavAgent) RemainingDistance() float32 {
	if !n.entity.Env().Calls.Navigation.Bound() {
		return math.MaxFloat32
	}
	return n.nav().AgentRemainingDistance(n.id())
}

func (n *NavAgent) complete(success bool) {
	waiters := n.waiters
	n.waiters = nil
	for _, w := range waiters {
		w(success)
	}
	n.OnPathComplete.Invoke(success)
}

// CompletePath delivers a native path-complete notification for agent. It
// must run on the engine thread; agents nobody has looked up are ignored.
func CompletePath(env *engine.Env, agent engine.EntityID, success bool) {
	v, ok := env.Cached(agent, reflect.TypeFor[NavAgent]())
	if !ok {
		return
	}
	v.(*NavAgent).complete(success)
}

// FindPath queries a path on the navigation mesh owned by navMesh. It returns
// at most capacity corners.
func FindPath(env *engine.Env, navMesh engine.Entity, start, end rl.Vector3, params calltable.AgentParams,
	include, exclude uint32, capacity int) ([]rl.Vector3, bool) {
	if capacity <= 0 || !env.Calls.Navigation.Bound() {
		return nil, false
	}
	out := make([]rl.Vector3, capacity)
	var count int32
	ok := env.Calls.Navigation.Fn.FindPath(int32(navMesh.ID()), &start, &end, &params,
		include, exclude, &out[0], int32(capacity), &count)
	if !ok {
		return nil, false
	}
	return out[:min(int(count), capacity)], true
}
