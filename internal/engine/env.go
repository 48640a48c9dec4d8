// Package engine is the script-facing view of the native engine: entities,
// transforms, input and the base type scripts embed.
package engine

import (
	"claybridge/internal/calltable"
	"claybridge/internal/scheduler"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// EntityID is the native handle of an entity. Native lookups return NoEntity
// when nothing matches.
type EntityID int32

const NoEntity EntityID = -1

// ScriptLookup finds the script of a given concrete type attached to an
// entity.
type ScriptLookup interface {
	Lookup(owner EntityID, key any) (Script, bool)
}

// Env is everything a script can reach: the native call tables, the
// continuation scheduler, attached scripts and cached component façades.
// One Env exists per bridge.
type Env struct {
	Calls *calltable.Tables
	Sched *scheduler.Scheduler
	Log   *zap.Logger

	scripts ScriptLookup

	memoMu sync.Mutex
	memo   map[memoKey]any
}

type memoKey struct {
	id  EntityID
	typ reflect.Type
}

func NewEnv(calls *calltable.Tables, sched *scheduler.Scheduler, log *zap.Logger) *Env {
	if log == nil {
		log = zap.NewNop()
	}
	return &Env{
		Calls: calls,
		Sched: sched,
		Log:   log,
		memo:  map[memoKey]any{},
	}
}

// SetScriptLookup wires the script index used by GetScript.
func (e *Env) SetScriptLookup(l ScriptLookup) { e.scripts = l }

// Memo returns the cached value for (id, typ), building it on first use. A
// nil result from build is not cached. Cached values that have a Close method
// are closed when they are dropped.
func (e *Env) Memo(id EntityID, typ reflect.Type, build func() any) any {
	k := memoKey{id, typ}
	e.memoMu.Lock()
	v, ok := e.memo[k]
	e.memoMu.Unlock()
	if ok {
		return v
	}
	v = build()
	if v == nil {
		return nil
	}
	e.memoMu.Lock()
	prev, ok := e.memo[k]
	if !ok {
		e.memo[k] = v
	}
	e.memoMu.Unlock()
	if ok {
		closeValue(v)
		return prev
	}
	return v
}

// Cached returns the cached value for (id, typ) without building one.
func (e *Env) Cached(id EntityID, typ reflect.Type) (any, bool) {
	e.memoMu.Lock()
	defer e.memoMu.Unlock()
	v, ok := e.memo[memoKey{id, typ}]
	return v, ok
}

// Forget drops the cached value for (id, typ).
func (e *Env) Forget(id EntityID, typ reflect.Type) {
	k := memoKey{id, typ}
	e.memoMu.Lock()
	v, ok := e.memo[k]
	delete(e.memo, k)
	e.memoMu.Unlock()
	if ok {
		closeValue(v)
	}
}

// ForgetEntity drops every cached value of id.
func (e *Env) ForgetEntity(id EntityID) {
	var dropped []any
	e.memoMu.Lock()
	for k, v := range e.memo {
		if k.id == id {
			dropped = append(dropped, v)
			delete(e.memo, k)
		}
	}
	e.memoMu.Unlock()
	for _, v := range dropped {
		closeValue(v)
	}
}

// ResetMemo drops every cached value. Called when the script module is torn
// down.
func (e *Env) ResetMemo() {
	e.memoMu.Lock()
	dropped := make([]any, 0, len(e.memo))
	for _, v := range e.memo {
		dropped = append(dropped, v)
	}
	clear(e.memo)
	e.memoMu.Unlock()
	for _, v := range dropped {
		closeValue(v)
	}
}

func closeValue(v any) {
	if c, ok := v.(interface{ Close() }); ok {
		c.Close()
	}
}

// Script returns the script indexed under (owner, key).
func (e *Env) Script(owner EntityID, key any) (Script, bool) {
	if e.scripts == nil {
		return nil, false
	}
	return e.scripts.Lookup(owner, key)
}

// Entity returns the façade for id without asking native whether it exists.
func (e *Env) Entity(id EntityID) Entity {
	return Entity{id: id, env: e}
}

// Find returns the first entity named name.
func (e *Env) Find(name string) (Entity, bool) {
	id := EntityID(e.Calls.Entity.Fn.FindByName(name))
	if id < 0 || !e.Calls.Entity.Bound() {
		return Entity{id: NoEntity}, false
	}
	return e.Entity(id), true
}

// Create asks native for a new entity.
func (e *Env) Create(name string) (Entity, bool) {
	id := EntityID(e.Calls.Entity.Fn.Create(name))
	if id < 0 || !e.Calls.Entity.Bound() {
		return Entity{id: NoEntity}, false
	}
	return e.Entity(id), true
}

// EntityByID validates id with native.
func (e *Env) EntityByID(id EntityID) (Entity, bool) {
	got := EntityID(e.Calls.Entity.Fn.GetByID(int32(id)))
	if got < 0 || got != id || !e.Calls.Entity.Bound() {
		return Entity{id: NoEntity}, false
	}
	return e.Entity(id), true
}

// NativeLog writes msg to the native console.
func (e *Env) NativeLog(msg string) {
	e.Calls.Input.Fn.Log(msg)
}

// Input returns the input façade.
func (e *Env) Input() Input { return Input{env: e} }
