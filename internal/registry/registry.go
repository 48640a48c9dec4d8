// Package registry creates script instances by class name and indexes live
// instances by the entity they are attached to.
package registry

import (
	"claybridge/internal/engine"
	"claybridge/internal/module"
	"sync"

	"go.uber.org/zap"
)

// Resolver finds loaded classes by name.
type Resolver interface {
	ResolveType(name string) (module.Class, bool)
	Names() []string
}

type key struct {
	owner engine.EntityID
	typ   any
}

// Registry is the script factory plus the (entity, type) index used by
// GetScript.
type Registry struct {
	classes Resolver
	log     *zap.Logger

	mu    sync.RWMutex
	index map[key]engine.Script
}

func New(classes Resolver, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{classes: classes, log: log.Named("registry"), index: map[key]engine.Script{}}
}

// Create resolves className and returns a default instance of it.
func (r *Registry) Create(className string) (module.Class, engine.Script, error) {
	c, ok := r.classes.ResolveType(className)
	if !ok {
		err := &module.ClassNotFoundError{Name: className, Known: r.classes.Names()}
		r.log.Error("script class not found", zap.String("class", className), zap.Strings("known", err.Known))
		return nil, nil, err
	}
	s, err := c.New()
	if err != nil {
		r.log.Error("script construction failed", zap.String("class", c.Name()), zap.Error(err))
		return nil, nil, err
	}
	return c, s, nil
}

// Register indexes s under (owner, typeKey). A later registration under the
// same key replaces the earlier one.
func (r *Registry) Register(owner engine.EntityID, typeKey any, s engine.Script) {
	r.mu.Lock()
	r.index[key{owner, typeKey}] = s
	r.mu.Unlock()
}

// Unregister removes s from (owner, typeKey) if it is still the indexed
// instance there.
func (r *Registry) Unregister(owner engine.EntityID, typeKey any, s engine.Script) {
	k := key{owner, typeKey}
	r.mu.Lock()
	if cur, ok := r.index[k]; ok && cur == s {
		delete(r.index, k)
	}
	r.mu.Unlock()
}

// Lookup implements engine.ScriptLookup.
func (r *Registry) Lookup(owner engine.EntityID, typeKey any) (engine.Script, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.index[key{owner, typeKey}]
	return s, ok
}

// Len returns the number of indexed instances.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.index)
}

// Reset drops the whole index.
func (r *Registry) Reset() {
	r.mu.Lock()
	clear(r.index)
	r.mu.Unlock()
}
