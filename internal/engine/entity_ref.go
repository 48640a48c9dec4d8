package engine

// EntityRef is a serializable reference to an entity by native id. Use it as
// a script field to have the entity filled in from the inspector or a scene.
//
// Example:
//
//	type Follower struct {
//	    engine.BaseScript
//	    Target engine.EntityRef
//	}
//
//	func (f *Follower) OnUpdate(dt float32) {
//	    if target, ok := f.Target.Get(f.Entity().Env()); ok {
//	        // Use the target...
//	    }
//	}
//
// The zero value points at entity 0; use NoRef for "none".
type EntityRef struct {
	ID EntityID
}

// NoRef is the empty reference.
var NoRef = EntityRef{ID: NoEntity}

// Get resolves the reference, asking native whether the entity still exists.
func (r EntityRef) Get(env *Env) (Entity, bool) {
	if r.ID < 0 || env == nil {
		return Entity{id: NoEntity}, false
	}
	return env.EntityByID(r.ID)
}

// IsSet reports whether the reference points at something. It does not check
// that the entity exists.
func (r EntityRef) IsSet() bool {
	return r.ID >= 0
}

// Set points the reference at e. An invalid entity clears it.
func (r *EntityRef) Set(e Entity) {
	if !e.Valid() {
		r.ID = NoEntity
		return
	}
	r.ID = e.id
}

// Clear clears the reference.
func (r *EntityRef) Clear() {
	r.ID = NoEntity
}

func (r EntityRef) RefID() int32       { return int32(r.ID) }
func (r *EntityRef) SetRefID(id int32) { r.ID = EntityID(id) }
