package bridge

import (
	"claybridge/internal/engine"
	"claybridge/internal/fields"
	"claybridge/internal/handles"
	"claybridge/internal/module"
	"errors"
	"fmt"
	"maps"
	"slices"
	"unsafe"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var errUnknownField = errors.New("no such field")

// ScriptCreate makes a default instance of className and returns its token.
// It returns 0 when the class does not resolve.
func (b *Bridge) ScriptCreate(className string) handles.Token {
	c, s, err := b.scripts.Create(className)
	if err != nil {
		return 0
	}
	tok := b.tokens.Insert(&instance{class: c, script: s, owner: engine.NoEntity})
	b.log.Debug("script created", zap.String("class", c.Name()), zap.Stringer("token", tok))
	return tok
}

// ScriptDestroy releases tok. Unknown and already destroyed tokens are
// ignored.
func (b *Bridge) ScriptDestroy(tok handles.Token) {
	inst, ok := b.tokens.Remove(tok)
	if !ok {
		b.log.Debug("destroy of unknown token", zap.Stringer("token", tok))
		return
	}
	if inst.created {
		b.scripts.Unregister(inst.owner, inst.class.TypeKey(), inst.script)
	}
}

// ScriptOnCreate attaches the instance to the entity native handle and runs
// its OnCreate. Only the first call for a token has any effect.
func (b *Bridge) ScriptOnCreate(tok handles.Token, native int32) error {
	inst, err := b.instance(tok)
	if err != nil {
		b.log.Warn("create callback for bad token", zap.Error(err))
		return err
	}
	if inst.created {
		b.log.Warn("script already created",
			zap.String("class", inst.class.Name()), zap.Stringer("token", tok))
		return nil
	}
	inst.created = true
	inst.owner = engine.EntityID(native)
	inst.script.Bind(b.env.Entity(inst.owner))
	b.scripts.Register(inst.owner, inst.class.TypeKey(), inst.script)

	return b.guard(inst, tok, "OnCreate", func() error {
		inst.script.OnCreate()
		return nil
	})
}

// ScriptOnUpdate runs the instance's OnUpdate, at most once per frame and
// only after OnCreate.
func (b *Bridge) ScriptOnUpdate(tok handles.Token, dt float32) error {
	inst, err := b.instance(tok)
	if err != nil {
		b.log.Warn("update callback for bad token", zap.Error(err))
		return err
	}
	if !inst.created {
		b.log.Warn("update before create",
			zap.String("class", inst.class.Name()), zap.Stringer("token", tok))
		return ErrNotCreated
	}
	frame := b.frame.Load() + 1
	if inst.updated == frame {
		b.log.Warn("second update in one frame",
			zap.String("class", inst.class.Name()), zap.Stringer("token", tok), zap.Uint64("frame", frame-1))
		return ErrAlreadyUpdated
	}
	inst.updated = frame

	return b.guard(inst, tok, "OnUpdate", func() error {
		inst.script.OnUpdate(dt)
		return nil
	})
}

// ScriptInvoke calls the zero-argument method named method on the instance.
func (b *Bridge) ScriptInvoke(tok handles.Token, method string) error {
	inst, err := b.instance(tok)
	if err != nil {
		b.log.Warn("invoke on bad token", zap.String("method", method), zap.Error(err))
		return err
	}
	err = b.guard(inst, tok, method, func() error {
		return inst.class.Invoke(inst.script, method)
	})
	if err != nil {
		b.log.Warn("invoke failed",
			zap.String("class", inst.class.Name()), zap.String("method", method), zap.Error(err))
	}
	return err
}

// Script returns the instance behind tok.
func (b *Bridge) Script(tok handles.Token) (engine.Script, error) {
	inst, err := b.instance(tok)
	if err != nil {
		return nil, err
	}
	return inst.script, nil
}

// ClassOf returns the class tok was created from.
func (b *Bridge) ClassOf(tok handles.Token) (module.Class, error) {
	inst, err := b.instance(tok)
	if err != nil {
		return nil, err
	}
	return inst.class, nil
}

// SetManagedField decodes a native payload for the field called name and
// writes it to the instance. Unknown fields and undecodable payloads are
// logged and leave the instance unchanged.
func (b *Bridge) SetManagedField(tok handles.Token, name string, payload unsafe.Pointer) error {
	inst, err := b.instance(tok)
	if err != nil {
		b.log.Warn("field write on bad token", zap.String("field", name), zap.Error(err))
		return err
	}
	d, err := b.field(inst, name)
	if err != nil {
		return err
	}
	v, err := fields.Decode(d.Tag, payload)
	if err != nil {
		err = &fields.FieldReflectionError{Class: d.Class, Field: name, Err: err}
		b.log.Warn("bad field payload", zap.String("class", d.Class), zap.String("field", name), zap.Error(err))
		return err
	}
	return b.set(inst, name, v)
}

// SetField writes v to the field called name. It is SetManagedField for
// callers that already hold a decoded value.
func (b *Bridge) SetField(tok handles.Token, name string, v fields.Value) error {
	inst, err := b.instance(tok)
	if err != nil {
		return err
	}
	if _, err := b.field(inst, name); err != nil {
		return err
	}
	return b.set(inst, name, v)
}

// ApplyFields sets fields from loosely typed values, as read from a scene
// file. Every field is attempted; the failures are combined.
func (b *Bridge) ApplyFields(tok handles.Token, values map[string]any) error {
	inst, err := b.instance(tok)
	if err != nil {
		return err
	}
	var errs error
	for _, name := range slices.Sorted(maps.Keys(values)) {
		d, err := b.field(inst, name)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		v, err := fields.FromAny(d.Tag, values[name])
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s.%s: %w", inst.class.Name(), name, err))
			continue
		}
		errs = multierr.Append(errs, b.set(inst, name, v))
	}
	return errs
}

// Field reads the field called name.
func (b *Bridge) Field(tok handles.Token, name string) (fields.Value, error) {
	inst, err := b.instance(tok)
	if err != nil {
		return fields.Value{}, err
	}
	return inst.class.Field(inst.script, name)
}

func (b *Bridge) field(inst *instance, name string) (fields.Descriptor, error) {
	d, ok := fields.Find(inst.class.Fields(), name)
	if !ok {
		err := &fields.FieldReflectionError{Class: inst.class.Name(), Field: name, Err: errUnknownField}
		b.log.Warn("unknown managed field", zap.String("class", inst.class.Name()), zap.String("field", name))
		return fields.Descriptor{}, err
	}
	return d, nil
}

func (b *Bridge) set(inst *instance, name string, v fields.Value) error {
	if err := inst.class.SetField(inst.script, name, v); err != nil {
		b.log.Warn("field write failed", zap.String("class", inst.class.Name()), zap.String("field", name), zap.Error(err))
		return err
	}
	return nil
}
