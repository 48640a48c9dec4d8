package luamod

import (
	"claybridge/internal/engine"
	"claybridge/internal/fields"
	"claybridge/internal/module"
	"errors"
	"fmt"
	"slices"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/multierr"
)

var errWrongClass = errors.New("instance belongs to another class")

// reserved keys of a class declaration that are not copied to the prototype.
var reserved = map[string]bool{"name": true, "abstract": true, "fields": true, "extends": true}

type classField struct {
	name string
	decl *fieldDecl
}

// luaClass is a class declared with engine.class. Instances are tables whose
// metatable indexes the class prototype.
type luaClass struct {
	mod      *luaModule
	name     string
	short    string
	abstract bool
	fields   []classField
	proto    *lua.LTable
	meta     *lua.LTable
}

// declareClass implements engine.class. Declaration problems are collected
// and fail the load as a whole; the script keeps running so every problem is
// reported at once.
func (m *luaModule) declareClass(L *lua.LState) int {
	def := L.CheckTable(1)
	c, err := m.newClass(def)
	if err != nil {
		m.fail(err)
		L.Push(def)
		return 1
	}
	m.classes = append(m.classes, c)
	L.Push(c.proto)
	return 1
}

func (m *luaModule) newClass(def *lua.LTable) (*luaClass, error) {
	L := m.L
	name, ok := def.RawGetString("name").(lua.LString)
	if !ok || name == "" {
		return nil, errors.New("class declaration without name")
	}
	c := &luaClass{
		mod:      m,
		name:     string(name),
		short:    module.ShortName(string(name)),
		abstract: lua.LVAsBool(def.RawGetString("abstract")),
		proto:    L.NewTable(),
		meta:     L.NewTable(),
	}
	if !strings.Contains(c.name, ".") {
		c.name = m.name + "." + c.name
	}

	var parent *luaClass
	if ext := def.RawGetString("extends"); ext != lua.LNil {
		parent = m.classByProto(ext)
		if parent == nil {
			return nil, fmt.Errorf("class %s: extends something that is not a class of this module", c.name)
		}
		c.fields = slices.Clone(parent.fields)
		L.SetMetatable(c.proto, parent.meta)
	}

	var errs []error
	if fl := def.RawGetString("fields"); fl != lua.LNil {
		tbl, ok := fl.(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("class %s: fields must be a table, got %s", c.name, fl.Type())
		}
		var own []classField
		tbl.ForEach(func(k, v lua.LValue) {
			key, ok := k.(lua.LString)
			if !ok {
				errs = append(errs, fmt.Errorf("class %s: field key %s is not a string", c.name, k))
				return
			}
			var decl *fieldDecl
			if ud, ok := v.(*lua.LUserData); ok {
				decl, _ = ud.Value.(*fieldDecl)
			}
			if decl == nil {
				errs = append(errs, &fields.FieldReflectionError{Class: c.name, Field: string(key),
					Err: fmt.Errorf("not a field declaration (%s)", v.Type())})
				return
			}
			own = append(own, classField{name: string(key), decl: decl})
		})
		slices.SortFunc(own, func(a, b classField) int { return a.decl.seq - b.decl.seq })
		for _, f := range own {
			if i := c.fieldIndex(f.name); i >= 0 {
				c.fields[i] = f
				continue
			}
			c.fields = append(c.fields, f)
		}
	}
	if len(errs) > 0 {
		return nil, multierr.Combine(errs...)
	}

	def.ForEach(func(k, v lua.LValue) {
		if key, ok := k.(lua.LString); ok && reserved[string(key)] {
			return
		}
		c.proto.RawSet(k, v)
	})
	c.meta.RawSetString("__index", c.proto)
	return c, nil
}

func (m *luaModule) classByProto(lv lua.LValue) *luaClass {
	for _, c := range m.classes {
		if c.proto == lv {
			return c
		}
	}
	return nil
}

func (c *luaClass) fieldIndex(name string) int {
	return slices.IndexFunc(c.fields, func(f classField) bool { return f.name == name })
}

func (c *luaClass) Name() string      { return c.name }
func (c *luaClass) ShortName() string { return c.short }
func (c *luaClass) Abstract() bool    { return c.abstract }
func (c *luaClass) TypeKey() any      { return c }

func (c *luaClass) Fields() []fields.Descriptor {
	out := make([]fields.Descriptor, len(c.fields))
	for i, f := range c.fields {
		out[i] = fields.Descriptor{Class: c.name, Name: f.name, Tag: f.decl.tag, Default: f.decl.def}
	}
	return out
}

func (c *luaClass) New() (engine.Script, error) {
	if c.mod.closed {
		return nil, fmt.Errorf("%s: %w", c.name, errClosed)
	}
	L := c.mod.L
	self := L.NewTable()
	L.SetMetatable(self, c.meta)
	for _, f := range c.fields {
		self.RawSetString(f.name, c.mod.toLua(f.decl.def))
	}
	return &Instance{class: c, self: self}, nil
}

func (c *luaClass) instance(s engine.Script) (*Instance, error) {
	inst, ok := s.(*Instance)
	if !ok || inst.class != c {
		return nil, fmt.Errorf("%s: %w", c.name, errWrongClass)
	}
	return inst, nil
}

func (c *luaClass) SetField(s engine.Script, name string, v fields.Value) error {
	inst, err := c.instance(s)
	if err != nil {
		return err
	}
	i := c.fieldIndex(name)
	if i < 0 {
		return &fields.FieldReflectionError{Class: c.name, Field: name, Err: errors.New("no such field")}
	}
	if tag := c.fields[i].decl.tag; tag != v.Tag {
		return &fields.FieldReflectionError{Class: c.name, Field: name,
			Err: fmt.Errorf("type mismatch: field is %s, value is %s", tag, v.Tag)}
	}
	inst.self.RawSetString(name, c.mod.toLua(v))
	return nil
}

func (c *luaClass) Field(s engine.Script, name string) (fields.Value, error) {
	inst, err := c.instance(s)
	if err != nil {
		return fields.Value{}, err
	}
	i := c.fieldIndex(name)
	if i < 0 {
		return fields.Value{}, &fields.FieldReflectionError{Class: c.name, Field: name, Err: errors.New("no such field")}
	}
	v, err := c.mod.fromLua(c.fields[i].decl.tag, inst.self.RawGetString(name))
	if err != nil {
		return fields.Value{}, &fields.FieldReflectionError{Class: c.name, Field: name, Err: err}
	}
	return v, nil
}

// Invoke calls self:method(). If the method suspends, Invoke returns once it
// first yields.
func (c *luaClass) Invoke(s engine.Script, method string) error {
	inst, err := c.instance(s)
	if err != nil {
		return err
	}
	if c.mod.closed {
		return fmt.Errorf("%s: %w", c.name, errClosed)
	}
	fn, ok := c.mod.L.GetField(inst.self, method).(*lua.LFunction)
	if !ok {
		return fmt.Errorf("%s has no method %s", c.name, method)
	}
	return c.mod.spawn(fn, inst.self)
}

// Instance is a live Lua script. Its fields live in the self table.
type Instance struct {
	class  *luaClass
	self   *lua.LTable
	entity engine.Entity
}

func (i *Instance) Bind(e engine.Entity) {
	i.entity = e
	if !i.class.mod.closed {
		i.self.RawSetString("entity", i.class.mod.newEntity(e))
	}
}

func (i *Instance) Entity() engine.Entity { return i.entity }

func (i *Instance) OnCreate() { i.call("on_create") }

func (i *Instance) OnUpdate(dt float32) { i.call("on_update", lua.LNumber(dt)) }

// Self returns the table scripts see as self.
func (i *Instance) Self() *lua.LTable { return i.self }

func (i *Instance) call(name string, args ...lua.LValue) {
	m := i.class.mod
	if m.closed {
		return
	}
	fn, ok := m.L.GetField(i.self, name).(*lua.LFunction)
	if !ok {
		return
	}
	m.run(i.class.name+"."+name, fn, append([]lua.LValue{i.self}, args...)...)
}
