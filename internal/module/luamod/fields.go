package luamod

import (
	"claybridge/internal/engine"
	"claybridge/internal/fields"
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	lua "github.com/yuin/gopher-lua"
)

const fieldTypeName = "engine.field"

// fieldDecl is what engine.int, engine.float and friends return. seq keeps
// declaration order, which Lua tables do not.
type fieldDecl struct {
	tag fields.Tag
	def fields.Value
	seq int
}

func registerFieldType(L *lua.LState) {
	mt := L.NewTypeMetatable(fieldTypeName)
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		d := checkField(L, 1)
		L.Push(lua.LString(fmt.Sprintf("field<%s>(%s)", d.tag, d.def)))
		return 1
	}))
}

func checkField(L *lua.LState, n int) *fieldDecl {
	ud := L.CheckUserData(n)
	if d, ok := ud.Value.(*fieldDecl); ok {
		return d
	}
	L.ArgError(n, "field declaration expected")
	return nil
}

// fieldCtor returns the Lua constructor for fields of tag. The optional
// argument is the default value.
func (m *luaModule) fieldCtor(tag fields.Tag) lua.LGFunction {
	return func(L *lua.LState) int {
		def := zeroValue(tag)
		if tag == fields.Vector3 && L.GetTop() >= 3 {
			def = fields.Vector3Value(rl.Vector3{
				X: float32(L.CheckNumber(1)),
				Y: float32(L.CheckNumber(2)),
				Z: float32(L.CheckNumber(3)),
			})
		} else if L.GetTop() >= 1 && L.Get(1) != lua.LNil {
			v, err := m.fromLua(tag, L.Get(1))
			if err != nil {
				L.ArgError(1, err.Error())
			}
			def = v
		}
		m.fieldSeq++
		ud := L.NewUserData()
		ud.Value = &fieldDecl{tag: tag, def: def, seq: m.fieldSeq}
		L.SetMetatable(ud, L.GetTypeMetatable(fieldTypeName))
		L.Push(ud)
		return 1
	}
}

func zeroValue(tag fields.Tag) fields.Value {
	if tag == fields.EntityReference {
		return fields.EntityValue(int32(engine.NoEntity))
	}
	return fields.Value{Tag: tag}
}

// toLua converts a field value into its Lua form.
func (m *luaModule) toLua(v fields.Value) lua.LValue {
	switch v.Tag {
	case fields.Int:
		return lua.LNumber(v.I)
	case fields.Float:
		return lua.LNumber(v.F)
	case fields.Bool:
		return lua.LBool(v.B)
	case fields.String:
		return lua.LString(v.S)
	case fields.Vector3:
		return m.newVec(v.V)
	case fields.EntityReference:
		if v.I < 0 {
			return lua.LNil
		}
		return m.newEntity(m.env.Entity(engine.EntityID(v.I)))
	}
	return lua.LNil
}

// fromLua converts lv into a value of tag.
func (m *luaModule) fromLua(tag fields.Tag, lv lua.LValue) (fields.Value, error) {
	switch tag {
	case fields.Int, fields.Float:
		n, ok := lv.(lua.LNumber)
		if !ok {
			return fields.Value{}, fmt.Errorf("want number for %s, got %s", tag, lv.Type())
		}
		if tag == fields.Int {
			return fields.IntValue(int32(n)), nil
		}
		return fields.FloatValue(float32(n)), nil
	case fields.Bool:
		b, ok := lv.(lua.LBool)
		if !ok {
			return fields.Value{}, fmt.Errorf("want boolean, got %s", lv.Type())
		}
		return fields.BoolValue(bool(b)), nil
	case fields.String:
		s, ok := lv.(lua.LString)
		if !ok {
			return fields.Value{}, fmt.Errorf("want string, got %s", lv.Type())
		}
		return fields.StringValue(string(s)), nil
	case fields.Vector3:
		t, ok := lv.(*lua.LTable)
		if !ok {
			return fields.Value{}, fmt.Errorf("want vector table, got %s", lv.Type())
		}
		v, err := tableVec(t)
		if err != nil {
			return fields.Value{}, err
		}
		return fields.Vector3Value(v), nil
	case fields.EntityReference:
		switch e := lv.(type) {
		case *lua.LNilType:
			return fields.EntityValue(int32(engine.NoEntity)), nil
		case lua.LNumber:
			return fields.EntityValue(int32(e)), nil
		case *lua.LUserData:
			if ent, ok := e.Value.(engine.Entity); ok {
				return fields.EntityValue(int32(ent.ID())), nil
			}
		}
		return fields.Value{}, fmt.Errorf("want entity, got %s", lv.Type())
	}
	return fields.Value{}, fmt.Errorf("unknown %s", tag)
}

func (m *luaModule) newVec(v rl.Vector3) *lua.LTable {
	t := m.L.CreateTable(0, 3)
	t.RawSetString("x", lua.LNumber(v.X))
	t.RawSetString("y", lua.LNumber(v.Y))
	t.RawSetString("z", lua.LNumber(v.Z))
	return t
}

// tableVec reads {x=, y=, z=} or {x, y, z}.
func tableVec(t *lua.LTable) (rl.Vector3, error) {
	var xyz [3]float32
	for i, k := range []string{"x", "y", "z"} {
		lv := t.RawGetString(k)
		if lv == lua.LNil {
			lv = t.RawGetInt(i + 1)
		}
		n, ok := lv.(lua.LNumber)
		if !ok {
			return rl.Vector3{}, fmt.Errorf("vector component %s: want number, got %s", k, lv.Type())
		}
		xyz[i] = float32(n)
	}
	return rl.Vector3{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

// checkVec reads a vector argument at n, given either as a table or as three
// numbers.
func checkVec(L *lua.LState, n int) rl.Vector3 {
	if t, ok := L.Get(n).(*lua.LTable); ok {
		v, err := tableVec(t)
		if err != nil {
			L.ArgError(n, err.Error())
		}
		return v
	}
	return rl.Vector3{
		X: float32(L.CheckNumber(n)),
		Y: float32(L.CheckNumber(n + 1)),
		Z: float32(L.CheckNumber(n + 2)),
	}
}
