package luamod

import (
	"claybridge/internal/components"
	"claybridge/internal/engine"

	lua "github.com/yuin/gopher-lua"
)

const entityTypeName = "engine.entity"

func registerEntityType(m *luaModule) {
	L := m.L
	mt := L.NewTypeMetatable(entityTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), m.entityMethods()))
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(checkEntity(L, 1).String()))
		return 1
	}))
	L.SetField(mt, "__eq", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(checkEntity(L, 1).ID() == checkEntity(L, 2).ID()))
		return 1
	}))
}

func (m *luaModule) newEntity(e engine.Entity) *lua.LUserData {
	ud := m.L.NewUserData()
	ud.Value = e
	m.L.SetMetatable(ud, m.L.GetTypeMetatable(entityTypeName))
	return ud
}

func checkEntity(L *lua.LState, n int) engine.Entity {
	ud := L.CheckUserData(n)
	if e, ok := ud.Value.(engine.Entity); ok {
		return e
	}
	L.ArgError(n, "entity expected")
	return engine.Entity{}
}

func (m *luaModule) pushEntity(L *lua.LState, e engine.Entity, ok bool) int {
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(m.newEntity(e))
	return 1
}

func (m *luaModule) entityMethods() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"id": func(L *lua.LState) int {
			L.Push(lua.LNumber(checkEntity(L, 1).ID()))
			return 1
		},
		"position": func(L *lua.LState) int {
			L.Push(m.newVec(checkEntity(L, 1).Transform().Position()))
			return 1
		},
		"set_position": func(L *lua.LState) int {
			checkEntity(L, 1).Transform().SetPosition(checkVec(L, 2))
			return 0
		},
		"translate": func(L *lua.LState) int {
			checkEntity(L, 1).Transform().Translate(checkVec(L, 2))
			return 0
		},
		"rotation": func(L *lua.LState) int {
			L.Push(m.newVec(checkEntity(L, 1).Transform().Rotation()))
			return 1
		},
		"set_rotation": func(L *lua.LState) int {
			checkEntity(L, 1).Transform().SetRotation(checkVec(L, 2))
			return 0
		},
		"rotate": func(L *lua.LState) int {
			checkEntity(L, 1).Transform().Rotate(checkVec(L, 2))
			return 0
		},
		"scale": func(L *lua.LState) int {
			L.Push(m.newVec(checkEntity(L, 1).Transform().Scale()))
			return 1
		},
		"set_scale": func(L *lua.LState) int {
			checkEntity(L, 1).Transform().SetScale(checkVec(L, 2))
			return 0
		},
		"forward": func(L *lua.LState) int {
			L.Push(m.newVec(checkEntity(L, 1).Transform().Forward()))
			return 1
		},
		"destroy": func(L *lua.LState) int {
			checkEntity(L, 1).Destroy()
			return 0
		},
		"has_component": func(L *lua.LState) int {
			L.Push(lua.LBool(checkEntity(L, 1).HasComponent(L.CheckString(2))))
			return 1
		},
		"add_component": func(L *lua.LState) int {
			components.AddNamed(checkEntity(L, 1), L.CheckString(2))
			return 0
		},
		"remove_component": func(L *lua.LState) int {
			components.RemoveNamed(checkEntity(L, 1), L.CheckString(2))
			return 0
		},
		"get_script": m.getScript,
		"set_light_color": func(L *lua.LState) int {
			if l := components.Get[components.Light](checkEntity(L, 1)); l != nil {
				l.SetColor(checkVec(L, 2))
			}
			return 0
		},
		"set_light_intensity": func(L *lua.LState) int {
			if l := components.Get[components.Light](checkEntity(L, 1)); l != nil {
				l.SetIntensity(float32(L.CheckNumber(2)))
			}
			return 0
		},
		"set_mass": func(L *lua.LState) int {
			if rb := components.Get[components.RigidBody](checkEntity(L, 1)); rb != nil {
				rb.SetMass(float32(L.CheckNumber(2)))
			}
			return 0
		},
		"set_velocity": func(L *lua.LState) int {
			checkEntity(L, 1).SetLinearVelocity(checkVec(L, 2))
			return 0
		},
		"animator_set_bool": func(L *lua.LState) int {
			if a := components.Get[components.Animator](checkEntity(L, 1)); a != nil {
				a.SetBool(L.CheckString(2), L.CheckBool(3))
			}
			return 0
		},
		"animator_set_float": func(L *lua.LState) int {
			if a := components.Get[components.Animator](checkEntity(L, 1)); a != nil {
				a.SetFloat(L.CheckString(2), float32(L.CheckNumber(3)))
			}
			return 0
		},
		"animator_set_int": func(L *lua.LState) int {
			if a := components.Get[components.Animator](checkEntity(L, 1)); a != nil {
				a.SetInt(L.CheckString(2), int32(L.CheckInt(3)))
			}
			return 0
		},
		"animator_set_trigger": func(L *lua.LState) int {
			if a := components.Get[components.Animator](checkEntity(L, 1)); a != nil {
				a.SetTrigger(L.CheckString(2))
			}
			return 0
		},
		"nav_move_to": m.navMoveTo,
	}
}

// getScript returns the self table of the script of the named class attached
// to the entity, or nil.
func (m *luaModule) getScript(L *lua.LState) int {
	e := checkEntity(L, 1)
	c := m.classNamed(L.CheckString(2))
	if c == nil {
		L.Push(lua.LNil)
		return 1
	}
	s, ok := m.env.Script(e.ID(), c)
	inst, isLua := s.(*Instance)
	if !ok || !isLua {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(inst.self)
	return 1
}

// navMoveTo sends the entity's NavAgent to a destination. The optional
// callback runs with the outcome once the agent arrives or gives up.
func (m *luaModule) navMoveTo(L *lua.LState) int {
	e := checkEntity(L, 1)
	dest := checkVec(L, 2)
	cb, _ := L.Get(L.GetTop()).(*lua.LFunction)
	agent := components.Get[components.NavAgent](e)
	if agent == nil {
		L.Push(lua.LFalse)
		return 1
	}
	var done func(bool)
	if cb != nil {
		done = func(success bool) { m.run("nav_move_to callback", cb, lua.LBool(success)) }
	}
	agent.MoveTo(dest, done)
	L.Push(lua.LTrue)
	return 1
}
