package luamod

import (
	"claybridge/internal/engine"
	"claybridge/internal/fields"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

var keyNames = map[string]engine.Key{
	"space":  engine.KeySpace,
	"a":      engine.KeyA,
	"d":      engine.KeyD,
	"e":      engine.KeyE,
	"f":      engine.KeyF,
	"q":      engine.KeyQ,
	"r":      engine.KeyR,
	"s":      engine.KeyS,
	"w":      engine.KeyW,
	"escape": engine.KeyEscape,
	"enter":  engine.KeyEnter,
	"tab":    engine.KeyTab,
	"right":  engine.KeyRight,
	"left":   engine.KeyLeft,
	"down":   engine.KeyDown,
	"up":     engine.KeyUp,
	"shift":  engine.KeyShift,
	"ctrl":   engine.KeyCtrl,
}

var mouseNames = map[string]engine.MouseButton{
	"left":   engine.MouseLeft,
	"right":  engine.MouseRight,
	"middle": engine.MouseMiddle,
}

// openEngine is the loader of the preloaded "engine" Lua module.
func (m *luaModule) openEngine(L *lua.LState) int {
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"class":  m.declareClass,
		"int":    m.fieldCtor(fields.Int),
		"float":  m.fieldCtor(fields.Float),
		"bool":   m.fieldCtor(fields.Bool),
		"string": m.fieldCtor(fields.String),
		"vec3":   m.fieldCtor(fields.Vector3),
		"entity": m.fieldCtor(fields.EntityReference),

		"wait":       luaWait,
		"next_frame": luaNextFrame,

		"log": m.luaLog,

		"find": func(L *lua.LState) int {
			e, ok := m.env.Find(L.CheckString(1))
			return m.pushEntity(L, e, ok)
		},
		"create": func(L *lua.LState) int {
			e, ok := m.env.Create(L.CheckString(1))
			return m.pushEntity(L, e, ok)
		},
		"key_held": func(L *lua.LState) int {
			L.Push(lua.LBool(m.env.Input().KeyHeld(checkKey(L, 1))))
			return 1
		},
		"key_down": func(L *lua.LState) int {
			L.Push(lua.LBool(m.env.Input().KeyDown(checkKey(L, 1))))
			return 1
		},
		"mouse_down": func(L *lua.LState) int {
			L.Push(lua.LBool(m.env.Input().MouseDown(checkMouse(L, 1))))
			return 1
		},
		"mouse_delta": func(L *lua.LState) int {
			d := m.env.Input().MouseDelta()
			L.Push(lua.LNumber(d.X))
			L.Push(lua.LNumber(d.Y))
			return 2
		},
		"set_mouse_mode": func(L *lua.LState) int {
			m.env.Input().SetMouseMode(engine.MouseMode(L.CheckInt(1)))
			return 0
		},
	})

	keys := L.CreateTable(0, len(keyNames))
	for name, k := range keyNames {
		keys.RawSetString(name, lua.LNumber(k))
	}
	L.SetField(mod, "key", keys)

	L.Push(mod)
	return 1
}

// luaWait suspends the calling script for the given number of seconds.
func luaWait(L *lua.LState) int {
	secs := L.CheckNumber(1)
	return L.Yield(lua.LString("wait"), secs)
}

// luaNextFrame suspends the calling script until the next frame.
func luaNextFrame(L *lua.LState) int {
	return L.Yield(lua.LString("frame"))
}

func (m *luaModule) luaLog(L *lua.LState) int {
	parts := make([]string, L.GetTop())
	for i := range parts {
		parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
	}
	m.env.NativeLog(strings.Join(parts, " "))
	return 0
}

// checkKey accepts a key code or a name from engine.key.
func checkKey(L *lua.LState, n int) engine.Key {
	if s, ok := L.Get(n).(lua.LString); ok {
		k, found := keyNames[strings.ToLower(string(s))]
		if !found {
			L.ArgError(n, "unknown key "+string(s))
		}
		return k
	}
	return engine.Key(L.CheckInt(n))
}

func checkMouse(L *lua.LState, n int) engine.MouseButton {
	if s, ok := L.Get(n).(lua.LString); ok {
		b, found := mouseNames[strings.ToLower(string(s))]
		if !found {
			L.ArgError(n, "unknown mouse button "+string(s))
		}
		return b
	}
	return engine.MouseButton(L.CheckInt(n))
}
