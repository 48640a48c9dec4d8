package luamod_test

import (
	"claybridge/internal/calltable"
	"claybridge/internal/components"
	"claybridge/internal/engine"
	"claybridge/internal/fields"
	"claybridge/internal/module"
	"claybridge/internal/module/luamod"
	"claybridge/internal/scheduler"
	"claybridge/internal/simhost"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type lookupKey struct {
	owner engine.EntityID
	key   any
}

type scriptIndex map[lookupKey]engine.Script

func (s scriptIndex) Lookup(owner engine.EntityID, key any) (engine.Script, bool) {
	v, ok := s[lookupKey{owner, key}]
	return v, ok
}

type harness struct {
	t       *testing.T
	world   *simhost.World
	env     *engine.Env
	loader  *module.Loader
	logs    *observer.ObservedLogs
	scripts scriptIndex
	dir     string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	w := simhost.New(nil)
	tables := calltable.New(w.Linker(), log)
	_, err := w.Bind(tables)
	require.NoError(t, err)

	env := engine.NewEnv(tables, scheduler.New(log), log)
	scripts := scriptIndex{}
	env.SetScriptLookup(scripts)

	cb, err := w.Linker().Callback(func(agent uint64, success bool) {
		env.Sched.Post(scheduler.Func(func() {
			components.CompletePath(env, engine.EntityID(agent), success)
		}))
	})
	require.NoError(t, err)
	tables.Navigation.Fn.SetPathCompleteCallback(cb)

	loader := module.NewLoader(log, luamod.NewDriver(env, log))
	t.Cleanup(func() { _ = loader.Unload() })

	return &harness{t: t, world: w, env: env, loader: loader, logs: logs, scripts: scripts, dir: t.TempDir()}
}

func (h *harness) write(name, src string) string {
	h.t.Helper()
	path := filepath.Join(h.dir, name)
	require.NoError(h.t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func (h *harness) load(name, src string) {
	h.t.Helper()
	require.NoError(h.t, h.loader.LoadScripts(context.Background(), h.write(name, src)))
}

// spawn creates an instance of class on a new entity.
func (h *harness) spawn(class, entity string) (module.Class, engine.Script, *simhost.Object) {
	h.t.Helper()
	c, ok := h.loader.ResolveType(class)
	require.True(h.t, ok, "class %s", class)
	s, err := c.New()
	require.NoError(h.t, err)
	o := h.world.Spawn(entity)
	s.Bind(h.env.Entity(engine.EntityID(o.ID)))
	h.scripts[lookupKey{engine.EntityID(o.ID), c.TypeKey()}] = s
	return c, s, o
}

const spinnerSrc = `
local engine = require("engine")

local Spinner = engine.class {
  name = "Spinner",
  fields = {
    speed = engine.float(90),
    axis = engine.vec3(0, 1, 0),
    label = engine.string("spin"),
    target = engine.entity(),
    enabled = engine.bool(true),
    turns = engine.int(0),
  },
}

function Spinner:on_create()
  self.entity:set_position(1, 2, 3)
  engine.log("created", self.label)
end

function Spinner:on_update(dt)
  self.entity:rotate({x = 0, y = self.speed * dt, z = 0})
  self.turns = self.turns + 1
end

function Spinner:reverse()
  self.speed = -self.speed
end
`

func TestLoadDeclaresClasses(t *testing.T) {
	h := newHarness(t)
	h.load("game.lua", spinnerSrc)

	assert.Equal(t, []string{"game.Spinner"}, h.loader.Names())
	assert.Equal(t, module.Loaded, h.loader.State())

	c, ok := h.loader.ResolveType("spinner")
	require.True(t, ok)
	assert.Equal(t, "Spinner", c.ShortName())

	var names []string
	for _, d := range c.Fields() {
		names = append(names, d.Name)
		assert.Equal(t, "game.Spinner", d.Class)
	}
	assert.Equal(t, []string{"speed", "axis", "label", "target", "enabled", "turns"}, names)

	speed, _ := fields.Find(c.Fields(), "speed")
	assert.Equal(t, fields.FloatValue(90), speed.Default)
	axis, _ := fields.Find(c.Fields(), "axis")
	assert.Equal(t, fields.Vector3Value(rl.Vector3{Y: 1}), axis.Default)
	target, _ := fields.Find(c.Fields(), "target")
	assert.Equal(t, fields.EntityValue(-1), target.Default)
}

func TestLifecycle(t *testing.T) {
	h := newHarness(t)
	h.load("game.lua", spinnerSrc)
	c, s, o := h.spawn("Spinner", "Top")

	s.OnCreate()
	assert.Equal(t, rl.Vector3{X: 1, Y: 2, Z: 3}, h.world.Object(o.ID).Transform.Position)
	assert.Equal(t, []string{"created spin"}, h.world.Logs())

	s.OnUpdate(0.5)
	assert.Equal(t, float32(45), h.world.Object(o.ID).Transform.Rotation.Y)
	turns, err := c.Field(s, "turns")
	require.NoError(t, err)
	assert.Equal(t, fields.IntValue(1), turns)

	require.NoError(t, c.Invoke(s, "reverse"))
	speed, err := c.Field(s, "speed")
	require.NoError(t, err)
	assert.Equal(t, fields.FloatValue(-90), speed)

	assert.Error(t, c.Invoke(s, "missing"))
}

func TestSetField(t *testing.T) {
	h := newHarness(t)
	h.load("game.lua", spinnerSrc)
	c, s, _ := h.spawn("Spinner", "Top")
	other := h.world.Spawn("Other")

	require.NoError(t, c.SetField(s, "axis", fields.Vector3Value(rl.Vector3{X: 1})))
	require.NoError(t, c.SetField(s, "target", fields.EntityValue(other.ID)))
	require.NoError(t, c.SetField(s, "label", fields.StringValue("fast")))

	v, err := c.Field(s, "axis")
	require.NoError(t, err)
	assert.Equal(t, rl.Vector3{X: 1}, v.V)
	v, err = c.Field(s, "target")
	require.NoError(t, err)
	assert.Equal(t, other.ID, v.I)

	err = c.SetField(s, "speed", fields.StringValue("fast"))
	var ferr *fields.FieldReflectionError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, "speed", ferr.Field)

	err = c.SetField(s, "nope", fields.IntValue(1))
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, "nope", ferr.Field)
}

func TestSuspension(t *testing.T) {
	h := newHarness(t)
	h.load("waits.lua", `
local engine = require("engine")
local Waiter = engine.class { name = "Waiter" }
function Waiter:on_create()
  engine.log("a")
  engine.next_frame()
  engine.log("b")
  engine.wait(0.01)
  engine.log("c")
end
`)
	_, s, _ := h.spawn("Waiter", "W")

	s.OnCreate()
	assert.Equal(t, []string{"a"}, h.world.Logs())
	assert.Equal(t, 1, h.env.Sched.Pending())

	h.env.Sched.Flush()
	assert.Equal(t, []string{"a", "b"}, h.world.Logs())

	assert.Eventually(t, func() bool {
		h.env.Sched.Flush()
		return len(h.world.Logs()) == 3
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "c", h.world.Logs()[2])
}

func TestScriptErrorsAreContained(t *testing.T) {
	h := newHarness(t)
	h.load("broken.lua", `
local engine = require("engine")
local Broken = engine.class { name = "Broken" }
function Broken:on_update(dt) error("boom") end
function Broken:later()
  engine.next_frame()
  error("late boom")
end
`)
	c, s, _ := h.spawn("Broken", "B")

	s.OnUpdate(0.016)
	errs := h.logs.FilterMessage("script error").All()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].ContextMap()["error"], "boom")

	require.NoError(t, c.Invoke(s, "later"))
	h.env.Sched.Flush()
	assert.Equal(t, int64(1), h.env.Sched.Faults())
}

func TestLoadFailures(t *testing.T) {
	h := newHarness(t)
	path := h.write("bad.lua", `
local engine = require("engine")
engine.class { name = "Fine" }
engine.class { fields = {} }
engine.class { name = "BadField", fields = { speed = 3 } }
`)
	err := h.loader.LoadScripts(context.Background(), path)
	var lerr *module.ModuleLoadError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, module.Unloaded, h.loader.State())
	assert.Empty(t, h.loader.Names())
	assert.Equal(t, 2, h.logs.FilterMessage("module load failure").Len())

	var ferr *fields.FieldReflectionError
	assert.True(t, errors.As(err, &ferr))
}

func TestLoadSyntaxError(t *testing.T) {
	h := newHarness(t)
	err := h.loader.LoadScripts(context.Background(), h.write("syntax.lua", "engine.class {"))
	assert.Error(t, err)
	assert.Equal(t, module.Unloaded, h.loader.State())
}

func TestDuplicateClass(t *testing.T) {
	h := newHarness(t)
	err := h.loader.LoadScripts(context.Background(), h.write("dup.lua", `
local engine = require("engine")
engine.class { name = "Dup" }
engine.class { name = "Dup" }
`))
	assert.ErrorContains(t, err, "declared more than once")
}

func TestAbstractAndInheritance(t *testing.T) {
	h := newHarness(t)
	h.load("units.lua", `
local engine = require("engine")

local Unit = engine.class {
  name = "Unit",
  abstract = true,
  fields = { hp = engine.int(10), speed = engine.float(1) },
}
function Unit:hurt() self.hp = self.hp - 1 end

engine.class {
  name = "Soldier",
  extends = Unit,
  fields = { rank = engine.string("private"), speed = engine.float(2) },
}
`)
	assert.Equal(t, []string{"units.Soldier"}, h.loader.Names())

	c, s, _ := h.spawn("Soldier", "S")
	var names []string
	for _, d := range c.Fields() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"hp", "speed", "rank"}, names)
	speed, _ := fields.Find(c.Fields(), "speed")
	assert.Equal(t, fields.FloatValue(2), speed.Default)

	require.NoError(t, c.Invoke(s, "hurt"))
	hp, err := c.Field(s, "hp")
	require.NoError(t, err)
	assert.Equal(t, int32(9), hp.I)
}

func TestAmbiguousShortName(t *testing.T) {
	h := newHarness(t)
	h.load("bosses.lua", `
local engine = require("engine")
engine.class { name = "enemies.Boss" }
engine.class { name = "bosses.Boss" }
`)
	c, ok := h.loader.ResolveType("boss")
	require.True(t, ok)
	assert.Equal(t, "enemies.Boss", c.Name())
	assert.Equal(t, 1, h.logs.FilterMessage("ambiguous short class name, using first registered").Len())

	c, ok = h.loader.ResolveType("bosses.Boss")
	require.True(t, ok)
	assert.Equal(t, "bosses.Boss", c.Name())
}

func TestReloadDropsOldContinuations(t *testing.T) {
	h := newHarness(t)
	path := h.write("game.lua", `
local engine = require("engine")
local Spinner = engine.class { name = "Spinner" }
function Spinner:on_create()
  engine.next_frame()
  engine.log("v1 resumed")
end
`)
	require.NoError(t, h.loader.LoadScripts(context.Background(), path))
	c, s, _ := h.spawn("Spinner", "Top")
	s.OnCreate()
	require.Equal(t, 1, h.env.Sched.Pending())

	h.write("game.lua", `
local engine = require("engine")
engine.class { name = "Spinner2" }
`)
	require.NoError(t, h.loader.LoadScripts(context.Background(), path))
	assert.Equal(t, uint64(2), h.loader.Generation())

	h.env.Sched.Flush()
	assert.Empty(t, h.world.Logs())
	assert.Zero(t, h.env.Sched.Faults())

	_, ok := h.loader.ResolveType("Spinner")
	assert.False(t, ok)
	_, ok = h.loader.ResolveType("Spinner2")
	assert.True(t, ok)

	_, err := c.New()
	assert.Error(t, err, "classes of a closed module cannot construct")
	s.OnUpdate(0.016)
}

func TestRequireFromModuleDir(t *testing.T) {
	h := newHarness(t)
	h.write("util.lua", `return { double = function(x) return x * 2 end }`)
	h.load("main.lua", `
local engine = require("engine")
local util = require("util")
engine.class { name = "Counter", fields = { n = engine.int(util.double(21)) } }
`)
	c, ok := h.loader.ResolveType("Counter")
	require.True(t, ok)
	n, _ := fields.Find(c.Fields(), "n")
	assert.Equal(t, fields.IntValue(42), n.Default)
}

func TestGetScript(t *testing.T) {
	h := newHarness(t)
	h.load("combat.lua", `
local engine = require("engine")
engine.class { name = "Health", fields = { hp = engine.int(10) } }
local Attacker = engine.class { name = "Attacker", fields = { target = engine.entity() } }
function Attacker:hit()
  local h = self.target:get_script("Health")
  h.hp = h.hp - 3
end
`)
	hc, health, victim := h.spawn("Health", "Victim")
	ac, attacker, _ := h.spawn("Attacker", "Hero")
	require.NoError(t, ac.SetField(attacker, "target", fields.EntityValue(victim.ID)))

	require.NoError(t, ac.Invoke(attacker, "hit"))
	hp, err := hc.Field(health, "hp")
	require.NoError(t, err)
	assert.Equal(t, int32(7), hp.I)
}

func TestEngineAPI(t *testing.T) {
	h := newHarness(t)
	h.load("api.lua", `
local engine = require("engine")
local Probe = engine.class { name = "Probe" }
function Probe:run()
  local lamp = engine.create("Lamp")
  lamp:add_component("Light")
  lamp:set_light_color(1, 0.5, 0)
  lamp:set_light_intensity(4)
  engine.log("found", engine.find("Lamp") == lamp, engine.find("Nobody") == nil)
  engine.log("keys", engine.key_held("w"), engine.key_down(engine.key.space))
  local dx, dy = engine.mouse_delta()
  engine.log("mouse", dx, dy, engine.mouse_down("left"))
  self.entity:set_velocity({x = 1, y = 0, z = 0})
  engine.set_mouse_mode(2)
end
`)
	h.world.SetKey(int32(engine.KeyW), true)
	h.world.SetMouseDelta(rl.Vector2{X: 2, Y: 3})
	c, s, o := h.spawn("Probe", "P")

	require.NoError(t, c.Invoke(s, "run"))
	assert.Equal(t, []string{"found true true", "keys true false", "mouse 2 3 false"}, h.world.Logs())

	lamp := h.world.FindByName("Lamp")
	require.NotNil(t, lamp)
	light := lamp.Component("Light")
	require.NotNil(t, light)
	assert.Equal(t, rl.Vector3{X: 1, Y: 0.5}, light.Vectors["color"])
	assert.Equal(t, float32(4), light.Floats["intensity"])
	assert.Equal(t, rl.Vector3{X: 1}, h.world.Object(o.ID).LinearVelocity)
	assert.Equal(t, int32(2), h.world.MouseMode())
}

func TestNavMoveTo(t *testing.T) {
	h := newHarness(t)
	h.load("walk.lua", `
local engine = require("engine")
local Walker = engine.class { name = "Walker" }
function Walker:go()
  self.entity:nav_move_to({x = 2, y = 0, z = 0}, function(ok) engine.log("arrived", ok) end)
end
`)
	c, s, o := h.spawn("Walker", "Walker")
	o.AddComponent("NavAgent")

	require.NoError(t, c.Invoke(s, "go"))
	h.world.Step(1)
	h.env.Sched.Flush()
	assert.Equal(t, []string{"arrived true"}, h.world.Logs())
}

func TestDriverAccepts(t *testing.T) {
	d := luamod.NewDriver(nil, nil)
	assert.True(t, d.Accepts("scripts/Game.LUA"))
	assert.False(t, d.Accepts("builtin:game"))
	assert.False(t, d.Available(filepath.Join(t.TempDir(), "missing.lua")))
}
