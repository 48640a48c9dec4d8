package luamod

import (
	"claybridge/internal/engine"
	"claybridge/internal/module"
	"errors"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var errClosed = errors.New("lua module closed")

// luaModule owns one interpreter state. It is used from the engine thread
// only.
type luaModule struct {
	name    string
	L       *lua.LState
	env     *engine.Env
	log     *zap.Logger
	classes []*luaClass
	errs    error
	closed  bool

	fieldSeq int
}

func newModule(name string, env *engine.Env, log *zap.Logger) *luaModule {
	m := &luaModule{
		name: name,
		L:    lua.NewState(),
		env:  env,
		log:  log,
	}
	m.L.PreloadModule("engine", m.openEngine)
	registerEntityType(m)
	registerFieldType(m.L)
	return m
}

func (m *luaModule) Name() string { return m.name }

func (m *luaModule) Classes() ([]module.Class, error) {
	out := make([]module.Class, len(m.classes))
	for i, c := range m.classes {
		out[i] = c
	}
	return out, m.errs
}

// Close closes the state. Suspended coroutines are dropped the next time they
// would resume.
func (m *luaModule) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	m.L.Close()
	return nil
}

func (m *luaModule) fail(err error) {
	m.errs = multierr.Append(m.errs, err)
}

// classNamed finds a class of this module by full or short name.
func (m *luaModule) classNamed(name string) *luaClass {
	for _, c := range m.classes {
		if c.name == name {
			return c
		}
	}
	for _, c := range m.classes {
		if strings.EqualFold(c.short, name) {
			return c
		}
	}
	return nil
}

// spawn runs fn in a new coroutine. If fn suspends through engine.wait or
// engine.next_frame the remainder is scheduled as a continuation.
func (m *luaModule) spawn(fn *lua.LFunction, args ...lua.LValue) error {
	if m.closed {
		return errClosed
	}
	co, _ := m.L.NewThread()
	return m.resume(co, fn, args...)
}

func (m *luaModule) resume(co *lua.LState, fn *lua.LFunction, args ...lua.LValue) error {
	st, err, values := m.L.Resume(co, fn, args...)
	switch st {
	case lua.ResumeError:
		return err
	case lua.ResumeOK:
		return nil
	}

	next := func() error {
		if m.closed {
			return nil
		}
		return m.resume(co, fn)
	}
	if len(values) >= 2 && values[0] == lua.LString("wait") {
		secs := float64(lua.LVAsNumber(values[1]))
		m.env.Sched.After(time.Duration(secs*float64(time.Second)), next)
		return nil
	}
	m.env.Sched.Post(next)
	return nil
}

// run is spawn for lifecycle calls, which have nowhere to return an error.
func (m *luaModule) run(what string, fn *lua.LFunction, args ...lua.LValue) {
	if err := m.spawn(fn, args...); err != nil && !errors.Is(err, errClosed) {
		m.log.Error("script error", zap.String("call", what), zap.Error(err))
	}
}
