// Package luamod loads script modules written in Lua. Every load gets a fresh
// interpreter state running the module's bytes; unloading closes the state.
package luamod

import (
	"bytes"
	"claybridge/internal/engine"
	"claybridge/internal/module"
	"context"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Driver opens *.lua modules.
type Driver struct {
	env *engine.Env
	log *zap.Logger
}

func NewDriver(env *engine.Env, log *zap.Logger) *Driver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Driver{env: env, log: log.Named("lua")}
}

func (d *Driver) Name() string { return "lua" }

func (d *Driver) Accepts(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".lua")
}

func (d *Driver) Available(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// Open runs the module's top-level chunk, which declares its classes through
// the preloaded engine module.
func (d *Driver) Open(ctx context.Context, path string) (module.Module, error) {
	src, err := module.ReadSource(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(src.Path), filepath.Ext(src.Path))
	m := newModule(name, d.env, d.log.With(zap.String("module", name)))

	L := m.L
	pkg := L.GetGlobal("package")
	L.SetField(pkg, "path", lua.LString(filepath.Join(src.Dir, "?.lua")+";"+filepath.Join(src.Dir, "?", "init.lua")))
	L.SetField(pkg, "cpath", lua.LString(""))

	fn, err := L.Load(bytes.NewReader(src.Bytes), "@"+filepath.Base(src.Path))
	if err != nil {
		m.Close()
		return nil, err
	}
	L.SetContext(ctx)
	L.Push(fn)
	err = L.PCall(0, lua.MultRet, nil)
	L.RemoveContext()
	if err != nil {
		m.Close()
		return nil, err
	}
	L.SetTop(0)
	return m, nil
}
