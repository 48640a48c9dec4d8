// Package bridge owns every piece of the script bridge and exposes the entry
// points a native host calls: interop init, script lifecycle, field writes,
// module reloads and the per-frame flush.
package bridge

import (
	"claybridge/internal/calltable"
	"claybridge/internal/config"
	"claybridge/internal/engine"
	"claybridge/internal/handles"
	"claybridge/internal/logging"
	"claybridge/internal/module"
	"claybridge/internal/module/luamod"
	"claybridge/internal/registry"
	"claybridge/internal/scheduler"
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	// ErrNotCreated rejects an update of an instance whose OnCreate has not run.
	ErrNotCreated = errors.New("script not created")
	// ErrAlreadyUpdated rejects a second update of an instance in one frame.
	ErrAlreadyUpdated = errors.New("script already updated this frame")
)

// Options configures a Bridge.
type Options struct {
	// Linker links native addresses. Nil means calltable.PuregoLinker.
	Linker calltable.Linker
	Log    *zap.Logger
	// Config supplies the module path ManagedStart loads. Nil means
	// config.Default.
	Config *config.Config
	// Catalogs are the builtin script catalogs reachable as builtin:<name>.
	Catalogs []*module.Catalog
	// NativeLog is attached to the native log function once the input table
	// is bound.
	NativeLog *logging.NativeSink
}

type instance struct {
	class   module.Class
	script  engine.Script
	owner   engine.EntityID
	created bool
	// updated is the frame of the last update plus one.
	updated uint64
}

// Bridge is the owning context of one script runtime.
type Bridge struct {
	calls   *calltable.Tables
	sched   *scheduler.Scheduler
	env     *engine.Env
	loader  *module.Loader
	scripts *registry.Registry
	tokens  *handles.Registry[*instance]
	cfg     *config.Config
	sink    *logging.NativeSink
	log     *zap.Logger

	frame atomic.Uint64
}

func New(opts Options) *Bridge {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	linker := opts.Linker
	if linker == nil {
		linker = calltable.PuregoLinker{}
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	calls := calltable.New(linker, log)
	sched := scheduler.New(log)
	env := engine.NewEnv(calls, sched, log.Named("script"))
	loader := module.NewLoader(log,
		module.NewBuiltinDriver(opts.Catalogs...),
		luamod.NewDriver(env, log),
	)
	scripts := registry.New(loader, log)
	env.SetScriptLookup(scripts)

	b := &Bridge{
		calls:   calls,
		sched:   sched,
		env:     env,
		loader:  loader,
		scripts: scripts,
		tokens:  handles.New[*instance](),
		cfg:     cfg,
		sink:    opts.NativeLog,
		log:     log.Named("bridge"),
	}
	loader.OnUnload(b.teardown)
	return b
}

func (b *Bridge) Tables() *calltable.Tables       { return b.calls }
func (b *Bridge) Scheduler() *scheduler.Scheduler { return b.sched }
func (b *Bridge) Env() *engine.Env                { return b.env }
func (b *Bridge) Loader() *module.Loader          { return b.loader }
func (b *Bridge) Registry() *registry.Registry    { return b.scripts }

// Frame returns the number of completed flushes.
func (b *Bridge) Frame() uint64 { return b.frame.Load() }

// Live returns the number of live script tokens.
func (b *Bridge) Live() int { return b.tokens.Len() }

// ManagedStart loads the script module at path, or at the configured module
// path when path is empty. A missing module is logged and is not a failure.
// It returns 0, or -1 when the module exists but failed to load.
func (b *Bridge) ManagedStart(ctx context.Context, path string) int {
	if path == "" {
		path = b.cfg.ModulePath()
	} else {
		path = b.cfg.Resolve(path)
	}
	if !b.loader.Available(path) {
		b.log.Info("no script module, continuing without scripts", zap.String("path", path))
		return 0
	}
	if err := b.loader.LoadScripts(ctx, path); err != nil {
		return -1
	}
	return 0
}

// ReloadScripts replaces the loaded module with the one at path. It returns
// 0 on success and -1 on any failure, which is logged.
func (b *Bridge) ReloadScripts(ctx context.Context, path string) (status int) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("reload panicked", zap.String("path", path), zap.Any("panic", r), zap.Stack("stack"))
			status = -1
		}
	}()
	if path == "" {
		path = b.cfg.ModulePath()
	} else {
		path = b.cfg.Resolve(path)
	}
	if err := b.loader.LoadScripts(ctx, path); err != nil {
		b.log.Error("reload failed", zap.String("path", path), zap.Error(err))
		return -1
	}
	return 0
}

// teardown runs while a module unloads: every token of the old module goes
// stale and nothing cached from it survives.
func (b *Bridge) teardown() {
	dropped := b.tokens.Drain()
	b.scripts.Reset()
	b.env.ResetMemo()
	b.sched.Clear()
	if len(dropped) > 0 {
		b.log.Info("script instances dropped with module", zap.Int("count", len(dropped)))
	}
}

// Flush drains the continuation queue and ends the frame. Call it once per
// frame after every ScriptOnUpdate.
func (b *Bridge) Flush() int {
	n := b.sched.Flush()
	b.frame.Add(1)
	return n
}

// Clear discards every pending continuation.
func (b *Bridge) Clear() { b.sched.Clear() }

// InstallSyncContext makes the calling thread the engine thread.
func (b *Bridge) InstallSyncContext() { b.sched.Install() }

func (b *Bridge) EnsureInstalledHere() { b.sched.EnsureInstalledHere() }

// Close unloads the module and drops pending work.
func (b *Bridge) Close() error {
	err := b.loader.Unload()
	b.sched.Clear()
	return err
}

func (b *Bridge) instance(tok handles.Token) (*instance, error) {
	inst, err := b.tokens.Get(tok)
	if err != nil {
		return nil, fmt.Errorf("token %s: %w", tok, err)
	}
	return inst, nil
}

// guard runs fn, turning a panic into an error logged with the class and
// token.
func (b *Bridge) guard(inst *instance, tok handles.Token, what string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s %s panicked: %v", inst.class.Name(), what, r)
			b.log.Error("script panicked",
				zap.String("class", inst.class.Name()),
				zap.Stringer("token", tok),
				zap.String("call", what),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()
	return fn()
}
