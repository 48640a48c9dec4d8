package module

import (
	"claybridge/internal/fields"
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// State is the loader lifecycle state.
type State int32

const (
	Unloaded State = iota
	Loading
	Loaded
	Unloading
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Unloading:
		return "unloading"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

var errBusy = errors.New("module loader busy")

// Registrar receives every class and field of a module as it loads, so the
// host can show them in its inspector.
type Registrar interface {
	RegisterClass(c Class)
	RegisterProperty(d fields.Descriptor)
}

// Loader owns the currently loaded module.
type Loader struct {
	mu        sync.Mutex
	drivers   []Driver
	state     State
	mod       Module
	path      string
	classes   []Class
	byName    map[string]Class
	gen       uint64
	registrar Registrar
	hooks     []func()
	log       *zap.Logger
}

func NewLoader(log *zap.Logger, drivers ...Driver) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{drivers: drivers, log: log.Named("module")}
}

// AddDriver adds a driver. Drivers are tried in the order they were added.
func (l *Loader) AddDriver(d Driver) {
	l.mu.Lock()
	l.drivers = append(l.drivers, d)
	l.mu.Unlock()
}

// SetRegistrar sets where loaded classes are announced. Nil disables it.
func (l *Loader) SetRegistrar(r Registrar) {
	l.mu.Lock()
	l.registrar = r
	l.mu.Unlock()
}

// OnUnload adds fn to the hooks run while a module is torn down, before the
// module itself is closed. Hooks must not call back into the loader.
func (l *Loader) OnUnload(fn func()) {
	l.mu.Lock()
	l.hooks = append(l.hooks, fn)
	l.mu.Unlock()
}

func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Generation increments on every successful load.
func (l *Loader) Generation() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen
}

// Path returns the path of the loaded module, "" when none is loaded.
func (l *Loader) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path
}

// Available reports whether some driver can load path.
func (l *Loader) Available(path string) bool {
	d := l.driverFor(path)
	return d != nil && d.Available(path)
}

// LoadScripts replaces the loaded module with the one at path. On failure
// every individual problem is logged, nothing from the new module stays
// registered and the loader is left with no module.
func (l *Loader) LoadScripts(ctx context.Context, path string) error {
	if err := l.Unload(); err != nil {
		l.log.Warn("previous module did not close cleanly", zap.Error(err))
	}

	l.mu.Lock()
	if l.state != Unloaded {
		state := l.state
		l.mu.Unlock()
		return &ModuleLoadError{Path: path, Err: fmt.Errorf("%w: %s", errBusy, state)}
	}
	l.state = Loading
	l.mu.Unlock()

	mod, classes, err := l.open(ctx, path)
	if err != nil {
		for _, e := range multierr.Errors(err) {
			l.log.Error("module load failure", zap.String("path", path), zap.Error(e))
		}
		l.mu.Lock()
		l.state = Unloaded
		l.mu.Unlock()
		return &ModuleLoadError{Path: path, Err: err}
	}

	byName := make(map[string]Class, len(classes))
	for _, c := range classes {
		byName[c.Name()] = c
	}

	l.mu.Lock()
	l.mod = mod
	l.path = path
	l.classes = classes
	l.byName = byName
	l.gen++
	l.state = Loaded
	gen, reg := l.gen, l.registrar
	l.mu.Unlock()

	if reg != nil {
		for _, c := range classes {
			reg.RegisterClass(c)
			for _, d := range c.Fields() {
				reg.RegisterProperty(d)
			}
		}
	}
	l.log.Info("module loaded",
		zap.String("path", path),
		zap.String("module", mod.Name()),
		zap.Int("classes", len(classes)),
		zap.Uint64("generation", gen))
	return nil
}

func (l *Loader) open(ctx context.Context, path string) (Module, []Class, error) {
	d := l.driverFor(path)
	if d == nil {
		return nil, nil, fmt.Errorf("no driver accepts %q", path)
	}
	mod, err := d.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	all, err := mod.Classes()
	if err != nil {
		return nil, nil, multierr.Append(err, mod.Close())
	}

	var (
		kept []Class
		errs error
		seen = map[string]bool{}
	)
	for _, c := range all {
		if c.Abstract() {
			continue
		}
		if seen[c.Name()] {
			errs = multierr.Append(errs, fmt.Errorf("class %s declared more than once", c.Name()))
			continue
		}
		seen[c.Name()] = true
		kept = append(kept, c)
	}
	if errs != nil {
		return nil, nil, multierr.Append(errs, mod.Close())
	}
	return mod, kept, nil
}

func (l *Loader) driverFor(path string) Driver {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, d := range l.drivers {
		if d.Accepts(path) {
			return d
		}
	}
	return nil
}

// Unload tears the loaded module down: unload hooks run, the module is
// closed and memory is reclaimed. It is a no-op when nothing is loaded.
func (l *Loader) Unload() error {
	l.mu.Lock()
	if l.state != Loaded {
		l.mu.Unlock()
		return nil
	}
	l.state = Unloading
	mod, path := l.mod, l.path
	hooks := slices.Clone(l.hooks)
	l.mu.Unlock()

	for _, h := range hooks {
		h()
	}
	err := mod.Close()

	l.mu.Lock()
	l.mod = nil
	l.path = ""
	l.classes = nil
	l.byName = nil
	l.state = Unloaded
	l.mu.Unlock()

	runtime.GC()
	l.log.Info("module unloaded", zap.String("path", path))
	return err
}

// ResolveType finds a loaded class by exact full name, then by
// case-insensitive short name. When several classes share a short name the
// first registered wins.
func (l *Loader) ResolveType(name string) (Class, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if c, ok := l.byName[name]; ok {
		return c, true
	}
	var (
		found   Class
		matches int
	)
	for _, c := range l.classes {
		if strings.EqualFold(c.ShortName(), name) {
			if found == nil {
				found = c
			}
			matches++
		}
	}
	if matches > 1 {
		l.log.Warn("ambiguous short class name, using first registered",
			zap.String("name", name), zap.String("class", found.Name()), zap.Int("matches", matches))
	}
	return found, found != nil
}

// Classes returns the loaded classes in registration order.
func (l *Loader) Classes() []Class {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.classes)
}

// Names returns the full names of the loaded classes in registration order.
func (l *Loader) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, len(l.classes))
	for i, c := range l.classes {
		names[i] = c.Name()
	}
	return names
}
