package module

import (
	"claybridge/internal/engine"
	"claybridge/internal/fields"
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"go.uber.org/multierr"
)

// BuiltinScheme prefixes module paths that name a compiled-in Catalog.
const BuiltinScheme = "builtin:"

// Catalog is a set of Go script classes compiled into the binary. Generated
// code adds classes to it from init functions.
type Catalog struct {
	name string

	mu      sync.Mutex
	factory []func() engine.Script
}

func NewCatalog(name string) *Catalog {
	return &Catalog{name: name}
}

func (c *Catalog) Name() string { return c.name }

// Add registers a class by its factory. The factory must return a new
// pointer to a struct on every call; the value it returns at load time
// provides the field defaults.
func (c *Catalog) Add(newFn func() engine.Script) {
	c.mu.Lock()
	c.factory = append(c.factory, newFn)
	c.mu.Unlock()
}

// Len returns the number of registered classes.
func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.factory)
}

func (c *Catalog) snapshot() []func() engine.Script {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]func() engine.Script(nil), c.factory...)
}

// BuiltinDriver opens "builtin:<catalog>" paths.
type BuiltinDriver struct {
	catalogs map[string]*Catalog
}

func NewBuiltinDriver(catalogs ...*Catalog) *BuiltinDriver {
	d := &BuiltinDriver{catalogs: map[string]*Catalog{}}
	for _, c := range catalogs {
		d.catalogs[c.Name()] = c
	}
	return d
}

func (d *BuiltinDriver) Name() string { return "builtin" }

func (d *BuiltinDriver) Accepts(path string) bool {
	return strings.HasPrefix(path, BuiltinScheme)
}

func (d *BuiltinDriver) Available(path string) bool {
	_, ok := d.catalogs[strings.TrimPrefix(path, BuiltinScheme)]
	return ok
}

func (d *BuiltinDriver) Open(ctx context.Context, path string) (Module, error) {
	name := strings.TrimPrefix(path, BuiltinScheme)
	c, ok := d.catalogs[name]
	if !ok {
		return nil, fmt.Errorf("no builtin catalog %q", name)
	}
	return &catalogModule{name: name, factory: c.snapshot()}, nil
}

type catalogModule struct {
	name    string
	factory []func() engine.Script
}

func (m *catalogModule) Name() string { return m.name }
func (m *catalogModule) Close() error { return nil }

func (m *catalogModule) Classes() ([]Class, error) {
	var (
		out  []Class
		errs error
	)
	for i, newFn := range m.factory {
		c, err := newGoClass(m.name, newFn)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("catalog %s entry %d: %w", m.name, i, err))
			continue
		}
		out = append(out, c)
	}
	return out, errs
}

type goClass struct {
	name   string
	short  string
	typ    reflect.Type
	newFn  func() engine.Script
	schema *fields.Schema
}

func newGoClass(catalog string, newFn func() engine.Script) (*goClass, error) {
	if newFn == nil {
		return nil, errors.New("nil factory")
	}
	proto := newFn()
	if proto == nil {
		return nil, errors.New("factory returned nil")
	}
	typ := reflect.TypeOf(proto)
	if typ.Kind() != reflect.Pointer || typ.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("script type %s is not a pointer to struct", typ)
	}
	short := typ.Elem().Name()
	name := catalog + "." + short
	schema, err := fields.Reflect(name, proto)
	if err != nil {
		return nil, err
	}
	return &goClass{name: name, short: short, typ: typ, newFn: newFn, schema: schema}, nil
}

func (c *goClass) Name() string                { return c.name }
func (c *goClass) ShortName() string           { return c.short }
func (c *goClass) Abstract() bool              { return false }
func (c *goClass) Fields() []fields.Descriptor { return c.schema.Descriptors() }
func (c *goClass) TypeKey() any                { return c.typ }

func (c *goClass) New() (engine.Script, error) {
	s := c.newFn()
	if s == nil || reflect.TypeOf(s) != c.typ {
		return nil, fmt.Errorf("%s: factory returned %T", c.name, s)
	}
	return s, nil
}

func (c *goClass) SetField(s engine.Script, name string, v fields.Value) error {
	return c.schema.Set(s, name, v)
}

func (c *goClass) Field(s engine.Script, name string) (fields.Value, error) {
	return c.schema.Get(s, name)
}

var errorType = reflect.TypeFor[error]()

func (c *goClass) Invoke(s engine.Script, method string) error {
	m := reflect.ValueOf(s).MethodByName(method)
	if !m.IsValid() {
		return fmt.Errorf("%s has no method %s", c.name, method)
	}
	mt := m.Type()
	if mt.NumIn() != 0 {
		return fmt.Errorf("%s.%s takes %d arguments, want none", c.name, method, mt.NumIn())
	}
	out := m.Call(nil)
	if n := len(out); n > 0 && mt.Out(n-1) == errorType && !out[n-1].IsNil() {
		return out[n-1].Interface().(error)
	}
	return nil
}
