package calltable

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Table holds one sub-table of native entry points. Until Bind succeeds every
// entry in Fn is a stub that returns zero values and records the call, so an
// unbound call is observable instead of a crash. Fn is written once, by Bind,
// before the engine starts calling into scripts.
type Table[T any] struct {
	Fn T

	name    string
	entries int
	bound   atomic.Bool
	unbound atomic.Int64
	warned  sync.Map
	log     *zap.Logger
}

// NewTable returns a table named name with every entry stubbed.
func NewTable[T any](name string, log *zap.Logger) *Table[T] {
	if log == nil {
		log = zap.NewNop()
	}
	t := &Table[T]{name: name, log: log}
	typ := reflect.TypeFor[T]()
	t.entries = countEntries(typ)
	stub(reflect.ValueOf(&t.Fn).Elem(), name, t.onUnbound)
	return t
}

// Name returns the table name used in diagnostics.
func (t *Table[T]) Name() string { return t.name }

// Entries is the number of native addresses the table consumes.
func (t *Table[T]) Entries() int { return t.entries }

// Bound reports whether Bind succeeded.
func (t *Table[T]) Bound() bool { return t.bound.Load() }

// UnboundCalls counts calls that reached a stub.
func (t *Table[T]) UnboundCalls() int64 { return t.unbound.Load() }

// Bind links the first Entries() addresses into the table, in field order,
// and returns how many it consumed. Nothing is published unless every entry
// links; a short or failing table leaves all entries stubbed.
func (t *Table[T]) Bind(addrs []uintptr, l Linker) (int, error) {
	if t.bound.Load() {
		return 0, fmt.Errorf("bind %s table: %w", t.name, ErrAlreadyBound)
	}
	if len(addrs) < t.entries {
		err := &BindingError{Table: t.name, Want: t.entries, Got: len(addrs)}
		t.log.Error("native call table too short, entries left unbound",
			zap.String("table", t.name), zap.Int("want", t.entries), zap.Int("got", len(addrs)))
		return 0, err
	}

	var scratch T
	next := 0
	if err := link(reflect.ValueOf(&scratch).Elem(), t.name, addrs, &next, l); err != nil {
		berr := &BindingError{Table: t.name, Want: t.entries, Got: len(addrs), Err: err}
		t.log.Error("native call table failed to link, entries left unbound",
			zap.String("table", t.name), zap.Error(err))
		return 0, berr
	}

	t.Fn = scratch
	t.bound.Store(true)
	t.log.Debug("native call table bound", zap.String("table", t.name), zap.Int("entries", t.entries))
	return t.entries, nil
}

func (t *Table[T]) onUnbound(entry string) {
	t.unbound.Add(1)
	if _, seen := t.warned.LoadOrStore(entry, struct{}{}); !seen {
		t.log.Warn("call to unbound native entry", zap.String("entry", entry))
	}
}

func countEntries(typ reflect.Type) int {
	n := 0
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		switch f.Type.Kind() {
		case reflect.Func:
			n++
		case reflect.Struct:
			n += countEntries(f.Type)
		default:
			panic(fmt.Sprintf("calltable: %s.%s is neither func nor table", typ.Name(), f.Name))
		}
	}
	return n
}

func stub(v reflect.Value, path string, hook func(string)) {
	typ := v.Type()
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		name := path + "." + f.Name
		if f.Type.Kind() == reflect.Struct {
			stub(v.Field(i), name, hook)
			continue
		}
		ft := f.Type
		zeros := make([]reflect.Value, ft.NumOut())
		for j := range zeros {
			zeros[j] = reflect.Zero(ft.Out(j))
		}
		v.Field(i).Set(reflect.MakeFunc(ft, func([]reflect.Value) []reflect.Value {
			hook(name)
			return zeros
		}))
	}
}

func link(v reflect.Value, path string, addrs []uintptr, next *int, l Linker) error {
	typ := v.Type()
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		name := path + "." + f.Name
		if f.Type.Kind() == reflect.Struct {
			if err := link(v.Field(i), name, addrs, next, l); err != nil {
				return err
			}
			continue
		}
		idx := *next
		*next++
		if addrs[idx] == 0 {
			return fmt.Errorf("entry %d (%s): null address", idx, name)
		}
		if err := l.Link(v.Field(i).Addr().Interface(), addrs[idx]); err != nil {
			return fmt.Errorf("entry %d (%s): %w", idx, name, err)
		}
	}
	return nil
}
