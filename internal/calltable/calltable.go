// Package calltable binds the native engine's function pointer tables into
// typed Go funcs.
package calltable

import (
	"go.uber.org/zap"
)

// ProtocolVersion names the table layout in this package. A host built for
// this version passes at least Entries() addresses to each init call.
const ProtocolVersion = 1

// Tables is the full set of native call tables.
type Tables struct {
	Entity     *Table[EntityTable]
	Component  *Table[ComponentTable]
	Input      *Table[InputTable]
	Navigation *Table[NavigationTable]
	IK         *Table[IKTable]

	linker Linker
	log    *zap.Logger
}

// Status is a diagnostic snapshot of one table.
type Status struct {
	Name         string
	Entries      int
	Bound        bool
	UnboundCalls int64
}

// New returns unbound tables that will link through l.
func New(l Linker, log *zap.Logger) *Tables {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("calltable")
	return &Tables{
		Entity:     NewTable[EntityTable]("entity", log),
		Component:  NewTable[ComponentTable]("component", log),
		Input:      NewTable[InputTable]("input", log),
		Navigation: NewTable[NavigationTable]("navigation", log),
		IK:         NewTable[IKTable]("ik", log),
		linker:     l,
		log:        log,
	}
}

// Linker returns the linker used for binding and callbacks.
func (t *Tables) Linker() Linker { return t.linker }

// BindEntityInterop binds the entity table and forwards the remaining
// addresses to the component table. The component table is not attempted when
// the entity table fails.
func (t *Tables) BindEntityInterop(addrs []uintptr) error {
	n, err := t.Entity.Bind(addrs, t.linker)
	if err != nil {
		return err
	}
	_, err = t.Component.Bind(addrs[n:], t.linker)
	return err
}

func (t *Tables) BindInputInterop(addrs []uintptr) error {
	_, err := t.Input.Bind(addrs, t.linker)
	return err
}

func (t *Tables) BindNavigationInterop(addrs []uintptr) error {
	_, err := t.Navigation.Bind(addrs, t.linker)
	return err
}

func (t *Tables) BindIKInterop(addrs []uintptr) error {
	_, err := t.IK.Bind(addrs, t.linker)
	return err
}

// Status reports every table in init order.
func (t *Tables) Status() []Status {
	return []Status{
		status(t.Entity),
		status(t.Component),
		status(t.Input),
		status(t.Navigation),
		status(t.IK),
	}
}

func status[T any](t *Table[T]) Status {
	return Status{Name: t.Name(), Entries: t.Entries(), Bound: t.Bound(), UnboundCalls: t.UnboundCalls()}
}
