package bridge

import (
	"claybridge/internal/calltable"
	"claybridge/internal/components"
	"claybridge/internal/engine"
	"claybridge/internal/fields"
	"claybridge/internal/module"
	"fmt"
	"unsafe"

	"go.uber.org/zap"
)

// EntityInteropInit binds the entity table and the component table that
// follows it in addrs.
func (b *Bridge) EntityInteropInit(addrs []uintptr) error {
	return b.calls.BindEntityInterop(addrs)
}

// InputInteropInit binds the input table and, when a native log sink is
// configured, starts mirroring log lines to the host console.
func (b *Bridge) InputInteropInit(addrs []uintptr) error {
	if err := b.calls.BindInputInterop(addrs); err != nil {
		return err
	}
	if b.sink != nil {
		b.sink.Attach(b.calls.Input.Fn.Log)
	}
	return nil
}

// NavigationInteropInit binds the navigation table and registers the path
// complete callback. Notifications are delivered on the engine thread.
func (b *Bridge) NavigationInteropInit(addrs []uintptr) error {
	if err := b.calls.BindNavigationInterop(addrs); err != nil {
		return err
	}
	addr, err := b.calls.Linker().Callback(b.pathComplete)
	if err != nil {
		b.log.Error("path complete callback", zap.Error(err))
		return fmt.Errorf("path complete callback: %w", err)
	}
	b.calls.Navigation.Fn.SetPathCompleteCallback(addr)
	return nil
}

func (b *Bridge) IKInteropInit(addrs []uintptr) error {
	return b.calls.BindIKInterop(addrs)
}

// pathComplete may be called from any native thread.
func (b *Bridge) pathComplete(agent uint64, success bool) {
	id := engine.EntityID(int32(agent))
	b.sched.Post(func() error {
		components.CompletePath(b.env, id, success)
		return nil
	})
}

// nativeRegistrar announces classes and fields to the host through the two
// registration callbacks it passed to RegisterAllScripts.
type nativeRegistrar struct {
	registerClass    func(name string)
	registerProperty func(class, field string, tag int32, payload unsafe.Pointer)
	log              *zap.Logger
}

func (r *nativeRegistrar) RegisterClass(c module.Class) {
	r.registerClass(c.Name())
}

func (r *nativeRegistrar) RegisterProperty(d fields.Descriptor) {
	if !d.Tag.Valid() {
		r.log.Warn("field with unsupported type not registered", zap.String("class", d.Class), zap.String("field", d.Name))
		return
	}
	payload := fields.Encode(d.Default)
	r.registerProperty(d.Class, d.Name, int32(d.Tag), unsafe.Pointer(&payload[0]))
}

// RegisterAllScripts links the host's register-class and register-property
// callbacks, then announces every loaded class and each of its fields.
// Modules loaded later are announced the same way. It returns the number of
// classes announced now.
func (b *Bridge) RegisterAllScripts(addrs []uintptr) (int, error) {
	if len(addrs) < 2 {
		err := &calltable.BindingError{Table: "registration", Want: 2, Got: len(addrs)}
		b.log.Error("registration table too short", zap.Error(err))
		return 0, err
	}
	r := &nativeRegistrar{log: b.log}
	l := b.calls.Linker()
	if err := l.Link(&r.registerClass, addrs[0]); err != nil {
		b.log.Error("link register class", zap.Error(err))
		return 0, &calltable.BindingError{Table: "registration", Want: 2, Got: len(addrs), Err: err}
	}
	if err := l.Link(&r.registerProperty, addrs[1]); err != nil {
		b.log.Error("link register property", zap.Error(err))
		return 0, &calltable.BindingError{Table: "registration", Want: 2, Got: len(addrs), Err: err}
	}
	b.loader.SetRegistrar(r)

	classes := b.loader.Classes()
	for _, c := range classes {
		r.RegisterClass(c)
		for _, d := range c.Fields() {
			r.RegisterProperty(d)
		}
	}
	b.log.Info("scripts registered", zap.Int("classes", len(classes)))
	return len(classes), nil
}
