package simhost

import (
	"fmt"
	"reflect"
	"sync"
)

// Linker is a fake native address space. Go funcs are exported at made-up
// addresses and linked back by signature, so tables bind exactly as they
// would against a real host.
type Linker struct {
	mu   sync.Mutex
	fns  map[uintptr]reflect.Value
	next uintptr
}

func NewLinker() *Linker {
	return &Linker{fns: map[uintptr]reflect.Value{}, next: 0x10000}
}

// Export places fn at a new address.
func (l *Linker) Export(fn any) uintptr {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		panic(fmt.Sprintf("simhost: export of non-func %T", fn))
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next += 0x10
	l.fns[l.next] = v
	return l.next
}

// Link implements calltable.Linker.
func (l *Linker) Link(fptr any, addr uintptr) error {
	dst := reflect.ValueOf(fptr)
	if dst.Kind() != reflect.Pointer || dst.Elem().Kind() != reflect.Func {
		return fmt.Errorf("link target %T is not a pointer to func", fptr)
	}
	l.mu.Lock()
	src, ok := l.fns[addr]
	l.mu.Unlock()
	if !ok {
		return fmt.Errorf("no function at %#x", addr)
	}
	if src.Type() != dst.Elem().Type() {
		return fmt.Errorf("function at %#x is %s, want %s", addr, src.Type(), dst.Elem().Type())
	}
	dst.Elem().Set(src)
	return nil
}

// Callback implements calltable.Linker.
func (l *Linker) Callback(fn any) (uintptr, error) {
	if reflect.ValueOf(fn).Kind() != reflect.Func {
		return 0, fmt.Errorf("callback %T is not a func", fn)
	}
	return l.Export(fn), nil
}

// Func returns the func exported at addr.
func (l *Linker) Func(addr uintptr) (any, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.fns[addr]
	if !ok {
		return nil, false
	}
	return v.Interface(), true
}

// exportTable exports every func of table, a calltable struct value, in
// field order.
func (l *Linker) exportTable(table any) []uintptr {
	var addrs []uintptr
	v := reflect.ValueOf(table)
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if f.Kind() == reflect.Struct {
			addrs = append(addrs, l.exportTable(f.Interface())...)
			continue
		}
		if f.IsNil() {
			panic(fmt.Sprintf("simhost: %s.%s not implemented", v.Type().Name(), v.Type().Field(i).Name))
		}
		addrs = append(addrs, l.Export(f.Interface()))
	}
	return addrs
}
