package calltable

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/ebitengine/purego"
)

// Linker turns native addresses into callable Go funcs and Go funcs into
// native-callable addresses.
type Linker interface {
	// Link binds the native function at addr into *fptr, a pointer to a func.
	Link(fptr any, addr uintptr) error
	// Callback returns a native-callable address for fn.
	Callback(fn any) (uintptr, error)
}

// PuregoLinker links native addresses with purego. Strings are passed as
// NUL-terminated copies and pointer arguments as-is.
type PuregoLinker struct{}

func (PuregoLinker) Link(fptr any, addr uintptr) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("purego: %v", r)
		}
	}()
	purego.RegisterFunc(fptr, addr)
	return nil
}

func (PuregoLinker) Callback(fn any) (addr uintptr, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("purego: %v", r)
		}
	}()
	return purego.NewCallback(fn), nil
}

// Addresses copies count native function addresses starting at p.
func Addresses(p unsafe.Pointer, count int) ([]uintptr, error) {
	if count < 0 {
		return nil, fmt.Errorf("negative address count %d", count)
	}
	if count == 0 {
		return nil, nil
	}
	if p == nil {
		return nil, errors.New("nil address table")
	}
	return append([]uintptr(nil), unsafe.Slice((*uintptr)(p), count)...), nil
}
