// scriptbridge builds the bridge as a shared library for the native engine:
//
//	go build -buildmode=c-shared -o scriptbridge.so ./cmd/scriptbridge
//
// Every export runs on the calling native thread. Tokens are 64-bit and 0 is
// never a live token.
package main

/*
#include <stdint.h>
*/
import "C"

import (
	"claybridge/internal/handles"
	"context"
	"unsafe"
)

func main() {}

//export ManagedStart
func ManagedStart(args unsafe.Pointer, size C.int32_t) C.int32_t {
	b := current()
	var path []byte
	if args != nil && size > 0 {
		path = C.GoBytes(args, C.int(size))
	}
	return C.int32_t(managedStart(b, path))
}

//export EntityInteropInit
func EntityInteropInit(ptrs unsafe.Pointer, count C.int32_t) C.int32_t {
	b := current()
	return C.int32_t(bindTable(hostLog, "entity", ptrs, int(count), b.EntityInteropInit))
}

//export InputInteropInit
func InputInteropInit(ptrs unsafe.Pointer, count C.int32_t) C.int32_t {
	b := current()
	return C.int32_t(bindTable(hostLog, "input", ptrs, int(count), b.InputInteropInit))
}

//export NavigationInteropInit
func NavigationInteropInit(ptrs unsafe.Pointer, count C.int32_t) C.int32_t {
	b := current()
	return C.int32_t(bindTable(hostLog, "navigation", ptrs, int(count), b.NavigationInteropInit))
}

//export IKInteropInit
func IKInteropInit(ptrs unsafe.Pointer, count C.int32_t) C.int32_t {
	b := current()
	return C.int32_t(bindTable(hostLog, "ik", ptrs, int(count), b.IKInteropInit))
}

//export RegisterAllScripts
func RegisterAllScripts(table unsafe.Pointer) C.int32_t {
	b := current()
	return C.int32_t(registerAll(hostLog, b, table))
}

//export ReloadScripts
func ReloadScripts(path *C.char) C.int32_t {
	b := current()
	var p string
	if path != nil {
		p = C.GoString(path)
	}
	return C.int32_t(b.ReloadScripts(context.Background(), p))
}

//export Script_Create
func Script_Create(className *C.char) C.uint64_t {
	if className == nil {
		return 0
	}
	return C.uint64_t(current().ScriptCreate(C.GoString(className)))
}

//export Script_Destroy
func Script_Destroy(tok C.uint64_t) {
	current().ScriptDestroy(handles.Token(tok))
}

//export Script_OnCreate
func Script_OnCreate(tok C.uint64_t, entity C.int32_t) C.int32_t {
	return C.int32_t(status(current().ScriptOnCreate(handles.Token(tok), int32(entity))))
}

//export Script_OnUpdate
func Script_OnUpdate(tok C.uint64_t, dt C.float) C.int32_t {
	return C.int32_t(status(current().ScriptOnUpdate(handles.Token(tok), float32(dt))))
}

//export Script_Invoke
func Script_Invoke(tok C.uint64_t, method *C.char) C.int32_t {
	if method == nil {
		return -1
	}
	return C.int32_t(status(current().ScriptInvoke(handles.Token(tok), C.GoString(method))))
}

//export SetManagedField
func SetManagedField(tok C.uint64_t, name *C.char, value unsafe.Pointer) C.int32_t {
	if name == nil {
		return -1
	}
	return C.int32_t(status(current().SetManagedField(handles.Token(tok), C.GoString(name), value)))
}

//export Flush
func Flush() C.int32_t {
	return C.int32_t(current().Flush())
}

//export Clear
func Clear() {
	current().Clear()
}

//export InstallSyncContext
func InstallSyncContext() {
	current().InstallSyncContext()
}

//export EnsureInstalledHere
func EnsureInstalledHere() {
	current().EnsureInstalledHere()
}
