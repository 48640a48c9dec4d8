package module

import (
	"fmt"
	"strings"
)

// ClassNotFoundError is returned when a class name resolves to nothing. Known
// lists every loaded class to help spot typos.
type ClassNotFoundError struct {
	Name  string
	Known []string
}

func (e *ClassNotFoundError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("script class %q not found (no classes loaded)", e.Name)
	}
	return fmt.Sprintf("script class %q not found (known: %s)", e.Name, strings.Join(e.Known, ", "))
}

// ModuleLoadError reports a module that failed to load. Err may combine
// several failures; use multierr.Errors to list them.
type ModuleLoadError struct {
	Path string
	Err  error
}

func (e *ModuleLoadError) Error() string {
	return fmt.Sprintf("load module %s: %v", e.Path, e.Err)
}

func (e *ModuleLoadError) Unwrap() error { return e.Err }
