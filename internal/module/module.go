// Package module loads, enumerates and unloads script modules. One module is
// loaded at a time; loading always tears the previous one down first.
package module

import (
	"claybridge/internal/engine"
	"claybridge/internal/fields"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Class is one script class exported by a module.
type Class interface {
	// Name is the fully qualified class name.
	Name() string
	// ShortName is the name without its qualifier.
	ShortName() string
	Abstract() bool
	// Fields lists the serializable fields with their default values.
	Fields() []fields.Descriptor
	// New constructs a default instance.
	New() (engine.Script, error)
	SetField(s engine.Script, name string, v fields.Value) error
	Field(s engine.Script, name string) (fields.Value, error)
	// Invoke calls the zero-argument method named method on s.
	Invoke(s engine.Script, method string) error
	// TypeKey is the key instances of this class are indexed under.
	TypeKey() any
}

// Module is a loaded unit of script code.
type Module interface {
	Name() string
	// Classes returns every class the module declares, abstract ones
	// included, in declaration order.
	Classes() ([]Class, error)
	Close() error
}

// Driver opens modules of one format.
type Driver interface {
	Name() string
	Accepts(path string) bool
	Available(path string) bool
	Open(ctx context.Context, path string) (Module, error)
}

// Source is a module file read into memory. Drivers work from Bytes only, so
// the file can be replaced on disk while the module is loaded.
type Source struct {
	Path  string
	Dir   string
	Bytes []byte
}

// ReadSource reads the module at path.
func ReadSource(path string) (Source, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Source{}, fmt.Errorf("resolve module path: %w", err)
	}
	b, err := os.ReadFile(abs)
	if err != nil {
		return Source{}, fmt.Errorf("read module: %w", err)
	}
	return Source{Path: abs, Dir: filepath.Dir(abs), Bytes: b}, nil
}

// ShortName strips the qualifier from a full class name.
func ShortName(full string) string {
	if i := strings.LastIndexByte(full, '.'); i >= 0 {
		return full[i+1:]
	}
	return full
}
