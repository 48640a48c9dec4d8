// Package fields describes the serializable fields a script class exposes to
// the native inspector, and the binary payloads used to move their values
// across the native boundary.
package fields

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Tag identifies the wire type of a serializable field. The numeric values
// are shared with native code and must not be reordered.
type Tag int32

const (
	Int Tag = iota
	Float
	Bool
	String
	Vector3
	EntityReference
)

var tagNames = [...]string{"int", "float", "bool", "string", "vector3", "entity"}

func (t Tag) String() string {
	if t.Valid() {
		return tagNames[t]
	}
	return fmt.Sprintf("tag(%d)", int32(t))
}

// Valid reports whether t is one of the known tags.
func (t Tag) Valid() bool {
	return t >= Int && t <= EntityReference
}

// ParseTag maps a tag name ("int", "vec3", ...) to its Tag.
func ParseTag(name string) (Tag, bool) {
	switch name {
	case "int":
		return Int, true
	case "float":
		return Float, true
	case "bool":
		return Bool, true
	case "string":
		return String, true
	case "vector3", "vec3":
		return Vector3, true
	case "entity":
		return EntityReference, true
	}
	return 0, false
}

// Value is a tagged field value. Only the member selected by Tag is meaningful;
// Int and EntityReference both use I.
type Value struct {
	Tag Tag
	I   int32
	F   float32
	B   bool
	S   string
	V   rl.Vector3
}

func IntValue(v int32) Value          { return Value{Tag: Int, I: v} }
func FloatValue(v float32) Value      { return Value{Tag: Float, F: v} }
func BoolValue(v bool) Value          { return Value{Tag: Bool, B: v} }
func StringValue(v string) Value      { return Value{Tag: String, S: v} }
func Vector3Value(v rl.Vector3) Value { return Value{Tag: Vector3, V: v} }
func EntityValue(id int32) Value      { return Value{Tag: EntityReference, I: id} }

// Any returns the value as a plain Go value, for logging and scene files.
func (v Value) Any() any {
	switch v.Tag {
	case Int, EntityReference:
		return v.I
	case Float:
		return v.F
	case Bool:
		return v.B
	case String:
		return v.S
	case Vector3:
		return []float32{v.V.X, v.V.Y, v.V.Z}
	}
	return nil
}

func (v Value) String() string {
	return fmt.Sprintf("%s(%v)", v.Tag, v.Any())
}

// Descriptor is one serializable field of a script class.
type Descriptor struct {
	Class   string
	Name    string
	Tag     Tag
	Default Value
}

// FieldReflectionError reports a field that could not be described, read or
// written.
type FieldReflectionError struct {
	Class string
	Field string
	Err   error
}

func (e *FieldReflectionError) Error() string {
	return fmt.Sprintf("field %s.%s: %v", e.Class, e.Field, e.Err)
}

func (e *FieldReflectionError) Unwrap() error { return e.Err }

// Find returns the descriptor named name.
func Find(descs []Descriptor, name string) (Descriptor, bool) {
	for _, d := range descs {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}
