package fields

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// TagKey is the struct tag that renames ("serialize:\"name\"") or hides
// ("serialize:\"-\"") an exported script field.
const TagKey = "serialize"

// EntityReferencer is implemented (on the pointer) by field types that
// serialize as an entity handle.
type EntityReferencer interface {
	RefID() int32
	SetRefID(id int32)
}

var (
	vector3Type     = reflect.TypeFor[rl.Vector3]()
	entityRefType   = reflect.TypeFor[EntityReferencer]()
	errTypeMismatch = errors.New("type mismatch")
	errNoSuchField  = errors.New("no such field")
	errOutOfRange   = errors.New("value out of range")
)

type schemaField struct {
	desc  Descriptor
	index []int
}

// Schema is the reflected field table of a Go script type. It is built once
// per class and reused for every instance.
type Schema struct {
	class   string
	typ     reflect.Type
	fields  []schemaField
	byName  map[string]int
	skipped []string
}

// Reflect builds the schema of proto, which must be a pointer to a struct.
// Exported, non-embedded fields of a supported type become descriptors named
// after the serialize tag or the snake_case field name; defaults are read
// from proto. Fields of any other type are left out.
func Reflect(class string, proto any) (*Schema, error) {
	v := reflect.ValueOf(proto)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return nil, &FieldReflectionError{Class: class, Err: fmt.Errorf("%T is not a pointer to struct", proto)}
	}
	v = v.Elem()
	t := v.Type()

	s := &Schema{class: class, typ: t, byName: map[string]int{}}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous || !sf.IsExported() {
			continue
		}
		name := sf.Tag.Get(TagKey)
		if name == "-" {
			continue
		}
		if name == "" {
			name = SnakeCase(sf.Name)
		}
		tag, ok := tagFor(sf.Type)
		if !ok {
			s.skipped = append(s.skipped, sf.Name)
			continue
		}
		if _, dup := s.byName[name]; dup {
			return nil, &FieldReflectionError{Class: class, Field: name, Err: errors.New("declared twice")}
		}
		def, err := read(v.Field(i), tag)
		if err != nil {
			return nil, &FieldReflectionError{Class: class, Field: name, Err: err}
		}
		s.byName[name] = len(s.fields)
		s.fields = append(s.fields, schemaField{
			desc:  Descriptor{Class: class, Name: name, Tag: tag, Default: def},
			index: sf.Index,
		})
	}
	return s, nil
}

func tagFor(t reflect.Type) (Tag, bool) {
	switch {
	case t == vector3Type:
		return Vector3, true
	case reflect.PointerTo(t).Implements(entityRefType):
		return EntityReference, true
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int, true
	case reflect.Float32, reflect.Float64:
		return Float, true
	case reflect.Bool:
		return Bool, true
	case reflect.String:
		return String, true
	}
	return 0, false
}

// Type returns the struct type the schema describes.
func (s *Schema) Type() reflect.Type { return s.typ }

// Descriptors returns the field table in declaration order.
func (s *Schema) Descriptors() []Descriptor {
	out := make([]Descriptor, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.desc
	}
	return out
}

// Skipped lists exported fields left out because their type has no tag.
func (s *Schema) Skipped() []string { return s.skipped }

// Set writes v into the field name of inst.
func (s *Schema) Set(inst any, name string, v Value) error {
	fv, f, err := s.field(inst, name)
	if err != nil {
		return err
	}
	if v.Tag != f.desc.Tag {
		return &FieldReflectionError{Class: s.class, Field: name,
			Err: fmt.Errorf("%w: field is %s, value is %s", errTypeMismatch, f.desc.Tag, v.Tag)}
	}
	switch v.Tag {
	case Int:
		if fv.OverflowInt(int64(v.I)) {
			return &FieldReflectionError{Class: s.class, Field: name,
				Err: fmt.Errorf("%w: %d does not fit %s", errOutOfRange, v.I, fv.Type())}
		}
		fv.SetInt(int64(v.I))
	case Float:
		fv.SetFloat(float64(v.F))
	case Bool:
		fv.SetBool(v.B)
	case String:
		fv.SetString(v.S)
	case Vector3:
		fv.Set(reflect.ValueOf(v.V))
	case EntityReference:
		fv.Addr().Interface().(EntityReferencer).SetRefID(v.I)
	}
	return nil
}

// Get reads the field name of inst.
func (s *Schema) Get(inst any, name string) (Value, error) {
	fv, f, err := s.field(inst, name)
	if err != nil {
		return Value{}, err
	}
	return read(fv, f.desc.Tag)
}

func (s *Schema) field(inst any, name string) (reflect.Value, schemaField, error) {
	i, ok := s.byName[name]
	if !ok {
		return reflect.Value{}, schemaField{}, &FieldReflectionError{Class: s.class, Field: name, Err: errNoSuchField}
	}
	v := reflect.ValueOf(inst)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Type() != s.typ {
		return reflect.Value{}, schemaField{}, &FieldReflectionError{Class: s.class, Field: name,
			Err: fmt.Errorf("%w: instance is %T", errTypeMismatch, inst)}
	}
	f := s.fields[i]
	return v.Elem().FieldByIndex(f.index), f, nil
}

func read(fv reflect.Value, tag Tag) (Value, error) {
	switch tag {
	case Int:
		return IntValue(int32(fv.Int())), nil
	case Float:
		return FloatValue(float32(fv.Float())), nil
	case Bool:
		return BoolValue(fv.Bool()), nil
	case String:
		return StringValue(fv.String()), nil
	case Vector3:
		return Vector3Value(fv.Interface().(rl.Vector3)), nil
	case EntityReference:
		if fv.CanAddr() {
			return EntityValue(fv.Addr().Interface().(EntityReferencer).RefID()), nil
		}
		p := reflect.New(fv.Type())
		p.Elem().Set(fv)
		return EntityValue(p.Interface().(EntityReferencer).RefID()), nil
	}
	return Value{}, fmt.Errorf("read: unknown %s", tag)
}

// SnakeCase converts a Go field name to the serialized field name.
func SnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) && i > 0 {
			b.WriteRune('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
