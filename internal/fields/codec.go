package fields

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var errNilPayload = errors.New("nil payload")

// Size returns the fixed payload size for t, or -1 for String, whose payload
// is NUL-terminated.
func Size(t Tag) int {
	switch t {
	case Int, Float, EntityReference:
		return 4
	case Bool:
		return 1
	case Vector3:
		return 12
	}
	return -1
}

// Encode returns the native payload for v: int32 for Int and EntityReference,
// float32 for Float, one byte for Bool, NUL-terminated UTF-8 for String and
// three float32 for Vector3, all in native byte order.
func Encode(v Value) []byte {
	switch v.Tag {
	case Int, EntityReference:
		return binary.NativeEndian.AppendUint32(nil, uint32(v.I))
	case Float:
		return binary.NativeEndian.AppendUint32(nil, math.Float32bits(v.F))
	case Bool:
		if v.B {
			return []byte{1}
		}
		return []byte{0}
	case String:
		b := make([]byte, 0, len(v.S)+1)
		b = append(b, v.S...)
		return append(b, 0)
	case Vector3:
		b := make([]byte, 0, 12)
		b = binary.NativeEndian.AppendUint32(b, math.Float32bits(v.V.X))
		b = binary.NativeEndian.AppendUint32(b, math.Float32bits(v.V.Y))
		return binary.NativeEndian.AppendUint32(b, math.Float32bits(v.V.Z))
	}
	return nil
}

// DecodeBytes is the inverse of Encode.
func DecodeBytes(t Tag, b []byte) (Value, error) {
	if !t.Valid() {
		return Value{}, fmt.Errorf("decode: unknown %s", t)
	}
	if t == String {
		for i, c := range b {
			if c == 0 {
				return StringValue(string(b[:i])), nil
			}
		}
		return StringValue(string(b)), nil
	}
	if n := Size(t); len(b) < n {
		return Value{}, fmt.Errorf("decode %s: payload is %d bytes, want %d", t, len(b), n)
	}
	switch t {
	case Int:
		return IntValue(int32(binary.NativeEndian.Uint32(b))), nil
	case EntityReference:
		return EntityValue(int32(binary.NativeEndian.Uint32(b))), nil
	case Float:
		return FloatValue(math.Float32frombits(binary.NativeEndian.Uint32(b))), nil
	case Bool:
		return BoolValue(b[0] != 0), nil
	default:
		return Vector3Value(rl.Vector3{
			X: math.Float32frombits(binary.NativeEndian.Uint32(b[0:])),
			Y: math.Float32frombits(binary.NativeEndian.Uint32(b[4:])),
			Z: math.Float32frombits(binary.NativeEndian.Uint32(b[8:])),
		}), nil
	}
}

// Decode reads a payload of type t from native memory at p.
func Decode(t Tag, p unsafe.Pointer) (Value, error) {
	if p == nil {
		return Value{}, fmt.Errorf("decode %s: %w", t, errNilPayload)
	}
	if t == String {
		return StringValue(cString((*byte)(p))), nil
	}
	n := Size(t)
	if n < 0 {
		return Value{}, fmt.Errorf("decode: unknown %s", t)
	}
	return DecodeBytes(t, unsafe.Slice((*byte)(p), n))
}
