package fields

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// FromAny converts a loosely typed value, as decoded from YAML or JSON, into a
// Value of tag t.
func FromAny(t Tag, raw any) (Value, error) {
	switch t {
	case Int, EntityReference:
		n, ok := number(raw)
		if !ok {
			return Value{}, fmt.Errorf("want number for %s, got %T", t, raw)
		}
		return Value{Tag: t, I: int32(n)}, nil
	case Float:
		n, ok := number(raw)
		if !ok {
			return Value{}, fmt.Errorf("want number for %s, got %T", t, raw)
		}
		return FloatValue(float32(n)), nil
	case Bool:
		b, ok := raw.(bool)
		if !ok {
			return Value{}, fmt.Errorf("want bool, got %T", raw)
		}
		return BoolValue(b), nil
	case String:
		s, ok := raw.(string)
		if !ok {
			return Value{}, fmt.Errorf("want string, got %T", raw)
		}
		return StringValue(s), nil
	case Vector3:
		list, ok := raw.([]any)
		if !ok || len(list) != 3 {
			return Value{}, fmt.Errorf("want [x, y, z], got %v", raw)
		}
		var xyz [3]float32
		for i, e := range list {
			n, ok := number(e)
			if !ok {
				return Value{}, fmt.Errorf("vector component %d: want number, got %T", i, e)
			}
			xyz[i] = float32(n)
		}
		return Vector3Value(rl.Vector3{X: xyz[0], Y: xyz[1], Z: xyz[2]}), nil
	}
	return Value{}, fmt.Errorf("unknown %s", t)
}

func number(raw any) (float64, bool) {
	switch n := raw.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
