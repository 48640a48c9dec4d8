package fields

import (
	"testing"
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRef struct{ id int32 }

func (r testRef) RefID() int32       { return r.id }
func (r *testRef) SetRefID(id int32) { r.id = id }

type mover struct {
	Speed    float32
	Lives    int
	Armed    bool `serialize:"is_armed"`
	Label    string
	Offset   rl.Vector3
	Target   testRef
	Path     []int
	Internal string `serialize:"-"`
	hidden   int
}

func TestReflectDescriptors(t *testing.T) {
	s, err := Reflect("demo.Mover", &mover{Speed: 2.5, Label: "crate", Target: testRef{id: 7}})
	require.NoError(t, err)

	descs := s.Descriptors()
	names := make([]string, len(descs))
	for i, d := range descs {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"speed", "lives", "is_armed", "label", "offset", "target"}, names)
	assert.Equal(t, []string{"Path"}, s.Skipped())

	speed, ok := Find(descs, "speed")
	require.True(t, ok)
	assert.Equal(t, Float, speed.Tag)
	assert.Equal(t, FloatValue(2.5), speed.Default)
	assert.Equal(t, "demo.Mover", speed.Class)

	target, _ := Find(descs, "target")
	assert.Equal(t, EntityValue(7), target.Default)
}

func TestReflectRejectsNonStruct(t *testing.T) {
	_, err := Reflect("demo.Bad", mover{})
	var fre *FieldReflectionError
	require.ErrorAs(t, err, &fre)
	assert.Equal(t, "demo.Bad", fre.Class)
}

func TestSchemaSetGet(t *testing.T) {
	s, err := Reflect("demo.Mover", &mover{})
	require.NoError(t, err)

	m := &mover{}
	require.NoError(t, s.Set(m, "lives", IntValue(3)))
	require.NoError(t, s.Set(m, "offset", Vector3Value(rl.Vector3{X: 1, Y: 2, Z: 3})))
	require.NoError(t, s.Set(m, "target", EntityValue(42)))
	assert.Equal(t, 3, m.Lives)
	assert.Equal(t, rl.Vector3{X: 1, Y: 2, Z: 3}, m.Offset)
	assert.Equal(t, int32(42), m.Target.id)

	got, err := s.Get(m, "target")
	require.NoError(t, err)
	assert.Equal(t, EntityValue(42), got)

	err = s.Set(m, "lives", StringValue("many"))
	assert.ErrorIs(t, err, errTypeMismatch)

	err = s.Set(m, "missing", IntValue(1))
	assert.ErrorIs(t, err, errNoSuchField)

	err = s.Set(&struct{ Lives int }{}, "lives", IntValue(1))
	assert.ErrorIs(t, err, errTypeMismatch)
}

func TestSetRejectsIntOverflow(t *testing.T) {
	type small struct {
		Level int8
		Score int64
	}
	s, err := Reflect("demo.Small", &small{})
	require.NoError(t, err)

	v := &small{Level: 7}
	err = s.Set(v, "level", IntValue(300))
	var ferr *FieldReflectionError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "level", ferr.Field)
	assert.ErrorIs(t, err, errOutOfRange)
	assert.Equal(t, int8(7), v.Level, "field is left unchanged")

	require.NoError(t, s.Set(v, "level", IntValue(-128)))
	require.NoError(t, s.Set(v, "score", IntValue(1<<30)))
	assert.Equal(t, int8(-128), v.Level)
	assert.Equal(t, int64(1<<30), v.Score)
}

func TestDecodeFromNativeMemory(t *testing.T) {
	tests := []Value{
		IntValue(-12),
		FloatValue(3.25),
		BoolValue(true),
		StringValue("héllo"),
		Vector3Value(rl.Vector3{X: 1.5, Y: -2, Z: 8}),
		EntityValue(99),
	}
	for _, want := range tests {
		t.Run(want.Tag.String(), func(t *testing.T) {
			buf := Encode(want)
			got, err := Decode(want.Tag, unsafe.Pointer(&buf[0]))
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(Int, nil)
	assert.ErrorIs(t, err, errNilPayload)

	_, err = DecodeBytes(Vector3, []byte{1, 2, 3})
	assert.Error(t, err)

	_, err = DecodeBytes(Tag(9), []byte{0})
	assert.Error(t, err)
}

func TestFromAny(t *testing.T) {
	v, err := FromAny(Vector3, []any{1, 2.5, 3})
	require.NoError(t, err)
	assert.Equal(t, rl.Vector3{X: 1, Y: 2.5, Z: 3}, v.V)

	v, err = FromAny(Int, 4.0)
	require.NoError(t, err)
	assert.Equal(t, IntValue(4), v)

	_, err = FromAny(Bool, "yes")
	assert.Error(t, err)
}

func TestTagNames(t *testing.T) {
	for tag := Int; tag <= EntityReference; tag++ {
		parsed, ok := ParseTag(tag.String())
		require.True(t, ok, tag.String())
		assert.Equal(t, tag, parsed)
	}
	assert.False(t, Tag(6).Valid())
	assert.Equal(t, "tag(6)", Tag(6).String())
}
