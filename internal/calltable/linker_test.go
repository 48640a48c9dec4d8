//go:build (linux || darwin) && (amd64 || arm64)

package calltable

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nativeSample struct {
	Scale    func(id int32, factor float32) int32
	Position func(id int32, out *[3]float32)
	Alive    func(id int32) bool
}

func TestPuregoLinkerRoundTrip(t *testing.T) {
	var l PuregoLinker

	scale, err := l.Callback(func(id int32, factor float32) int32 {
		return int32(float32(id) * factor)
	})
	require.NoError(t, err)
	position, err := l.Callback(func(id int32, out unsafe.Pointer) {
		p := (*[3]float32)(out)
		p[0], p[1], p[2] = float32(id), 2.5, -1
	})
	require.NoError(t, err)
	alive, err := l.Callback(func(id int32) bool { return id > 0 })
	require.NoError(t, err)

	tbl := NewTable[nativeSample]("sample", nil)
	n, err := tbl.Bind([]uintptr{scale, position, alive}, l)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.True(t, tbl.Bound())

	assert.Equal(t, int32(21), tbl.Fn.Scale(7, 3))

	var pos [3]float32
	tbl.Fn.Position(4, &pos)
	assert.Equal(t, [3]float32{4, 2.5, -1}, pos)

	assert.True(t, tbl.Fn.Alive(1))
	assert.False(t, tbl.Fn.Alive(-1))
	assert.Zero(t, tbl.UnboundCalls())
}

func TestPuregoLinkerRejectsNonFuncs(t *testing.T) {
	var l PuregoLinker

	addr, err := l.Callback(func(id int32) bool { return true })
	require.NoError(t, err)

	var notAFunc int
	assert.Error(t, l.Link(&notAFunc, addr))

	_, err = l.Callback(42)
	assert.Error(t, err)
}
