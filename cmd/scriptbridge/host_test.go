package main

import (
	"claybridge/internal/bridge"
	"claybridge/internal/simhost"
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewHostFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), configFile)
	require.NoError(t, os.WriteFile(path, []byte("log: [not, a, map]"), 0o644))

	b, log := newHost(path, simhost.New(nil).Linker())
	require.NotNil(t, b)
	require.NotNil(t, log)
	t.Cleanup(func() { _ = b.Close() })
}

func TestExportsAgainstSimulatedHost(t *testing.T) {
	world := simhost.New(nil)
	path := filepath.Join(t.TempDir(), configFile)
	b, _ := newHost(path, world.Linker())
	t.Cleanup(func() { _ = b.Close() })
	log := zap.NewNop()

	addrs := world.Export()
	for _, tt := range []struct {
		name  string
		addrs []uintptr
		bind  func([]uintptr) error
	}{
		{"entity", addrs.Entity, b.EntityInteropInit},
		{"input", addrs.Input, b.InputInteropInit},
		{"navigation", addrs.Navigation, b.NavigationInteropInit},
		{"ik", addrs.IK, b.IKInteropInit},
	} {
		assert.Equal(t, 0, bindTable(log, tt.name, unsafe.Pointer(&tt.addrs[0]), len(tt.addrs), tt.bind), tt.name)
	}

	assert.Equal(t, 0, managedStart(b, []byte("builtin:gamescripts")))
	assert.Equal(t, "builtin:gamescripts", b.Loader().Path())

	table := [2]uintptr{addrs.RegisterClass, addrs.RegisterProperty}
	assert.Equal(t, 7, registerAll(log, b, unsafe.Pointer(&table[0])))
	assert.Len(t, world.RegisteredClasses(), 7)

	tok := b.ScriptCreate("Rotator")
	require.NotZero(t, tok)
	o := world.Spawn("Cube")
	assert.Equal(t, 0, status(b.ScriptOnCreate(tok, o.ID)))
	assert.Equal(t, -1, status(b.ScriptOnCreate(0, o.ID)))
}

func TestBindTableRejectsBadInput(t *testing.T) {
	world := simhost.New(nil)
	b, _ := newHost(filepath.Join(t.TempDir(), configFile), world.Linker())
	t.Cleanup(func() { _ = b.Close() })

	assert.Equal(t, -1, bindTable(zap.NewNop(), "entity", nil, 14, b.EntityInteropInit))
	assert.Equal(t, -1, registerAll(zap.NewNop(), b, nil))
}

func TestShortTableThroughExportLogsOnce(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)
	world := simhost.New(nil)
	b := bridge.New(bridge.Options{Linker: world.Linker(), Log: log})
	t.Cleanup(func() { _ = b.Close() })

	addrs := world.Export().Entity
	assert.Equal(t, -1, bindTable(log.Named("exports"), "entity", unsafe.Pointer(&addrs[0]), 2, b.EntityInteropInit))

	errs := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "too short")
	assert.Equal(t, 1, logs.FilterMessage("interop init failed").Len(), "repeated at debug only")
	assert.Equal(t, zapcore.DebugLevel, logs.FilterMessage("interop init failed").All()[0].Level)
}
