package registry_test

import (
	"claybridge/internal/engine"
	"claybridge/internal/module"
	"claybridge/internal/registry"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type Health struct {
	engine.BaseScript
	HP int32
}

type Mover struct {
	engine.BaseScript
	Speed float32
}

func newRegistry(t *testing.T) (*registry.Registry, *module.Loader, *observer.ObservedLogs) {
	t.Helper()
	cat := module.NewCatalog("game")
	cat.Add(func() engine.Script { return &Health{HP: 100} })
	cat.Add(func() engine.Script { return &Mover{Speed: 2} })

	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)
	l := module.NewLoader(log, module.NewBuiltinDriver(cat))
	require.NoError(t, l.LoadScripts(context.Background(), "builtin:game"))
	return registry.New(l, log), l, logs
}

func TestCreateByFullAndShortName(t *testing.T) {
	r, _, _ := newRegistry(t)

	c, s, err := r.Create("game.Health")
	require.NoError(t, err)
	assert.Equal(t, "game.Health", c.Name())
	assert.Equal(t, int32(100), s.(*Health).HP)

	c, s, err = r.Create("mover")
	require.NoError(t, err)
	assert.Equal(t, "game.Mover", c.Name())
	assert.IsType(t, &Mover{}, s)
}

func TestCreateUnknownClass(t *testing.T) {
	r, _, logs := newRegistry(t)

	_, s, err := r.Create("Missing")
	assert.Nil(t, s)
	var notFound *module.ClassNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Missing", notFound.Name)
	assert.Equal(t, []string{"game.Health", "game.Mover"}, notFound.Known)
	assert.Equal(t, 1, logs.FilterMessage("script class not found").Len())
}

func TestIndex(t *testing.T) {
	r, _, _ := newRegistry(t)
	c, s, err := r.Create("Health")
	require.NoError(t, err)

	r.Register(3, c.TypeKey(), s)
	got, ok := r.Lookup(3, c.TypeKey())
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = r.Lookup(4, c.TypeKey())
	assert.False(t, ok)

	// last write wins
	_, s2, _ := r.Create("Health")
	r.Register(3, c.TypeKey(), s2)
	got, _ = r.Lookup(3, c.TypeKey())
	assert.Same(t, s2, got)

	// unregistering a replaced instance leaves the newer one in place
	r.Unregister(3, c.TypeKey(), s)
	assert.Equal(t, 1, r.Len())
	r.Unregister(3, c.TypeKey(), s2)
	assert.Equal(t, 0, r.Len())
}

func TestGetScriptThroughEnv(t *testing.T) {
	r, _, _ := newRegistry(t)
	env := engine.NewEnv(nil, nil, nil)
	env.SetScriptLookup(r)

	c, s, err := r.Create("Health")
	require.NoError(t, err)
	r.Register(5, c.TypeKey(), s)

	h, ok := engine.GetScript[*Health](env.Entity(5))
	require.True(t, ok)
	assert.Same(t, s, h)

	_, ok = engine.GetScript[*Mover](env.Entity(5))
	assert.False(t, ok)
}

func TestReset(t *testing.T) {
	r, _, _ := newRegistry(t)
	c, s, _ := r.Create("Health")
	r.Register(1, c.TypeKey(), s)
	r.Register(2, c.TypeKey(), s)

	r.Reset()
	assert.Equal(t, 0, r.Len())
	_, ok := r.Lookup(1, c.TypeKey())
	assert.False(t, ok)
}
