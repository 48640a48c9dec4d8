package scripts_test

import (
	"claybridge/internal/bridge"
	"claybridge/internal/config"
	"claybridge/internal/engine"
	"claybridge/internal/handles"
	"claybridge/internal/module"
	"claybridge/internal/scripts"
	"claybridge/internal/simhost"
	"context"
	"strings"
	"testing"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type game struct {
	t     *testing.T
	b     *bridge.Bridge
	world *simhost.World
	addrs simhost.Addresses
}

func newGame(t *testing.T) *game {
	t.Helper()
	world := simhost.New(nil)
	cfg := config.Default()
	cfg.Module.BaseDir = t.TempDir()

	b := bridge.New(bridge.Options{
		Linker:   world.Linker(),
		Log:      zaptest.NewLogger(t),
		Config:   cfg,
		Catalogs: []*module.Catalog{scripts.Catalog},
	})
	t.Cleanup(func() { _ = b.Close() })

	g := &game{t: t, b: b, world: world, addrs: world.Export()}
	require.NoError(t, b.EntityInteropInit(g.addrs.Entity))
	require.NoError(t, b.InputInteropInit(g.addrs.Input))
	require.NoError(t, b.NavigationInteropInit(g.addrs.Navigation))
	require.NoError(t, b.IKInteropInit(g.addrs.IK))
	require.Equal(t, 0, b.ManagedStart(context.Background(), "builtin:gamescripts"))
	return g
}

// attach creates class on o with the given field overrides and runs OnCreate.
func (g *game) attach(class string, o *simhost.Object, values map[string]any) handles.Token {
	g.t.Helper()
	tok := g.b.ScriptCreate(class)
	require.NotZero(g.t, tok, "create %s", class)
	if len(values) > 0 {
		require.NoError(g.t, g.b.ApplyFields(tok, values))
	}
	require.NoError(g.t, g.b.ScriptOnCreate(tok, o.ID))
	return tok
}

// frame runs one host frame: simulation, script updates, then the flush.
func (g *game) frame(dt float32, toks ...handles.Token) {
	g.t.Helper()
	g.world.Step(dt)
	for _, tok := range toks {
		require.NoError(g.t, g.b.ScriptOnUpdate(tok, dt))
	}
	g.b.Flush()
}

func (g *game) logged(substr string) bool {
	for _, l := range g.world.Logs() {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

func TestCatalogRegistersEveryScript(t *testing.T) {
	g := newGame(t)
	n, err := g.b.RegisterAllScripts([]uintptr{g.addrs.RegisterClass, g.addrs.RegisterProperty})
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	for _, name := range []string{"Rotator", "ButtonTester", "Collectible", "Follower", "PlayerController", "ScoreManager", "Shooter"} {
		assert.Contains(t, g.world.RegisteredClasses(), "gamescripts."+name)
	}

	var speed *simhost.RegisteredField
	for _, f := range g.world.RegisteredFields() {
		if f.Class == "gamescripts.Rotator" && f.Name == "speed" {
			speed = &f
		}
	}
	require.NotNil(t, speed)
	assert.Equal(t, float32(90), speed.Value)
}

func TestRotator(t *testing.T) {
	g := newGame(t)
	o := g.world.Spawn("Cube")
	tok := g.attach("Rotator", o, nil)

	g.frame(0.5, tok)
	assert.InDelta(t, 45, g.world.Object(o.ID).Transform.Rotation.Y, 1e-3)
}

func TestScoreManagerButtons(t *testing.T) {
	g := newGame(t)
	add := g.world.Spawn("AddButton")
	add.AddComponent("Button")
	reset := g.world.Spawn("ResetButton")
	reset.AddComponent("Button")
	board := g.world.Spawn("Board")

	tok := g.attach("ScoreManager", board, map[string]any{
		"add_button":   int(add.ID),
		"reset_button": int(reset.ID),
		"step":         5,
	})
	s, err := g.b.Script(tok)
	require.NoError(t, err)
	score := s.(*scripts.ScoreManager)

	click := func(id int32) {
		g.world.SetButton(id, true, true)
		g.b.Flush()
		g.world.SetButton(id, true, false)
		g.b.Flush()
		g.world.Step(0)
	}

	click(add.ID)
	click(add.ID)
	assert.Equal(t, int32(10), score.Score)
	assert.True(t, g.logged("Score: 10"))

	click(reset.ID)
	assert.Zero(t, score.Score)
	assert.True(t, g.logged("Score reset"))
}

func TestButtonTesterDefaultsToOwnButton(t *testing.T) {
	g := newGame(t)
	o := g.world.Spawn("TestButton")
	o.AddComponent("Button")
	g.attach("ButtonTester", o, nil)

	g.world.SetButton(o.ID, true, false)
	g.b.Flush()
	assert.True(t, g.logged("Button hover enter"))

	g.world.SetButton(o.ID, true, true)
	g.b.Flush()
	g.world.SetButton(o.ID, false, false)
	g.b.Flush()
	assert.True(t, g.logged("Button hover exit"))
	assert.False(t, g.logged("Button clicked"), "release off the button is not a click")
}

func TestCollectibleAddsToCollectorScore(t *testing.T) {
	g := newGame(t)
	player := g.world.Spawn("Player")
	g.attach("ScoreManager", player, nil)

	coin := g.world.Spawn("Coin")
	coin.Transform.Position = rl.Vector3{X: 0.5}
	tok := g.attach("Collectible", coin, map[string]any{"collector": int(player.ID), "points": 25})

	g.frame(0.1, tok)
	assert.Nil(t, g.world.Object(coin.ID), "collected coin is destroyed")
	assert.True(t, g.logged("Collected! +25 points"))
	assert.True(t, g.logged("Score: 25"))

	// nothing happens once collected
	g.frame(0.1, tok)
}

func TestCollectibleOutOfRange(t *testing.T) {
	g := newGame(t)
	player := g.world.Spawn("Player")
	coin := g.world.Spawn("Coin")
	coin.Transform.Position = rl.Vector3{X: 10}
	tok := g.attach("Collectible", coin, map[string]any{"collector": int(player.ID)})

	g.frame(0.1, tok)
	assert.NotNil(t, g.world.Object(coin.ID))
	assert.False(t, g.logged("Collected!"))
}

func TestShooterSpawnsShotsThatExpire(t *testing.T) {
	g := newGame(t)
	o := g.world.Spawn("Gun")
	tok := g.attach("Shooter", o, map[string]any{"lifetime": 0.2, "cooldown": 10})

	g.world.SetMouseButton(int32(engine.MouseLeft), true)
	g.frame(0.016, tok)

	shot := g.world.FindByName("Shot_1")
	require.NotNil(t, shot)
	assert.NotNil(t, shot.Component("RigidBody"))
	assert.InDelta(t, 3, shot.Transform.Position.Z, 1e-3)
	assert.InDelta(t, 30, shot.LinearVelocity.Z, 1e-3)

	g.frame(0.016, tok)
	assert.Nil(t, g.world.FindByName("Shot_2"), "cooldown holds the second shot")

	require.Eventually(t, func() bool {
		g.b.Flush()
		return g.world.FindByName("Shot_1") == nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFollowerWalksToTarget(t *testing.T) {
	g := newGame(t)
	target := g.world.Spawn("Target")
	target.Transform.Position = rl.Vector3{X: 2}
	follower := g.world.Spawn("Follower")
	tok := g.attach("Follower", follower, map[string]any{"target": int(target.ID), "interval": 100})

	require.NotNil(t, follower.Component("NavAgent"))
	for i := 0; i < 10 && !g.logged("Follower reached"); i++ {
		g.frame(0.5, tok)
	}
	assert.True(t, g.logged("Follower reached"))
	assert.InDelta(t, 2, g.world.Object(follower.ID).Transform.Position.X, 1e-3)
}

func TestPlayerControllerMovesOnGround(t *testing.T) {
	g := newGame(t)
	o := g.world.Spawn("Player")
	tok := g.attach("PlayerController", o, nil)
	assert.Equal(t, int32(engine.MouseLocked), g.world.MouseMode())

	g.world.SetKey(int32(engine.KeyW), true)
	g.frame(0.5, tok)

	pos := g.world.Object(o.ID).Transform.Position
	assert.Less(t, pos.X, float32(0))
	assert.Less(t, pos.Z, float32(0))
	assert.InDelta(t, 1.6, pos.Y, 1e-3)

	s, err := g.b.Script(tok)
	require.NoError(t, err)
	assert.True(t, s.(*scripts.PlayerController).Grounded())
}
