package logging_test

import (
	"claybridge/internal/config"
	"claybridge/internal/logging"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNativeCoreFormatsOneLine(t *testing.T) {
	var lines []string
	log := zap.New(logging.NewNativeCore(func(s string) { lines = append(lines, s) }, zapcore.InfoLevel))

	log.Named("bridge").With(zap.String("class", "game.Door")).Warn("script failed", zap.Int("token", 7))
	log.Debug("hidden")

	require.Len(t, lines, 1)
	assert.Equal(t, `WARN bridge script failed {"class": "game.Door", "token": 7}`, lines[0])
}

func TestSinkDropsUntilAttached(t *testing.T) {
	var sink logging.NativeSink
	var got []string

	sink.Write("early")
	assert.False(t, sink.Attached())

	sink.Attach(func(s string) { got = append(got, s) })
	sink.Write("late")
	assert.True(t, sink.Attached())

	sink.Attach(nil)
	sink.Write("after")
	assert.Equal(t, []string{"late"}, got)
}

func TestNewTeesToSink(t *testing.T) {
	var sink logging.NativeSink
	var got []string
	sink.Attach(func(s string) { got = append(got, s) })

	log, err := logging.New(config.Log{Level: "warn", Format: "json", Native: true}, &sink)
	require.NoError(t, err)
	log.Info("skipped")
	log.Error("boom")

	require.Len(t, got, 1)
	assert.Equal(t, "ERROR boom", got[0])
}

func TestNewWithoutNative(t *testing.T) {
	var sink logging.NativeSink
	called := false
	sink.Attach(func(string) { called = true })

	log, err := logging.New(config.Log{Level: "debug", Format: "console"}, &sink)
	require.NoError(t, err)
	log.Error("console only")
	assert.False(t, called)

	_, err = logging.New(config.Log{Level: "noisy"}, nil)
	assert.Error(t, err)
}
