// Package logging builds the bridge's zap loggers, including a core that
// forwards log lines to the native host console.
package logging

import (
	"claybridge/internal/config"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger from cfg. When cfg.Native is set and sink is not nil,
// entries are also written to sink.
func New(cfg config.Log, sink *NativeSink) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.DisableStacktrace = true

	log, err := zc.Build()
	if err != nil {
		return nil, err
	}
	if cfg.Native && sink != nil {
		log = log.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, NewNativeCore(sink.Write, level))
		}))
	}
	return log, nil
}

// NativeSink is a native log function attached after the logger is built,
// once the input table is bound. Writes before that are dropped.
type NativeSink struct {
	fn atomic.Pointer[func(string)]
}

// Attach sets the native log function. Nil detaches.
func (s *NativeSink) Attach(fn func(string)) {
	if fn == nil {
		s.fn.Store(nil)
		return
	}
	s.fn.Store(&fn)
}

func (s *NativeSink) Attached() bool { return s.fn.Load() != nil }

func (s *NativeSink) Write(msg string) {
	if p := s.fn.Load(); p != nil {
		(*p)(msg)
	}
}

// nativeCore formats each entry as a single console line and hands it to
// write.
type nativeCore struct {
	zapcore.LevelEnabler
	enc   zapcore.Encoder
	write func(string)
}

// NewNativeCore returns a core that writes entries at or above level through
// write, one line per entry.
func NewNativeCore(write func(string), level zapcore.LevelEnabler) zapcore.Core {
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:       "msg",
		LevelKey:         "level",
		NameKey:          "logger",
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	})
	return &nativeCore{LevelEnabler: level, enc: enc, write: write}
}

func (c *nativeCore) With(fields []zapcore.Field) zapcore.Core {
	enc := c.enc.Clone()
	for _, f := range fields {
		f.AddTo(enc)
	}
	return &nativeCore{LevelEnabler: c.LevelEnabler, enc: enc, write: c.write}
}

func (c *nativeCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *nativeCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	buf, err := c.enc.EncodeEntry(ent, fields)
	if err != nil {
		return err
	}
	line := strings.TrimRight(buf.String(), "\n")
	buf.Free()
	c.write(line)
	return nil
}

func (c *nativeCore) Sync() error { return nil }
