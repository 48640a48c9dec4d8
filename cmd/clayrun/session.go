package main

import (
	"claybridge/internal/bridge"
	"claybridge/internal/handles"
	"claybridge/internal/simhost"
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// session plays the part of the native host: it owns the scene's script
// instances and drives them one frame at a time.
type session struct {
	b     *bridge.Bridge
	world *simhost.World
	specs []simhost.ScriptSpec
	toks  []handles.Token
	log   *zap.Logger
}

func newSession(b *bridge.Bridge, world *simhost.World, specs []simhost.ScriptSpec, log *zap.Logger) *session {
	return &session{b: b, world: world, specs: specs, log: log.Named("session")}
}

// spawn creates a script for every spec. A spec that fails is skipped and
// reported; the rest still run.
func (s *session) spawn() error {
	var errs error
	s.toks = s.toks[:0]
	for _, spec := range s.specs {
		tok := s.b.ScriptCreate(spec.Class)
		if tok == 0 {
			errs = multierr.Append(errs, fmt.Errorf("entity %d: no script class %q", spec.Entity, spec.Class))
			continue
		}
		if err := s.b.ApplyFields(tok, spec.Fields); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("entity %d: %w", spec.Entity, err))
		}
		if err := s.b.ScriptOnCreate(tok, spec.Entity); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("entity %d: %w", spec.Entity, err))
			s.b.ScriptDestroy(tok)
			continue
		}
		s.toks = append(s.toks, tok)
	}
	s.log.Info("scene scripts created", zap.Int("scripts", len(s.toks)), zap.Int("requested", len(s.specs)))
	return errs
}

// tick runs one frame: simulation, script updates, then continuations.
func (s *session) tick(dt float32) {
	s.world.Step(dt)
	for _, tok := range s.toks {
		// failures are already logged by the bridge
		_ = s.b.ScriptOnUpdate(tok, dt)
	}
	s.b.Flush()
}

// reload swaps in a fresh copy of the module at path and recreates the
// scene's scripts from it. On failure the session is left without scripts.
func (s *session) reload(ctx context.Context, path string) error {
	if status := s.b.ReloadScripts(ctx, path); status != 0 {
		s.toks = s.toks[:0]
		return fmt.Errorf("reload %s failed", path)
	}
	return s.spawn()
}

func (s *session) close() {
	for _, tok := range s.toks {
		s.b.ScriptDestroy(tok)
	}
	s.toks = nil
}
