package scripts

import (
	"claybridge/internal/components"
	"claybridge/internal/engine"
	"fmt"
)

// ScoreManager keeps a score that buttons and collectibles add to.
type ScoreManager struct {
	engine.BaseScript
	Score       int32
	Step        int32
	AddButton   engine.EntityRef
	ResetButton engine.EntityRef
}

func (s *ScoreManager) Defaults() {
	s.Step = 1
	s.AddButton = engine.NoRef
	s.ResetButton = engine.NoRef
}

func (s *ScoreManager) OnCreate() {
	env := s.Entity().Env()
	if e, ok := s.AddButton.Get(env); ok {
		if b := components.Get[components.Button](e); b != nil {
			b.OnClick.AddListener(func() { s.Add(s.Step) })
		}
	}
	if e, ok := s.ResetButton.Get(env); ok {
		if b := components.Get[components.Button](e); b != nil {
			b.OnClick.AddListener(s.Reset)
		}
	}
	s.Log(fmt.Sprintf("Score: %d", s.Score))
}

func (s *ScoreManager) Add(points int32) {
	s.Score += points
	s.Log(fmt.Sprintf("Score: %d", s.Score))
}

func (s *ScoreManager) Reset() {
	s.Score = 0
	s.Log("Score reset")
}
