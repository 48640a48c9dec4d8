package scripts

import (
	"claybridge/internal/components"
	"claybridge/internal/engine"
	"fmt"
)

type ButtonTester struct {
	engine.BaseScript
	Button     engine.EntityRef
	clickCount int
}

func (b *ButtonTester) Defaults() { b.Button = engine.NoRef }

func (b *ButtonTester) OnCreate() {
	target, ok := b.Button.Get(b.Entity().Env())
	if !ok {
		target = b.Entity()
	}
	button := components.Get[components.Button](target)
	if button == nil {
		b.Log("ButtonTester: no Button on " + target.String())
		return
	}

	button.OnClick.AddListener(func() {
		b.clickCount++
		b.Log(fmt.Sprintf("Button clicked! Count: %d", b.clickCount))
	})
	button.OnHoverEnter.AddListener(func() { b.Log("Button hover enter") })
	button.OnHoverExit.AddListener(func() { b.Log("Button hover exit") })
}
