package components

// Animator drives a native animation state machine through its parameters.
type Animator struct {
	facade
}

func (*Animator) ComponentName() string { return "Animator" }

func (a *Animator) SetBool(param string, v bool) { a.calls().Animator.SetBool(a.id(), param, v) }

func (a *Animator) SetInt(param string, v int32) { a.calls().Animator.SetInt(a.id(), param, v) }

func (a *Animator) SetFloat(param string, v float32) {
	a.calls().Animator.SetFloat(a.id(), param, v)
}

func (a *Animator) SetTrigger(param string) { a.calls().Animator.SetTrigger(a.id(), param) }

func (a *Animator) ResetTrigger(param string) { a.calls().Animator.ResetTrigger(a.id(), param) }

func (a *Animator) Bool(param string) bool { return a.calls().Animator.GetBool(a.id(), param) }

func (a *Animator) Int(param string) int32 { return a.calls().Animator.GetInt(a.id(), param) }

func (a *Animator) Float(param string) float32 { return a.calls().Animator.GetFloat(a.id(), param) }

// Trigger reports whether param is set and not yet consumed.
func (a *Animator) Trigger(param string) bool { return a.calls().Animator.GetTrigger(a.id(), param) }
