package components

// UnifiedMorph addresses morph targets by index across every mesh of an
// entity.
type UnifiedMorph struct {
	facade
}

func (*UnifiedMorph) ComponentName() string { return "UnifiedMorph" }

func (m *UnifiedMorph) Count() int { return int(m.calls().UnifiedMorph.GetCount(m.id())) }

func (m *UnifiedMorph) Name(index int) string {
	return nativeString(func(buf *byte, size int32) int32 {
		return m.calls().UnifiedMorph.GetName(m.id(), int32(index), buf, size)
	})
}

func (m *UnifiedMorph) SetWeight(index int, w float32) {
	m.calls().UnifiedMorph.SetWeight(m.id(), int32(index), w)
}

// SetWeightByName sets the first morph named name. It reports whether one
// was found.
func (m *UnifiedMorph) SetWeightByName(name string, w float32) bool {
	for i, n := 0, m.Count(); i < n; i++ {
		if m.Name(i) == name {
			m.SetWeight(i, w)
			return true
		}
	}
	return false
}
