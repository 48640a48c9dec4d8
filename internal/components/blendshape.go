package components

type BlendShape struct {
	facade
}

func (*BlendShape) ComponentName() string { return "BlendShape" }

func (b *BlendShape) SetWeight(shape string, w float32) {
	b.calls().BlendShape.SetWeight(b.id(), shape, w)
}

func (b *BlendShape) Weight(shape string) float32 {
	return b.calls().BlendShape.GetWeight(b.id(), shape)
}

func (b *BlendShape) Count() int { return int(b.calls().BlendShape.GetCount(b.id())) }

func (b *BlendShape) Name(index int) string {
	return nativeString(func(buf *byte, size int32) int32 {
		return b.calls().BlendShape.GetName(b.id(), int32(index), buf, size)
	})
}

// Names lists every shape in native order.
func (b *BlendShape) Names() []string {
	n := b.Count()
	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		names = append(names, b.Name(i))
	}
	return names
}
