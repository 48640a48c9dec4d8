// Package simhost is an in-memory native engine. It implements every native
// call table the bridge binds, so scripts can run headless and in tests.
package simhost

import (
	"math"
	"slices"
	"sync"

	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"
)

// Transform holds an object's local transform. Rotation is Euler degrees.
type Transform struct {
	Position rl.Vector3
	Rotation rl.Vector3
	Scale    rl.Vector3
}

// Object is a native entity.
type Object struct {
	ID              int32
	Name            string
	Tags            []string
	Transform       Transform
	LinearVelocity  rl.Vector3
	AngularVelocity rl.Vector3
	Components      map[string]*Component
	order           []string
}

func newObject(id int32, name string) *Object {
	return &Object{
		ID:         id,
		Name:       name,
		Transform:  Transform{Scale: rl.Vector3{X: 1, Y: 1, Z: 1}},
		Components: map[string]*Component{},
	}
}

func (o *Object) HasTag(tag string) bool {
	return slices.Contains(o.Tags, tag)
}

// Component returns the component named name, nil when absent.
func (o *Object) Component(name string) *Component {
	return o.Components[name]
}

// AddComponent attaches a component named name, or returns the existing one.
func (o *Object) AddComponent(name string) *Component {
	if c, ok := o.Components[name]; ok {
		return c
	}
	c := newComponent(name)
	o.Components[name] = c
	o.order = append(o.order, name)
	return c
}

func (o *Object) RemoveComponent(name string) {
	if _, ok := o.Components[name]; !ok {
		return
	}
	delete(o.Components, name)
	o.order = slices.DeleteFunc(o.order, func(n string) bool { return n == name })
}

// ComponentNames lists attached components in the order they were added.
func (o *Object) ComponentNames() []string { return slices.Clone(o.order) }

// Component is the property bag of one native component.
type Component struct {
	Name     string
	Ints     map[string]int32
	Floats   map[string]float32
	Bools    map[string]bool
	Vectors  map[string]rl.Vector3
	Triggers map[string]bool
	// Shapes and Weights are parallel: blend shapes and morph targets.
	Shapes  []string
	Weights []float32
	Chain   []int32
}

func newComponent(name string) *Component {
	return &Component{
		Name:     name,
		Ints:     map[string]int32{},
		Floats:   map[string]float32{},
		Bools:    map[string]bool{},
		Vectors:  map[string]rl.Vector3{},
		Triggers: map[string]bool{},
	}
}

// SetShapes replaces the shape list, zeroing every weight.
func (c *Component) SetShapes(names ...string) {
	c.Shapes = slices.Clone(names)
	c.Weights = make([]float32, len(names))
}

func (c *Component) shape(name string) int {
	return slices.Index(c.Shapes, name)
}

// Agent is the navigation state of an object with a NavAgent.
type Agent struct {
	Destination rl.Vector3
	Moving      bool
	Speed       float32
}

// RegisteredField is a field announced through the registration table.
type RegisteredField struct {
	Class string
	Name  string
	Tag   int32
	Value any
}

// World is the simulated engine.
type World struct {
	mu sync.Mutex

	objects map[int32]*Object
	order   []int32
	nextID  int32

	keysHeld   map[int32]bool
	keysDown   map[int32]bool
	mouseDown  map[int32]bool
	mouseDelta rl.Vector2
	mouseMode  int32
	logs       []string

	agents       map[int32]*Agent
	pathComplete func(agent uint64, success bool)

	classes []string
	props   []RegisteredField

	linker *Linker
	log    *zap.Logger
}

// New returns an empty world exporting its tables through a fresh Linker.
func New(log *zap.Logger) *World {
	if log == nil {
		log = zap.NewNop()
	}
	return &World{
		objects:   map[int32]*Object{},
		keysHeld:  map[int32]bool{},
		keysDown:  map[int32]bool{},
		mouseDown: map[int32]bool{},
		agents:    map[int32]*Agent{},
		linker:    NewLinker(),
		log:       log.Named("simhost"),
	}
}

func (w *World) Linker() *Linker { return w.linker }

// Spawn creates an object and returns it.
func (w *World) Spawn(name string) *Object {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.spawn(name)
}

func (w *World) spawn(name string) *Object {
	o := newObject(w.nextID, name)
	w.nextID++
	w.objects[o.ID] = o
	w.order = append(w.order, o.ID)
	return o
}

// Object returns the object with id, nil when there is none.
func (w *World) Object(id int32) *Object {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.objects[id]
}

// FindByName returns the first object named name in spawn order.
func (w *World) FindByName(name string) *Object {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.findByName(name)
}

func (w *World) findByName(name string) *Object {
	for _, id := range w.order {
		if o := w.objects[id]; o.Name == name {
			return o
		}
	}
	return nil
}

func (w *World) FindByTag(tag string) []*Object {
	w.mu.Lock()
	defer w.mu.Unlock()
	var result []*Object
	for _, id := range w.order {
		if o := w.objects[id]; o.HasTag(tag) {
			result = append(result, o)
		}
	}
	return result
}

// Objects returns every object in spawn order.
func (w *World) Objects() []*Object {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*Object, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.objects[id])
	}
	return out
}

func (w *World) Destroy(id int32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.destroy(id)
}

func (w *World) destroy(id int32) {
	if _, ok := w.objects[id]; !ok {
		return
	}
	delete(w.objects, id)
	delete(w.agents, id)
	w.order = slices.DeleteFunc(w.order, func(o int32) bool { return o == id })
}

// SetKey sets a key's held state; a key that becomes held is also down for
// the current frame.
func (w *World) SetKey(key int32, held bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if held && !w.keysHeld[key] {
		w.keysDown[key] = true
	}
	w.keysHeld[key] = held
}

func (w *World) SetMouseButton(button int32, down bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.mouseDown[button] = down
}

func (w *World) SetMouseDelta(d rl.Vector2) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.mouseDelta = d
}

func (w *World) MouseMode() int32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mouseMode
}

// Logs returns every message scripts wrote to the native console.
func (w *World) Logs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.logs)
}

// RegisteredClasses returns class names announced by the bridge.
func (w *World) RegisteredClasses() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.classes)
}

// RegisteredFields returns fields announced by the bridge.
func (w *World) RegisteredFields() []RegisteredField {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.props)
}

// Agent returns the navigation state of id.
func (w *World) Agent(id int32) (Agent, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	a, ok := w.agents[id]
	if !ok {
		return Agent{}, false
	}
	return *a, true
}

// Step advances the simulation by dt: velocities integrate into transforms
// and moving agents walk toward their destination. Path-complete callbacks
// fire after the world lock is released.
func (w *World) Step(dt float32) {
	type done struct {
		id int32
		ok bool
	}
	var finished []done

	w.mu.Lock()
	for _, id := range w.order {
		o := w.objects[id]
		if rb := o.Components["RigidBody"]; rb == nil || !rb.Bools["kinematic"] {
			o.Transform.Position = rl.Vector3Add(o.Transform.Position, rl.Vector3Scale(o.LinearVelocity, dt))
			o.Transform.Rotation = rl.Vector3Add(o.Transform.Rotation, rl.Vector3Scale(o.AngularVelocity, dt))
		}
		a, ok := w.agents[id]
		if !ok || !a.Moving {
			continue
		}
		to := rl.Vector3Subtract(a.Destination, o.Transform.Position)
		dist := rl.Vector3Length(to)
		stepLen := a.Speed * dt
		if dist <= stepLen {
			o.Transform.Position = a.Destination
			a.Moving = false
			finished = append(finished, done{id, true})
			continue
		}
		o.Transform.Position = rl.Vector3Add(o.Transform.Position, rl.Vector3Scale(to, stepLen/dist))
	}
	clear(w.keysDown)
	for _, o := range w.objects {
		if b := o.Components["Button"]; b != nil {
			b.Bools["clicked"] = false
		}
	}
	cb := w.pathComplete
	w.mu.Unlock()

	if cb == nil {
		return
	}
	for _, f := range finished {
		cb(uint64(f.id), f.ok)
	}
}

func (w *World) remaining(id int32) float32 {
	a, ok := w.agents[id]
	if !ok || !a.Moving {
		return 0
	}
	o := w.objects[id]
	if o == nil {
		return float32(math.MaxFloat32)
	}
	return rl.Vector3Distance(o.Transform.Position, a.Destination)
}
