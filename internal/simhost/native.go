package simhost

import (
	"claybridge/internal/calltable"
	"claybridge/internal/fields"
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Addresses are the per-init-call address arrays a host passes to the
// bridge, in table order.
type Addresses struct {
	Entity     []uintptr
	Input      []uintptr
	Navigation []uintptr
	IK         []uintptr
	// RegisterClass and RegisterProperty are the registration callbacks.
	RegisterClass    uintptr
	RegisterProperty uintptr
}

// Export places every native function of the world in its linker.
func (w *World) Export() Addresses {
	l := w.linker
	entity := l.exportTable(w.entityTable())
	entity = append(entity, l.exportTable(w.componentTable())...)
	return Addresses{
		Entity:           entity,
		Input:            l.exportTable(w.inputTable()),
		Navigation:       l.exportTable(w.navigationTable()),
		IK:               l.exportTable(w.ikTable()),
		RegisterClass:    l.Export(w.registerClass),
		RegisterProperty: l.Export(w.registerProperty),
	}
}

// Bind exports the world and binds every table in t to it, as a host does
// at startup.
func (w *World) Bind(t *calltable.Tables) (Addresses, error) {
	a := w.Export()
	err := multierr.Combine(
		t.BindEntityInterop(a.Entity),
		t.BindInputInterop(a.Input),
		t.BindNavigationInterop(a.Navigation),
		t.BindIKInterop(a.IK),
	)
	return a, err
}

func (w *World) with(id int32, fn func(o *Object)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if o, ok := w.objects[id]; ok {
		fn(o)
	}
}

func (w *World) withComponent(id int32, name string, fn func(c *Component)) {
	w.with(id, func(o *Object) {
		if c := o.Components[name]; c != nil {
			fn(c)
		}
	})
}

func store3(v rl.Vector3, x, y, z *float32) {
	*x, *y, *z = v.X, v.Y, v.Z
}

func (w *World) entityTable() calltable.EntityTable {
	return calltable.EntityTable{
		GetPosition: func(id int32, x, y, z *float32) {
			w.with(id, func(o *Object) { store3(o.Transform.Position, x, y, z) })
		},
		SetPosition: func(id int32, x, y, z float32) {
			w.with(id, func(o *Object) { o.Transform.Position = rl.Vector3{X: x, Y: y, Z: z} })
		},
		FindByName: func(name string) int32 {
			if o := w.FindByName(name); o != nil {
				return o.ID
			}
			return -1
		},
		Create: func(name string) int32 {
			return w.Spawn(name).ID
		},
		Destroy: w.Destroy,
		GetByID: func(id int32) int32 {
			if w.Object(id) == nil {
				return -1
			}
			return id
		},
		GetRotation: func(id int32, x, y, z *float32) {
			w.with(id, func(o *Object) { store3(o.Transform.Rotation, x, y, z) })
		},
		SetRotation: func(id int32, x, y, z float32) {
			w.with(id, func(o *Object) { o.Transform.Rotation = rl.Vector3{X: x, Y: y, Z: z} })
		},
		GetRotationQuat: func(id int32, x, y, z, qw *float32) {
			w.with(id, func(o *Object) {
				r := rl.Vector3Scale(o.Transform.Rotation, rl.Deg2rad)
				q := rl.QuaternionFromEuler(r.X, r.Y, r.Z)
				*x, *y, *z, *qw = q.X, q.Y, q.Z, q.W
			})
		},
		SetRotationQuat: func(id int32, x, y, z, qw float32) {
			w.with(id, func(o *Object) {
				e := rl.QuaternionToEuler(rl.Quaternion{X: x, Y: y, Z: z, W: qw})
				o.Transform.Rotation = rl.Vector3Scale(e, rl.Rad2deg)
			})
		},
		GetScale: func(id int32, x, y, z *float32) {
			w.with(id, func(o *Object) { store3(o.Transform.Scale, x, y, z) })
		},
		SetScale: func(id int32, x, y, z float32) {
			w.with(id, func(o *Object) { o.Transform.Scale = rl.Vector3{X: x, Y: y, Z: z} })
		},
		SetLinearVelocity: func(id int32, x, y, z float32) {
			w.with(id, func(o *Object) { o.LinearVelocity = rl.Vector3{X: x, Y: y, Z: z} })
		},
		SetAngularVelocity: func(id int32, x, y, z float32) {
			w.with(id, func(o *Object) { o.AngularVelocity = rl.Vector3{X: x, Y: y, Z: z} })
		},
	}
}

// copyName writes s NUL-terminated into buf and returns the bytes written,
// excluding the terminator.
func copyName(s string, buf *byte, size int32) int32 {
	if buf == nil || size <= 0 {
		return 0
	}
	dst := unsafe.Slice(buf, size)
	n := copy(dst[:size-1], s)
	dst[n] = 0
	return int32(n)
}

func (w *World) componentTable() calltable.ComponentTable {
	return calltable.ComponentTable{
		Has: func(id int32, name string) (has bool) {
			w.with(id, func(o *Object) { has = o.Components[name] != nil })
			return has
		},
		Add: func(id int32, name string) {
			w.with(id, func(o *Object) { o.AddComponent(name) })
		},
		Remove: func(id int32, name string) {
			w.with(id, func(o *Object) { o.RemoveComponent(name) })
		},
		Light: calltable.LightTable{
			GetType: func(id int32) (kind int32) {
				w.withComponent(id, "Light", func(c *Component) { kind = c.Ints["type"] })
				return kind
			},
			SetType: func(id int32, kind int32) {
				w.withComponent(id, "Light", func(c *Component) { c.Ints["type"] = kind })
			},
			GetColor: func(id int32, r, g, b *float32) {
				w.withComponent(id, "Light", func(c *Component) { store3(c.Vectors["color"], r, g, b) })
			},
			SetColor: func(id int32, r, g, b float32) {
				w.withComponent(id, "Light", func(c *Component) { c.Vectors["color"] = rl.Vector3{X: r, Y: g, Z: b} })
			},
			GetIntensity: func(id int32) (v float32) {
				w.withComponent(id, "Light", func(c *Component) { v = c.Floats["intensity"] })
				return v
			},
			SetIntensity: func(id int32, v float32) {
				w.withComponent(id, "Light", func(c *Component) { c.Floats["intensity"] = v })
			},
		},
		RigidBody: w.rigidBodyTable(),
		BlendShape: calltable.BlendShapeTable{
			SetWeight: func(id int32, shape string, weight float32) {
				w.withComponent(id, "BlendShape", func(c *Component) {
					if i := c.shape(shape); i >= 0 {
						c.Weights[i] = weight
					}
				})
			},
			GetWeight: func(id int32, shape string) (v float32) {
				w.withComponent(id, "BlendShape", func(c *Component) {
					if i := c.shape(shape); i >= 0 {
						v = c.Weights[i]
					}
				})
				return v
			},
			GetCount: func(id int32) (n int32) {
				w.withComponent(id, "BlendShape", func(c *Component) { n = int32(len(c.Shapes)) })
				return n
			},
			GetName: func(id int32, index int32, buf *byte, size int32) (n int32) {
				w.withComponent(id, "BlendShape", func(c *Component) {
					if index >= 0 && int(index) < len(c.Shapes) {
						n = copyName(c.Shapes[index], buf, size)
					}
				})
				return n
			},
		},
		Animator: w.animatorTable(),
		Button: calltable.ButtonTable{
			IsHovered:  w.buttonFlag("hovered"),
			IsPressed:  w.buttonFlag("pressed"),
			WasClicked: w.buttonFlag("clicked"),
		},
		UnifiedMorph: calltable.UnifiedMorphTable{
			GetCount: func(id int32) (n int32) {
				w.withComponent(id, "UnifiedMorph", func(c *Component) { n = int32(len(c.Shapes)) })
				return n
			},
			GetName: func(id int32, index int32, buf *byte, size int32) (n int32) {
				w.withComponent(id, "UnifiedMorph", func(c *Component) {
					if index >= 0 && int(index) < len(c.Shapes) {
						n = copyName(c.Shapes[index], buf, size)
					}
				})
				return n
			},
			SetWeight: func(id int32, index int32, weight float32) {
				w.withComponent(id, "UnifiedMorph", func(c *Component) {
					if index >= 0 && int(index) < len(c.Weights) {
						c.Weights[index] = weight
					}
				})
			},
		},
	}
}

func (w *World) rigidBodyTable() calltable.RigidBodyTable {
	const rb = "RigidBody"
	return calltable.RigidBodyTable{
		GetMass: func(id int32) (m float32) {
			w.withComponent(id, rb, func(c *Component) { m = c.Floats["mass"] })
			return m
		},
		SetMass: func(id int32, m float32) {
			w.withComponent(id, rb, func(c *Component) { c.Floats["mass"] = m })
		},
		GetKinematic: func(id int32) (k bool) {
			w.withComponent(id, rb, func(c *Component) { k = c.Bools["kinematic"] })
			return k
		},
		SetKinematic: func(id int32, k bool) {
			w.withComponent(id, rb, func(c *Component) { c.Bools["kinematic"] = k })
		},
		GetLinearVelocity: func(id int32, x, y, z *float32) {
			w.with(id, func(o *Object) {
				if o.Components[rb] != nil {
					store3(o.LinearVelocity, x, y, z)
				}
			})
		},
		SetLinearVelocity: func(id int32, x, y, z float32) {
			w.with(id, func(o *Object) {
				if o.Components[rb] != nil {
					o.LinearVelocity = rl.Vector3{X: x, Y: y, Z: z}
				}
			})
		},
		GetAngularVelocity: func(id int32, x, y, z *float32) {
			w.with(id, func(o *Object) {
				if o.Components[rb] != nil {
					store3(o.AngularVelocity, x, y, z)
				}
			})
		},
		SetAngularVelocity: func(id int32, x, y, z float32) {
			w.with(id, func(o *Object) {
				if o.Components[rb] != nil {
					o.AngularVelocity = rl.Vector3{X: x, Y: y, Z: z}
				}
			})
		},
	}
}

func (w *World) animatorTable() calltable.AnimatorTable {
	const an = "Animator"
	return calltable.AnimatorTable{
		SetBool: func(id int32, p string, v bool) {
			w.withComponent(id, an, func(c *Component) { c.Bools[p] = v })
		},
		SetInt: func(id int32, p string, v int32) {
			w.withComponent(id, an, func(c *Component) { c.Ints[p] = v })
		},
		SetFloat: func(id int32, p string, v float32) {
			w.withComponent(id, an, func(c *Component) { c.Floats[p] = v })
		},
		SetTrigger: func(id int32, p string) {
			w.withComponent(id, an, func(c *Component) { c.Triggers[p] = true })
		},
		ResetTrigger: func(id int32, p string) {
			w.withComponent(id, an, func(c *Component) { delete(c.Triggers, p) })
		},
		GetBool: func(id int32, p string) (v bool) {
			w.withComponent(id, an, func(c *Component) { v = c.Bools[p] })
			return v
		},
		GetInt: func(id int32, p string) (v int32) {
			w.withComponent(id, an, func(c *Component) { v = c.Ints[p] })
			return v
		},
		GetFloat: func(id int32, p string) (v float32) {
			w.withComponent(id, an, func(c *Component) { v = c.Floats[p] })
			return v
		},
		GetTrigger: func(id int32, p string) (v bool) {
			w.withComponent(id, an, func(c *Component) { v = c.Triggers[p] })
			return v
		},
	}
}

func (w *World) buttonFlag(flag string) func(id int32) bool {
	return func(id int32) (v bool) {
		w.withComponent(id, "Button", func(c *Component) { v = c.Bools[flag] })
		return v
	}
}

// SetButton updates a button's pointer state. Releasing a pressed button
// while hovered is a click, visible until the next Step.
func (w *World) SetButton(id int32, hovered, pressed bool) {
	w.withComponent(id, "Button", func(c *Component) {
		if c.Bools["pressed"] && !pressed && hovered {
			c.Bools["clicked"] = true
		}
		c.Bools["hovered"] = hovered
		c.Bools["pressed"] = pressed
	})
}

func b2i(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func (w *World) inputTable() calltable.InputTable {
	return calltable.InputTable{
		IsKeyHeld: func(key int32) int32 {
			w.mu.Lock()
			defer w.mu.Unlock()
			return b2i(w.keysHeld[key])
		},
		IsKeyDown: func(key int32) int32 {
			w.mu.Lock()
			defer w.mu.Unlock()
			return b2i(w.keysDown[key])
		},
		IsMouseDown: func(button int32) int32 {
			w.mu.Lock()
			defer w.mu.Unlock()
			return b2i(w.mouseDown[button])
		},
		GetMouseDelta: func(dx, dy *float32) {
			w.mu.Lock()
			defer w.mu.Unlock()
			*dx, *dy = w.mouseDelta.X, w.mouseDelta.Y
		},
		Log: func(msg string) {
			w.mu.Lock()
			w.logs = append(w.logs, msg)
			w.mu.Unlock()
			w.log.Info(msg, zap.String("source", "script"))
		},
		SetMouseMode: func(mode int32) {
			w.mu.Lock()
			defer w.mu.Unlock()
			w.mouseMode = mode
		},
	}
}

func (w *World) navigationTable() calltable.NavigationTable {
	return calltable.NavigationTable{
		FindPath: func(navMesh int32, start, end *rl.Vector3, params *calltable.AgentParams,
			include, exclude uint32, out *rl.Vector3, capacity int32, count *int32) bool {
			w.mu.Lock()
			defer w.mu.Unlock()
			o := w.objects[navMesh]
			if o == nil || o.Components["NavMesh"] == nil || capacity <= 0 || out == nil {
				return false
			}
			corners := unsafe.Slice(out, capacity)
			corners[0] = *start
			n := int32(1)
			if capacity > 1 {
				corners[1] = *end
				n = 2
			}
			*count = n
			return true
		},
		AgentSetDestination: func(agent int32, x, y, z float32) {
			w.mu.Lock()
			defer w.mu.Unlock()
			o := w.objects[agent]
			if o == nil || o.Components["NavAgent"] == nil {
				return
			}
			a := w.agents[agent]
			if a == nil {
				a = &Agent{Speed: calltable.DefaultAgentParams.MaxSpeed}
				w.agents[agent] = a
			}
			a.Destination = rl.Vector3{X: x, Y: y, Z: z}
			a.Moving = true
		},
		AgentStop: func(agent int32) {
			w.mu.Lock()
			a := w.agents[agent]
			stopped := a != nil && a.Moving
			if stopped {
				a.Moving = false
			}
			cb := w.pathComplete
			w.mu.Unlock()
			if stopped && cb != nil {
				cb(uint64(agent), false)
			}
		},
		AgentWarp: func(agent int32, x, y, z float32) {
			w.with(agent, func(o *Object) { o.Transform.Position = rl.Vector3{X: x, Y: y, Z: z} })
		},
		AgentRemainingDistance: func(agent int32) float32 {
			w.mu.Lock()
			defer w.mu.Unlock()
			return w.remaining(agent)
		},
		SetPathCompleteCallback: func(cb uintptr) {
			fn, ok := w.linker.Func(cb)
			w.mu.Lock()
			defer w.mu.Unlock()
			if !ok {
				w.pathComplete = nil
				return
			}
			w.pathComplete, _ = fn.(func(uint64, bool))
		},
	}
}

func (w *World) ikTable() calltable.IKTable {
	const ik = "IK"
	return calltable.IKTable{
		SetWeight: func(id int32, weight float32) {
			w.withComponent(id, ik, func(c *Component) { c.Floats["weight"] = weight })
		},
		SetTarget: func(id int32, target int32) {
			w.withComponent(id, ik, func(c *Component) { c.Ints["target"] = target })
		},
		SetPole: func(id int32, pole int32) {
			w.withComponent(id, ik, func(c *Component) { c.Ints["pole"] = pole })
		},
		SetChain: func(id int32, bones *int32, count int32) {
			w.withComponent(id, ik, func(c *Component) {
				c.Chain = nil
				if bones != nil && count > 0 {
					c.Chain = append([]int32(nil), unsafe.Slice(bones, count)...)
				}
			})
		},
		GetErrorMeters: func(id int32) (v float32) {
			w.mu.Lock()
			defer w.mu.Unlock()
			o := w.objects[id]
			if o == nil || o.Components[ik] == nil {
				return 0
			}
			c := o.Components[ik]
			t := w.objects[c.Ints["target"]]
			if _, set := c.Ints["target"]; !set || t == nil {
				return 0
			}
			return rl.Vector3Distance(o.Transform.Position, t.Transform.Position) * (1 - c.Floats["weight"])
		},
	}
}

func (w *World) registerClass(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.classes = append(w.classes, name)
}

func (w *World) registerProperty(class, field string, tag int32, payload unsafe.Pointer) {
	v, err := fields.Decode(fields.Tag(tag), payload)
	if err != nil {
		w.log.Warn("bad property payload", zap.String("class", class), zap.String("field", field), zap.Error(err))
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.props = append(w.props, RegisteredField{Class: class, Name: field, Tag: tag, Value: v.Any()})
}
