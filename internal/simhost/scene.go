package simhost

import (
	"claybridge/internal/fields"
	"fmt"
	"os"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"
)

// --- YAML types ---

type SceneFile struct {
	Objects []ObjectDef `yaml:"objects"`
}

type ObjectDef struct {
	Name       string         `yaml:"name"`
	Tags       []string       `yaml:"tags,omitempty,flow"`
	Position   [3]float32     `yaml:"position,flow"`
	Rotation   [3]float32     `yaml:"rotation,flow"`
	Scale      [3]float32     `yaml:"scale,flow"`
	Components []ComponentDef `yaml:"components,omitempty"`
}

// ComponentDef is one component entry. Scripts use Class and Fields; native
// components keep their settings in Props.
type ComponentDef struct {
	Type   string         `yaml:"type"`
	Class  string         `yaml:"class,omitempty"`
	Fields map[string]any `yaml:"fields,omitempty"`
	Props  map[string]any `yaml:",inline"`
}

// ScriptSpec is a script instance a scene asks for. The simulated engine has
// no scripting of its own; the caller creates these through the bridge.
type ScriptSpec struct {
	Entity int32
	Class  string
	Fields map[string]any
}

var lightTypeByName = map[string]int32{
	"directional": 0,
	"point":       1,
	"spot":        2,
}

// --- Loading ---

// LoadScene spawns every object in the scene file at path and returns the
// scripts it declares, in file order.
func (w *World) LoadScene(path string) ([]ScriptSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return w.LoadSceneBytes(data)
}

func (w *World) LoadSceneBytes(data []byte) ([]ScriptSpec, error) {
	var sf SceneFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	var scripts []ScriptSpec
	for _, def := range sf.Objects {
		o := w.spawn(def.Name)
		o.Tags = def.Tags
		o.Transform.Position = vec3(def.Position)
		o.Transform.Rotation = vec3(def.Rotation)
		if def.Scale != [3]float32{} {
			o.Transform.Scale = vec3(def.Scale)
		}

		for _, cd := range def.Components {
			if cd.Type == "Script" {
				if cd.Class == "" {
					return nil, fmt.Errorf("object %q: script without class", def.Name)
				}
				scripts = append(scripts, ScriptSpec{Entity: o.ID, Class: cd.Class, Fields: cd.Fields})
				continue
			}
			if err := applyComponent(o.AddComponent(cd.Type), cd.Props); err != nil {
				return nil, fmt.Errorf("object %q: %s: %w", def.Name, cd.Type, err)
			}
		}
	}
	return scripts, nil
}

func vec3(a [3]float32) rl.Vector3 { return rl.Vector3{X: a[0], Y: a[1], Z: a[2]} }

func applyComponent(c *Component, props map[string]any) error {
	for key, raw := range props {
		switch key {
		case "shapes":
			list, ok := raw.([]any)
			if !ok {
				return fmt.Errorf("shapes: want list, got %T", raw)
			}
			names := make([]string, 0, len(list))
			for _, e := range list {
				names = append(names, fmt.Sprint(e))
			}
			c.SetShapes(names...)
		case "light":
			kind, ok := lightTypeByName[strings.ToLower(fmt.Sprint(raw))]
			if !ok {
				return fmt.Errorf("unknown light type %v", raw)
			}
			c.Ints["type"] = kind
		default:
			if err := applyProp(c, key, raw); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
		}
	}
	return nil
}

// applyProp stores raw in the property map matching its YAML type.
func applyProp(c *Component, key string, raw any) error {
	switch v := raw.(type) {
	case bool:
		c.Bools[key] = v
		return nil
	case int:
		c.Ints[key] = int32(v)
		c.Floats[key] = float32(v)
		return nil
	case float64:
		c.Floats[key] = float32(v)
		return nil
	case []any:
		fv, err := fields.FromAny(fields.Vector3, v)
		if err != nil {
			return err
		}
		c.Vectors[key] = fv.V
		return nil
	}
	return fmt.Errorf("unsupported value %T", raw)
}

// --- Saving ---

// SaveScene writes the native state of every object. Scripts are not part of
// the native state and are not written.
func (w *World) SaveScene(path string) error {
	data, err := w.MarshalScene()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write scene: %w", err)
	}
	return nil
}

func (w *World) MarshalScene() ([]byte, error) {
	var sf SceneFile
	for _, o := range w.Objects() {
		def := ObjectDef{
			Name:     o.Name,
			Tags:     o.Tags,
			Position: [3]float32{o.Transform.Position.X, o.Transform.Position.Y, o.Transform.Position.Z},
			Rotation: [3]float32{o.Transform.Rotation.X, o.Transform.Rotation.Y, o.Transform.Rotation.Z},
			Scale:    [3]float32{o.Transform.Scale.X, o.Transform.Scale.Y, o.Transform.Scale.Z},
		}
		for _, name := range o.ComponentNames() {
			def.Components = append(def.Components, serializeComponent(o.Components[name]))
		}
		sf.Objects = append(sf.Objects, def)
	}

	data, err := yaml.Marshal(sf)
	if err != nil {
		return nil, fmt.Errorf("marshal scene: %w", err)
	}
	return data, nil
}

func serializeComponent(c *Component) ComponentDef {
	props := map[string]any{}
	for k, v := range c.Bools {
		props[k] = v
	}
	for k, v := range c.Floats {
		props[k] = v
	}
	for k, v := range c.Vectors {
		props[k] = []float32{v.X, v.Y, v.Z}
	}
	if c.Name == "Light" {
		for name, kind := range lightTypeByName {
			if kind == c.Ints["type"] {
				props["light"] = name
			}
		}
	}
	if len(c.Shapes) > 0 {
		props["shapes"] = c.Shapes
	}
	if len(props) == 0 {
		props = nil
	}
	return ComponentDef{Type: c.Name, Props: props}
}
