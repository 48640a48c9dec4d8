package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseScriptBasic(t *testing.T) {
	source := `package scripts

import "claybridge/internal/engine"

type TestScript struct {
	engine.BaseScript
	Speed float32
	Name  string
}
`

	script, err := parseScript(source)
	if err != nil {
		t.Fatalf("parseScript failed: %v", err)
	}

	if script.Name != "TestScript" {
		t.Errorf("Expected name 'TestScript', got '%s'", script.Name)
	}

	if len(script.Fields) != 2 {
		t.Fatalf("Expected 2 fields, got %d", len(script.Fields))
	}

	if script.Fields[0].Name != "Speed" || script.Fields[0].Type != "float32" {
		t.Errorf("Speed field incorrect: %+v", script.Fields[0])
	}

	if script.Fields[1].Name != "Name" || script.Fields[1].Key != "name" {
		t.Errorf("Name field incorrect: %+v", script.Fields[1])
	}

	if script.HasDefaults {
		t.Error("HasDefaults should be false without a Defaults method")
	}
}

func TestParseScriptFindsScriptStruct(t *testing.T) {
	source := `package scripts

import "claybridge/internal/engine"

type helper struct {
	Count int
}

type Follower struct {
	engine.BaseScript
	TargetRef engine.EntityRef
	Offset    rl.Vector3
	Speed     float32
}

func (f *Follower) Defaults() { f.Speed = 2 }
`

	script, err := parseScript(source)
	if err != nil {
		t.Fatalf("parseScript failed: %v", err)
	}

	if script.Name != "Follower" {
		t.Fatalf("Expected 'Follower', got '%s'", script.Name)
	}
	if len(script.Fields) != 3 {
		t.Fatalf("Expected 3 fields, got %d", len(script.Fields))
	}
	if script.Fields[0].Key != "target_ref" || script.Fields[0].Type != "engine.EntityRef" {
		t.Errorf("TargetRef field incorrect: %+v", script.Fields[0])
	}
	if !script.HasDefaults {
		t.Error("Defaults method not detected")
	}
}

func TestParseScriptSkipsPrivateAndHiddenFields(t *testing.T) {
	source := `package scripts

type TestScript struct {
	engine.BaseScript
	PublicField  string
	Renamed      int ` + "`serialize:\"hit_points\"`" + `
	Hidden       bool ` + "`serialize:\"-\"`" + `
	privateField int
}
`

	script, err := parseScript(source)
	if err != nil {
		t.Fatalf("parseScript failed: %v", err)
	}

	if len(script.Fields) != 2 {
		t.Fatalf("Expected 2 fields, got %d: %+v", len(script.Fields), script.Fields)
	}
	if script.Fields[0].Name != "PublicField" {
		t.Errorf("Expected 'PublicField', got '%s'", script.Fields[0].Name)
	}
	if script.Fields[1].Key != "hit_points" {
		t.Errorf("Expected key 'hit_points', got '%s'", script.Fields[1].Key)
	}
}

func TestParseScriptReportsUnsupportedFields(t *testing.T) {
	source := `package scripts

type Inventory struct {
	engine.BaseScript
	Items []string
	Slots map[string]int
	Gold  int32
}
`

	script, err := parseScript(source)
	if err != nil {
		t.Fatalf("parseScript failed: %v", err)
	}

	if len(script.Fields) != 1 || script.Fields[0].Name != "Gold" {
		t.Errorf("Expected only Gold to serialize, got %+v", script.Fields)
	}
	if len(script.Unsupported) != 2 {
		t.Fatalf("Expected 2 unsupported fields, got %d", len(script.Unsupported))
	}
	if script.Unsupported[1].Type != "map[string]int" {
		t.Errorf("Expected map type, got '%s'", script.Unsupported[1].Type)
	}
}

func TestParseScriptWithoutBaseScript(t *testing.T) {
	source := `package scripts

type Plain struct {
	Speed float32
}
`

	if _, err := parseScript(source); err == nil {
		t.Error("Expected an error for a file without a script struct")
	}
}

func TestGenerateRegistration(t *testing.T) {
	out := generateRegistration(&ScriptInfo{
		Name:        "Rotator",
		Fields:      []FieldInfo{{Name: "Speed", Type: "float32", Key: "speed"}},
		HasDefaults: true,
	})

	for _, want := range []string{
		"Catalog.Add(func() engine.Script {",
		"s := &Rotator{}",
		"s.Defaults()",
		"// Rotator fields: speed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("registration missing %q:\n%s", want, out)
		}
	}

	out = generateRegistration(&ScriptInfo{Name: "Empty"})
	if strings.Contains(out, "Defaults") {
		t.Errorf("Defaults called without a Defaults method:\n%s", out)
	}
}

func TestRegenerationCache(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "spin.go")
	content := []byte(`package scripts

type Spin struct {
	engine.BaseScript
	Speed float32
}
`)
	if err := os.WriteFile(src, content, 0644); err != nil {
		t.Fatal(err)
	}

	outDir := filepath.Join(dir, "out")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		t.Fatal(err)
	}

	result, err := processScript(src, outDir)
	if err != nil || result != "generated" {
		t.Fatalf("first run: %q, %v", result, err)
	}
	result, err = processScript(src, outDir)
	if err != nil || result != "skipped" {
		t.Fatalf("second run: %q, %v", result, err)
	}

	if err := os.WriteFile(src, append(content, []byte("\n// changed\n")...), 0644); err != nil {
		t.Fatal(err)
	}
	result, err = processScript(src, outDir)
	if err != nil || result != "generated" {
		t.Fatalf("after change: %q, %v", result, err)
	}
}

func TestWriteDocKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	if err := writeDoc(dir); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "doc.go"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `module.NewCatalog("gamescripts")`) {
		t.Errorf("doc.go does not declare the catalog:\n%s", b)
	}

	custom := []byte("package scripts\n")
	if err := os.WriteFile(filepath.Join(dir, "doc.go"), custom, 0644); err != nil {
		t.Fatal(err)
	}
	if err := writeDoc(dir); err != nil {
		t.Fatal(err)
	}
	b, _ = os.ReadFile(filepath.Join(dir, "doc.go"))
	if string(b) != string(custom) {
		t.Error("writeDoc overwrote an existing doc.go")
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Speed", "speed"},
		{"TargetRef", "target_ref"},
		{"IsActive", "is_active"},
		{"name", "name"},
	}

	for _, test := range tests {
		result := toSnakeCase(test.input)
		if result != test.expected {
			t.Errorf("toSnakeCase(%s): expected '%s', got '%s'", test.input, test.expected, result)
		}
	}
}
