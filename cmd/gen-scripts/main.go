package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

const catalogName = "gamescripts"

type ScriptInfo struct {
	Name        string
	Fields      []FieldInfo
	Unsupported []FieldInfo
	HasDefaults bool
}

type FieldInfo struct {
	Name string
	Type string
	// Key is the name the field is registered under with the host.
	Key string
}

// supportedTypes are the field types that serialize; everything else stays
// on the script but is invisible to the host.
var supportedTypes = map[string]bool{
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"float32": true, "float64": true,
	"bool": true, "string": true,
	"rl.Vector3": true, "engine.EntityRef": true,
}

func main() {
	sourceDir := "assets/scripts"
	outputDir := "internal/scripts"

	if _, err := os.Stat(sourceDir); os.IsNotExist(err) {
		fmt.Printf("❌ Source directory not found: %s\n", sourceDir)
		fmt.Println("   Create assets/scripts/ and add your script files there.")
		os.Exit(1)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Printf("❌ Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	if err := writeDoc(outputDir); err != nil {
		fmt.Printf("❌ Failed to write doc.go: %v\n", err)
		os.Exit(1)
	}

	files, err := filepath.Glob(filepath.Join(sourceDir, "*.go"))
	if err != nil {
		fmt.Printf("❌ Failed to read source directory: %v\n", err)
		os.Exit(1)
	}

	if len(files) == 0 {
		fmt.Printf("⚠️  No script files found in %s\n", sourceDir)
		fmt.Println("   Add .go files to assets/scripts/ to generate scripts.")
		return
	}

	fmt.Println("🔧 Generating scripts from assets/scripts/...")

	generatedCount := 0
	skippedCount := 0
	for _, file := range files {
		result, err := processScript(file, outputDir)
		if err != nil {
			fmt.Printf("   ✗ %s: %v\n", filepath.Base(file), err)
		} else if result == "skipped" {
			skippedCount++
		} else {
			fmt.Printf("   ✓ %s\n", strings.TrimSuffix(filepath.Base(file), ".go"))
			generatedCount++
		}
	}

	if skippedCount > 0 {
		fmt.Printf("✅ Generated %d, skipped %d (cached) in %s\n", generatedCount, skippedCount, outputDir)
	} else {
		fmt.Printf("✅ Generated %d script(s) in %s\n", generatedCount, outputDir)
	}
}

// writeDoc creates the package file that declares the catalog, unless it
// already exists.
func writeDoc(outputDir string) error {
	docPath := filepath.Join(outputDir, "doc.go")
	if _, err := os.Stat(docPath); err == nil {
		return nil
	}
	doc := `// Package scripts contains the builtin game scripts. Sources live in
// assets/scripts/ and are copied here with their catalog registration by
// cmd/gen-scripts.
package scripts

import "claybridge/internal/module"

// Catalog holds every generated script class. Load it as builtin:` + catalogName + `.
var Catalog = module.NewCatalog("` + catalogName + `")
`
	return os.WriteFile(docPath, []byte(doc), 0644)
}

func processScript(sourcePath, outputDir string) (string, error) {
	content, err := os.ReadFile(sourcePath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	outputPath := filepath.Join(outputDir, filepath.Base(sourcePath))

	if !needsRegeneration(content, outputPath) {
		return "skipped", nil
	}

	script, err := parseScript(string(content))
	if err != nil {
		return "", err
	}
	for _, f := range script.Unsupported {
		fmt.Printf("   ⚠️  %s.%s (%s) is not serializable and will not show in the host\n", script.Name, f.Name, f.Type)
	}

	if err := generateScriptFile(script, content, outputPath); err != nil {
		return "", err
	}

	return "generated", nil
}

// parseScript finds the script struct, the first struct embedding
// engine.BaseScript, and lists its exported fields.
func parseScript(content string) (*ScriptInfo, error) {
	fset := token.NewFileSet()
	node, err := parser.ParseFile(fset, "", content, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Go file: %w", err)
	}

	var scriptInfo *ScriptInfo

	ast.Inspect(node, func(n ast.Node) bool {
		if scriptInfo != nil {
			return false
		}
		typeSpec, ok := n.(*ast.TypeSpec)
		if !ok {
			return true
		}
		structType, ok := typeSpec.Type.(*ast.StructType)
		if !ok || !embedsBaseScript(structType) {
			return true
		}

		scriptInfo = &ScriptInfo{Name: typeSpec.Name.Name}
		for _, field := range structType.Fields.List {
			if len(field.Names) == 0 {
				continue
			}
			fieldType := exprToString(field.Type)
			key, hidden := fieldKey(field)
			for _, name := range field.Names {
				if !unicode.IsUpper(rune(name.Name[0])) || hidden {
					continue
				}
				info := FieldInfo{Name: name.Name, Type: fieldType, Key: key}
				if info.Key == "" {
					info.Key = toSnakeCase(name.Name)
				}
				if supportedTypes[fieldType] {
					scriptInfo.Fields = append(scriptInfo.Fields, info)
				} else {
					scriptInfo.Unsupported = append(scriptInfo.Unsupported, info)
				}
			}
		}
		return false
	})

	if scriptInfo == nil {
		return nil, fmt.Errorf("no struct embedding engine.BaseScript found")
	}

	for _, decl := range node.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv == nil || fn.Name.Name != "Defaults" || len(fn.Recv.List) != 1 {
			continue
		}
		if exprToString(fn.Recv.List[0].Type) == "*"+scriptInfo.Name {
			scriptInfo.HasDefaults = true
		}
	}

	return scriptInfo, nil
}

func embedsBaseScript(st *ast.StructType) bool {
	for _, field := range st.Fields.List {
		if len(field.Names) == 0 && exprToString(field.Type) == "engine.BaseScript" {
			return true
		}
	}
	return false
}

// fieldKey reads a serialize:"name" tag. hidden is true for serialize:"-".
func fieldKey(field *ast.Field) (key string, hidden bool) {
	if field.Tag == nil {
		return "", false
	}
	tag := strings.Trim(field.Tag.Value, "`")
	const prefix = `serialize:"`
	i := strings.Index(tag, prefix)
	if i < 0 {
		return "", false
	}
	rest := tag[i+len(prefix):]
	j := strings.IndexByte(rest, '"')
	if j < 0 {
		return "", false
	}
	key = rest[:j]
	return key, key == "-"
}

func exprToString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.SelectorExpr:
		return exprToString(t.X) + "." + t.Sel.Name
	case *ast.StarExpr:
		return "*" + exprToString(t.X)
	case *ast.ArrayType:
		if t.Len == nil {
			return "[]" + exprToString(t.Elt)
		}
		return fmt.Sprintf("[%s]%s", exprToString(t.Len), exprToString(t.Elt))
	case *ast.MapType:
		return "map[" + exprToString(t.Key) + "]" + exprToString(t.Value)
	default:
		return "unknown"
	}
}

func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) && i > 0 {
			result.WriteRune('_')
		}
		result.WriteRune(unicode.ToLower(r))
	}
	return result.String()
}

// generateRegistration returns the init function that adds script to the
// catalog.
func generateRegistration(script *ScriptInfo) string {
	var b strings.Builder
	b.WriteString("\n// --- Generated registration below ---\n\n")
	b.WriteString("func init() {\n")
	b.WriteString("\tCatalog.Add(func() engine.Script {\n")
	fmt.Fprintf(&b, "\t\ts := &%s{}\n", script.Name)
	if script.HasDefaults {
		b.WriteString("\t\ts.Defaults()\n")
	}
	b.WriteString("\t\treturn s\n\t})\n}\n")

	if len(script.Fields) > 0 {
		fmt.Fprintf(&b, "\n// %s fields: ", script.Name)
		keys := make([]string, len(script.Fields))
		for i, f := range script.Fields {
			keys[i] = f.Key
		}
		b.WriteString(strings.Join(keys, ", "))
		b.WriteString("\n")
	}
	return b.String()
}

func generateScriptFile(script *ScriptInfo, sourceContent []byte, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(sourceContent); err != nil {
		return fmt.Errorf("failed to write source content: %w", err)
	}
	if _, err := f.WriteString(generateRegistration(script)); err != nil {
		return fmt.Errorf("failed to write registration: %w", err)
	}

	h := sha256.New()
	h.Write(sourceContent)
	hash := hex.EncodeToString(h.Sum(nil))
	os.WriteFile(outputPath+".hash", []byte(hash), 0644)

	return nil
}

func needsRegeneration(sourceContent []byte, outputPath string) bool {
	h := sha256.New()
	h.Write(sourceContent)
	sourceHash := hex.EncodeToString(h.Sum(nil))

	if _, err := os.Stat(outputPath); os.IsNotExist(err) {
		return true
	}

	cachedHash, err := os.ReadFile(outputPath + ".hash")
	if err != nil {
		return true
	}

	return string(cachedHash) != sourceHash
}
