package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
)

const goTmpl = `package scripts

import "claybridge/internal/engine"

type {{.Name}} struct {
	engine.BaseScript
	Speed float32
}

func ({{.Recv}} *{{.Name}}) Defaults() {
	{{.Recv}}.Speed = 1
}

func ({{.Recv}} *{{.Name}}) OnCreate() {
}

func ({{.Recv}} *{{.Name}}) OnUpdate(deltaTime float32) {
}
`

const luaTmpl = `local engine = require("engine")

local {{.Name}} = engine.class {
  name = "{{.Name}}",
  fields = {
    speed = engine.float(1),
  },
}

function {{.Name}}:on_create()
end

function {{.Name}}:on_update(dt)
end

return {{.Name}}
`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		lua bool
		dir string
	)
	cmd := &cobra.Command{
		Use:     "newscript <ScriptName>",
		Short:   "Create a script from a template",
		Example: "  go run ./cmd/newscript EnemyChaser\n  go run ./cmd/newscript --lua EnemyChaser",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = "assets/scripts"
				if lua {
					dir = "assets/lua"
				}
			}
			path, err := create(args[0], dir, lua)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			if !lua {
				fmt.Fprintln(cmd.OutOrStdout(), "Run 'go run ./cmd/gen-scripts' to add it to the builtin catalog.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&lua, "lua", false, "write a Lua class instead of a Go script")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "output directory")
	return cmd
}

// create writes the template for name into dir and returns the file path.
// It never overwrites an existing file.
func create(name, dir string, lua bool) (string, error) {
	if name == "" || !unicode.IsUpper(rune(name[0])) {
		return "", fmt.Errorf("script name must start with an uppercase letter")
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return "", fmt.Errorf("script name %q must be a plain identifier", name)
		}
	}

	tmpl, ext := goTmpl, ".go"
	if lua {
		tmpl, ext = luaTmpl, ".lua"
	}
	outPath := filepath.Join(dir, toSnakeCase(name)+ext)
	if _, err := os.Stat(outPath); err == nil {
		return "", fmt.Errorf("%s already exists", outPath)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	content := strings.ReplaceAll(tmpl, "{{.Name}}", name)
	content = strings.ReplaceAll(content, "{{.Recv}}", strings.ToLower(name[:1]))
	if err := os.WriteFile(outPath, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}
	return outPath, nil
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
