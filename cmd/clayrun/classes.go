package main

import (
	"claybridge/internal/bridge"
	"claybridge/internal/config"
	"claybridge/internal/fields"
	"claybridge/internal/module"
	"claybridge/internal/scripts"
	"claybridge/internal/simhost"
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newClassesCmd(root *rootOptions) *cobra.Command {
	var modulePath string
	cmd := &cobra.Command{
		Use:   "classes",
		Short: "List the script classes and fields a module exposes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := root.setup(nil)
			if err != nil {
				return err
			}
			defer log.Sync()

			world := simhost.New(log)
			b := bridge.New(bridge.Options{
				Linker:   world.Linker(),
				Log:      log,
				Config:   cfg,
				Catalogs: []*module.Catalog{scripts.Catalog},
			})
			defer b.Close()

			path := resolveModule(cfg, modulePath)
			if status := b.ManagedStart(context.Background(), path); status != 0 {
				return fmt.Errorf("load %s failed", path)
			}
			if b.Loader().Path() == "" {
				return fmt.Errorf("no script module at %s", path)
			}
			return printClasses(cmd.OutOrStdout(), b.Loader().Classes())
		},
	}
	cmd.Flags().StringVarP(&modulePath, "module", "m", "", "script module (default from config)")
	return cmd
}

func printClasses(w io.Writer, classes []module.Class) error {
	for _, c := range classes {
		kind := ""
		if c.Abstract() {
			kind = " (abstract)"
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", c.Name(), kind); err != nil {
			return err
		}
		for _, d := range c.Fields() {
			if _, err := fmt.Fprintf(w, "    %-16s %-8s %s\n", d.Name, d.Tag, formatValue(d.Default)); err != nil {
				return err
			}
		}
	}
	return nil
}

func formatValue(v fields.Value) string {
	if v.Tag == fields.String {
		return fmt.Sprintf("%q", v.S)
	}
	return fmt.Sprint(v.Any())
}

// resolveModule returns the module flag when set, else the configured module.
func resolveModule(cfg *config.Config, flag string) string {
	if flag == "" {
		return cfg.ModulePath()
	}
	return cfg.Resolve(flag)
}
