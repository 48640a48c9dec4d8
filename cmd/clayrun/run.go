package main

import (
	"claybridge/internal/bridge"
	"claybridge/internal/logging"
	"claybridge/internal/module"
	"claybridge/internal/scripts"
	"claybridge/internal/simhost"
	"claybridge/internal/watch"
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type runOptions struct {
	modulePath string
	scenePath  string
	savePath   string
	frames     int
	fps        int
	realtime   bool
	watch      bool
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load a scene and tick its scripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), root, opts, cmd.Flags().Changed("watch"))
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.modulePath, "module", "m", "", "script module (default from config)")
	f.StringVarP(&opts.scenePath, "scene", "s", "assets/scenes/demo.yaml", "scene file")
	f.StringVar(&opts.savePath, "save", "", "write the final scene state here")
	f.IntVarP(&opts.frames, "frames", "n", 300, "frames to run, 0 runs until interrupted")
	f.IntVar(&opts.fps, "fps", 60, "simulated frame rate")
	f.BoolVar(&opts.realtime, "realtime", false, "pace frames at the frame rate")
	f.BoolVarP(&opts.watch, "watch", "w", false, "reload the module when its file changes")
	return cmd
}

func run(ctx context.Context, root *rootOptions, opts *runOptions, watchSet bool) error {
	if opts.fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", opts.fps)
	}

	sink := &logging.NativeSink{}
	cfg, log, err := root.setup(sink)
	if err != nil {
		return err
	}
	defer log.Sync()
	if !watchSet {
		opts.watch = cfg.Watch.Enabled
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	// Scripts and continuations run on this thread only.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	world := simhost.New(log)
	b := bridge.New(bridge.Options{
		Linker:    world.Linker(),
		Log:       log,
		Config:    cfg,
		Catalogs:  []*module.Catalog{scripts.Catalog},
		NativeLog: sink,
	})
	defer b.Close()
	b.InstallSyncContext()

	addrs := world.Export()
	if err := multierr.Combine(
		b.EntityInteropInit(addrs.Entity),
		b.InputInteropInit(addrs.Input),
		b.NavigationInteropInit(addrs.Navigation),
		b.IKInteropInit(addrs.IK),
	); err != nil {
		return fmt.Errorf("bind native tables: %w", err)
	}
	if _, err := b.RegisterAllScripts([]uintptr{addrs.RegisterClass, addrs.RegisterProperty}); err != nil {
		return err
	}

	path := resolveModule(cfg, opts.modulePath)
	if status := b.ManagedStart(ctx, path); status != 0 {
		return fmt.Errorf("load %s failed", path)
	}

	specs, err := world.LoadScene(opts.scenePath)
	if err != nil {
		return err
	}
	s := newSession(b, world, specs, log)
	defer s.close()
	if err := s.spawn(); err != nil {
		log.Warn("some scene scripts did not start", zap.Error(err))
	}

	reloads := make(chan struct{}, 1)
	if opts.watch {
		if strings.HasPrefix(path, module.BuiltinScheme) {
			log.Warn("builtin modules cannot be watched", zap.String("path", path))
		} else {
			w, err := watch.New(path, cfg.Watch.Debounce, log)
			if err != nil {
				return err
			}
			go w.Run(ctx, func() {
				select {
				case reloads <- struct{}{}:
				default:
				}
			})
			// a watched session keeps running until interrupted
			opts.frames = 0
			opts.realtime = true
		}
	}

	dt := 1 / float32(opts.fps)
	var pace <-chan time.Time
	if opts.realtime {
		t := time.NewTicker(time.Second / time.Duration(opts.fps))
		defer t.Stop()
		pace = t.C
	}

	frames := 0
	for opts.frames == 0 || frames < opts.frames {
		select {
		case <-ctx.Done():
			return finish(log, world, b, frames, opts.savePath)
		case <-reloads:
			if err := s.reload(ctx, path); err != nil {
				log.Warn("module reload incomplete", zap.Error(err))
			}
			continue
		default:
		}
		if pace != nil {
			select {
			case <-ctx.Done():
				return finish(log, world, b, frames, opts.savePath)
			case <-pace:
			}
		}
		s.tick(dt)
		frames++
	}
	return finish(log, world, b, frames, opts.savePath)
}

func finish(log *zap.Logger, world *simhost.World, b *bridge.Bridge, frames int, savePath string) error {
	log.Info("run finished",
		zap.Int("frames", frames),
		zap.Int("live_scripts", b.Live()),
		zap.Int64("continuation_faults", b.Scheduler().Faults()),
	)
	if savePath == "" {
		return nil
	}
	if err := world.SaveScene(savePath); err != nil {
		return fmt.Errorf("save scene: %w", err)
	}
	return nil
}
