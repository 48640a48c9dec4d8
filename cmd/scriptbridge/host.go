package main

import (
	"claybridge/internal/bridge"
	"claybridge/internal/calltable"
	"claybridge/internal/config"
	"claybridge/internal/logging"
	"claybridge/internal/module"
	"claybridge/internal/scripts"
	"context"
	"errors"
	"sync"
	"unsafe"

	"go.uber.org/zap"
)

// configFile is read from the host executable's directory.
const configFile = "bridge.yaml"

// The C ABI has no context parameter, so the library keeps one bridge for
// the life of the process.
var (
	hostOnce sync.Once
	host     *bridge.Bridge
	hostLog  *zap.Logger
)

func current() *bridge.Bridge {
	hostOnce.Do(func() {
		host, hostLog = newHost(config.Default().Resolve(configFile), nil)
	})
	return host
}

// newHost builds a bridge from the config at cfgPath. A config that does not
// load is logged and replaced by the defaults so the host still starts.
func newHost(cfgPath string, linker calltable.Linker) (*bridge.Bridge, *zap.Logger) {
	sink := &logging.NativeSink{}
	cfg, cfgErr := config.Load(cfgPath)
	if cfgErr != nil {
		cfg = config.Default()
	}
	log, err := logging.New(cfg.Log, sink)
	if err != nil {
		log = zap.NewNop()
	}
	if cfgErr != nil {
		log.Error("config rejected, using defaults", zap.String("path", cfgPath), zap.Error(cfgErr))
	}

	b := bridge.New(bridge.Options{
		Linker:    linker,
		Log:       log,
		Config:    cfg,
		Catalogs:  []*module.Catalog{scripts.Catalog},
		NativeLog: sink,
	})
	return b, log.Named("exports")
}

// bindTable copies count addresses from p and hands them to bind. It returns
// 0 on success and -1 otherwise. Binding errors are logged by the table
// itself and only repeated here at debug level.
func bindTable(log *zap.Logger, name string, p unsafe.Pointer, count int, bind func([]uintptr) error) int {
	addrs, err := calltable.Addresses(p, count)
	if err == nil {
		err = bind(addrs)
	}
	if err == nil {
		return 0
	}
	fields := []zap.Field{zap.String("table", name), zap.Int("count", count), zap.Error(err)}
	var berr *calltable.BindingError
	if errors.As(err, &berr) {
		log.Debug("interop init failed", fields...)
	} else {
		log.Error("interop init failed", fields...)
	}
	return -1
}

// managedStart loads the script module. args, when not empty, is a UTF-8
// module path that overrides the configured one.
func managedStart(b *bridge.Bridge, args []byte) int {
	return b.ManagedStart(context.Background(), string(args))
}

// registerAll reads the two registration callbacks from table and announces
// every class through them. It returns the number of classes, or -1.
func registerAll(log *zap.Logger, b *bridge.Bridge, table unsafe.Pointer) int {
	addrs, err := calltable.Addresses(table, 2)
	if err != nil {
		log.Error("register all scripts", zap.Error(err))
		return -1
	}
	n, err := b.RegisterAllScripts(addrs)
	if err != nil {
		return -1
	}
	return n
}

func status(err error) int {
	if err != nil {
		return -1
	}
	return 0
}
