package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"grapher/app"
	"grapher/hal"
	"grapher/internal/buildinfo"
	"grapher/internal/config"
	"grapher/internal/history"
	"grapher/internal/logging"
)

func main() {
	var (
		cfgPath  string
		exprSrc  string
		histPath string
		logLevel string
		version  bool
		size     hal.Size
		scale    int
		headless hal.HeadlessConfig
		runBare  bool
	)
	flag.StringVar(&cfgPath, "config", "", "YAML settings file.")
	flag.StringVar(&exprSrc, "expr", "", "Expression to show at startup.")
	flag.StringVar(&histPath, "history", "", "Expression history file (overrides the config; empty keeps the config value).")
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error.")
	flag.BoolVar(&version, "version", false, "Print version and exit.")
	flag.IntVar(&size.Width, "width", hal.DefaultWidth, "Framebuffer width in pixels.")
	flag.IntVar(&size.Height, "height", hal.DefaultHeight, "Framebuffer height in pixels.")
	flag.IntVar(&scale, "scale", 2, "Window pixels per framebuffer pixel.")
	flag.BoolVar(&runBare, "headless", false, "Run without a window.")
	flag.IntVar(&headless.Hz, "hz", 60, "Tick rate in headless mode.")
	flag.Uint64Var(&headless.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.Parse()

	if version {
		fmt.Println(buildinfo.String("grapher"))
		return
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	if exprSrc != "" {
		cfg.Expr = exprSrc
	}
	if histPath != "" {
		cfg.History = histPath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	log := logging.New(os.Stderr, cfg.Level())

	var store *history.Store
	if cfg.History != "" {
		store, err = history.Open(cfg.History)
		if err != nil {
			log.Warn("history disabled", logging.Error(err))
		} else {
			defer store.Close()
		}
	}

	newApp := func(h hal.HAL) func() error {
		return app.New(h, app.Config{Settings: cfg, History: store, Logger: log})
	}

	if runBare {
		headless.Size = size
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		err = hal.RunHeadless(ctx, newApp, headless)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	} else {
		err = hal.RunWindow(newApp, hal.WindowConfig{Size: size, Scale: scale, Title: "grapher"})
	}
	if err != nil && !errors.Is(err, app.ErrQuit) {
		log.Error("exit", logging.Error(err))
		store.Close()
		os.Exit(1)
	}
}
