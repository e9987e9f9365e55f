// Command surfserve streams rendered frames to WebSocket clients.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"grapher/internal/buildinfo"
	"grapher/internal/config"
	"grapher/internal/logging"
	"grapher/internal/stream"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("surfserve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		addr       string
		configPath string
		origins    string
		readLimit  int64
		ping       time.Duration
		maxRes     int
		logLevel   string
		version    bool
	)
	fs.StringVar(&addr, "addr", ":8080", "Listen address.")
	fs.StringVar(&configPath, "config", "", "YAML settings file for the base state.")
	fs.StringVar(&origins, "origins", "", "Comma-separated allowed Origin headers (* for any; empty for same host).")
	fs.Int64Var(&readLimit, "read-limit", stream.DefaultReadLimit, "Maximum request size in bytes.")
	fs.DurationVar(&ping, "ping", stream.DefaultPingInterval, "Ping interval.")
	fs.IntVar(&maxRes, "max-res", stream.DefaultMaxResolution, "Largest grid axis a client may request.")
	fs.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error.")
	fs.BoolVar(&version, "version", false, "Print version and exit.")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if version {
		fmt.Fprintln(stdout, buildinfo.String("surfserve"))
		return 0
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(stderr, "error:", err)
			return 1
		}
	}
	log := logging.New(stderr, cfg.Level())

	var allowed []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed = append(allowed, o)
		}
	}
	srv := stream.NewServer(stream.Options{
		Base:           cfg.State(),
		Pipeline:       cfg.PipelineOptions(),
		Logger:         log,
		ReadLimit:      readLimit,
		PingInterval:   ping,
		MaxResolution:  maxRes,
		AllowedOrigins: allowed,
	})

	mux := http.NewServeMux()
	mux.Handle("/ws", srv)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		conns, frames, superseded := srv.Counters()
		fmt.Fprintf(w, "ok conns=%d frames=%d superseded=%d\n", conns, frames, superseded)
	})
	hs := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		hs.Shutdown(shutdown)
	}()

	log.Info("listening", logging.String("addr", addr), logging.String("version", buildinfo.Short()))
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("serve failed", logging.Error(err))
		return 1
	}
	return 0
}
