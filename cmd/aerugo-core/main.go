// Package main provides the entry point for the aerugo-core compositor.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/aerugo-project/compositor-core/config"
	"github.com/aerugo-project/compositor-core/configwatch"
	"github.com/aerugo-project/compositor-core/scene"
	"github.com/aerugo-project/compositor-core/shell"
	"github.com/aerugo-project/compositor-core/transaction"
	"github.com/aerugo-project/compositor-core/wmruntime"
)

var validBackends = map[string]bool{
	"auto": true, "kms": true, "tty": true, "windowed": true,
	"wayland": true, "wl": true, "x11": true, "x": true,
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		backend    string
		configPath string
		fuel       uint64
	)

	cmd := &cobra.Command{
		Use:   "aerugo-core",
		Short: "A Wayland compositor core",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validBackends[backend] {
				return fmt.Errorf("invalid --backend %q (want one of auto, kms|tty, windowed, wayland|wl, x11|x)", backend)
			}
			return run(cmd.Context(), backend, configPath, fuel)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&backend, "backend", "auto", "backend: auto, kms|tty, windowed, wayland|wl, x11|x")
	flags.StringVar(&configPath, "config", "", "path to the JSONC config file (defaults to the platform config directory)")
	flags.Uint64Var(&fuel, "fuel", 0, "per-call WM metering budget override (0 keeps the config file/default value)")

	return cmd
}

func run(ctx context.Context, backendFlag, configPath string, fuelFlag uint64) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if configPath == "" {
		if p, err := config.DefaultPath(); err == nil {
			configPath = p
		}
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if backendFlag != "auto" {
		cfg.Backend = backendFlag
	}
	if fuelFlag != 0 {
		cfg.Fuel = fuelFlag
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("starting aerugo-core", "backend", cfg.Backend, "fuel", cfg.Fuel, "config_path", configPath)

	// advertisedGlobals stands in for a backend's global registry, which is
	// out of scope for this module (SPEC_FULL.md §1: no DRM/KMS or wire
	// dispatch layer is implemented here). It asserts that this build's own
	// vendor extensions are present at the version this module speaks; a
	// real backend collaborator would build this map from its own bound
	// globals instead of hardcoding it.
	advertisedGlobals := map[string]uint32{
		"aerugo_wm_v1":                 1,
		"ext_foreign_toplevel_list_v1": 1,
	}
	if setupErr := wmruntime.CheckGlobals(advertisedGlobals, wmruntime.DefaultRequiredGlobals); setupErr != nil {
		logger.Error("required globals unavailable, aborting startup", "error", setupErr)
		return fmt.Errorf("aerugo-core: %w", setupErr)
	}

	// The scene graph, transaction tracker, and shell are constructed here
	// as the composition root for a surface-protocol collaborator that is
	// out of scope for this module (SPEC_FULL.md §1); a real deployment
	// feeds client commits into the scene and shell from its own
	// wire-protocol layer.
	_ = scene.New()

	events := make(chan wmruntime.Event, 64)
	requests := make(chan wmruntime.Request, 64)
	tracker := transaction.NewTracker()
	_ = shell.NewShell(tracker, events)

	runner := wmruntime.NewRunner(events, requests, noopInvoker{}, cfg.Fuel, logger)
	logger.Info("wm session assigned", "session_id", runner.SessionID())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := runner.Run(gctx); err != nil {
			if errors.Is(err, wmruntime.ErrFuelExhausted) {
				// SPEC_FULL.md §5/§7 failure mode (c): fuel exhaustion is not
				// process-fatal. The Runner has already stopped driving the
				// WM and sent TerminateWmRequest; the compositor keeps
				// accepting and tracking clients without WM-side layout
				// decisions. Swallow the error here so it does not cancel
				// gctx and tear down the sibling goroutines below.
				logger.Warn("wm runtime exited, continuing in WM-less degraded mode")
				return nil
			}
			return err
		}
		return nil
	})

	g.Go(func() error {
		return drainRequests(gctx, requests, logger)
	})

	if dir := configDir(configPath); dir != "" {
		watcher, err := configwatch.New(dir, logger)
		if err != nil {
			logger.Warn("config watcher disabled", "error", err)
		} else {
			g.Go(func() error {
				return watchConfig(gctx, watcher, logger)
			})
		}
	}

	close(events) // no client activity in this standalone entry point yet

	if err := g.Wait(); err != nil && gctx.Err() == nil {
		return fmt.Errorf("aerugo-core: %w", err)
	}
	logger.Info("aerugo-core shutdown complete")
	return nil
}

func drainRequests(ctx context.Context, requests <-chan wmruntime.Request, logger *slog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case req, ok := <-requests:
			if !ok {
				return nil
			}
			logger.Debug("wm request", "request", fmt.Sprintf("%#v", req))
		}
	}
}

func watchConfig(ctx context.Context, w *configwatch.Watcher, logger *slog.Logger) error {
	defer w.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			logger.Info("config changed", "kind", ev.Kind.String(), "path", ev.Path)
		}
	}
}

func configDir(configPath string) string {
	if configPath == "" {
		return ""
	}
	return dirOf(configPath)
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return ""
}

// noopInvoker is the default GuestInvoker when no WASM guest program is
// configured: it reports the event dispatched with zero fuel consumed. A
// real deployment replaces this with a metered Component Model host call
// (see DESIGN.md for why no WASM engine dependency is present in the
// retrieved pack).
type noopInvoker struct{}

func (noopInvoker) Dispatch(_ context.Context, _ wmruntime.Event, _ uint64) (uint64, error) {
	return 0, nil
}

func newLogger(level string) *slog.Logger {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}
	if v := os.Getenv("SLOG_LEVEL"); v != "" {
		switch v {
		case "debug":
			slogLevel = slog.LevelDebug
		case "warn":
			slogLevel = slog.LevelWarn
		case "error":
			slogLevel = slog.LevelError
		case "info":
			slogLevel = slog.LevelInfo
		}
	}

	var handler slog.Handler
	if isDevelopment() {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel})
	}
	return slog.New(handler)
}

func isDevelopment() bool {
	return os.Getenv("AERUGO_ENV") != "production"
}
