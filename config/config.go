package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// Config is the compositor's layered runtime configuration
// (SPEC_FULL.md §2A/§2B).
type Config struct {
	// Backend selects the compositor backend: one of auto, kms|tty,
	// windowed, wayland|wl, x11|x (SPEC_FULL.md §6).
	Backend string `json:"backend"`

	// Fuel is the per-call WM metering budget override (SPEC_FULL.md
	// §4.5/§5).
	Fuel uint64 `json:"fuel"`

	// LogLevel is one of debug|info|warn|error. A non-empty SLOG_LEVEL in
	// the environment takes precedence over it.
	LogLevel string `json:"logLevel"`

	// SocketDir overrides the runtime directory the listening Wayland
	// socket is bound under; empty means the platform default.
	SocketDir string `json:"socketDir"`
}

var validBackends = map[string]bool{
	"auto":     true,
	"kms":      true,
	"tty":      true,
	"windowed": true,
	"wayland":  true,
	"wl":       true,
	"x11":      true,
	"x":        true,
}

// Default returns the built-in configuration, used as the base every
// loaded file is layered onto.
func Default() Config {
	return Config{
		Backend:  "auto",
		Fuel:     10_000_000,
		LogLevel: "info",
	}
}

// DefaultPath returns the platform configuration directory's
// aerugo/config.jsonc path, the default --config target (SPEC_FULL.md
// §6).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve platform config directory: %w", err)
	}
	return filepath.Join(dir, "aerugo", "config.jsonc"), nil
}

// raw mirrors Config with every field a pointer, so Load can tell an
// explicitly-set-to-zero field in the file apart from a field the file
// simply omits (and therefore should not override the default for).
type raw struct {
	Backend   *string `json:"backend"`
	Fuel      *uint64 `json:"fuel"`
	LogLevel  *string `json:"logLevel"`
	SocketDir *string `json:"socketDir"`
}

// Load reads the JSONC file at path and layers it onto Default(). A path
// that does not exist on disk is not an error: Load returns Default()
// unchanged, matching "stateless across restarts" (SPEC_FULL.md §6) — the
// config file is optional, not required state.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var r raw
	if err := json.Unmarshal(jsonc.ToJSON(data), &r); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if r.Backend != nil {
		cfg.Backend = *r.Backend
	}
	if r.Fuel != nil {
		cfg.Fuel = *r.Fuel
	}
	if r.LogLevel != nil {
		cfg.LogLevel = *r.LogLevel
	}
	if r.SocketDir != nil {
		cfg.SocketDir = *r.SocketDir
	}

	if !validBackends[cfg.Backend] {
		return Config{}, &InvalidBackendError{Value: cfg.Backend}
	}

	return cfg, nil
}
