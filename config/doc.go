// Package config loads the compositor's JSONC configuration file
// (SPEC_FULL.md §2A): backend preference, WM fuel budget, log level, and
// an optional socket directory override. Comments and trailing commas are
// stripped via github.com/tidwall/jsonc before the standard encoding/json
// decoder sees the file, so operators can annotate their config the way
// the teacher's config surface is expected to tolerate.
//
// Loading never panics on malformed or absent input; Load returns the
// layered defaults unchanged when path does not exist, and a wrapped error
// only for genuine I/O or parse failures.
package config
