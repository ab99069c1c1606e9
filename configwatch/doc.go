// Package configwatch watches a configuration directory for live changes
// and translates raw filesystem events into the three-case event taxonomy
// original_source/compositor/src/config/watcher.rs's DirWatcher exposes to
// its event loop: Created, Modified, Removed. Where the original wires a
// platform-specific inotify/kqueue source into a calloop EventSource, this
// package wires github.com/fsnotify/fsnotify into a plain Go channel, fed
// to the Integration Loop (SPEC_FULL.md §2B) as one of the goroutines an
// errgroup.Group supervises alongside the WM runtime runner.
package configwatch
