// Package clientspawn implements the Client Spawn / Socket component named
// in SPEC_FULL.md §2's component table and specified in full in §6: a
// scoped child-process environment for Wayland/X11 clients, and allocation
// of the first free `wayland-N` listening-socket name.
//
// Grounded in original_source/aerugo-comp/framework/src/client.rs's
// SpawnClient, which clears WAYLAND_DISPLAY/WAYLAND_SOCKET/DISPLAY and
// redirects stdin/stdout/stderr to the null device before exec'ing a
// client, with WAYLAND_SOCKET taking priority over WAYLAND_DISPLAY when
// both are set. The socket-name allocator is grounded in the behavior of
// smithay's ListeningSocketSource::new_auto (referenced but not vendored
// in original_source/compositor/src/lib.rs), reimplemented here as a
// first-free-name scan since the library's internals are not present in
// the retrieved pack.
package clientspawn
