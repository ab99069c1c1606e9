// Package wmruntime implements the capability-based resource-handle
// boundary between the compositor and the sandboxed window-manager policy
// engine: a typed id allocator, a capability table that validates every
// handle the WM presents back to the host, the Event/Request channel
// vocabulary, and the dedicated-thread, fuel-metered dispatch loop that
// drives a pluggable GuestInvoker.
//
// Nothing in this package shares mutable state across goroutines except by
// sending values over the Events and Requests channels, matching
// SPEC_FULL.md §5's "only messages in the two channels" rule.
package wmruntime
