// Package compositorcore provides the core of a Wayland compositor: a
// generational surface-tree scene graph, a toplevel/popup shell state
// machine, a commit-ordering dependency tracker, and a capability-based
// boundary to a sandboxed, fuel-metered window-manager policy program.
//
// # Architecture Overview
//
// The module is organized into layers with strict dependency ordering:
//
//	Foundation tier (no internal dependencies):
//	  - forest: generational-index tree storage
//	  - transaction: commit-ordering dependency tracker
//
//	Core library tier:
//	  - scene: surface tree, subsurface placement, sync-commit resolution
//	  - shell: toplevel/popup lifecycle and configure/ack handshake
//	  - wmruntime: handle allocation, capability table, Event/Request
//	    channel vocabulary, fuel-metered guest dispatch loop
//
//	Ambient tier:
//	  - config: JSONC configuration loading
//	  - configwatch: live configuration directory watching
//
// # Entry Point
//
//	import "github.com/aerugo-project/compositor-core/cmd/aerugo-core"
//
// See the individual package documentation for detailed usage:
//
//   - [github.com/aerugo-project/compositor-core/forest]: Generational tree storage
//   - [github.com/aerugo-project/compositor-core/scene]: Surface scene graph
//   - [github.com/aerugo-project/compositor-core/shell]: Toplevel/popup shell state
//   - [github.com/aerugo-project/compositor-core/transaction]: Commit dependency tracker
//   - [github.com/aerugo-project/compositor-core/wmruntime]: WM capability boundary
//   - [github.com/aerugo-project/compositor-core/config]: Configuration loading
//   - [github.com/aerugo-project/compositor-core/configwatch]: Configuration file watching
package compositorcore
