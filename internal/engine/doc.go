// Package engine reconciles each viewer's scoreboard with the live values
// behind it.
//
// ARCHITECTURE:
//
// Per-viewer state machine:
//
//	NoBoard -> Normal -> Overlay -> Normal -> ...
//	any state -> NoBoard (Unregister / Forget)
//
// The Normal board shows the configured rows. The Overlay temporarily takes
// the sidebar with ranked standings and hands it back after a fixed time.
// Both transitions are deferred one-shot tasks keyed by viewer id; leaving
// viewers have their task cancelled.
//
// Write path:
//  1. Poller resolves each configured row to a value (skipping event-only
//     rows on partial refreshes, dropping rows with unknown variables).
//  2. The label package encodes long titles into an entry plus an overflow
//     group.
//  3. Decide filters writes the host would drop or that change nothing.
//  4. The WriteStrategy picked at startup hands out the host score to set.
//
// Single-writer event loop:
// Dispatcher applies Events one at a time in FIFO order. Tickers, HTTP
// handlers and deferred transitions all enqueue; only Run touches boards.
//
// Error model:
// Nothing here is fatal. Unknown variables remove the row and log once.
// Unreachable viewers and foreign boards abort the operation silently. The
// exported Manager operations are void; Apply returns the typed reason so
// callers that care can inspect it.
package engine
