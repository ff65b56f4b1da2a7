// Package viz renders the arena in the terminal.
//
// [Model] is a Bubble Tea program that steps a world live and draws it on a
// braille [Canvas]; bodies are coloured from the current [Theme].
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to initial bodies
//	S     - Spawn a body at a random point
//	X     - Remove the newest body
//	T     - Cycle color themes
//	?     - Show help overlay
//	[ ]   - Replay the last frames
//
// Left click spawns a body under the cursor, right click removes one. Resizing
// the terminal resizes the arena.
package viz
