// Package viz renders morph sessions in the terminal.
//
// Points are projected through a perspective [Camera] onto a braille
// [Canvas], two dots per cell across and four down, with colors summed per
// cell. [Model] is the bubbletea program around a session and [Launcher] a
// preset menu in front of it.
//
// # Key Bindings
//
//	1 2 3 - Tree, Scatter, Love
//	H     - Hide or show the side panel
//	Space - Pause/Resume
//	x y   - Rotate the camera (X Y reverse)
//	+ -   - Zoom
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	P     - Save an SVG snapshot
//	?     - Show help overlay
//
// # Recording
//
// Recordings and snapshots are written to the configured output directory.
package viz
