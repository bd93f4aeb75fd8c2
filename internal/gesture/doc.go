// Package gesture turns hand-landmark frames from an external classifier into
// hand signals and proposed morph states.
//
// A frame is one classifier invocation: zero or more hands, each an ordered
// list of 21 normalized landmarks. Only the first hand is considered. The
// Tracker polls a Source on its own schedule, independent of the render tick,
// and degrades to "no hand" whenever the source fails.
package gesture
