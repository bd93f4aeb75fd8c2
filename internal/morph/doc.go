// Package morph implements the point sets that blend between shapes.
//
//   - [Field]: the dense set. On a state change every point's displayed
//     position is snapshotted as its new start, targets are regenerated for the
//     new state and the shared progress restarts at 0.
//   - [Ornaments]: the small set. Each item chases a live target at a rate
//     proportional to its own weight; there is no shared progress.
//
// Both are driven by one owner per frame and are not safe for concurrent use.
package morph
