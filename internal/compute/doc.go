// Package compute provides the buffer interpolation backends.
//
// The morph field keeps a start and a target buffer per point and needs the
// interpolated buffer once per frame. A backend performs that pass:
//
//	backend := compute.GetBackend()
//	backend.Lerp(positions, start, target, progress)
//
// The CPU backend splits buffers larger than a few thousand points across
// runtime.NumCPU workers; smaller buffers run on the calling goroutine.
// Results are identical to a serial pass.
package compute
