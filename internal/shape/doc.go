// Package shape provides the procedural point generators for the morph targets.
//
// Each generator maps a point index and a total count to a position:
//
//   - [Tree]: cone spiral, deterministic
//   - [Scatter]: uniform cloud inside a sphere, re-sampled on every call
//   - [Love]: parametric heart curve with a random depth jitter
//
// Generators never return NaN. A non-positive count yields the origin.
//
// # Randomness
//
// Scatter and Love draw from a [Sampler]. The package-level functions share a
// process-wide sampler; tests and recorded runs build their own with
// [NewSampler] so a seed reproduces the whole sequence.
package shape
