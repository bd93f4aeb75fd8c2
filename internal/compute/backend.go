package compute

import "github.com/go-gl/mathgl/mgl32"

type Backend interface {
	Name() string
	Available() bool
	// Lerp writes a[i] + (b[i]-a[i])*t into dst[i] for every index of dst.
	Lerp(dst, a, b []mgl32.Vec3, t float32)
	// Ease moves cur[i] toward target[i] by rate[i]*k, clamped to [0, 1].
	Ease(cur, target []mgl32.Vec3, rate []float32, k float32)
	Cleanup()
}

var activeBackend Backend

func init() {
	activeBackend = AutoSelectBackend()
}

func SetBackend(b Backend) {
	if activeBackend != nil {
		activeBackend.Cleanup()
	}
	activeBackend = b
}

func GetBackend() Backend {
	return activeBackend
}

func AutoSelectBackend() Backend {
	return NewCPUBackend()
}
