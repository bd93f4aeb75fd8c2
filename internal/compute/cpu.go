package compute

import (
	"runtime"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// minChunk is the smallest slice a worker is handed.
const minChunk = 2048

type CPUBackend struct {
	workers int
}

func NewCPUBackend() *CPUBackend {
	return &CPUBackend{
		workers: runtime.NumCPU(),
	}
}

// NewSerialBackend never spawns goroutines.
func NewSerialBackend() *CPUBackend {
	return &CPUBackend{workers: 1}
}

func (c *CPUBackend) Name() string {
	if c.workers <= 1 {
		return "cpu-serial"
	}
	return "cpu"
}
func (c *CPUBackend) Available() bool { return true }
func (c *CPUBackend) Cleanup()        {}

func (c *CPUBackend) Lerp(dst, a, b []mgl32.Vec3, t float32) {
	n := len(dst)
	if len(a) < n {
		n = len(a)
	}
	if len(b) < n {
		n = len(b)
	}

	c.parallelFor(n, func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = lerp(a[i], b[i], t)
		}
	})
}

func (c *CPUBackend) Ease(cur, target []mgl32.Vec3, rate []float32, k float32) {
	n := len(cur)
	if len(target) < n {
		n = len(target)
	}
	if len(rate) < n {
		n = len(rate)
	}

	c.parallelFor(n, func(start, end int) {
		for i := start; i < end; i++ {
			f := rate[i] * k
			if f > 1 {
				f = 1
			} else if f < 0 {
				f = 0
			}
			cur[i] = lerp(cur[i], target[i], f)
		}
	})
}

func lerp(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	if t >= 1 {
		return b
	}
	return mgl32.Vec3{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
	}
}

// parallelFor executes fn over [0, n) split into contiguous chunks.
func (c *CPUBackend) parallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	workers := c.workers
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers <= 1 {
		fn(0, n)
		return
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}

		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}
