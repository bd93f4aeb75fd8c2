package viz

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/morphfield/internal/palette"
	"github.com/san-kum/morphfield/internal/session"
	"github.com/san-kum/morphfield/internal/shape"
)

const (
	DefaultFOV      = 35
	DefaultDistance = 20
	DefaultHeight   = 4
)

// Camera projects world space onto the sub-pixel grid of a canvas.
type Camera struct {
	Position   mgl32.Vec3
	Target     mgl32.Vec3
	Up         mgl32.Vec3
	FOV        float32 // degrees
	Near, Far  float32
	Zoom       float32
	RotX, RotY float32 // manual offsets added to the frame's rotation
}

func NewCamera() *Camera {
	return &Camera{
		Position: mgl32.Vec3{0, DefaultHeight, DefaultDistance},
		Up:       mgl32.Vec3{0, 1, 0},
		FOV:      DefaultFOV,
		Near:     0.1,
		Far:      1000,
		Zoom:     1,
	}
}

func (c *Camera) RotateX(a float32) { c.RotX += a }
func (c *Camera) RotateY(a float32) { c.RotY += a }
func (c *Camera) ZoomIn()           { c.Zoom = math32.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math32.Max(0.1, c.Zoom/1.2) }

func (c *Camera) Reset() {
	c.RotX, c.RotY = 0, 0
	c.Zoom = 1
}

// SetDistance places the camera d units in front of the target, keeping its height.
func (c *Camera) SetDistance(d float32) {
	if d <= 0 {
		return
	}
	c.Position[2] = c.Target[2] + d
}

func (c *Camera) eye() mgl32.Vec3 {
	z := c.Zoom
	if z <= 0 {
		z = 1
	}
	return c.Target.Add(c.Position.Sub(c.Target).Mul(1 / z))
}

// ViewProjection is the combined camera matrix for a w by h sub-pixel grid.
// Sub-pixels are close to square, so the aspect ratio is w/h.
func (c *Camera) ViewProjection(w, h int) mgl32.Mat4 {
	aspect := float32(1)
	if h > 0 {
		aspect = float32(w) / float32(h)
	}
	proj := mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, c.Near, c.Far)
	view := mgl32.LookAtV(c.eye(), c.Target, c.Up)
	return proj.Mul4(view)
}

// Model is the scene rotation for a frame's rig angles plus the manual offsets.
func (c *Camera) Model(rotX, rotY float32) mgl32.Mat4 {
	return mgl32.HomogRotate3DY(rotY + c.RotY).Mul4(mgl32.HomogRotate3DX(rotX + c.RotX))
}

// Project maps p through mvp onto a w by h grid. Points behind the camera
// or outside the grid are not visible.
func Project(mvp mgl32.Mat4, p mgl32.Vec3, w, h int) (x, y int, depth float32, ok bool) {
	clip := mvp.Mul4x1(p.Vec4(1))
	if clip[3] <= 0 {
		return 0, 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip[3])
	if ndc[2] < -1 || ndc[2] > 1 {
		return 0, 0, 0, false
	}
	x = int(math32.Floor((ndc[0] + 1) / 2 * float32(w)))
	y = int(math32.Floor((1 - ndc[1]) / 2 * float32(h)))
	return x, y, ndc[2], x >= 0 && x < w && y >= 0 && y < h
}

// DefaultCompanionPoints is the size of the static figure beside the tree.
const DefaultCompanionPoints = 900

// Renderer draws session frames onto a canvas.
type Renderer struct {
	Camera  *Camera
	Palette palette.Palette
	// DepthFade darkens far points by up to this fraction.
	DepthFade float64
	// Companion draws the rabbit with its gift. It does not follow the rig.
	Companion bool

	companion       []mgl32.Vec3
	companionColors []colorful.Color
}

func NewRenderer(pal palette.Palette) *Renderer {
	r := &Renderer{
		Camera:    NewCamera(),
		Palette:   pal,
		DepthFade: 0.5,
		Companion: true,
	}
	r.companion = make([]mgl32.Vec3, DefaultCompanionPoints)
	r.companionColors = make([]colorful.Color, DefaultCompanionPoints)
	for i := range r.companion {
		r.companion[i] = shape.Companion(i, DefaultCompanionPoints)
		r.companionColors[i] = palette.RosePink
		if shape.CompanionPart(i, DefaultCompanionPoints) == shape.Gift {
			r.companionColors[i] = palette.Gold
		}
	}
	return r
}

// fade darkens c toward black by depth in [-1, 1], the far plane being 1.
func (r *Renderer) fade(c colorful.Color, depth float32) colorful.Color {
	if r.DepthFade <= 0 {
		return c
	}
	// Perspective depth crowds toward 1; square it back out.
	d := float64(depth+1) / 2
	d = d * d * d * d
	k := 1 - r.DepthFade*d
	return colorful.Color{R: c.R * k, G: c.G * k, B: c.B * k}
}

// OrnamentRadius is the dot radius in sub-pixels for an ornament scale.
func OrnamentRadius(scale float32) int {
	if scale >= 0.2 {
		return 2
	}
	return 1
}

// Draw clears c and renders f onto it.
func (r *Renderer) Draw(c *Canvas, f session.Frame) {
	c.Clear()
	w, h := c.Size()
	mvp := r.Camera.ViewProjection(w, h).Mul4(r.Camera.Model(f.RotX, f.RotY))

	for i, p := range f.Positions {
		x, y, depth, ok := Project(mvp, p, w, h)
		if !ok {
			continue
		}
		col := colorful.Color{R: 1, G: 1, B: 1}
		if i < len(f.Colors) {
			col = f.Colors[i]
		}
		if i < len(f.Highlights) {
			col = r.Palette.Shade(col, f.Highlights[i])
		}
		c.Plot(x, y, r.fade(col, depth))
	}

	for i, p := range f.Ornaments {
		x, y, depth, ok := Project(mvp, p, w, h)
		if !ok {
			continue
		}
		col := r.Palette.Glow
		radius := 1
		if i < len(f.OrnamentItems) {
			col = f.OrnamentItems[i].Color
			radius = OrnamentRadius(f.OrnamentItems[i].Scale)
		}
		c.Disc(x, y, radius, r.fade(col, depth))
	}

	if !r.Companion {
		return
	}
	still := r.Camera.ViewProjection(w, h).Mul4(r.Camera.Model(0, 0))
	for i, p := range r.companion {
		x, y, depth, ok := Project(still, p, w, h)
		if !ok {
			continue
		}
		c.Plot(x, y, r.fade(r.companionColors[i], depth))
	}
}
