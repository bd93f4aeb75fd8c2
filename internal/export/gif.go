package export

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"io"
	"os"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultFrameDelay is 1/50 s, the smallest delay browsers honour.
const DefaultFrameDelay = 2

var ErrNoFrames = errors.New("export: no frames recorded")

// GIFRecorder accumulates rasters as paletted frames.
type GIFRecorder struct {
	// DotSize is the edge in pixels of one sub-pixel dot.
	DotSize   int
	Delay     int
	MaxFrames int

	palette color.Palette
	frames  []*image.Paletted
}

// NewGIFRecorder builds a recorder whose palette holds bg plus a ramp of
// blends between the given colors.
func NewGIFRecorder(bg colorful.Color, colors ...colorful.Color) *GIFRecorder {
	return &GIFRecorder{
		DotSize:   3,
		Delay:     DefaultFrameDelay,
		MaxFrames: 600,
		palette:   buildPalette(bg, colors),
	}
}

// buildPalette spreads up to 255 entries across the pairwise blends of colors
// so gradients survive quantisation.
func buildPalette(bg colorful.Color, colors []colorful.Color) color.Palette {
	pal := color.Palette{bg.Clamped()}
	if len(colors) == 0 {
		colors = []colorful.Color{{R: 1, G: 1, B: 1}}
	}
	const budget = 255
	steps := budget / len(colors)
	if steps < 2 {
		steps = 2
	}
	for i, a := range colors {
		b := colors[(i+1)%len(colors)]
		for s := 0; s < steps && len(pal) < budget+1; s++ {
			t := float64(s) / float64(steps)
			pal = append(pal, a.BlendRgb(b, t).Clamped())
		}
	}
	return pal
}

func (g *GIFRecorder) Len() int { return len(g.frames) }

func (g *GIFRecorder) Reset() { g.frames = g.frames[:0] }

// Add draws r as one frame. The oldest frame is dropped past MaxFrames.
func (g *GIFRecorder) Add(r Raster) {
	w, h := r.Size()
	d := g.DotSize
	if d < 1 {
		d = 1
	}
	img := image.NewPaletted(image.Rect(0, 0, w*d, h*d), g.palette)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c, ok := r.Dot(x, y)
			if !ok {
				continue
			}
			idx := uint8(g.palette.Index(c.Clamped()))
			for py := 0; py < d; py++ {
				for px := 0; px < d; px++ {
					img.SetColorIndex(x*d+px, y*d+py, idx)
				}
			}
		}
	}
	g.frames = append(g.frames, img)
	if g.MaxFrames > 0 && len(g.frames) > g.MaxFrames {
		g.frames = g.frames[1:]
	}
}

func (g *GIFRecorder) Encode(w io.Writer) error {
	if len(g.frames) == 0 {
		return ErrNoFrames
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range g.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, g.Delay)
	}
	return gif.EncodeAll(w, &anim)
}

func (g *GIFRecorder) Save(path string) error {
	if len(g.frames) == 0 {
		return ErrNoFrames
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := g.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
