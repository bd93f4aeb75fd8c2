package export

import (
	"bytes"
	"errors"
	"image/gif"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

type grid struct {
	w, h int
	dots map[[2]int]colorful.Color
}

func (g grid) Size() (int, int) { return g.w, g.h }

func (g grid) Dot(x, y int) (colorful.Color, bool) {
	c, ok := g.dots[[2]int{x, y}]
	return c, ok
}

var (
	black = colorful.Color{}
	red   = colorful.Color{R: 1}
	green = colorful.Color{G: 1}
)

func twoDots() grid {
	return grid{w: 4, h: 8, dots: map[[2]int]colorful.Color{
		{0, 0}: red,
		{3, 7}: green,
	}}
}

func TestRasterToSVG(t *testing.T) {
	svg := RasterToSVG(twoDots(), 10, black)
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("not an svg document: %q", svg)
	}
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("circles = %d, want 2", n)
	}
	for _, want := range []string{`fill="#ff0000"`, `fill="#00ff00"`, `width="40"`, `height="80"`, `cx="35.0" cy="75.0"`} {
		if !strings.Contains(svg, want) {
			t.Errorf("missing %s", want)
		}
	}
	if RasterToSVG(nil, 1, black) != "" {
		t.Error("nil raster should render nothing")
	}
}

func TestSeriesToSVG(t *testing.T) {
	if SeriesToSVG([]float64{1}, 100, 50, red) != "" {
		t.Error("a single value has no line")
	}
	svg := SeriesToSVG([]float64{0, 0.5, 1}, 100, 50, red)
	if strings.Count(svg, " L") != 2 {
		t.Errorf("path = %s", svg)
	}
	flat := SeriesToSVG([]float64{2, 2, 2}, 100, 50, red)
	if strings.Contains(flat, "NaN") {
		t.Error("flat series produced NaN")
	}
}

func TestGIFRecorder(t *testing.T) {
	rec := NewGIFRecorder(black, red, green)
	if err := rec.Encode(&bytes.Buffer{}); !errors.Is(err, ErrNoFrames) {
		t.Errorf("empty encode err = %v", err)
	}

	for i := 0; i < 3; i++ {
		rec.Add(twoDots())
	}
	var buf bytes.Buffer
	if err := rec.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	anim, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(anim.Image) != 3 {
		t.Fatalf("frames = %d", len(anim.Image))
	}
	img := anim.Image[0]
	if img.Bounds().Dx() != 4*rec.DotSize || img.Bounds().Dy() != 8*rec.DotSize {
		t.Errorf("bounds = %v", img.Bounds())
	}
	r, g, b, _ := img.At(0, 0).RGBA()
	if r < 0xf000 || g > 0x1000 || b > 0x1000 {
		t.Errorf("top-left pixel = %d %d %d, want red", r, g, b)
	}
	r, g, b, _ = img.At(1*rec.DotSize, 0).RGBA()
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("background pixel = %d %d %d", r, g, b)
	}
}

func TestGIFRecorderCapsFrames(t *testing.T) {
	rec := NewGIFRecorder(black, red)
	rec.MaxFrames = 2
	for i := 0; i < 5; i++ {
		rec.Add(twoDots())
	}
	if rec.Len() != 2 {
		t.Errorf("len = %d", rec.Len())
	}
	rec.Reset()
	if rec.Len() != 0 {
		t.Error("reset kept frames")
	}
}

func TestGIFRecorderSave(t *testing.T) {
	rec := NewGIFRecorder(black, red)
	rec.Add(twoDots())
	path := filepath.Join(t.TempDir(), "out.gif")
	if err := rec.Save(path); err != nil {
		t.Fatal(err)
	}
}
