// Package palette holds the scene colors and the per-point color rules.
package palette

import (
	"github.com/lucasb-eyer/go-colorful"
)

var (
	RosePink  = mustHex("#FF66B2")
	RoseGold  = mustHex("#B76E79")
	SkyBlue   = mustHex("#87CEEB")
	Gold      = mustHex("#FFD700")
	DeepGreen = mustHex("#0A2F1F")
	White     = mustHex("#FFFFFF")
)

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic("palette: " + err.Error())
	}
	return c
}

const (
	// AccentShare is the fraction of field points drawn in the accent color.
	AccentShare = 0.2
	// FrostShare is the fraction of field points tinted toward the frost color.
	FrostShare = 0.05
	// GlowMix is the strongest blend toward the glow color.
	GlowMix = 0.3
)

// Palette is the set of colors a point set is painted with.
type Palette struct {
	Name      string
	Base      colorful.Color
	Accent    colorful.Color
	Frost     colorful.Color
	Glow      colorful.Color
	Ornaments [2]colorful.Color
}

// Classic is the rose-gold and deep-green palette.
func Classic() Palette {
	return Palette{
		Name:      "classic",
		Base:      DeepGreen,
		Accent:    RoseGold,
		Frost:     SkyBlue,
		Glow:      Gold,
		Ornaments: [2]colorful.Color{RoseGold, Gold},
	}
}

// Candy swaps the base for rose pink.
func Candy() Palette {
	return Palette{
		Name:      "candy",
		Base:      RosePink,
		Accent:    White,
		Frost:     SkyBlue,
		Glow:      Gold,
		Ornaments: [2]colorful.Color{White, Gold},
	}
}

// Frost is a cold palette built around sky blue.
func Frost() Palette {
	return Palette{
		Name:      "frost",
		Base:      SkyBlue.BlendRgb(DeepGreen, 0.6),
		Accent:    White,
		Frost:     SkyBlue,
		Glow:      White,
		Ornaments: [2]colorful.Color{SkyBlue, White},
	}
}

var palettes = []Palette{Classic(), Candy(), Frost()}

// Get returns the palette called name, or Classic.
func Get(name string) Palette {
	for _, p := range palettes {
		if p.Name == name {
			return p
		}
	}
	return Classic()
}

// Names lists the built-in palettes.
func Names() []string {
	names := make([]string, len(palettes))
	for i, p := range palettes {
		names[i] = p.Name
	}
	return names
}

// PointColor picks a field point color from two uniform draws in [0, 1).
func (p Palette) PointColor(pick, tint float32) colorful.Color {
	c := p.Base
	if pick > 1-AccentShare {
		c = p.Accent
	}
	if tint > 1-FrostShare {
		c = c.BlendRgb(p.Frost, 0.5)
	}
	return c
}

// OrnamentColor picks one of the two ornament colors.
func (p Palette) OrnamentColor(pick float32) colorful.Color {
	if pick > 0.5 {
		return p.Ornaments[0]
	}
	return p.Ornaments[1]
}

// Shade mixes c toward the glow color by highlight (0..1) scaled by GlowMix.
func (p Palette) Shade(c colorful.Color, highlight float32) colorful.Color {
	if highlight <= 0 {
		return c
	}
	if highlight > 1 {
		highlight = 1
	}
	return c.BlendRgb(p.Glow, float64(highlight)*GlowMix).Clamped()
}
