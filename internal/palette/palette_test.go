package palette

import (
	"testing"
)

func TestPointColor(t *testing.T) {
	p := Classic()
	tests := []struct {
		name       string
		pick, tint float32
		want       string
	}{
		{"base", 0.1, 0.1, DeepGreen.Hex()},
		{"accent", 0.9, 0.1, RoseGold.Hex()},
		{"frosted base", 0.1, 0.99, DeepGreen.BlendRgb(SkyBlue, 0.5).Hex()},
		{"frosted accent", 0.99, 0.99, RoseGold.BlendRgb(SkyBlue, 0.5).Hex()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.PointColor(tt.pick, tt.tint).Hex(); got != tt.want {
				t.Errorf("PointColor(%v, %v) = %s, want %s", tt.pick, tt.tint, got, tt.want)
			}
		})
	}
}

func TestPointColor_DoesNotMutatePalette(t *testing.T) {
	p := Classic()
	for i := 0; i < 100; i++ {
		p.PointColor(0.99, 0.99)
	}
	if p.Accent.Hex() != RoseGold.Hex() {
		t.Errorf("accent drifted to %s", p.Accent.Hex())
	}
}

func TestShade(t *testing.T) {
	p := Classic()
	if got := p.Shade(DeepGreen, 0); got != DeepGreen {
		t.Errorf("Shade with zero highlight changed color: %s", got.Hex())
	}

	full := p.Shade(DeepGreen, 1)
	if full.Hex() != DeepGreen.BlendRgb(Gold, GlowMix).Hex() {
		t.Errorf("Shade(1) = %s, want %s", full.Hex(), DeepGreen.BlendRgb(Gold, GlowMix).Hex())
	}
	if over := p.Shade(DeepGreen, 5); over.Hex() != full.Hex() {
		t.Errorf("Shade should clamp highlight, got %s", over.Hex())
	}
}

func TestGet(t *testing.T) {
	if Get("candy").Name != "candy" {
		t.Error("expected candy palette")
	}
	if Get("nonexistent").Name != "classic" {
		t.Error("expected classic fallback")
	}
	if len(Names()) != 3 {
		t.Errorf("expected 3 palettes, got %d", len(Names()))
	}
}

func TestSceneColors(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"rose pink", RosePink.Hex(), "#ff66b2"},
		{"rose gold", RoseGold.Hex(), "#b76e79"},
		{"sky blue", SkyBlue.Hex(), "#87ceeb"},
		{"gold", Gold.Hex(), "#ffd700"},
		{"deep green", DeepGreen.Hex(), "#0a2f1f"},
		{"white", White.Hex(), "#ffffff"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %s, want %s", tt.name, tt.got, tt.want)
		}
	}
}

func TestMustHexPanicsOnBadInput(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("mustHex accepted a malformed color")
		}
	}()
	mustHex("#zz")
}
