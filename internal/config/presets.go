package config

import "sort"

// Presets override the defaults; zero fields keep the default value.
var Presets = map[string]func(*Config){
	"classic": func(c *Config) {},
	"sparse": func(c *Config) {
		c.Particles = 3000
		c.Ornaments = 40
	},
	"dense": func(c *Config) {
		c.Particles = 40000
		c.Ornaments = 200
	},
	"heart": func(c *Config) {
		c.InitialState = "LOVE"
		c.Palette = "candy"
		c.Theme = "neon"
	},
	"calm": func(c *Config) {
		c.MorphRate = 0.3
		c.OrnamentRate = 0.8
		c.Palette = "frost"
		c.Theme = "ocean"
		c.Camera.AutoRotate = false
	},
}

// PresetInfo is the one-line description of each preset.
var PresetInfo = map[string]string{
	"classic": "rose gold and deep green, defaults",
	"sparse":  "3000 points, quick on slow terminals",
	"dense":   "40000 points",
	"heart":   "starts on the heart in candy colors",
	"calm":    "slow transitions, frost, still camera",
}

func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
