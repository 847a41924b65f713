package resizer

import "strings"

// Preset is a named target size for a selling platform.
type Preset struct {
	Name   string
	Width  int
	Height int
}

var presets = []Preset{
	{Name: "Etsy", Width: 2000, Height: 2000},
	{Name: "Fiverr Gig", Width: 688, Height: 459},
	{Name: "Fiverr Banner", Width: 2400, Height: 1200},
	{Name: "Pinterest", Width: 1000, Height: 1500},
}

// Presets returns the known platform presets in display order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// PresetByName looks up a preset case-insensitively.
func PresetByName(name string) (Preset, bool) {
	for _, p := range presets {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}

// PresetNames lists the preset names for help text.
func PresetNames() []string {
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	return names
}
