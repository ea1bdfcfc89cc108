package config

import "sort"

var Presets = map[string]*Config{
	"pure-diffusion": {
		Layers: 60, Binding: 0, Diffusion: 1.0, Capacity: 0, Loading: 1.0,
		Duration: 2.0, OutputDt: 0.02,
	},
	"affinity": {
		Layers: 60, Binding: 4.0, Diffusion: 1.0, Capacity: 2.0, Loading: 1.0,
		Duration: 6.0, OutputDt: 0.05,
	},
	"stiff-binding": {
		Layers: 80, Binding: 500.0, Diffusion: 1.0, Capacity: 5.0, Loading: 1.0,
		Duration: 20.0, OutputDt: 0.2,
	},
	"burst": {
		Layers: 40, Binding: 0.5, Diffusion: 4.0, Capacity: 0.5, Loading: 1.0,
		Duration: 0.5, OutputDt: 0.005,
	},
}

func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Layers = p.Layers
	cfg.Binding = p.Binding
	cfg.Diffusion = p.Diffusion
	cfg.Capacity = p.Capacity
	cfg.Loading = p.Loading
	cfg.BoundaryReaction = p.BoundaryReaction
	cfg.Duration = p.Duration
	cfg.OutputDt = p.OutputDt
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
