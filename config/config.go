package config

import (
	"fmt"

	"github.com/knadh/koanf/v2"
)

// Profile describes the waveform memory constraints of a target device.
// The synthesizer uses it for its final length/granularity correction
// step; nothing in this package talks to hardware.
type Profile struct {
	Name          string  `koanf:"name"`
	MinLength     int     `koanf:"min_length"`
	Granularity   int     `koanf:"granularity"`
	MaxSamples    int     `koanf:"max_samples"`
	MinSampleRate float64 `koanf:"min_sample_rate"`
	MaxSampleRate float64 `koanf:"max_sample_rate"`
}

// Load reads a device profile from the config tree under
// "profile.<name>", falling back to the built-in table.
func Load(k *koanf.Koanf, name string) (Profile, error) {
	key := "profile." + name
	if k != nil && k.Exists(key) {
		p := Profile{Name: name}
		if err := k.Unmarshal(key, &p); err != nil {
			return Profile{}, fmt.Errorf("config: profile %q: %w", name, err)
		}
		if p.Granularity < 1 || p.MinLength < 0 {
			return Profile{}, fmt.Errorf("config: profile %q has invalid geometry", name)
		}
		return p, nil
	}
	if p, ok := builtins[name]; ok {
		return p, nil
	}
	return Profile{}, fmt.Errorf("config: unknown profile %q", name)
}
