package config

import "sort"

// Built-in profiles. Granularity and minimum segment length come from
// the respective instrument programming guides; the M8190A values
// depend on the selected DAC resolution, so each resolution gets its
// own profile.
var builtins = map[string]Profile{
	"m8190a_wsp": {
		Name:          "m8190a_wsp",
		MinLength:     320,
		Granularity:   64,
		MinSampleRate: 125e6,
		MaxSampleRate: 12e9,
	},
	"m8190a_wpr": {
		Name:          "m8190a_wpr",
		MinLength:     240,
		Granularity:   48,
		MinSampleRate: 125e6,
		MaxSampleRate: 8e9,
	},
	"m8190a_intx": {
		Name:          "m8190a_intx",
		MinLength:     120,
		Granularity:   24,
		MinSampleRate: 125e6,
		MaxSampleRate: 7.2e9,
	},
	"m8195a": {
		Name:          "m8195a",
		MinLength:     256,
		Granularity:   256,
		MinSampleRate: 53.76e9,
		MaxSampleRate: 65e9,
	},
	"vsg": {
		Name:          "vsg",
		MinLength:     60,
		Granularity:   2,
		MinSampleRate: 1e3,
		MaxSampleRate: 200e6,
	},
	"vector_uxg": {
		Name:          "vector_uxg",
		MinLength:     60,
		Granularity:   2,
		MinSampleRate: 1e3,
		MaxSampleRate: 2e9,
	},
}

// Names returns the built-in profile names, sorted.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
