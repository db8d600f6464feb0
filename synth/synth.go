// Package synth composes primitive signal generators into sample
// arrays ready for device download. Every generator is a pure
// function of its arguments plus a device profile; the profile drives
// the final length/granularity correction step, which tiles the
// waveform rather than padding it so looped playback stays seamless.
package synth

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/tdwhitaker/arbforge/config"
)

var (
	// ErrInvalidParameter indicates an argument outside its documented
	// domain. Detected at call entry, before any samples are produced.
	ErrInvalidParameter = errors.New("synth: invalid parameter")
	// ErrConstraintViolation indicates the device profile's length,
	// granularity, or sample-rate constraints could not be satisfied.
	ErrConstraintViolation = errors.New("synth: waveform constraint violation")
)

// Format discriminates between complex baseband and direct real
// sample generation.
type Format int

const (
	FormatIQ Format = iota
	FormatReal
)

func (f Format) String() string {
	if f == FormatReal {
		return "real"
	}
	return "iq"
}

// ParseFormat maps a config string to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "iq":
		return FormatIQ, nil
	case "real":
		return FormatReal, nil
	default:
		return 0, fmt.Errorf("%w: format %q", ErrInvalidParameter, s)
	}
}

// Waveform is a finished sample array tagged with its format and
// sample rate. Exactly one of IQ or Real is populated. Repeats
// records how many copies of the synthesized period the granularity
// correction tiled; 1 means the waveform was returned as requested.
type Waveform struct {
	Format     Format
	SampleRate float64
	IQ         []complex128
	Real       []float64
	Repeats    int
}

// Len returns the sample count.
func (w *Waveform) Len() int {
	if w.Format == FormatReal {
		return len(w.Real)
	}
	return len(w.IQ)
}

// correct applies the device profile to a freshly synthesized
// waveform: it validates the sample rate, then tiles the waveform
// until the total length is a granularity multiple of at least
// MinLength. Tiling never grows the waveform past
// max(2x the synthesized length, MinLength rounded up to the
// granularity), nor past Profile.MaxSamples when set; either bound
// failing reports which constraint could not be met.
func correct(w *Waveform, p config.Profile) error {
	if p.MinSampleRate > 0 && w.SampleRate < p.MinSampleRate ||
		p.MaxSampleRate > 0 && w.SampleRate > p.MaxSampleRate {
		return fmt.Errorf("%w: sampleRate %.6g outside [%.6g, %.6g] for profile %s",
			ErrConstraintViolation, w.SampleRate, p.MinSampleRate, p.MaxSampleRate, p.Name)
	}

	n := w.Len()
	if n == 0 {
		return fmt.Errorf("%w: empty waveform", ErrConstraintViolation)
	}
	gran := p.Granularity
	if gran < 1 {
		gran = 1
	}

	total, repeats := n, 1
	for total%gran != 0 || total < p.MinLength {
		total += n
		repeats++
	}

	allowed := 2 * n
	if m := ceilMult(p.MinLength, gran); m > allowed {
		allowed = m
	}
	if total > allowed {
		return fmt.Errorf("%w: granularity %d requires %d samples for a %d-sample waveform (limit %d)",
			ErrConstraintViolation, gran, total, n, allowed)
	}
	if p.MaxSamples > 0 && total > p.MaxSamples {
		return fmt.Errorf("%w: corrected length %d exceeds maxSamples %d",
			ErrConstraintViolation, total, p.MaxSamples)
	}

	if repeats > 1 {
		log.Infof("[synth] tiling %d-sample waveform x%d to meet %s constraints (min %d, gran %d)",
			n, repeats, p.Name, p.MinLength, gran)
		if w.Format == FormatReal {
			w.Real = tile(w.Real, repeats)
		} else {
			w.IQ = tile(w.IQ, repeats)
		}
	}
	w.Repeats = repeats
	return nil
}

func tile[T any](s []T, repeats int) []T {
	out := make([]T, 0, len(s)*repeats)
	for r := 0; r < repeats; r++ {
		out = append(out, s...)
	}
	return out
}

func ceilMult(n, m int) int {
	if n <= 0 {
		return 0
	}
	return (n + m - 1) / m * m
}
