// Package shape designs the pulse-shaping FIR filters used by the
// waveform synthesizer. Both members of the raised-cosine family are
// supported; coefficients are returned normalized to unit energy so a
// shaped symbol stream keeps its average power.
package shape

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidParameter indicates a filter parameter outside its
	// documented domain.
	ErrInvalidParameter = errors.New("shape: invalid parameter")
	// ErrUnsupportedKind indicates an unknown filter kind.
	ErrUnsupportedKind = errors.New("shape: unsupported filter kind")
)

// Kind selects the filter response.
type Kind int

const (
	RaisedCosine Kind = iota
	RootRaisedCosine
)

func (k Kind) String() string {
	switch k {
	case RaisedCosine:
		return "raisedcosine"
	case RootRaisedCosine:
		return "rootraisedcosine"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps a config string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "rc", "raisedcosine":
		return RaisedCosine, nil
	case "rrc", "rootraisedcosine":
		return RootRaisedCosine, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
	}
}

// singularity tolerance for the closed-form denominators. The symbol
// grid is exact in floating point for power-of-two sps, but not in
// general, so the guards compare against a tolerance instead of zero.
const eps = 1e-9

// Design computes the impulse response of a raised-cosine family
// filter with roll-off alpha, samplesPerSymbol samples per symbol and
// a span of spanSymbols symbols. The tap count is
// spanSymbols*samplesPerSymbol+1 so there is always a center tap.
// Coefficients are scaled to unit energy (sum of squares = 1).
func Design(kind Kind, alpha float64, samplesPerSymbol, spanSymbols int) ([]float64, error) {
	if alpha < 0 || alpha > 1 || math.IsNaN(alpha) {
		return nil, fmt.Errorf("%w: rollOff %v outside [0, 1]", ErrInvalidParameter, alpha)
	}
	if samplesPerSymbol < 2 {
		return nil, fmt.Errorf("%w: samplesPerSymbol %d, need >= 2", ErrInvalidParameter, samplesPerSymbol)
	}
	if spanSymbols < 1 {
		return nil, fmt.Errorf("%w: spanSymbols %d, need >= 1", ErrInvalidParameter, spanSymbols)
	}

	taps := spanSymbols*samplesPerSymbol + 1
	h := make([]float64, taps)
	for i := range h {
		// Tap position in symbol-time units, centered on the middle tap.
		x := float64(i-taps/2) / float64(samplesPerSymbol)
		switch kind {
		case RaisedCosine:
			h[i] = rcTap(x, alpha)
		case RootRaisedCosine:
			h[i] = rrcTap(x, alpha)
		default:
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedKind, kind)
		}
	}

	var energy float64
	for _, c := range h {
		energy += c * c
	}
	scale := 1 / math.Sqrt(energy)
	for i := range h {
		h[i] *= scale
	}
	return h, nil
}

// rcTap evaluates the raised-cosine impulse response at x symbol
// periods from the center, with the 0/0 points replaced by their
// analytic limits.
func rcTap(x, a float64) float64 {
	if math.Abs(x) < eps {
		return 1
	}
	if a != 0 && math.Abs(math.Abs(x)-1/(2*a)) < eps {
		// t = ±T/(2a): numerator and denominator both vanish.
		return math.Pi / 4 * sinc(1/(2*a))
	}
	return sinc(x) * math.Cos(math.Pi*a*x) / (1 - (2*a*x)*(2*a*x))
}

// rrcTap evaluates the root-raised-cosine impulse response at x symbol
// periods from the center. The two singular positions (x = 0 and
// x = ±1/(4a)) use the closed-form limits.
func rrcTap(x, a float64) float64 {
	if math.Abs(x) < eps {
		return 1 + a*(4/math.Pi-1)
	}
	if a != 0 && math.Abs(math.Abs(x)-1/(4*a)) < eps {
		return a / math.Sqrt2 * ((1+2/math.Pi)*math.Sin(math.Pi/(4*a)) +
			(1-2/math.Pi)*math.Cos(math.Pi/(4*a)))
	}
	num := math.Sin(math.Pi*x*(1-a)) + 4*a*x*math.Cos(math.Pi*x*(1+a))
	den := math.Pi * x * (1 - (4*a*x)*(4*a*x))
	return num / den
}

func sinc(x float64) float64 {
	if math.Abs(x) < eps {
		return 1
	}
	return math.Sin(math.Pi*x) / (math.Pi * x)
}
