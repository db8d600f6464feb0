package synth

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/charmbracelet/log"
	"github.com/tdwhitaker/arbforge/config"
	"github.com/tdwhitaker/arbforge/modmap"
	"github.com/tdwhitaker/arbforge/shape"
)

// filterSpanSymbols is the pulse-shaping filter span. The symbol
// stream is circularly extended by half the span on each side so the
// filter delay never zeroes samples and the waveform splices onto
// itself without a phase discontinuity.
const filterSpanSymbols = 10

// digmodPeak is the peak scale applied to the shaped waveform,
// leaving headroom for the instrument's own interpolation filters.
const digmodPeak = 0.707

// DigModParams configures a pulse-shaped digitally modulated waveform.
type DigModParams struct {
	SampleRate float64
	SymbolRate float64
	Scheme     modmap.Scheme
	NumSymbols int
	Filter     shape.Kind
	RollOff    float64
	Carrier    float64 // real format only
	Format     Format
	ZeroLast   bool
	// PRBSOrder selects a maximal-length sequence for the symbol data
	// when nonzero; otherwise NumSymbols random symbols are drawn from
	// Seed.
	PRBSOrder int
	Seed      int64
}

// DigitalModulation synthesizes a pulse-shaped digitally modulated
// waveform. Symbols are zero-stuffed to the oversampling ratio (so
// the filter sees an impulse train, not a zero-order hold), shaped
// with the selected raised-cosine family filter, and trimmed so the
// first and last partial symbols splice exactly for looped playback.
// If SampleRate/SymbolRate is not an integer the ratio is rounded and
// the realized symbol rate logged.
func DigitalModulation(p config.Profile, dp DigModParams) (*Waveform, error) {
	if dp.SampleRate <= 0 || dp.SymbolRate <= 0 {
		return nil, fmt.Errorf("%w: sampleRate %v / symbolRate %v", ErrInvalidParameter, dp.SampleRate, dp.SymbolRate)
	}
	ratio := dp.SampleRate / dp.SymbolRate
	sps := int(math.Round(ratio))
	if sps < 2 {
		return nil, fmt.Errorf("%w: oversampling ratio %.3g below 2", ErrInvalidParameter, ratio)
	}
	if math.Abs(ratio-float64(sps)) > 1e-9 {
		log.Infof("[synth] digmod: symbolRate %.6g resampled to %.6g for an integer oversampling ratio",
			dp.SymbolRate, dp.SampleRate/float64(sps))
	}
	if dp.Format == FormatReal && dp.Carrier <= 0 {
		return nil, fmt.Errorf("%w: carrier %v must be positive in real format", ErrInvalidParameter, dp.Carrier)
	}

	var indices []int
	var err error
	if dp.PRBSOrder != 0 {
		indices, err = modmap.PRBSSymbols(dp.Scheme, dp.PRBSOrder)
	} else {
		if dp.NumSymbols < filterSpanSymbols {
			return nil, fmt.Errorf("%w: numSymbols %d below filter span %d",
				ErrInvalidParameter, dp.NumSymbols, filterSpanSymbols)
		}
		indices, err = dp.Scheme.RandomSymbols(dp.NumSymbols, dp.Seed)
	}
	if err != nil {
		return nil, err
	}
	symbols, err := dp.Scheme.Map(indices)
	if err != nil {
		return nil, err
	}
	if len(symbols) < filterSpanSymbols {
		return nil, fmt.Errorf("%w: %d symbols below filter span %d",
			ErrInvalidParameter, len(symbols), filterSpanSymbols)
	}

	// Circular extension: prepend the tail and append the head so the
	// trim below yields exact wraparound.
	half := filterSpanSymbols / 2
	ext := make([]complex128, 0, len(symbols)+filterSpanSymbols)
	ext = append(ext, symbols[len(symbols)-half:]...)
	ext = append(ext, symbols...)
	ext = append(ext, symbols[:half]...)

	// Zero-stuff to the sample grid.
	stuffed := make([]complex128, len(ext)*sps)
	for i, s := range ext {
		stuffed[i*sps] = s
	}

	taps, err := shape.Design(dp.Filter, dp.RollOff, sps, filterSpanSymbols)
	if err != nil {
		return nil, err
	}

	// Shape and trim the filter delay off both ends, leaving exactly
	// len(symbols)*sps samples.
	iq := convolve(stuffed, taps)
	iq = iq[len(taps)-1 : len(iq)-len(taps)+1]

	peak := 0.0
	for _, v := range iq {
		if a := cmplx.Abs(v); a > peak {
			peak = a
		}
	}
	scale := complex(digmodPeak/peak, 0)
	for i := range iq {
		iq[i] *= scale
	}

	fs := dp.SampleRate
	w := &Waveform{Format: dp.Format, SampleRate: fs}
	if dp.Format == FormatReal {
		w.Real = make([]float64, len(iq))
		for i, v := range iq {
			wt := 2 * math.Pi * dp.Carrier * float64(i) / fs
			w.Real[i] = real(v)*math.Cos(wt) - imag(v)*math.Sin(wt)
		}
		if dp.ZeroLast {
			w.Real[len(w.Real)-1] = 0
		}
	} else {
		w.IQ = iq
		if dp.ZeroLast {
			w.IQ[len(w.IQ)-1] = 0
		}
	}

	if err := correct(w, p); err != nil {
		return nil, err
	}
	return w, nil
}

// convolve computes the full linear convolution of a complex sequence
// with a real tap vector.
func convolve(x []complex128, h []float64) []complex128 {
	out := make([]complex128, len(x)+len(h)-1)
	for i, xv := range x {
		if xv == 0 {
			continue
		}
		for j, hv := range h {
			out[i+j] += xv * complex(hv, 0)
		}
	}
	return out
}
