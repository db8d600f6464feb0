package synth

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"

	"github.com/charmbracelet/log"
	"github.com/tdwhitaker/arbforge/config"
	"gonum.org/v1/gonum/dsp/fourier"
)

// PhaseRelation selects how tone phases relate to each other in a
// multitone waveform.
type PhaseRelation int

const (
	PhaseRandom PhaseRelation = iota
	PhaseZero
	// PhaseIncreasing applies a linear ramp: tone k gets 2*pi*k/numTones.
	PhaseIncreasing
	// PhaseParabolic applies Newman phases pi*k^2/numTones, which
	// keeps the peak-to-average ratio low.
	PhaseParabolic
)

// ParsePhaseRelation maps a config string to a PhaseRelation.
func ParsePhaseRelation(s string) (PhaseRelation, error) {
	switch s {
	case "random":
		return PhaseRandom, nil
	case "zero":
		return PhaseZero, nil
	case "increasing":
		return PhaseIncreasing, nil
	case "parabolic":
		return PhaseParabolic, nil
	default:
		return 0, fmt.Errorf("%w: phaseRelationship %q", ErrInvalidParameter, s)
	}
}

// MultitoneParams configures a multitone waveform.
type MultitoneParams struct {
	SampleRate  float64
	ToneSpacing float64
	NumTones    int
	Phase       PhaseRelation
	Carrier     float64 // real format only; snapped to the tone grid
	Format      Format
	Seed        int64 // used when Phase == PhaseRandom
}

// Multitone synthesizes NumTones equal-amplitude tones spaced
// ToneSpacing apart and centered at baseband (or at Carrier in real
// format). Synthesis happens in the frequency domain: tone energy is
// placed on FFT bins and inverse-transformed, so large tone counts
// stay cheap. The grid resolution is ToneSpacing/2 so even tone
// counts (whose tones sit at half-spacing offsets) stay on-grid. The
// output is scaled to a peak magnitude of 1.
func Multitone(p config.Profile, mp MultitoneParams) (*Waveform, error) {
	if mp.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: sampleRate %v", ErrInvalidParameter, mp.SampleRate)
	}
	if mp.ToneSpacing <= 0 {
		return nil, fmt.Errorf("%w: toneSpacing %v", ErrInvalidParameter, mp.ToneSpacing)
	}
	if mp.NumTones < 1 {
		return nil, fmt.Errorf("%w: numTones %d", ErrInvalidParameter, mp.NumTones)
	}
	span := float64(mp.NumTones-1) * mp.ToneSpacing
	if span >= mp.SampleRate {
		return nil, fmt.Errorf("%w: %d tones at %v Hz spacing exceed the sample rate",
			ErrInvalidParameter, mp.NumTones, mp.ToneSpacing)
	}

	fs := mp.SampleRate
	step := mp.ToneSpacing / 2
	n := int(math.Round(fs / step))
	if realized := fs / float64(n); math.Abs(realized-step) > 1e-9*step {
		log.Infof("[synth] multitone: spacing %.6g snapped to %.6g to fit the FFT grid",
			mp.ToneSpacing, 2*realized)
	}

	phases := tonePhases(mp.Phase, mp.NumTones, mp.Seed)

	w := &Waveform{Format: mp.Format, SampleRate: fs}
	if mp.Format == FormatReal {
		carrierBin := int(math.Round(mp.Carrier / step))
		// Check the snapped bins, not the requested carrier: rounding
		// can pull the lowest tone onto DC even when the carrier
		// itself clears span/2.
		if carrierBin-(mp.NumTones-1) < 1 || carrierBin+(mp.NumTones-1) > n/2-1 {
			return nil, fmt.Errorf("%w: carrier %v places tones outside (0, fs/2)",
				ErrInvalidParameter, mp.Carrier)
		}
		if snapped := float64(carrierBin) * step; snapped != mp.Carrier {
			log.Infof("[synth] multitone: carrier %.6g snapped to grid at %.6g", mp.Carrier, snapped)
		}
		coeff := make([]complex128, n/2+1)
		for k := 0; k < mp.NumTones; k++ {
			bin := carrierBin + 2*k - mp.NumTones + 1
			coeff[bin] = cmplx.Rect(1, phases[k])
		}
		fft := fourier.NewFFT(n)
		w.Real = fft.Sequence(nil, coeff)
		scalePeakReal(w.Real)
	} else {
		coeff := make([]complex128, n)
		for k := 0; k < mp.NumTones; k++ {
			bin := 2*k - mp.NumTones + 1
			if bin < 0 {
				bin += n
			}
			coeff[bin] = cmplx.Rect(1, phases[k])
		}
		fft := fourier.NewCmplxFFT(n)
		w.IQ = fft.Sequence(nil, coeff)
		scalePeakIQ(w.IQ)
	}

	if err := correct(w, p); err != nil {
		return nil, err
	}
	return w, nil
}

func tonePhases(rel PhaseRelation, num int, seed int64) []float64 {
	phases := make([]float64, num)
	switch rel {
	case PhaseRandom:
		rng := rand.New(rand.NewSource(seed))
		for k := range phases {
			phases[k] = 2 * math.Pi * rng.Float64()
		}
	case PhaseIncreasing:
		for k := range phases {
			phases[k] = 2 * math.Pi * float64(k) / float64(num)
		}
	case PhaseParabolic:
		for k := range phases {
			phases[k] = math.Pi * float64(k*k) / float64(num)
		}
	}
	return phases
}

func scalePeakReal(s []float64) {
	peak := 0.0
	for _, v := range s {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return
	}
	for i := range s {
		s[i] /= peak
	}
}

func scalePeakIQ(s []complex128) {
	peak := 0.0
	for _, v := range s {
		if a := cmplx.Abs(v); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return
	}
	c := complex(1/peak, 0)
	for i := range s {
		s[i] *= c
	}
}
