package synth

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/tdwhitaker/arbforge/config"
)

// CWPulseParams configures a rectangular CW pulse.
type CWPulseParams struct {
	SampleRate  float64
	Width       float64 // seconds of RF on time
	PRI         float64 // pulse repetition interval; dead time appended when > Width
	FreqOffset  float64 // offset from the carrier, Hz
	Carrier     float64 // used in real format only
	AmpScalePct float64 // 0 means 100
	Format      Format
	ZeroLast    bool
}

// CWPulse synthesizes one pulse repetition interval of a rectangular
// CW pulse. The on-time sample count is rounded up, never down, so
// the effective pulse width is at least the requested width.
func CWPulse(p config.Profile, pp CWPulseParams) (*Waveform, error) {
	onN, priN, err := pulseGrid(pp.SampleRate, pp.Width, pp.PRI)
	if err != nil {
		return nil, err
	}
	amp := pp.AmpScalePct / 100
	if pp.AmpScalePct == 0 {
		amp = 1
	}
	if amp < 0 || amp > 1 {
		return nil, fmt.Errorf("%w: ampScale %v%% outside (0, 100]", ErrInvalidParameter, pp.AmpScalePct)
	}
	if pp.Format == FormatReal && pp.Carrier+pp.FreqOffset <= 0 {
		return nil, fmt.Errorf("%w: carrier+freqOffset %v must be positive in real format",
			ErrInvalidParameter, pp.Carrier+pp.FreqOffset)
	}

	fs := pp.SampleRate
	w := &Waveform{Format: pp.Format, SampleRate: fs}
	if pp.Format == FormatReal {
		f := pp.Carrier + pp.FreqOffset
		w.Real = make([]float64, priN)
		for i := 0; i < onN; i++ {
			w.Real[i] = amp * math.Sin(2*math.Pi*f*float64(i)/fs)
		}
		if pp.ZeroLast {
			w.Real[priN-1] = 0
		}
	} else {
		w.IQ = make([]complex128, priN)
		for i := 0; i < onN; i++ {
			ph := 2 * math.Pi * pp.FreqOffset * float64(i) / fs
			w.IQ[i] = complex(amp, 0) * cmplx.Exp(complex(0, ph))
		}
		if pp.ZeroLast {
			w.IQ[priN-1] = 0
		}
	}

	if err := correct(w, p); err != nil {
		return nil, err
	}
	return w, nil
}

// ChirpParams configures a linear FM pulse.
type ChirpParams struct {
	SampleRate float64
	Width      float64
	PRI        float64
	Bandwidth  float64 // sweep width; sign selects up (+) or down (-) chirp
	Carrier    float64 // real format only
	Format     Format
	ZeroLast   bool
}

// Chirp synthesizes one PRI of a linear FM pulse sweeping from
// -Bandwidth/2 to +Bandwidth/2 about the carrier. The time vector
// runs from -Width/2 to +Width/2 so the sweep is symmetrical, and the
// instantaneous phase follows the quadratic law
// phi(t) = pi * (Bandwidth/Width) * t^2.
func Chirp(p config.Profile, cp ChirpParams) (*Waveform, error) {
	onN, priN, err := pulseGrid(cp.SampleRate, cp.Width, cp.PRI)
	if err != nil {
		return nil, err
	}
	if cp.Bandwidth == 0 || math.Abs(cp.Bandwidth) > cp.SampleRate {
		return nil, fmt.Errorf("%w: chirpBandwidth %v", ErrInvalidParameter, cp.Bandwidth)
	}
	if cp.Format == FormatReal && cp.Carrier <= 0 {
		return nil, fmt.Errorf("%w: carrier %v must be positive in real format", ErrInvalidParameter, cp.Carrier)
	}

	fs := cp.SampleRate
	rate := cp.Bandwidth / cp.Width // Hz per second
	w := &Waveform{Format: cp.Format, SampleRate: fs}
	if cp.Format == FormatReal {
		w.Real = make([]float64, priN)
		for i := 0; i < onN; i++ {
			t := (float64(i) - float64(onN)/2) / fs
			w.Real[i] = math.Cos(2*math.Pi*cp.Carrier*float64(i)/fs + math.Pi*rate*t*t)
		}
		if cp.ZeroLast {
			w.Real[priN-1] = 0
		}
	} else {
		w.IQ = make([]complex128, priN)
		for i := 0; i < onN; i++ {
			t := (float64(i) - float64(onN)/2) / fs
			w.IQ[i] = cmplx.Exp(complex(0, math.Pi*rate*t*t))
		}
		if cp.ZeroLast {
			w.IQ[priN-1] = 0
		}
	}

	if err := correct(w, p); err != nil {
		return nil, err
	}
	return w, nil
}

// barkerCodes holds the standard Barker sequences. b41 and b42 are
// the two length-4 variants.
var barkerCodes = map[string][]int{
	"b2":  {1, -1},
	"b3":  {1, 1, -1},
	"b41": {1, 1, -1, 1},
	"b42": {1, 1, 1, -1},
	"b5":  {1, 1, 1, -1, 1},
	"b7":  {1, 1, 1, -1, -1, 1, -1},
	"b11": {1, 1, 1, -1, -1, -1, 1, -1, -1, 1, -1},
	"b13": {1, 1, 1, 1, 1, -1, -1, 1, 1, -1, 1, -1, 1},
}

// BarkerParams configures a Barker phase-coded pulse.
type BarkerParams struct {
	SampleRate float64
	Width      float64
	PRI        float64
	Code       string // b2, b3, b41, b42, b5, b7, b11, b13
	Carrier    float64
	Format     Format
	ZeroLast   bool
}

// Barker synthesizes one PRI of a Barker phase-coded pulse. Each chip
// spans Width/len(code) and carries phase 0 or 180 degrees per the
// code's sign.
func Barker(p config.Profile, bp BarkerParams) (*Waveform, error) {
	code, ok := barkerCodes[bp.Code]
	if !ok {
		return nil, fmt.Errorf("%w: unknown Barker code %q", ErrInvalidParameter, bp.Code)
	}
	_, priN, err := pulseGrid(bp.SampleRate, bp.Width, bp.PRI)
	if err != nil {
		return nil, err
	}
	if bp.Format == FormatReal && bp.Carrier <= 0 {
		return nil, fmt.Errorf("%w: carrier %v must be positive in real format", ErrInvalidParameter, bp.Carrier)
	}

	fs := bp.SampleRate
	chipN := int(math.Ceil(bp.Width * fs / float64(len(code))))
	if chipN < 1 {
		return nil, fmt.Errorf("%w: pulseWidth %v too short for %d chips at %v S/s",
			ErrInvalidParameter, bp.Width, len(code), fs)
	}
	onN := chipN * len(code)
	if onN > priN {
		priN = onN
	}

	w := &Waveform{Format: bp.Format, SampleRate: fs}
	if bp.Format == FormatReal {
		w.Real = make([]float64, priN)
		for i := 0; i < onN; i++ {
			c := float64(code[i/chipN])
			w.Real[i] = c * math.Sin(2*math.Pi*bp.Carrier*float64(i)/fs)
		}
		if bp.ZeroLast {
			w.Real[priN-1] = 0
		}
	} else {
		w.IQ = make([]complex128, priN)
		for i := 0; i < onN; i++ {
			w.IQ[i] = complex(float64(code[i/chipN]), 0)
		}
		if bp.ZeroLast {
			w.IQ[priN-1] = 0
		}
	}

	if err := correct(w, p); err != nil {
		return nil, err
	}
	return w, nil
}

// pulseGrid converts pulse width and PRI to sample counts. The
// on-time count rounds up so the emitted pulse is never narrower than
// requested; a PRI of 0 means no dead time.
func pulseGrid(fs, width, pri float64) (onN, priN int, err error) {
	if fs <= 0 {
		return 0, 0, fmt.Errorf("%w: sampleRate %v", ErrInvalidParameter, fs)
	}
	if width <= 0 {
		return 0, 0, fmt.Errorf("%w: pulseWidth %v", ErrInvalidParameter, width)
	}
	if pri != 0 && pri < width {
		return 0, 0, fmt.Errorf("%w: pri %v shorter than pulseWidth %v", ErrInvalidParameter, pri, width)
	}
	onN = int(math.Ceil(width * fs))
	if onN < 1 {
		return 0, 0, fmt.Errorf("%w: pulseWidth %v yields no samples at %v S/s", ErrInvalidParameter, width, fs)
	}
	priN = onN
	if pri > width {
		priN = int(math.Round(pri * fs))
		if priN < onN {
			priN = onN
		}
	}
	return onN, priN, nil
}
