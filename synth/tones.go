package synth

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/charmbracelet/log"
	"github.com/tdwhitaker/arbforge/config"
)

// Zero returns a constant-zero waveform of the requested length.
func Zero(p config.Profile, fs float64, length int, format Format) (*Waveform, error) {
	if fs <= 0 {
		return nil, fmt.Errorf("%w: sampleRate %v", ErrInvalidParameter, fs)
	}
	if length < 1 {
		return nil, fmt.Errorf("%w: length %d", ErrInvalidParameter, length)
	}
	w := &Waveform{Format: format, SampleRate: fs}
	if format == FormatReal {
		w.Real = make([]float64, length)
	} else {
		w.IQ = make([]complex128, length)
	}
	if err := correct(w, p); err != nil {
		return nil, err
	}
	return w, nil
}

// Sine synthesizes one period of a single tone. In iq format the tone
// is a baseband complex exponential at freq; in real format it is
// generated directly as sin(2*pi*freq*t + phase). zeroLast adjusts
// the sample count so the final sample sits on a zero crossing of the
// tone before forcing it to exactly zero; for iq (which has no
// amplitude zero crossing) the final sample alone is zeroed, serving
// as the hold-off sample on streaming sources.
func Sine(p config.Profile, fs, freq, phaseDeg float64, format Format, zeroLast bool) (*Waveform, error) {
	if fs <= 0 {
		return nil, fmt.Errorf("%w: sampleRate %v", ErrInvalidParameter, fs)
	}
	if freq == 0 || math.Abs(freq) > fs/2 {
		return nil, fmt.Errorf("%w: frequency %v outside (0, fs/2]", ErrInvalidParameter, freq)
	}
	if format == FormatReal && freq < 0 {
		return nil, fmt.Errorf("%w: negative frequency in real format", ErrInvalidParameter)
	}

	phi := phaseDeg * math.Pi / 180
	n := int(math.Round(fs / math.Abs(freq)))
	if n < 2 {
		n = 2
	}

	w := &Waveform{Format: format, SampleRate: fs}
	if format == FormatReal {
		if zeroLast {
			// Land the final sample on a zero crossing: solve
			// 2*pi*f*(n-1)/fs + phi = k*pi for the nearest k.
			k := math.Round(2*freq*float64(n-1)/fs + phi/math.Pi)
			if k >= 1 {
				adj := int(math.Round((k*math.Pi-phi)/(2*math.Pi*freq)*fs)) + 1
				if adj >= 2 && adj != n {
					log.Debugf("[synth] sine: adjusting length %d -> %d for zero-crossing end", n, adj)
					n = adj
				}
			}
		}
		w.Real = make([]float64, n)
		for i := range w.Real {
			w.Real[i] = math.Sin(2*math.Pi*freq*float64(i)/fs + phi)
		}
		if zeroLast {
			w.Real[n-1] = 0
		}
	} else {
		w.IQ = make([]complex128, n)
		for i := range w.IQ {
			w.IQ[i] = cmplx.Exp(complex(0, 2*math.Pi*freq*float64(i)/fs+phi))
		}
		if zeroLast {
			w.IQ[n-1] = 0
		}
	}

	if err := correct(w, p); err != nil {
		return nil, err
	}
	return w, nil
}

// AM synthesizes one modulation period of an amplitude-modulated
// signal. depthPct is the modulation depth in percent; the output is
// scaled so the envelope peak is 1. In iq format the waveform is the
// baseband envelope (Q = 0); in real format the envelope rides a
// directly generated carrier.
func AM(p config.Profile, fs, depthPct, modRate, carrier float64, format Format, zeroLast bool) (*Waveform, error) {
	if fs <= 0 {
		return nil, fmt.Errorf("%w: sampleRate %v", ErrInvalidParameter, fs)
	}
	if depthPct < 0 || depthPct > 100 {
		return nil, fmt.Errorf("%w: depth %v%% outside [0, 100]", ErrInvalidParameter, depthPct)
	}
	if modRate <= 0 || modRate > fs/2 {
		return nil, fmt.Errorf("%w: modRate %v", ErrInvalidParameter, modRate)
	}
	if format == FormatReal && (carrier <= 0 || carrier > fs/2) {
		return nil, fmt.Errorf("%w: carrier %v outside (0, fs/2] in real format", ErrInvalidParameter, carrier)
	}

	d := depthPct / 100
	n := int(math.Round(fs / modRate))
	if n < 2 {
		n = 2
	}

	w := &Waveform{Format: format, SampleRate: fs}
	if format == FormatReal {
		w.Real = make([]float64, n)
		for i := range w.Real {
			t := float64(i) / fs
			env := (1 + d*math.Sin(2*math.Pi*modRate*t)) / (1 + d)
			w.Real[i] = env * math.Sin(2*math.Pi*carrier*t)
		}
		if zeroLast {
			w.Real[n-1] = 0
		}
	} else {
		w.IQ = make([]complex128, n)
		for i := range w.IQ {
			t := float64(i) / fs
			env := (1 + d*math.Sin(2*math.Pi*modRate*t)) / (1 + d)
			w.IQ[i] = complex(env, 0)
		}
		if zeroLast {
			w.IQ[n-1] = 0
		}
	}

	if err := correct(w, p); err != nil {
		return nil, err
	}
	return w, nil
}
