package synth

import (
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/dsp/fourier"
)

func TestMultitoneElevenTones(t *testing.T) {
	w, err := Multitone(vsgProfile, MultitoneParams{
		SampleRate:  100e6,
		ToneSpacing: 1e6,
		NumTones:    11,
		Phase:       PhaseZero,
		Format:      FormatIQ,
	})
	require.NoError(t, err)
	checkGeometry(t, w, vsgProfile)
	require.Equal(t, 200, w.Len())

	fft := fourier.NewCmplxFFT(w.Len())
	coeff := fft.Coefficients(nil, w.IQ)

	// Tones sit every second bin from -10 to +10; the grid runs at
	// half the tone spacing.
	expected := map[int]bool{}
	for k := 0; k < 11; k++ {
		bin := 2*k - 10
		if bin < 0 {
			bin += w.Len()
		}
		expected[bin] = true
	}

	var ref float64
	for bin := range expected {
		if ref == 0 {
			ref = cmplx.Abs(coeff[bin])
		}
		require.Positive(t, cmplx.Abs(coeff[bin]), "bin %d", bin)
	}
	for bin, c := range coeff {
		mag := cmplx.Abs(c)
		if expected[bin] {
			assert.InDelta(t, ref, mag, ref*1e-9, "tone bin %d", bin)
		} else {
			assert.InDelta(t, 0, mag, ref*1e-9, "empty bin %d", bin)
		}
	}
}

func TestMultitoneEvenCountStaysOnGrid(t *testing.T) {
	// Two tones sit at half-spacing offsets from the center; the grid
	// resolution of spacing/2 keeps them on exact bins.
	w, err := Multitone(vsgProfile, MultitoneParams{
		SampleRate:  100e6,
		ToneSpacing: 1e6,
		NumTones:    2,
		Phase:       PhaseZero,
		Format:      FormatIQ,
	})
	require.NoError(t, err)
	require.Equal(t, 200, w.Len())

	fft := fourier.NewCmplxFFT(w.Len())
	coeff := fft.Coefficients(nil, w.IQ)
	peak := cmplx.Abs(coeff[1])
	require.Positive(t, peak)
	assert.InDelta(t, peak, cmplx.Abs(coeff[199]), peak*1e-9)
	for bin, c := range coeff {
		if bin == 1 || bin == 199 {
			continue
		}
		require.InDelta(t, 0, cmplx.Abs(c), peak*1e-9, "bin %d", bin)
	}
}

func TestMultitoneRealCarrier(t *testing.T) {
	w, err := Multitone(vsgProfile, MultitoneParams{
		SampleRate:  100e6,
		ToneSpacing: 1e6,
		NumTones:    5,
		Phase:       PhaseParabolic,
		Carrier:     20e6,
		Format:      FormatReal,
	})
	require.NoError(t, err)
	checkGeometry(t, w, vsgProfile)
	require.Equal(t, 200, w.Len())

	fft := fourier.NewFFT(w.Len())
	coeff := fft.Coefficients(nil, w.Real)
	// Tones land every second bin around the 20 MHz carrier bin.
	peak := cmplx.Abs(coeff[40])
	require.Positive(t, peak)
	for _, bin := range []int{36, 38, 40, 42, 44} {
		assert.InDelta(t, peak, cmplx.Abs(coeff[bin]), peak*1e-9, "bin %d", bin)
	}
	assert.InDelta(t, 0, cmplx.Abs(coeff[35]), peak*1e-9)
	assert.InDelta(t, 0, cmplx.Abs(coeff[45]), peak*1e-9)
}

func TestMultitonePeakIsUnity(t *testing.T) {
	w, err := Multitone(vsgProfile, MultitoneParams{
		SampleRate:  100e6,
		ToneSpacing: 1e6,
		NumTones:    11,
		Phase:       PhaseZero,
		Format:      FormatIQ,
	})
	require.NoError(t, err)
	peak := 0.0
	for _, v := range w.IQ {
		if a := cmplx.Abs(v); a > peak {
			peak = a
		}
	}
	assert.InDelta(t, 1, peak, 1e-12)
}

func TestMultitoneRandomPhaseDeterministic(t *testing.T) {
	mp := MultitoneParams{
		SampleRate:  100e6,
		ToneSpacing: 1e6,
		NumTones:    7,
		Phase:       PhaseRandom,
		Format:      FormatIQ,
		Seed:        42,
	}
	a, err := Multitone(vsgProfile, mp)
	require.NoError(t, err)
	b, err := Multitone(vsgProfile, mp)
	require.NoError(t, err)
	assert.Equal(t, a.IQ, b.IQ)
}

func TestMultitoneCarrierSnapCannotReachDC(t *testing.T) {
	// 2.1 MHz clears span/2 = 2 MHz, but snapping to the 0.5 MHz grid
	// rounds the carrier down and would put the lowest tone on DC.
	_, err := Multitone(vsgProfile, MultitoneParams{
		SampleRate: 100e6, ToneSpacing: 1e6, NumTones: 5,
		Phase: PhaseZero, Carrier: 2.1e6, Format: FormatReal,
	})
	require.ErrorIs(t, err, ErrInvalidParameter)

	// One grid step higher keeps every tone strictly above DC.
	w, err := Multitone(vsgProfile, MultitoneParams{
		SampleRate: 100e6, ToneSpacing: 1e6, NumTones: 5,
		Phase: PhaseZero, Carrier: 2.6e6, Format: FormatReal,
	})
	require.NoError(t, err)
	fft := fourier.NewFFT(w.Len())
	coeff := fft.Coefficients(nil, w.Real)
	peak := cmplx.Abs(coeff[5])
	require.Positive(t, peak)
	assert.InDelta(t, peak, cmplx.Abs(coeff[1]), peak*1e-9)
	assert.InDelta(t, 0, cmplx.Abs(coeff[0]), peak*1e-9)
}

func TestMultitoneRejections(t *testing.T) {
	_, err := Multitone(vsgProfile, MultitoneParams{
		SampleRate: 100e6, ToneSpacing: 20e6, NumTones: 10, Format: FormatIQ,
	})
	require.ErrorIs(t, err, ErrInvalidParameter)

	// Carrier too low: tones would straddle DC in real format.
	_, err = Multitone(vsgProfile, MultitoneParams{
		SampleRate: 100e6, ToneSpacing: 1e6, NumTones: 5,
		Carrier: 1e6, Format: FormatReal,
	})
	require.ErrorIs(t, err, ErrInvalidParameter)

	_, err = Multitone(vsgProfile, MultitoneParams{
		SampleRate: 100e6, ToneSpacing: 1e6, NumTones: 0, Format: FormatIQ,
	})
	require.ErrorIs(t, err, ErrInvalidParameter)
}
