package modmap

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allSchemes = []Scheme{
	BPSK, QPSK, PSK8, QAM16, QAM32, QAM64, QAM128, QAM256,
	APSK16, APSK32, APSK64,
}

func TestConstellationEnergy(t *testing.T) {
	for _, s := range allSchemes {
		pts, err := s.Points()
		require.NoError(t, err, s)

		m, err := s.Order()
		require.NoError(t, err, s)
		require.Len(t, pts, m, s)

		var energy float64
		for _, p := range pts {
			energy += real(p)*real(p) + imag(p)*imag(p)
		}
		assert.InDelta(t, 1.0, energy/float64(m), 1e-12, "%v average energy", s)
	}
}

func TestConstellationPointsDistinct(t *testing.T) {
	for _, s := range allSchemes {
		pts, err := s.Points()
		require.NoError(t, err, s)
		seen := make(map[complex128]bool, len(pts))
		for i, p := range pts {
			require.False(t, seen[p], "%v: duplicate point at index %d", s, i)
			seen[p] = true
		}
	}
}

func TestAPSKRingGeometry(t *testing.T) {
	cases := []struct {
		scheme Scheme
		rings  []int
		ratios []float64
	}{
		{APSK16, []int{4, 12}, []float64{1, 2.53}},
		{APSK32, []int{4, 12, 16}, []float64{1, 2.53, 4.30}},
		{APSK64, []int{4, 12, 20, 28}, []float64{1, 2.73, 4.52, 6.31}},
	}
	for _, tc := range cases {
		pts, err := tc.scheme.Points()
		require.NoError(t, err, tc.scheme)

		inner := cmplx.Abs(pts[0])
		idx := 0
		for r, n := range tc.rings {
			for k := 0; k < n; k++ {
				mag := cmplx.Abs(pts[idx])
				assert.InDelta(t, tc.ratios[r], mag/inner, 1e-12,
					"%v ring %d point %d radius ratio", tc.scheme, r, k)
				idx++
			}
		}

		// Equal angular spacing within the outer ring.
		n := tc.rings[len(tc.rings)-1]
		first := len(pts) - n
		for k := 1; k < n; k++ {
			d := cmplx.Phase(pts[first+k] * cmplx.Conj(pts[first+k-1]))
			assert.InDelta(t, 2*math.Pi/float64(n), d, 1e-12, "%v outer spacing", tc.scheme)
		}
	}
}

func TestMapRejectsOutOfRangeIndex(t *testing.T) {
	_, err := QPSK.Map([]int{0, 3, 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestBPSKAndQPSKTables(t *testing.T) {
	pts, err := BPSK.Points()
	require.NoError(t, err)
	assert.InDelta(t, 1, real(pts[0]), 1e-12)
	assert.InDelta(t, -1, real(pts[1]), 1e-12)

	pts, err = QPSK.Points()
	require.NoError(t, err)
	// 00 -> first quadrant, 10 -> third quadrant.
	assert.True(t, real(pts[0]) > 0 && imag(pts[0]) > 0)
	assert.True(t, real(pts[2]) < 0 && imag(pts[2]) < 0)
}

func TestParseScheme(t *testing.T) {
	s, err := ParseScheme("qam64")
	require.NoError(t, err)
	assert.Equal(t, QAM64, s)

	_, err = ParseScheme("qam512")
	require.ErrorIs(t, err, ErrUnsupportedModulation)
}

func TestRandomSymbolsDeterministic(t *testing.T) {
	a, err := QAM16.RandomSymbols(256, 7)
	require.NoError(t, err)
	b, err := QAM16.RandomSymbols(256, 7)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	for _, v := range a {
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 16)
	}
}
