package shape

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDesignFiniteAndNormalized(t *testing.T) {
	alphas := []float64{0, 0.35, 0.5, 1.0}
	spss := []int{4, 8, 16}
	kinds := []Kind{RaisedCosine, RootRaisedCosine}

	for _, kind := range kinds {
		for _, a := range alphas {
			for _, sps := range spss {
				h, err := Design(kind, a, sps, 10)
				require.NoError(t, err, "kind=%v alpha=%v sps=%d", kind, a, sps)
				require.Len(t, h, 10*sps+1)

				var energy float64
				for i, c := range h {
					require.False(t, math.IsNaN(c) || math.IsInf(c, 0),
						"kind=%v alpha=%v sps=%d tap %d not finite", kind, a, sps, i)
					energy += c * c
				}
				assert.InDelta(t, 1.0, energy, 1e-9,
					"kind=%v alpha=%v sps=%d energy", kind, a, sps)
			}
		}
	}
}

func TestDesignSingularTapsHitLimits(t *testing.T) {
	// With alpha=0.5 and sps=8 the RRC singular position x = ±1/(4a)
	// lands exactly on tap grid points (x = ±0.5, 4 samples from the
	// center); with RC the singular x = ±1/(2a) = ±1 does too.
	h, err := Design(RootRaisedCosine, 0.5, 8, 10)
	require.NoError(t, err)
	center := len(h) / 2
	want := 0.5 / math.Sqrt2 * ((1+2/math.Pi)*math.Sin(math.Pi/2) + (1-2/math.Pi)*math.Cos(math.Pi/2))
	// Compare against the unnormalized limit via the tap ratio to the center tap.
	wantRatio := want / (1 + 0.5*(4/math.Pi-1))
	assert.InDelta(t, wantRatio, h[center+4]/h[center], 1e-12)
	assert.InDelta(t, h[center-4], h[center+4], 1e-15, "filter must be symmetric")

	// With alpha=1/3 and sps=8 the RC singular position x = ±1/(2a) = ±1.5
	// lands on the tap grid 12 samples from the center.
	h, err = Design(RaisedCosine, 1.0/3.0, 8, 10)
	require.NoError(t, err)
	center = len(h) / 2
	assert.InDelta(t, math.Pi/4*sinc(1.5), h[center+12]/h[center], 1e-9)
}

func TestDesignSymmetry(t *testing.T) {
	h, err := Design(RootRaisedCosine, 0.35, 10, 8)
	require.NoError(t, err)
	for i := 0; i < len(h)/2; i++ {
		assert.InDelta(t, h[i], h[len(h)-1-i], 1e-15, "tap %d", i)
	}
}

func TestDesignZeroRollOffIsSinc(t *testing.T) {
	h, err := Design(RaisedCosine, 0, 8, 10)
	require.NoError(t, err)
	center := len(h) / 2
	// Nulls at every nonzero symbol position.
	for k := 1; k <= 5; k++ {
		assert.InDelta(t, 0, h[center+k*8], 1e-12, "symbol %d", k)
	}
}

func TestDesignRejectsBadParameters(t *testing.T) {
	_, err := Design(RootRaisedCosine, -0.1, 8, 10)
	require.ErrorIs(t, err, ErrInvalidParameter)
	assert.Contains(t, err.Error(), "rollOff")

	_, err = Design(RootRaisedCosine, 1.5, 8, 10)
	require.ErrorIs(t, err, ErrInvalidParameter)

	_, err = Design(RaisedCosine, 0.35, 1, 10)
	require.ErrorIs(t, err, ErrInvalidParameter)

	_, err = Design(RaisedCosine, 0.35, 8, 0)
	require.ErrorIs(t, err, ErrInvalidParameter)

	_, err = Design(Kind(42), 0.35, 8, 10)
	require.ErrorIs(t, err, ErrUnsupportedKind)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("rrc")
	require.NoError(t, err)
	assert.Equal(t, RootRaisedCosine, k)

	k, err = ParseKind("raisedcosine")
	require.NoError(t, err)
	assert.Equal(t, RaisedCosine, k)

	_, err = ParseKind("gaussian")
	require.ErrorIs(t, err, ErrUnsupportedKind)
}
