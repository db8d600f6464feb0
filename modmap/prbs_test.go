package modmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPRBSPeriodAndBalance(t *testing.T) {
	for _, order := range []int{7, 9, 11} {
		bits, err := PRBS(order)
		require.NoError(t, err, "order %d", order)
		require.Len(t, bits, 1<<order-1)

		// A maximal-length sequence has 2^(n-1) ones per period.
		ones := 0
		for _, b := range bits {
			require.LessOrEqual(t, b, byte(1))
			ones += int(b)
		}
		assert.Equal(t, 1<<(order-1), ones, "order %d ones count", order)
	}
}

func TestPRBSNoShorterPeriod(t *testing.T) {
	bits, err := PRBS(9)
	require.NoError(t, err)

	// The sequence must not repeat with period p for any proper
	// divisor-like prefix; spot-check a few shifts.
	for _, p := range []int{7, 73, 255} {
		same := true
		for i := 0; i+p < len(bits); i++ {
			if bits[i] != bits[i+p] {
				same = false
				break
			}
		}
		assert.False(t, same, "period %d should not repeat", p)
	}
}

func TestPRBSUnsupportedOrder(t *testing.T) {
	_, err := PRBS(8)
	require.ErrorIs(t, err, ErrInvalidPRBS)
}

func TestPRBSSymbols(t *testing.T) {
	syms, err := PRBSSymbols(QPSK, 9)
	require.NoError(t, err)
	// 511 bits tile to 1022 bits = 511 QPSK symbols.
	assert.Len(t, syms, 511)
	for _, v := range syms {
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 4)
	}

	syms, err = PRBSSymbols(BPSK, 7)
	require.NoError(t, err)
	assert.Len(t, syms, 127)
}
