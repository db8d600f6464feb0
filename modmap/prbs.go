package modmap

import (
	"errors"
	"fmt"
)

// ErrInvalidPRBS indicates an unsupported shift-register order.
var ErrInvalidPRBS = errors.New("modmap: unsupported PRBS order")

// Maximal-length feedback tap exponents (besides the register length
// itself) per order. Each polynomial is primitive, so the sequence
// period is 2^order - 1.
var prbsTaps = map[int][]int{
	7:  {6},
	9:  {5},
	11: {9},
	13: {12, 11, 8},
	15: {14},
}

// PRBS generates one full period (2^order - 1 bits) of a maximal
// length sequence from an all-ones initial register state.
func PRBS(order int) ([]byte, error) {
	taps, ok := prbsTaps[order]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPRBS, order)
	}

	state := make([]byte, order)
	for i := range state {
		state[i] = 1
	}

	period := 1<<order - 1
	bits := make([]byte, period)
	for i := 0; i < period; i++ {
		out := state[order-1]
		bits[i] = out
		fb := out
		for _, t := range taps {
			fb ^= state[t-1]
		}
		copy(state[1:], state[:order-1])
		state[0] = fb
	}
	return bits, nil
}

// PRBSSymbols converts a PRBS bit stream into symbol indices for the
// scheme, consuming bits MSB first. The bit sequence is repeated until
// it divides evenly into symbols, mirroring how the pattern generators
// tile a PRBS across a frame.
func PRBSSymbols(s Scheme, order int) ([]int, error) {
	bitsPerSym, err := s.BitsPerSymbol()
	if err != nil {
		return nil, err
	}
	seq, err := PRBS(order)
	if err != nil {
		return nil, err
	}

	bits := seq
	for len(bits)%bitsPerSym != 0 {
		bits = append(bits, seq...)
	}

	syms := make([]int, len(bits)/bitsPerSym)
	for i := range syms {
		v := 0
		for b := 0; b < bitsPerSym; b++ {
			v = v<<1 | int(bits[i*bitsPerSym+b])
		}
		syms[i] = v
	}
	return syms, nil
}
