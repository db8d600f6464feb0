// Package pdw encodes and decodes pulse descriptor words, the binary
// records an agile signal generator consumes while streaming. Two
// record families exist: the analog generator's 28-byte format-1 word
// and the vector adapter's 24-byte format-1 word (plus the newer
// 48-byte format-3 rev B word, encode only). The families share field
// quantizations but not a wire layout, so each gets its own type.
package pdw

import (
	"errors"
	"fmt"
)

// ErrFieldOutOfRange indicates a record field that cannot be
// represented in its wire encoding. The wrapped message names the
// field.
var ErrFieldOutOfRange = errors.New("pdw: field out of range")

// Operation tags a record's role in the stream.
type Operation int

const (
	// OpNone marks an ordinary record.
	OpNone Operation = 0
	// OpFirst marks the first record played after a reset.
	OpFirst Operation = 1
	// OpReset marks a reset record. Reset records carry no pulse; all
	// payload fields encode as zero.
	OpReset Operation = 2
)

func (o Operation) String() string {
	switch o {
	case OpNone:
		return "none"
	case OpFirst:
		return "first"
	case OpReset:
		return "reset"
	default:
		return fmt.Sprintf("operation(%d)", int(o))
	}
}

// ParseOperation maps a table string to an Operation.
func ParseOperation(s string) (Operation, error) {
	switch s {
	case "", "none", "0":
		return OpNone, nil
	case "first", "1":
		return OpFirst, nil
	case "reset", "2":
		return OpReset, nil
	default:
		return 0, fmt.Errorf("%w: operation %q", ErrFieldOutOfRange, s)
	}
}

const (
	freqScale    = 1024        // LSB = 1/1024 Hz
	freqBits     = 47          // 27 bits in word 0, 20 in word 1
	phaseCodes   = 4096        // full circle
	timeScale    = 1e12        // LSB = 1 ps
	powerScale   = 0.005       // vector power LSB, dB
	powerOffset  = 140         // vector power bias, dBm
	maxPowerCode = 1<<15 - 1   // 15-bit vector power field
	maxMarkers   = 1<<12 - 1   // marker bit mask width
	maxWfmMkrs   = 1<<4 - 1    // waveform marker mask width
	maxWfmIndex  = 1<<16 - 1   // waveform table index width
	maxWidthNs   = 1<<32 - 1   // analog width field, ns
	maxFreqCode  = 1<<freqBits - 1
)

// MaxVectorPowerDBm is the largest power the 15-bit vector encoding
// can carry: (2^15-1)*0.005 - 140.
const MaxVectorPowerDBm = float64(maxPowerCode)*powerScale - powerOffset

func encodeFreq(freqHz float64) (uint64, error) {
	if freqHz < 0 {
		return 0, fmt.Errorf("%w: freq %.6g Hz is negative", ErrFieldOutOfRange, freqHz)
	}
	code := uint64(freqHz*freqScale + 0.5)
	if code > maxFreqCode {
		return 0, fmt.Errorf("%w: freq %.6g Hz exceeds the %d-bit field", ErrFieldOutOfRange, freqHz, freqBits)
	}
	return code, nil
}

func decodeFreq(code uint64) float64 {
	return float64(code) / freqScale
}

// encodePhase folds a phase in degrees into the signed 12-bit code.
// Inputs in (180, 360] map to their negative equivalents first.
func encodePhase(phaseDeg float64) (uint32, error) {
	if phaseDeg < 0 || phaseDeg > 360 {
		return 0, fmt.Errorf("%w: phase %.6g outside [0, 360]", ErrFieldOutOfRange, phaseDeg)
	}
	if phaseDeg > 180 {
		phaseDeg -= 360
	}
	code := int(phaseDeg*phaseCodes/360 + 0.5)
	if phaseDeg < 0 {
		code = -int(-phaseDeg*phaseCodes/360 + 0.5)
	}
	return uint32(code) & (phaseCodes - 1), nil
}

func decodePhase(code uint32) float64 {
	v := int32(code << 20) >> 20 // sign-extend 12 bits
	deg := float64(v) * 360 / phaseCodes
	if deg < 0 {
		deg += 360
	}
	return deg
}

func encodeStartTime(sec float64) (uint64, error) {
	if sec < 0 {
		return 0, fmt.Errorf("%w: startTime %.6g s is negative", ErrFieldOutOfRange, sec)
	}
	return uint64(sec*timeScale + 0.5), nil
}

func checkMarkers(markers int) error {
	if markers < 0 || markers > maxMarkers {
		return fmt.Errorf("%w: markers %#x exceeds the 12-bit mask", ErrFieldOutOfRange, markers)
	}
	return nil
}
