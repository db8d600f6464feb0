package pdwfile

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Coding types for an FPCEntry.
const (
	CodingPhase = 0
	CodingFreq  = 1
)

// FPCEntry is one row of the analog generator's frequency/phase
// coding table. StateMapping holds 2^BitsPerSubpulse phase values in
// degrees (CodingPhase) or frequency offsets in Hz (CodingFreq), and
// Pattern holds the subpulse bit pattern most significant bit first.
type FPCEntry struct {
	Enabled         bool
	BitsPerSubpulse int
	CodingType      int
	StateMapping    []float64
	Pattern         []byte
	Comment         string
}

const (
	fpcVersion       = 2
	maxPatternBytes  = 8192
	maxCommentLength = 60
)

func (e FPCEntry) encode() ([]byte, error) {
	// The hardware format allows wider subpulses, but the streaming
	// path only supports one bit per subpulse.
	if e.BitsPerSubpulse != 1 {
		return nil, fmt.Errorf("pdwfile: coding entry: bitsPerSubpulse %d, only 1 supported", e.BitsPerSubpulse)
	}
	if e.CodingType != CodingPhase && e.CodingType != CodingFreq {
		return nil, fmt.Errorf("pdwfile: coding entry: codingType %d", e.CodingType)
	}
	if want := 1 << e.BitsPerSubpulse; len(e.StateMapping) != want {
		return nil, fmt.Errorf("pdwfile: coding entry: %d states, want %d", len(e.StateMapping), want)
	}
	if len(e.Pattern) > maxPatternBytes {
		return nil, fmt.Errorf("pdwfile: coding entry: pattern of %d bytes exceeds %d", len(e.Pattern), maxPatternBytes)
	}
	if len(e.Comment) > maxCommentLength {
		return nil, fmt.Errorf("pdwfile: coding entry: comment of %d chars exceeds %d", len(e.Comment), maxCommentLength)
	}

	size := 8 + 8*len(e.StateMapping) + len(e.Pattern) + len(e.Comment)
	b := make([]byte, 0, size)
	state := byte(0)
	if e.Enabled {
		state = 1
	}
	b = append(b, state, byte(e.BitsPerSubpulse), byte(e.CodingType), byte(len(e.Comment)))
	b = binary.LittleEndian.AppendUint32(b, uint32(8*len(e.Pattern)))
	for _, v := range e.StateMapping {
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(v))
	}
	b = append(b, e.Pattern...)
	b = append(b, e.Comment...)
	return b, nil
}

// encodeFPCBlock builds the full coding block: a 16-byte block header
// (id 13, reserved, 8-byte size), version and entry count words, the
// entries, and zero padding out to a 16-byte boundary.
func encodeFPCBlock(entries []FPCEntry) ([]byte, error) {
	body := make([]byte, 0, 64)
	body = binary.LittleEndian.AppendUint32(body, fpcVersion)
	body = binary.LittleEndian.AppendUint32(body, uint32(len(entries)))
	for i, e := range entries {
		enc, err := e.encode()
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		body = append(body, enc...)
	}

	b := make([]byte, 0, blockHdrSize+len(body)+15)
	b = binary.LittleEndian.AppendUint32(b, fpcBlockID)
	b = binary.LittleEndian.AppendUint32(b, 0)
	// The size field excludes the block id and reserved words.
	b = binary.LittleEndian.AppendUint64(b, uint64(len(body)))
	b = append(b, body...)
	if rem := len(b) % 16; rem != 0 {
		b = append(b, make([]byte, 16-rem)...)
	}
	return b, nil
}
