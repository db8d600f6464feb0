// Package pdwfile assembles pulse descriptor words into the STRM
// container the generator's streaming loader expects: a 48-byte
// header, an optional frequency/phase coding table, and a padding
// block sized so the first descriptor record lands exactly at byte
// 4096.
package pdwfile

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/tdwhitaker/arbforge/pdw"
)

// ErrInvalidSequence indicates descriptor operations that the
// streaming hardware would reject: a stream must open with a reset or
// first record, and every reset must be immediately followed by a
// first record.
var ErrInvalidSequence = errors.New("pdwfile: invalid operation sequence")

const (
	headerSize    = 48
	blockHdrSize  = 16
	streamOffset  = 4096
	padBlockID    = 1
	fpcBlockID    = 13
	pdwBlockID    = 16
	dataIDAnalog  = 16
	dataIDVector  = 64
	streamVersion = 1
)

// checkSequence enforces the stream operation rules shared by both
// record families.
func checkSequence(ops []pdw.Operation) error {
	if len(ops) == 0 {
		return fmt.Errorf("%w: no records", ErrInvalidSequence)
	}
	if ops[0] != pdw.OpReset && ops[0] != pdw.OpFirst {
		return fmt.Errorf("%w: stream starts with %v, want reset or first", ErrInvalidSequence, ops[0])
	}
	for i, op := range ops {
		if op != pdw.OpReset {
			continue
		}
		if i == len(ops)-1 || ops[i+1] != pdw.OpFirst {
			return fmt.Errorf("%w: reset at record %d not followed by a first record", ErrInvalidSequence, i)
		}
	}
	return nil
}

// fileHeader builds the fixed 48-byte STRM header.
func fileHeader(dataID uint32) []byte {
	b := make([]byte, headerSize)
	copy(b[0:], "STRM")
	binary.LittleEndian.PutUint32(b[4:], streamVersion)
	// Offset field: one 4096-byte block to the start of PDW data.
	binary.LittleEndian.PutUint32(b[8:], (1<<1)&0x3fffff)
	copy(b[12:], "KEYS")
	// 16 reserved bytes, then flags and unique id, all zero.
	binary.LittleEndian.PutUint32(b[40:], dataID)
	return b
}

// paddingBlock builds a padding block whose header plus fill spans
// total bytes.
func paddingBlock(total int) []byte {
	b := make([]byte, total)
	binary.LittleEndian.PutUint32(b[0:], padBlockID)
	binary.LittleEndian.PutUint64(b[8:], uint64(total-blockHdrSize))
	return b
}

func pdwBlockHeader(dataBytes int) []byte {
	b := make([]byte, blockHdrSize)
	binary.LittleEndian.PutUint32(b[0:], pdwBlockID)
	binary.LittleEndian.PutUint64(b[8:], uint64(dataBytes))
	return b
}

// AnalogOptions carries the optional blocks of an analog stream file.
type AnalogOptions struct {
	// Coding, when non-empty, embeds a frequency/phase coding table
	// between the file header and the padding block.
	Coding []FPCEntry
}

// AssembleAnalog builds a complete analog stream file. The descriptor
// block begins at byte 4080 so the first record starts at byte 4096;
// the file ends with an 8-byte alignment pad and a 16-byte end block.
func AssembleAnalog(pdws []pdw.Analog, opts AnalogOptions) ([]byte, error) {
	ops := make([]pdw.Operation, len(pdws))
	for i, p := range pdws {
		ops[i] = p.Operation
	}
	if err := checkSequence(ops); err != nil {
		return nil, err
	}

	var fpc []byte
	if len(opts.Coding) > 0 {
		var err error
		fpc, err = encodeFPCBlock(opts.Coding)
		if err != nil {
			return nil, err
		}
	}
	padSize := streamOffset - blockHdrSize - headerSize - len(fpc)
	if padSize < blockHdrSize {
		return nil, fmt.Errorf("pdwfile: coding block of %d bytes leaves no room for padding", len(fpc))
	}

	out := make([]byte, 0, streamOffset+len(pdws)*pdw.AnalogRecordSize+24)
	out = append(out, fileHeader(dataIDAnalog)...)
	out = append(out, fpc...)
	out = append(out, paddingBlock(padSize)...)
	out = append(out, pdwBlockHeader(len(pdws)*pdw.AnalogRecordSize)...)
	for i, p := range pdws {
		rec, err := p.Encode()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, rec...)
	}
	// Align the descriptor block to 16 bytes, then terminate.
	out = append(out, make([]byte, 8)...)
	out = append(out, make([]byte, 16)...)
	return out, nil
}

// AssembleVector builds a complete vector stream file: header, padding
// to byte 4080, then the descriptor block.
func AssembleVector(pdws []pdw.Vector) ([]byte, error) {
	ops := make([]pdw.Operation, len(pdws))
	for i, p := range pdws {
		ops[i] = p.Operation
	}
	if err := checkSequence(ops); err != nil {
		return nil, err
	}

	out := make([]byte, 0, streamOffset+len(pdws)*pdw.VectorRecordSize)
	out = append(out, fileHeader(dataIDVector)...)
	out = append(out, paddingBlock(streamOffset-blockHdrSize-headerSize)...)
	out = append(out, pdwBlockHeader(len(pdws)*pdw.VectorRecordSize)...)
	for i, p := range pdws {
		rec, err := p.Encode()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, rec...)
	}
	return out, nil
}
