package pdw

import (
	"encoding/binary"
	"fmt"
	"math"
)

// AnalogRecordSize is the wire size of a format-1 analog record.
const AnalogRecordSize = 28

const analogFormat = 1

// Analog is one pulse descriptor for the analog generator. Times are
// seconds, frequency is Hz, power is dB relative to full scale.
type Analog struct {
	Operation    Operation
	FreqHz       float64
	PhaseDeg     float64 // [0, 360]
	StartTime    float64
	Width        float64
	RelPowerDB   float64
	Markers      int // 12-bit mask
	PulseMode    int // 0 CW, 1 RF off, 2 pulsed
	PhaseControl int // 0 coherent, 1 continuous
	BandAdjust   int // 0 CW switch points, 1 upper band, 2 lower band
	ChirpControl int // 0 stitched ramp, 1 triangle, 2 ramp
	CodeIndex    int // frequency/phase coding table entry
	ChirpRate    float64 // Hz/us
	FreqMap      int // 0 band map A, 6 band map B
}

// Encode packs the record into its 7-word little-endian wire form.
// Reset records carry only the format and operation bits; every
// payload field encodes as zero.
func (a Analog) Encode() ([]byte, error) {
	b := make([]byte, AnalogRecordSize)
	if a.Operation < OpNone || a.Operation > OpReset {
		return nil, fmt.Errorf("%w: operation %d", ErrFieldOutOfRange, a.Operation)
	}
	w0 := uint32(analogFormat) | uint32(a.Operation)<<3
	if a.Operation == OpReset {
		binary.LittleEndian.PutUint32(b[0:], w0)
		return b, nil
	}

	freq, err := encodeFreq(a.FreqHz)
	if err != nil {
		return nil, err
	}
	phase, err := encodePhase(a.PhaseDeg)
	if err != nil {
		return nil, err
	}
	start, err := encodeStartTime(a.StartTime)
	if err != nil {
		return nil, err
	}
	if a.Width < 0 || a.Width*1e9 > maxWidthNs {
		return nil, fmt.Errorf("%w: width %.6g s outside the 32-bit ns field", ErrFieldOutOfRange, a.Width)
	}
	widthNs := uint32(a.Width*1e9 + 0.5)
	if err := checkMarkers(a.Markers); err != nil {
		return nil, err
	}
	if a.PulseMode < 0 || a.PulseMode > 2 {
		return nil, fmt.Errorf("%w: pulseMode %d", ErrFieldOutOfRange, a.PulseMode)
	}
	if a.PhaseControl < 0 || a.PhaseControl > 1 {
		return nil, fmt.Errorf("%w: phaseControl %d", ErrFieldOutOfRange, a.PhaseControl)
	}
	if a.BandAdjust < 0 || a.BandAdjust > 2 {
		return nil, fmt.Errorf("%w: bandAdjust %d", ErrFieldOutOfRange, a.BandAdjust)
	}
	if a.ChirpControl < 0 || a.ChirpControl > 2 {
		return nil, fmt.Errorf("%w: chirpControl %d", ErrFieldOutOfRange, a.ChirpControl)
	}
	if a.CodeIndex < 0 || a.CodeIndex > 1<<9-1 {
		return nil, fmt.Errorf("%w: codeIndex %d exceeds the 9-bit field", ErrFieldOutOfRange, a.CodeIndex)
	}
	if a.FreqMap < 0 || a.FreqMap > 7 {
		return nil, fmt.Errorf("%w: freqMap %d", ErrFieldOutOfRange, a.FreqMap)
	}
	chirp, err := encodeChirpRate(a.ChirpRate)
	if err != nil {
		return nil, err
	}
	power := convertToFloatingPoint(math.Pow(10, a.RelPowerDB/20), -26, 10, 5)

	// Word 0: format (3 bits), operation (2), freq low 27.
	binary.LittleEndian.PutUint32(b[0:], w0|uint32(freq<<5))
	// Word 1: freq high 20, phase 12.
	binary.LittleEndian.PutUint32(b[4:], uint32(freq>>27)|phase<<20)
	// Words 2-3: start time in ps.
	binary.LittleEndian.PutUint32(b[8:], uint32(start))
	binary.LittleEndian.PutUint32(b[12:], uint32(start>>32))
	// Word 4: width in ns.
	binary.LittleEndian.PutUint32(b[16:], widthNs)
	// Word 5: power (15), markers (12), pulse mode (2), phase control (1), band adjust (2).
	binary.LittleEndian.PutUint32(b[20:], power|uint32(a.Markers)<<15|
		uint32(a.PulseMode)<<27|uint32(a.PhaseControl)<<29|uint32(a.BandAdjust)<<30)
	// Word 6: chirp control (3), code index (9), chirp rate (17), freq map (3).
	binary.LittleEndian.PutUint32(b[24:], uint32(a.ChirpControl)|uint32(a.CodeIndex)<<3|
		chirp<<12|uint32(a.FreqMap)<<29)
	return b, nil
}

// DecodeAnalog unpacks a 28-byte analog record.
func DecodeAnalog(b []byte) (Analog, error) {
	if len(b) != AnalogRecordSize {
		return Analog{}, fmt.Errorf("%w: record length %d, want %d", ErrFieldOutOfRange, len(b), AnalogRecordSize)
	}
	w := make([]uint32, 7)
	for i := range w {
		w[i] = binary.LittleEndian.Uint32(b[4*i:])
	}
	if w[0]&0x7 != analogFormat {
		return Analog{}, fmt.Errorf("%w: format %d, want %d", ErrFieldOutOfRange, w[0]&0x7, analogFormat)
	}
	a := Analog{Operation: Operation(w[0] >> 3 & 0x3)}
	if a.Operation == OpReset {
		return a, nil
	}
	freq := uint64(w[0])>>5 | uint64(w[1]&0xFFFFF)<<27
	a.FreqHz = decodeFreq(freq)
	a.PhaseDeg = decodePhase(w[1] >> 20)
	a.StartTime = float64(uint64(w[2])|uint64(w[3])<<32) / timeScale
	a.Width = float64(w[4]) / 1e9
	a.RelPowerDB = 20 * math.Log10(floatingPointValue(w[5]&0x7FFF, -26, 10))
	a.Markers = int(w[5] >> 15 & 0xFFF)
	a.PulseMode = int(w[5] >> 27 & 0x3)
	a.PhaseControl = int(w[5] >> 29 & 0x1)
	a.BandAdjust = int(w[5] >> 30 & 0x3)
	a.ChirpControl = int(w[6] & 0x7)
	a.CodeIndex = int(w[6] >> 3 & 0x1FF)
	a.ChirpRate = decodeChirpRate(w[6] >> 12 & 0x1FFFF)
	a.FreqMap = int(w[6] >> 29 & 0x7)
	return a, nil
}
