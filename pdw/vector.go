package pdw

import (
	"encoding/binary"
	"fmt"
)

// VectorRecordSize is the wire size of a format-1 vector record.
const VectorRecordSize = 24

const (
	vectorFormat      = 1
	vectorRev3BFormat = 3
)

// Vector is one pulse descriptor for the vector adapter's legacy
// format-1 stream. The pulse envelope comes from the waveform the
// record indexes, so there is no width field.
type Vector struct {
	Operation    Operation
	FreqHz       float64
	PhaseDeg     float64 // [0, 360]
	StartTime    float64
	PowerDBm     float64
	Markers      int // 12-bit mask
	PhaseControl int // 0 coherent, 1 continuous
	RFOff        int // 1 blanks the output
	WfmIndex     int // waveform table entry to play
	WfmMarkers   int // 4-bit waveform marker mask
}

func encodeVectorPower(dBm float64) (uint32, error) {
	if dBm < -powerOffset || dBm > MaxVectorPowerDBm {
		return 0, fmt.Errorf("%w: power %.6g dBm outside [%.6g, %.6g]",
			ErrFieldOutOfRange, dBm, -float64(powerOffset), MaxVectorPowerDBm)
	}
	return uint32((dBm+powerOffset)/powerScale + 0.5), nil
}

func decodeVectorPower(code uint32) float64 {
	return float64(code)*powerScale - powerOffset
}

// Encode packs the record into its 6-word little-endian wire form.
// Reset records carry only the format and operation bits.
func (v Vector) Encode() ([]byte, error) {
	b := make([]byte, VectorRecordSize)
	if v.Operation < OpNone || v.Operation > OpReset {
		return nil, fmt.Errorf("%w: operation %d", ErrFieldOutOfRange, v.Operation)
	}
	w0 := uint32(vectorFormat) | uint32(v.Operation)<<3
	if v.Operation == OpReset {
		binary.LittleEndian.PutUint32(b[0:], w0)
		return b, nil
	}

	freq, err := encodeFreq(v.FreqHz)
	if err != nil {
		return nil, err
	}
	phase, err := encodePhase(v.PhaseDeg)
	if err != nil {
		return nil, err
	}
	start, err := encodeStartTime(v.StartTime)
	if err != nil {
		return nil, err
	}
	power, err := encodeVectorPower(v.PowerDBm)
	if err != nil {
		return nil, err
	}
	if err := checkMarkers(v.Markers); err != nil {
		return nil, err
	}
	if v.PhaseControl < 0 || v.PhaseControl > 1 {
		return nil, fmt.Errorf("%w: phaseControl %d", ErrFieldOutOfRange, v.PhaseControl)
	}
	if v.RFOff < 0 || v.RFOff > 1 {
		return nil, fmt.Errorf("%w: rfOff %d", ErrFieldOutOfRange, v.RFOff)
	}
	if v.WfmIndex < 0 || v.WfmIndex > maxWfmIndex {
		return nil, fmt.Errorf("%w: wfmIndex %d exceeds the 16-bit field", ErrFieldOutOfRange, v.WfmIndex)
	}
	if v.WfmMarkers < 0 || v.WfmMarkers > maxWfmMkrs {
		return nil, fmt.Errorf("%w: wfmMarkers %#x exceeds the 4-bit mask", ErrFieldOutOfRange, v.WfmMarkers)
	}

	// Word 0: format (3 bits), operation (2), freq low 27.
	binary.LittleEndian.PutUint32(b[0:], w0|uint32(freq<<5))
	// Word 1: freq high 20, phase 12.
	binary.LittleEndian.PutUint32(b[4:], uint32(freq>>27)|phase<<20)
	// Words 2-3: start time in ps.
	binary.LittleEndian.PutUint32(b[8:], uint32(start))
	binary.LittleEndian.PutUint32(b[12:], uint32(start>>32))
	// Word 4: power (15), markers (12), phase control (1), RF off (1).
	binary.LittleEndian.PutUint32(b[16:], power|uint32(v.Markers)<<15|
		uint32(v.PhaseControl)<<27|uint32(v.RFOff)<<28)
	// Word 5: waveform index (16), reserved (12), waveform marker mask (4).
	binary.LittleEndian.PutUint32(b[20:], uint32(v.WfmIndex)|uint32(v.WfmMarkers)<<28)
	return b, nil
}

// DecodeVector unpacks a 24-byte vector record.
func DecodeVector(b []byte) (Vector, error) {
	if len(b) != VectorRecordSize {
		return Vector{}, fmt.Errorf("%w: record length %d, want %d", ErrFieldOutOfRange, len(b), VectorRecordSize)
	}
	w := make([]uint32, 6)
	for i := range w {
		w[i] = binary.LittleEndian.Uint32(b[4*i:])
	}
	if w[0]&0x7 != vectorFormat {
		return Vector{}, fmt.Errorf("%w: format %d, want %d", ErrFieldOutOfRange, w[0]&0x7, vectorFormat)
	}
	v := Vector{Operation: Operation(w[0] >> 3 & 0x3)}
	if v.Operation == OpReset {
		return v, nil
	}
	freq := uint64(w[0])>>5 | uint64(w[1]&0xFFFFF)<<27
	v.FreqHz = decodeFreq(freq)
	v.PhaseDeg = decodePhase(w[1] >> 20)
	v.StartTime = float64(uint64(w[2])|uint64(w[3])<<32) / timeScale
	v.PowerDBm = decodeVectorPower(w[4] & 0x7FFF)
	v.Markers = int(w[4] >> 15 & 0xFFF)
	v.PhaseControl = int(w[4] >> 27 & 0x1)
	v.RFOff = int(w[4] >> 28 & 0x1)
	v.WfmIndex = int(w[5] & 0xFFFF)
	v.WfmMarkers = int(w[5] >> 28 & 0xF)
	return v, nil
}

// VectorRev3BRecordSize is the wire size of a format-3 rev B vector
// record (firmware A.01.30 and later).
const VectorRev3BRecordSize = 48

// VectorRev3B is the newer 12-word vector descriptor. It extends the
// legacy record with an explicit width, per-record power ceilings, LO
// lead time, an alternate power pair, and a Doppler shift. Decode is
// not provided; the streaming path only ever writes these.
type VectorRev3B struct {
	Operation    Operation
	FreqHz       float64
	PhaseDeg     float64
	StartTime    float64
	Width        float64 // seconds; 0.5 ns resolution
	MaxPowerDBm  float64
	PowerDBm     float64
	Markers      int
	PhaseControl int
	RFOff        int
	AutoBlank    int // 1 blanks between pulses
	NewWaveform  int // 0 continues prior settings
	ZeroHold     int // 0 zero, 1 hold last sample
	LOLead       float64 // seconds before start time to begin LO switching; 4 ns resolution
	WfmMarkers   int
	WfmIndex     int
	Power2DBm    float64
	MaxPower2DBm float64
	DopplerHz    float64
}

// Encode packs the record into its 12-word little-endian wire form.
func (v VectorRev3B) Encode() ([]byte, error) {
	b := make([]byte, VectorRev3BRecordSize)
	if v.Operation < OpNone || v.Operation > OpReset {
		return nil, fmt.Errorf("%w: operation %d", ErrFieldOutOfRange, v.Operation)
	}
	w0 := uint32(vectorRev3BFormat) | uint32(v.Operation)<<3
	if v.Operation == OpReset {
		binary.LittleEndian.PutUint32(b[0:], w0)
		return b, nil
	}

	freq, err := encodeFreq(v.FreqHz)
	if err != nil {
		return nil, err
	}
	phase, err := encodePhase(v.PhaseDeg)
	if err != nil {
		return nil, err
	}
	start, err := encodeStartTime(v.StartTime)
	if err != nil {
		return nil, err
	}
	if v.Width < 0 || v.Width*2e9 > 1<<37-1 {
		return nil, fmt.Errorf("%w: width %.6g s outside the 37-bit half-ns field", ErrFieldOutOfRange, v.Width)
	}
	widthHalfNs := uint64(v.Width*2e9 + 0.5)
	maxPower, err := encodeVectorPower(v.MaxPowerDBm)
	if err != nil {
		return nil, err
	}
	power, err := encodeVectorPower(v.PowerDBm)
	if err != nil {
		return nil, err
	}
	power2, err := encodeVectorPower(v.Power2DBm)
	if err != nil {
		return nil, err
	}
	maxPower2, err := encodeVectorPower(v.MaxPower2DBm)
	if err != nil {
		return nil, err
	}
	if err := checkMarkers(v.Markers); err != nil {
		return nil, err
	}
	if v.WfmIndex < 0 || v.WfmIndex > maxWfmIndex {
		return nil, fmt.Errorf("%w: wfmIndex %d exceeds the 16-bit field", ErrFieldOutOfRange, v.WfmIndex)
	}
	if v.WfmMarkers < 0 || v.WfmMarkers > maxWfmMkrs {
		return nil, fmt.Errorf("%w: wfmMarkers %#x exceeds the 4-bit mask", ErrFieldOutOfRange, v.WfmMarkers)
	}
	if v.LOLead < 0 || v.LOLead/4e-9 > 1<<8-1 {
		return nil, fmt.Errorf("%w: loLead %.6g s outside the 8-bit 4-ns field", ErrFieldOutOfRange, v.LOLead)
	}
	loLead := uint32(v.LOLead / 4e-9)
	if v.DopplerHz < 0 {
		return nil, fmt.Errorf("%w: doppler %.6g Hz is negative", ErrFieldOutOfRange, v.DopplerHz)
	}
	doppler := uint64(v.DopplerHz + 0.5)
	bit := func(f int) uint32 {
		if f != 0 {
			return 1
		}
		return 0
	}

	// Word 0: format (3 bits), operation (2), freq low 27.
	binary.LittleEndian.PutUint32(b[0:], w0|uint32(freq<<5))
	// Word 1: freq high 20, phase 12.
	binary.LittleEndian.PutUint32(b[4:], uint32(freq>>27)|phase<<20)
	// Words 2-3: start time in ps.
	binary.LittleEndian.PutUint32(b[8:], uint32(start))
	binary.LittleEndian.PutUint32(b[12:], uint32(start>>32))
	// Word 4: width low 32 (half-ns units).
	binary.LittleEndian.PutUint32(b[16:], uint32(widthHalfNs))
	// Word 5: width high 5, max power (15), markers (12).
	binary.LittleEndian.PutUint32(b[20:], uint32(widthHalfNs>>32&0x1F)|maxPower<<5|uint32(v.Markers)<<20)
	// Word 6: power (15), phase control, RF off, auto blank, new wfm,
	// zero/hold, LO lead (8), waveform marker mask (4).
	binary.LittleEndian.PutUint32(b[24:], power|bit(v.PhaseControl)<<15|bit(v.RFOff)<<16|
		bit(v.AutoBlank)<<17|bit(v.NewWaveform)<<18|bit(v.ZeroHold)<<19|
		loLead<<20|uint32(v.WfmMarkers)<<28)
	// Word 7: reserved (8), waveform type (2), index (16), power2 low 6.
	binary.LittleEndian.PutUint32(b[28:], uint32(v.WfmIndex)<<10|power2<<26)
	// Word 8: power2 high 9, max power 2 (15), reserved (8).
	binary.LittleEndian.PutUint32(b[32:], power2>>6|maxPower2<<9)
	// Word 9: reserved.
	// Word 10: reserved (23), doppler low 9.
	binary.LittleEndian.PutUint32(b[40:], uint32(doppler<<23))
	// Word 11: doppler high 12, reserved.
	binary.LittleEndian.PutUint32(b[44:], uint32(doppler>>9))
	return b, nil
}

// EncodeRev3BBlock concatenates rev B records into a raw block
// suitable for direct streaming, with no file header.
func EncodeRev3BBlock(pdws []VectorRev3B) ([]byte, error) {
	out := make([]byte, 0, len(pdws)*VectorRev3BRecordSize)
	for i, p := range pdws {
		rec, err := p.Encode()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, rec...)
	}
	return out, nil
}
