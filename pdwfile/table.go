package pdwfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tdwhitaker/arbforge/pdw"
)

// ErrInvalidTable indicates a descriptor table that cannot be parsed:
// an unknown column, a malformed cell, or a missing header row.
var ErrInvalidTable = errors.New("pdwfile: invalid table")

// A descriptor table is a CSV file with a header row naming any
// subset of the columns below; omitted columns take their defaults.
// The same table feeds both record families, and columns a family
// does not use are ignored when converting to it.
//
//	operation     none    none | first | reset
//	frequency     1e9     Hz
//	phase         0       degrees
//	startTime     0       seconds
//	width         0       seconds (analog only)
//	power         0       dB relative (analog) / dBm (vector)
//	markers       0       12-bit mask
//	pulseMode     2       0 CW, 1 RF off, 2 pulsed (analog only)
//	phaseControl  0       0 coherent, 1 continuous
//	bandAdjust    0       analog only
//	chirpControl  0       analog only
//	codeIndex     0       analog only
//	chirpRate     0       Hz/us (analog only)
//	freqMap       0       analog only
//	rfOff         0       vector only
//	wfmIndex      0       vector only
//	wfmMarkers    0       4-bit mask (vector only)
type tableRow struct {
	operation    pdw.Operation
	frequency    float64
	phase        float64
	startTime    float64
	width        float64
	power        float64
	markers      int
	pulseMode    int
	phaseControl int
	bandAdjust   int
	chirpControl int
	codeIndex    int
	chirpRate    float64
	freqMap      int
	rfOff        int
	wfmIndex     int
	wfmMarkers   int
}

func defaultRow() tableRow {
	return tableRow{frequency: 1e9, pulseMode: 2}
}

var knownColumns = map[string]bool{
	"operation": true, "frequency": true, "phase": true, "starttime": true,
	"width": true, "power": true, "markers": true, "pulsemode": true,
	"phasecontrol": true, "bandadjust": true, "chirpcontrol": true,
	"codeindex": true, "chirprate": true, "freqmap": true, "rfoff": true,
	"wfmindex": true, "wfmmarkers": true,
}

func (r *tableRow) set(col, val string) error {
	if val == "" {
		return nil
	}
	var err error
	num := func() float64 {
		var f float64
		f, err = strconv.ParseFloat(val, 64)
		return f
	}
	whole := func() int {
		var n int
		n, err = strconv.Atoi(val)
		return n
	}
	switch col {
	case "operation":
		r.operation, err = pdw.ParseOperation(val)
	case "frequency":
		r.frequency = num()
	case "phase":
		r.phase = num()
	case "starttime":
		r.startTime = num()
	case "width":
		r.width = num()
	case "power":
		r.power = num()
	case "markers":
		r.markers = whole()
	case "pulsemode":
		r.pulseMode = whole()
	case "phasecontrol":
		r.phaseControl = whole()
	case "bandadjust":
		r.bandAdjust = whole()
	case "chirpcontrol":
		r.chirpControl = whole()
	case "codeindex":
		r.codeIndex = whole()
	case "chirprate":
		r.chirpRate = num()
	case "freqmap":
		r.freqMap = whole()
	case "rfoff":
		r.rfOff = whole()
	case "wfmindex":
		r.wfmIndex = whole()
	case "wfmmarkers":
		r.wfmMarkers = whole()
	default:
		return fmt.Errorf("%w: unknown column %q", ErrInvalidTable, col)
	}
	if err != nil {
		return fmt.Errorf("%w: column %s value %q", ErrInvalidTable, col, val)
	}
	return nil
}

func readRows(r io.Reader) ([]tableRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing header row", ErrInvalidTable)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.ToLower(strings.TrimSpace(h))
	}
	// Validate columns up front so a bad header fails before any row.
	for _, c := range cols {
		if !knownColumns[c] {
			return nil, fmt.Errorf("%w: unknown column %q", ErrInvalidTable, c)
		}
	}

	var rows []tableRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidTable, line, err)
		}
		row := defaultRow()
		for i, val := range rec {
			if err := row.set(cols[i], strings.TrimSpace(val)); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadAnalogTable parses a descriptor table into analog records.
func ReadAnalogTable(r io.Reader) ([]pdw.Analog, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	out := make([]pdw.Analog, len(rows))
	for i, row := range rows {
		out[i] = pdw.Analog{
			Operation:    row.operation,
			FreqHz:       row.frequency,
			PhaseDeg:     row.phase,
			StartTime:    row.startTime,
			Width:        row.width,
			RelPowerDB:   row.power,
			Markers:      row.markers,
			PulseMode:    row.pulseMode,
			PhaseControl: row.phaseControl,
			BandAdjust:   row.bandAdjust,
			ChirpControl: row.chirpControl,
			CodeIndex:    row.codeIndex,
			ChirpRate:    row.chirpRate,
			FreqMap:      row.freqMap,
		}
	}
	return out, nil
}

// ReadVectorTable parses a descriptor table into vector records.
func ReadVectorTable(r io.Reader) ([]pdw.Vector, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	out := make([]pdw.Vector, len(rows))
	for i, row := range rows {
		out[i] = pdw.Vector{
			Operation:    row.operation,
			FreqHz:       row.frequency,
			PhaseDeg:     row.phase,
			StartTime:    row.startTime,
			PowerDBm:     row.power,
			Markers:      row.markers,
			PhaseControl: row.phaseControl,
			RFOff:        row.rfOff,
			WfmIndex:     row.wfmIndex,
			WfmMarkers:   row.wfmMarkers,
		}
	}
	return out, nil
}
