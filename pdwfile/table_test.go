package pdwfile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tdwhitaker/arbforge/pdw"
)

func TestReadVectorTable(t *testing.T) {
	table := `operation,frequency,startTime,power,wfmIndex,rfOff
first,1e9,0,-10,1,0
none,2.5e9,100e-6,-10,2,0
none,2.5e9,200e-6,0,2,1
`
	pdws, err := ReadVectorTable(strings.NewReader(table))
	require.NoError(t, err)
	require.Len(t, pdws, 3)

	assert.Equal(t, pdw.OpFirst, pdws[0].Operation)
	assert.Equal(t, 1e9, pdws[0].FreqHz)
	assert.Equal(t, -10.0, pdws[0].PowerDBm)
	assert.Equal(t, 1, pdws[0].WfmIndex)
	assert.Equal(t, 200e-6, pdws[2].StartTime)
	assert.Equal(t, 1, pdws[2].RFOff)

	// The parsed records feed straight into a file.
	_, err = AssembleVector(pdws)
	require.NoError(t, err)
}

func TestReadAnalogTable(t *testing.T) {
	table := `operation,frequency,width,chirpRate,markers
first,980e6,10e-6,5e5,4
none,980e6,10e-6,5e5,0
`
	pdws, err := ReadAnalogTable(strings.NewReader(table))
	require.NoError(t, err)
	require.Len(t, pdws, 2)
	assert.Equal(t, 980e6, pdws[0].FreqHz)
	assert.Equal(t, 10e-6, pdws[0].Width)
	assert.Equal(t, 5e5, pdws[0].ChirpRate)
	assert.Equal(t, 4, pdws[0].Markers)
}

func TestTableDefaults(t *testing.T) {
	pdws, err := ReadAnalogTable(strings.NewReader("operation\nfirst\n"))
	require.NoError(t, err)
	require.Len(t, pdws, 1)
	got := pdws[0]
	assert.Equal(t, pdw.OpFirst, got.Operation)
	assert.Equal(t, 1e9, got.FreqHz)
	assert.Equal(t, 0.0, got.PhaseDeg)
	assert.Equal(t, 0.0, got.Width)
	assert.Equal(t, 0.0, got.RelPowerDB)
	assert.Equal(t, 2, got.PulseMode)
	assert.Equal(t, 0, got.Markers)

	vec, err := ReadVectorTable(strings.NewReader("operation\nfirst\n"))
	require.NoError(t, err)
	assert.Equal(t, 1e9, vec[0].FreqHz)
	assert.Equal(t, 0.0, vec[0].PowerDBm)
	assert.Equal(t, 0, vec[0].WfmIndex)
}

func TestTableColumnNamesAreCaseInsensitive(t *testing.T) {
	pdws, err := ReadVectorTable(strings.NewReader("Operation,Frequency,WfmIndex\nfirst,1e9,3\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, pdws[0].WfmIndex)
}

func TestTableRejections(t *testing.T) {
	_, err := ReadVectorTable(strings.NewReader("operation,bogus\nfirst,1\n"))
	require.ErrorIs(t, err, ErrInvalidTable)
	assert.Contains(t, err.Error(), "bogus")

	_, err = ReadVectorTable(strings.NewReader("operation,frequency\nfirst,notanumber\n"))
	require.ErrorIs(t, err, ErrInvalidTable)

	_, err = ReadVectorTable(strings.NewReader("operation\nlast\n"))
	require.Error(t, err)

	_, err = ReadVectorTable(strings.NewReader(""))
	require.ErrorIs(t, err, ErrInvalidTable)
}
