package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"www.velocidex.com/golang/go-reparse/internal/testvolume"
)

type runListTestCase struct {
	name    string
	input   []byte
	runs    []Run
	extents []int64
}

var (
	RunListTestCases = []runListTestCase{
		{
			name:    "Single byte fields",
			input:   []byte{0x11, 0x02, 0x04, 0x00},
			runs:    []Run{{RelativeOffset: 4, Length: 2}},
			extents: []int64{4, 5},
		},
		{
			name: "Negative delta",
			input: []byte{
				0x11, 0x02, 0x04,
				0x11, 0x02, 0x06,
				0x11, 0x01, 0xFE,
				0x00},
			runs: []Run{
				{RelativeOffset: 4, Length: 2},
				{RelativeOffset: 6, Length: 2},
				{RelativeOffset: -2, Length: 1},
			},
			extents: []int64{4, 5, 10, 11, 8},
		},
		{
			// 3 byte offset field, 1 byte length field.
			name:    "Wide offset",
			input:   []byte{0x31, 0x03, 0x00, 0x00, 0x0C, 0x00},
			runs:    []Run{{RelativeOffset: 0x0C0000, Length: 3}},
			extents: []int64{0x0C0000, 0x0C0001, 0x0C0002},
		},
		{
			// 0x80 in the length field needs a second byte to stay
			// positive.
			name:  "Two byte length",
			input: []byte{0x12, 0x80, 0x00, 0x10, 0x00},
			runs:  []Run{{RelativeOffset: 0x10, Length: 0x80}},
		},
		{
			name: "Two byte negative delta",
			input: []byte{
				0x21, 0x01, 0x00, 0x10,
				0x21, 0x01, 0x00, 0xFF,
				0x00},
			runs: []Run{
				{RelativeOffset: 0x1000, Length: 1},
				{RelativeOffset: -0x100, Length: 1},
			},
			extents: []int64{0x1000, 0xF00},
		},
		{
			name:    "Empty",
			input:   []byte{0x00},
			runs:    []Run{},
			extents: []int64{},
		},
	}
)

func TestParseRunList(t *testing.T) {
	for _, test_case := range RunListTestCases {
		runs, err := ParseRunList(test_case.input)
		require.NoError(t, err, test_case.name)
		assert.Equal(t, test_case.runs, runs, test_case.name)

		if test_case.extents == nil {
			continue
		}

		extents, err := ExpandRuns(runs)
		require.NoError(t, err, test_case.name)
		assert.Equal(t, test_case.extents, extents, test_case.name)
	}
}

func TestParseRunListStopsAtTerminator(t *testing.T) {
	// Bytes after the terminator are slack space.
	runs, err := ParseRunList([]byte{0x11, 0x01, 0x05, 0x00, 0xFF, 0xFF})
	require.NoError(t, err)
	assert.Equal(t, []Run{{RelativeOffset: 5, Length: 1}}, runs)
}

func TestParseRunListErrors(t *testing.T) {
	for _, input := range [][]byte{
		// Missing terminator.
		{0x11, 0x01, 0x05},

		// Truncated offset field.
		{0x21, 0x01, 0x05},

		// Field width above 8.
		{0x19, 0x01, 0x05, 0x00},

		// Zero width length field.
		{0x10, 0x05, 0x00},

		// Negative length.
		{0x11, 0xFF, 0x05, 0x00},

		{},
	} {
		_, err := ParseRunList(input)
		assert.True(t, errors.Is(err, RunListError), "%x: %v", input, err)
	}
}

func TestSparseRuns(t *testing.T) {
	runs, err := ParseRunList([]byte{0x11, 0x02, 0x08, 0x01, 0x04, 0x00})
	require.NoError(t, err)
	assert.Equal(t, []Run{
		{RelativeOffset: 8, Length: 2},
		{Length: 4, IsSparse: true},
	}, runs)

	// The $MFT can not have holes.
	_, err = ExpandRuns(runs)
	assert.True(t, errors.Is(err, RunListError))
}

func TestExpandRunsNegativeCluster(t *testing.T) {
	_, err := ExpandRuns([]Run{
		{RelativeOffset: 2, Length: 1},
		{RelativeOffset: -3, Length: 1},
	})
	assert.True(t, errors.Is(err, RunListError))
}

func TestExpandRunsLimit(t *testing.T) {
	_, err := ExpandRuns([]Run{{RelativeOffset: 1, Length: 1 << 40}})
	assert.True(t, errors.Is(err, RunListError))
}

func TestDebugRuns(t *testing.T) {
	info := DebugRuns([]Run{
		{RelativeOffset: 4, Length: 2},
		{RelativeOffset: 6, Length: 2},
		{RelativeOffset: -2, Length: 1},
	}, 4096)

	require.Equal(t, 3, len(info))
	assert.Equal(t, int64(10), info[1].LCN)
	assert.Equal(t, int64(2), info[1].VCN)
	assert.Equal(t, int64(8), info[2].LCN)
	assert.Equal(t, "2: VCN 4 -> LCN 8 (Length 1, DiskOffset 0x8000)",
		info[2].String())
}

func TestRunListRoundTrip(t *testing.T) {
	runs := []testvolume.Run{
		{Length: 3, Delta: 0x1000},
		{Length: 0x200, Delta: 0x123456},
		// Before the first run.
		{Length: 2, Delta: -0x123456 - 0x800},
		{Length: 1, Delta: 0x7FFFFFFF},
	}

	decoded, err := ParseRunList(testvolume.EncodeRunList(runs))
	require.NoError(t, err)
	require.Equal(t, len(runs), len(decoded))

	expected := []int64{}
	lcn := int64(0)
	for idx, r := range runs {
		assert.Equal(t, r.Length, decoded[idx].Length)
		assert.Equal(t, r.Delta, decoded[idx].RelativeOffset)

		lcn += r.Delta
		for i := int64(0); i < r.Length; i++ {
			expected = append(expected, lcn+i)
		}
	}

	extents, err := ExpandRuns(decoded)
	require.NoError(t, err)
	assert.Equal(t, expected, extents)
	assert.Equal(t, []int64{0x800, 0x801}, extents[3+0x200:3+0x200+2])
}
