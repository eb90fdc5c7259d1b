package parser

import (
	"encoding/binary"
	"fmt"
	"strings"
)

const (
	// Bounds the extent map expanded from a run list. A hostile run
	// length would otherwise allocate without limit.
	MAX_EXPANDED_CLUSTERS = 1 << 24
)

// A single entry of an NTFS run list. RelativeOffset is the signed
// cluster delta from the previous run's start.
type Run struct {
	RelativeOffset int64
	Length         int64

	// Sparse runs carry no offset field.
	IsSparse bool
}

func (self Run) String() string {
	if self.IsSparse {
		return fmt.Sprintf("Sparse (Length %d)", self.Length)
	}
	return fmt.Sprintf("RelativeOffset %d (Length %d)",
		self.RelativeOffset, self.Length)
}

// Reads a little endian field of up to 8 bytes and sign extends it.
func signExtend(field []byte) int64 {
	var padded [8]byte
	copy(padded[:], field)

	if len(field) > 0 && len(field) < 8 && field[len(field)-1]&0x80 != 0 {
		for i := len(field); i < 8; i++ {
			padded[i] = 0xFF
		}
	}
	return int64(binary.LittleEndian.Uint64(padded[:]))
}

// ParseRunList decodes a run list. Each run starts with a header
// byte: the low nibble is the width of the length field and the high
// nibble the width of the offset field, which is the order NTFS
// writes them (0x31 is a 1 byte length and a 3 byte offset). The
// length field follows the header, then the offset field. A zero
// header ends the list.
func ParseRunList(buffer []byte) ([]Run, error) {
	result := []Run{}

	offset := 0
	for {
		if offset >= len(buffer) {
			return nil, fmt.Errorf("%w: run list not terminated after %d bytes",
				RunListError, len(buffer))
		}

		header := buffer[offset]
		if header == 0 {
			return result, nil
		}
		offset++

		length_size := int(header & 0x0F)
		run_offset_size := int(header >> 4)

		if length_size == 0 || length_size > 8 || run_offset_size > 8 {
			return nil, fmt.Errorf("%w: invalid run header %#02x at %d",
				RunListError, header, offset-1)
		}

		if offset+length_size+run_offset_size > len(buffer) {
			return nil, fmt.Errorf("%w: run at %d truncated",
				RunListError, offset-1)
		}

		length := signExtend(buffer[offset : offset+length_size])
		offset += length_size
		if length < 0 {
			return nil, fmt.Errorf("%w: negative run length %d",
				RunListError, length)
		}

		run := Run{Length: length, IsSparse: run_offset_size == 0}
		if run_offset_size > 0 {
			run.RelativeOffset = signExtend(
				buffer[offset : offset+run_offset_size])
			offset += run_offset_size
		}

		result = append(result, run)
	}
}

// ExpandRuns flattens runs into one absolute cluster number per
// virtual cluster.
func ExpandRuns(runs []Run) ([]int64, error) {
	result := []int64{}

	lcn := int64(0)
	for idx, run := range runs {
		if run.IsSparse {
			return nil, fmt.Errorf("%w: run %d is sparse", RunListError, idx)
		}

		lcn += run.RelativeOffset
		if lcn < 0 {
			return nil, fmt.Errorf("%w: run %d starts at negative cluster %d",
				RunListError, idx, lcn)
		}

		if run.Length > MAX_EXPANDED_CLUSTERS-int64(len(result)) {
			return nil, fmt.Errorf("%w: run list maps more than %d clusters",
				RunListError, MAX_EXPANDED_CLUSTERS)
		}

		for i := int64(0); i < run.Length; i++ {
			result = append(result, lcn+i)
		}
	}

	return result, nil
}

// RunInfo describes a run with its resolved absolute position.
type RunInfo struct {
	Index          int
	VCN            int64
	LCN            int64
	RelativeOffset int64
	Length         int64
	IsSparse       bool
	ClusterSize    int64
}

func (self RunInfo) String() string {
	properties := ""
	if self.IsSparse {
		properties = "Sparse "
	}

	return fmt.Sprintf("%d: VCN %v -> LCN %v (Length %v, %vDiskOffset %#x)",
		self.Index, self.VCN, self.LCN, self.Length, properties,
		self.LCN*self.ClusterSize)
}

func DebugRuns(runs []Run, cluster_size int64) []*RunInfo {
	result := make([]*RunInfo, 0, len(runs))

	vcn := int64(0)
	lcn := int64(0)
	for idx, r := range runs {
		if !r.IsSparse {
			lcn += r.RelativeOffset
		}

		result = append(result, &RunInfo{
			Index:          idx,
			VCN:            vcn,
			LCN:            lcn,
			RelativeOffset: r.RelativeOffset,
			Length:         r.Length,
			IsSparse:       r.IsSparse,
			ClusterSize:    cluster_size,
		})
		vcn += r.Length
	}

	return result
}

func DebugRawRuns(runs []Run) string {
	lines := []string{"Runs ...."}
	for idx, r := range runs {
		lines = append(lines, fmt.Sprintf("%d %v", idx, r))
	}
	return strings.Join(lines, "\n")
}
