package parser

import (
	"encoding/binary"
	"fmt"
)

const (
	REPARSE_HEADER_SIZE = 8

	// The largest reparse buffer Windows will store, header included.
	MAX_REPARSE_CONTENT_SIZE = 16 * 1024
)

// ReparseBundle is everything needed to interpret a reparse point.
// It owns its buffers and never aliases the record it came from.
type ReparseBundle struct {
	MFTId    int64
	FileName string

	// The raw little endian reparse tag.
	Tag [4]byte

	// The reparse payload following the 8 byte header.
	Data []byte
}

func (self *ReparseBundle) TagValue() uint32 {
	return binary.LittleEndian.Uint32(self.Tag[:])
}

// NewReparseBundle splits the content of a $REPARSE_POINT attribute
// into tag and payload. The declared payload length is clamped to the
// bytes actually present.
func NewReparseBundle(id int64, file_name string, content []byte) (*ReparseBundle, error) {
	STATS.Inc_ReparseBundle()

	if len(content) < REPARSE_HEADER_SIZE {
		return nil, fmt.Errorf("%w: $REPARSE_POINT content of %d bytes is too short",
			CorruptRecordError, len(content))
	}

	result := &ReparseBundle{
		MFTId:    id,
		FileName: file_name,
	}
	copy(result.Tag[:], content[0:4])

	length := int64(binary.LittleEndian.Uint32(content[4:8]))
	available := int64(len(content) - REPARSE_HEADER_SIZE)
	if length > available {
		length = available
	}

	result.Data = make([]byte, length)
	copy(result.Data, content[REPARSE_HEADER_SIZE:REPARSE_HEADER_SIZE+length])

	return result, nil
}

func (self *ReparseBundle) DebugString() string {
	result := fmt.Sprintf("struct ReparseBundle %d:\n", self.MFTId)
	result += fmt.Sprintf("  FileName: %q\n", self.FileName)
	result += fmt.Sprintf("  Tag: %#08x\n", self.TagValue())
	result += fmt.Sprintf("  Data: %d bytes\n", len(self.Data))
	return result
}
