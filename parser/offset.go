package parser

import "io"

// OffsetReader shifts all reads by Offset, so a partition inside a
// larger disk image reads as if it started at zero.
type OffsetReader struct {
	Offset int64
	Reader io.ReaderAt
}

func (self *OffsetReader) ReadAt(buf []byte, offset int64) (int, error) {
	return self.Reader.ReadAt(buf, offset+self.Offset)
}
