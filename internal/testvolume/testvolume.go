// Package testvolume builds small synthetic NTFS images for tests.
//
// Only the structures the reparse extractor reads are laid out: the
// boot sector, the $MFT record with its $DATA run list and individual
// MFT records protected by the fixup array.
package testvolume

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

const (
	RecordSize = 1024

	// Attributes start after the header and a 3 entry fixup array.
	fixupOffset     = 0x30
	attributeOffset = 0x38
)

var utf16Encoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// UTF16 encodes s as UTF-16LE without a BOM.
func UTF16(s string) []byte {
	encoded, err := utf16Encoder.NewEncoder().Bytes([]byte(s))
	if err != nil {
		panic(err)
	}
	return encoded
}

// BootSector returns a 512 byte NTFS boot sector.
func BootSector(sectorSize uint16, sectorsPerCluster uint8, mftCluster uint64) []byte {
	b := make([]byte, 512)
	copy(b[0:3], []byte{0xEB, 0x52, 0x90})
	copy(b[3:11], "NTFS    ")
	binary.LittleEndian.PutUint16(b[11:], sectorSize)
	b[13] = sectorsPerCluster
	b[21] = 0xF8
	binary.LittleEndian.PutUint64(b[40:], 0x100000)
	binary.LittleEndian.PutUint64(b[48:], mftCluster)
	binary.LittleEndian.PutUint64(b[56:], 2)
	// -10 means 2^10 byte records.
	b[64] = 0xF6
	b[68] = 1
	binary.LittleEndian.PutUint64(b[72:], 0x1234567890ABCDEF)
	binary.LittleEndian.PutUint16(b[510:], 0xAA55)
	return b
}

func align8(n int) int {
	return (n + 7) &^ 7
}

// ResidentAttribute lays out a resident attribute with its content.
func ResidentAttribute(attrType uint32, id uint16, content []byte) []byte {
	length := align8(0x18 + len(content))
	b := make([]byte, length)
	binary.LittleEndian.PutUint32(b[0:], attrType)
	binary.LittleEndian.PutUint32(b[4:], uint32(length))
	binary.LittleEndian.PutUint16(b[10:], 0x18)
	binary.LittleEndian.PutUint16(b[14:], id)
	binary.LittleEndian.PutUint32(b[16:], uint32(len(content)))
	binary.LittleEndian.PutUint16(b[20:], 0x18)
	copy(b[0x18:], content)
	return b
}

// NonResidentAttribute lays out a non-resident attribute. runlist
// must already be encoded, terminator included.
func NonResidentAttribute(attrType uint32, id uint16, runlist []byte,
	clusters, clusterSize, actualSize uint64) []byte {
	length := align8(0x40 + len(runlist))
	b := make([]byte, length)
	binary.LittleEndian.PutUint32(b[0:], attrType)
	binary.LittleEndian.PutUint32(b[4:], uint32(length))
	b[8] = 1
	binary.LittleEndian.PutUint16(b[10:], 0x40)
	binary.LittleEndian.PutUint16(b[14:], id)
	if clusters > 0 {
		binary.LittleEndian.PutUint64(b[24:], clusters-1)
	}
	binary.LittleEndian.PutUint16(b[32:], 0x40)
	binary.LittleEndian.PutUint64(b[40:], clusters*clusterSize)
	binary.LittleEndian.PutUint64(b[48:], actualSize)
	binary.LittleEndian.PutUint64(b[56:], actualSize)
	copy(b[0x40:], runlist)
	return b
}

// Run is one run list entry: Length clusters starting Delta clusters
// after the previous run.
type Run struct {
	Length int64
	Delta  int64
}

func signedWidth(v int64) int {
	for width := 1; width < 8; width++ {
		limit := int64(1) << (8*width - 1)
		if v >= -limit && v < limit {
			return width
		}
	}
	return 8
}

func putSigned(b []byte, v int64, width int) []byte {
	for i := 0; i < width; i++ {
		b = append(b, byte(v>>(8*i)))
	}
	return b
}

// EncodeRunList encodes runs in the on-disk format using the
// smallest field widths, followed by the 0x00 terminator.
func EncodeRunList(runs []Run) []byte {
	result := []byte{}
	for _, r := range runs {
		length_width := signedWidth(r.Length)
		delta_width := signedWidth(r.Delta)
		result = append(result, byte(delta_width<<4|length_width))
		result = putSigned(result, r.Length, length_width)
		result = putSigned(result, r.Delta, delta_width)
	}
	return append(result, 0)
}

// FileNameContent builds $FILE_NAME content.
func FileNameContent(parent uint64, name string, nameType byte) []byte {
	encoded := UTF16(name)
	b := make([]byte, 66+len(encoded))
	binary.LittleEndian.PutUint64(b[0:], parent|1<<48)
	binary.LittleEndian.PutUint64(b[8:], 0x01D9A0B0C0D0E0F0)
	binary.LittleEndian.PutUint64(b[16:], 0x01D9A0B0C0D0E0F0)
	binary.LittleEndian.PutUint64(b[24:], 0x01D9A0B0C0D0E0F0)
	binary.LittleEndian.PutUint64(b[32:], 0x01D9A0B0C0D0E0F0)
	b[64] = byte(len(encoded) / 2)
	b[65] = nameType
	copy(b[66:], encoded)
	return b
}

// ReparseContent builds $REPARSE_POINT content: tag, payload length,
// reserved, payload.
func ReparseContent(tag uint32, data []byte) []byte {
	b := make([]byte, 8+len(data))
	binary.LittleEndian.PutUint32(b[0:], tag)
	binary.LittleEndian.PutUint16(b[4:], uint16(len(data)))
	copy(b[8:], data)
	return b
}

func namePayload(headerSize int, substitute, print string) ([]byte, []byte) {
	sub := UTF16(substitute)
	prt := UTF16(print)

	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint16(header[0:], 0)
	binary.LittleEndian.PutUint16(header[2:], uint16(len(sub)))
	binary.LittleEndian.PutUint16(header[4:], uint16(len(sub)))
	binary.LittleEndian.PutUint16(header[6:], uint16(len(prt)))

	buffer := append(append([]byte{}, sub...), prt...)
	return header, buffer
}

// SymlinkData builds a symbolic link reparse payload.
func SymlinkData(substitute, print string, flags uint32) []byte {
	header, buffer := namePayload(12, substitute, print)
	binary.LittleEndian.PutUint32(header[8:], flags)
	return append(header, buffer...)
}

// MountPointData builds a mount point reparse payload.
func MountPointData(substitute, print string) []byte {
	header, buffer := namePayload(8, substitute, print)
	return append(header, buffer...)
}

// Record builds a single MFT record.
type Record struct {
	RecordNumber uint32
	Flags        uint16

	// The update sequence number written into every sector tail.
	USN uint16

	attributes [][]byte
	next_id    uint16
}

func NewRecord(recordNumber uint32) *Record {
	return &Record{RecordNumber: recordNumber, Flags: 1, USN: 0x0042}
}

func (self *Record) AddRaw(attr []byte) *Record {
	self.attributes = append(self.attributes, attr)
	self.next_id++
	return self
}

func (self *Record) AddResident(attrType uint32, content []byte) *Record {
	return self.AddRaw(ResidentAttribute(attrType, self.next_id, content))
}

func (self *Record) AddFileName(name string, nameType byte) *Record {
	return self.AddResident(0x30, FileNameContent(5, name, nameType))
}

func (self *Record) AddReparse(tag uint32, data []byte) *Record {
	return self.AddResident(0xC0, ReparseContent(tag, data))
}

// Unprotected lays the record out without applying the fixup
// protection, so sector tails hold their real values.
func (self *Record) Unprotected() []byte {
	b := make([]byte, RecordSize)
	copy(b[0:4], "FILE")
	binary.LittleEndian.PutUint16(b[4:], fixupOffset)
	binary.LittleEndian.PutUint16(b[6:], 3)
	binary.LittleEndian.PutUint64(b[8:], 0x1000)
	binary.LittleEndian.PutUint16(b[16:], 1)
	binary.LittleEndian.PutUint16(b[18:], 1)
	binary.LittleEndian.PutUint16(b[20:], attributeOffset)
	binary.LittleEndian.PutUint16(b[22:], self.Flags)
	binary.LittleEndian.PutUint32(b[28:], RecordSize)
	binary.LittleEndian.PutUint16(b[40:], self.next_id)
	binary.LittleEndian.PutUint32(b[44:], self.RecordNumber)

	offset := attributeOffset
	for _, attr := range self.attributes {
		if offset+len(attr)+8 > RecordSize-2 {
			panic(fmt.Sprintf("record %d overflows", self.RecordNumber))
		}
		copy(b[offset:], attr)
		offset += len(attr)
	}
	binary.LittleEndian.PutUint32(b[offset:], 0xFFFFFFFF)
	binary.LittleEndian.PutUint32(b[24:], uint32(offset+8))

	return b
}

// Bytes returns the record as it is stored on disk: the tail of each
// 512 byte sector moved into the fixup array and replaced by the USN.
func (self *Record) Bytes() []byte {
	b := self.Unprotected()
	Protect(b, self.USN)
	return b
}

// Protect applies fixup protection to a laid out record in place.
func Protect(b []byte, usn uint16) {
	offset := int(binary.LittleEndian.Uint16(b[4:]))
	count := int(binary.LittleEndian.Uint16(b[6:]))

	binary.LittleEndian.PutUint16(b[offset:], usn)
	for i := 1; i < count; i++ {
		tail := i*512 - 2
		copy(b[offset+2*i:offset+2*i+2], b[tail:tail+2])
		binary.LittleEndian.PutUint16(b[tail:], usn)
	}
}
