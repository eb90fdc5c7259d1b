package parser

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"
)

// These are hand written parsers over fixed up byte buffers. Every
// accessor is bounds checked and reads zero past the end of the
// buffer, so a truncated struct never panics.

const (
	ATTR_TYPE_STANDARD_INFORMATION = 0x10
	ATTR_TYPE_ATTRIBUTE_LIST       = 0x20
	ATTR_TYPE_FILE_NAME            = 0x30
	ATTR_TYPE_OBJECT_ID            = 0x40
	ATTR_TYPE_SECURITY_DESCRIPTOR  = 0x50
	ATTR_TYPE_VOLUME_NAME          = 0x60
	ATTR_TYPE_VOLUME_INFORMATION   = 0x70
	ATTR_TYPE_DATA                 = 0x80
	ATTR_TYPE_INDEX_ROOT           = 0x90
	ATTR_TYPE_INDEX_ALLOCATION     = 0xA0
	ATTR_TYPE_BITMAP               = 0xB0
	ATTR_TYPE_REPARSE_POINT        = 0xC0
	ATTR_TYPE_EA_INFORMATION       = 0xD0
	ATTR_TYPE_EA                   = 0xE0
	ATTR_TYPE_LOGGED_UTILITY       = 0x100

	// Terminates the attribute table of an MFT entry.
	ATTR_TYPE_END = 0xFFFFFFFF

	MFT_ENTRY_HEADER_SIZE = 48
	ATTRIBUTE_HEADER_SIZE = 16
)

func getUint8(b []byte, offset int) uint8 {
	if offset < 0 || offset >= len(b) {
		return 0
	}
	return b[offset]
}

func getUint16(b []byte, offset int) uint16 {
	if offset < 0 || offset+2 > len(b) {
		return 0
	}
	return binary.LittleEndian.Uint16(b[offset : offset+2])
}

func getUint32(b []byte, offset int) uint32 {
	if offset < 0 || offset+4 > len(b) {
		return 0
	}
	return binary.LittleEndian.Uint32(b[offset : offset+4])
}

func getUint64(b []byte, offset int) uint64 {
	if offset < 0 || offset+8 > len(b) {
		return 0
	}
	return binary.LittleEndian.Uint64(b[offset : offset+8])
}

type Enumeration struct {
	Value uint64
	Name  string
}

func (self Enumeration) DebugString() string {
	return fmt.Sprintf("%s (%d)", self.Name, self.Value)
}

type Flags struct {
	Value uint64
	Names map[string]bool
}

func (self Flags) IsSet(flag string) bool {
	return self.Names[flag]
}

func (self Flags) DebugString() string {
	names := []string{}
	for k := range self.Names {
		names = append(names, k)
	}
	sort.Strings(names)

	return fmt.Sprintf("%d (%v)", self.Value, strings.Join(names, ","))
}

func AttributeTypeName(value uint32) string {
	switch value {
	case ATTR_TYPE_STANDARD_INFORMATION:
		return "$STANDARD_INFORMATION"
	case ATTR_TYPE_ATTRIBUTE_LIST:
		return "$ATTRIBUTE_LIST"
	case ATTR_TYPE_FILE_NAME:
		return "$FILE_NAME"
	case ATTR_TYPE_OBJECT_ID:
		return "$OBJECT_ID"
	case ATTR_TYPE_SECURITY_DESCRIPTOR:
		return "$SECURITY_DESCRIPTOR"
	case ATTR_TYPE_VOLUME_NAME:
		return "$VOLUME_NAME"
	case ATTR_TYPE_VOLUME_INFORMATION:
		return "$VOLUME_INFORMATION"
	case ATTR_TYPE_DATA:
		return "$DATA"
	case ATTR_TYPE_INDEX_ROOT:
		return "$INDEX_ROOT"
	case ATTR_TYPE_INDEX_ALLOCATION:
		return "$INDEX_ALLOCATION"
	case ATTR_TYPE_BITMAP:
		return "$BITMAP"
	case ATTR_TYPE_REPARSE_POINT:
		return "$REPARSE_POINT"
	case ATTR_TYPE_EA_INFORMATION:
		return "$EA_INFORMATION"
	case ATTR_TYPE_EA:
		return "$EA"
	case ATTR_TYPE_LOGGED_UTILITY:
		return "$LOGGED_UTILITY_STREAM"
	}
	return "Unknown"
}

// NTFS_ATTRIBUTE is a view over a single attribute inside a fixed up
// MFT entry. b spans exactly Length() bytes.
type NTFS_ATTRIBUTE struct {
	b []byte

	// Offset of the attribute inside its MFT entry.
	Offset int64
}

func NewNTFS_ATTRIBUTE(b []byte, offset int64) *NTFS_ATTRIBUTE {
	STATS.Inc_NTFS_ATTRIBUTE()
	return &NTFS_ATTRIBUTE{b: b, Offset: offset}
}

func (self *NTFS_ATTRIBUTE) Size() int {
	return len(self.b)
}

func (self *NTFS_ATTRIBUTE) Type() *Enumeration {
	value := getUint32(self.b, 0)
	return &Enumeration{Value: uint64(value), Name: AttributeTypeName(value)}
}

func (self *NTFS_ATTRIBUTE) Length() uint32 {
	return getUint32(self.b, 4)
}

func (self *NTFS_ATTRIBUTE) Resident() *Enumeration {
	value := getUint8(self.b, 8)
	name := "Unknown"
	switch value {
	case 0:
		name = "RESIDENT"
	case 1:
		name = "NON-RESIDENT"
	}
	return &Enumeration{Value: uint64(value), Name: name}
}

func (self *NTFS_ATTRIBUTE) IsResident() bool {
	return getUint8(self.b, 8) == 0
}

func (self *NTFS_ATTRIBUTE) name_length() byte {
	return getUint8(self.b, 9)
}

func (self *NTFS_ATTRIBUTE) name_offset() uint16 {
	return getUint16(self.b, 10)
}

func (self *NTFS_ATTRIBUTE) Flags() *EntryFlags {
	res := EntryFlags(uint64(getUint16(self.b, 12)))
	return &res
}

type EntryFlags uint64

func (self EntryFlags) DebugString() string {
	names := []string{}

	if self&(1<<0) != 0 {
		names = append(names, "COMPRESSED")
	}

	if self&(1<<14) != 0 {
		names = append(names, "ENCRYPTED")
	}

	if self&(1<<15) != 0 {
		names = append(names, "SPARSE")
	}

	return fmt.Sprintf("%d (%v)", self, strings.Join(names, ","))
}

func IsCompressed(flags *EntryFlags) bool {
	return uint64(*flags)&uint64(1) != 0
}

func IsSparse(flags *EntryFlags) bool {
	return uint64(*flags)&uint64(1<<15) != 0
}

func (self *NTFS_ATTRIBUTE) Attribute_id() uint16 {
	return getUint16(self.b, 14)
}

func (self *NTFS_ATTRIBUTE) Content_size() uint32 {
	return getUint32(self.b, 16)
}

func (self *NTFS_ATTRIBUTE) Content_offset() uint16 {
	return getUint16(self.b, 20)
}

func (self *NTFS_ATTRIBUTE) Runlist_vcn_start() uint64 {
	return getUint64(self.b, 16)
}

func (self *NTFS_ATTRIBUTE) Runlist_vcn_end() uint64 {
	return getUint64(self.b, 24)
}

func (self *NTFS_ATTRIBUTE) Runlist_offset() uint16 {
	return getUint16(self.b, 32)
}

func (self *NTFS_ATTRIBUTE) Compression_unit_size() uint16 {
	return getUint16(self.b, 34)
}

func (self *NTFS_ATTRIBUTE) Allocated_size() uint64 {
	return getUint64(self.b, 40)
}

func (self *NTFS_ATTRIBUTE) Actual_size() uint64 {
	return getUint64(self.b, 48)
}

func (self *NTFS_ATTRIBUTE) Initialized_size() uint64 {
	return getUint64(self.b, 56)
}

// Name returns the attribute stream name (empty for the default
// stream).
func (self *NTFS_ATTRIBUTE) Name() string {
	length := int(self.name_length()) * 2
	if length == 0 {
		return ""
	}
	offset := int(self.name_offset())
	if offset+length > len(self.b) {
		return ""
	}

	name, err := DecodeUTF16(self.b[offset : offset+length])
	if err != nil {
		return ""
	}
	return name
}

// Content returns the resident content of the attribute. The slice
// aliases the MFT entry buffer.
func (self *NTFS_ATTRIBUTE) Content() ([]byte, error) {
	if !self.IsResident() {
		return nil, fmt.Errorf("%w: %s attribute is not resident",
			CorruptRecordError, self.Type().Name)
	}

	offset := int(self.Content_offset())
	size := int(self.Content_size())
	if offset < ATTRIBUTE_HEADER_SIZE || offset+size > len(self.b) {
		return nil, fmt.Errorf(
			"%w: %s content %#x+%#x outside attribute of length %#x",
			CorruptRecordError, self.Type().Name, offset, size, len(self.b))
	}
	return self.b[offset : offset+size], nil
}

// RunList returns the raw run list bytes of a non-resident
// attribute, from the run list offset to the end of the attribute.
func (self *NTFS_ATTRIBUTE) RunList() ([]byte, error) {
	if self.IsResident() {
		return nil, fmt.Errorf("%w: %s attribute is resident",
			CorruptRecordError, self.Type().Name)
	}

	offset := int(self.Runlist_offset())
	if offset < ATTRIBUTE_HEADER_SIZE || offset >= len(self.b) {
		return nil, fmt.Errorf(
			"%w: %s run list offset %#x outside attribute of length %#x",
			CorruptRecordError, self.Type().Name, offset, len(self.b))
	}
	return self.b[offset:], nil
}

func (self *NTFS_ATTRIBUTE) DebugString() string {
	result := fmt.Sprintf("struct NTFS_ATTRIBUTE @ %#x:\n", self.Offset)
	result += fmt.Sprintf("  Type: %v\n", self.Type().DebugString())
	result += fmt.Sprintf("  Length: %#0x\n", self.Length())
	result += fmt.Sprintf("  Resident: %v\n", self.Resident().DebugString())
	result += fmt.Sprintf("  name_length: %#0x\n", self.name_length())
	result += fmt.Sprintf("  name_offset: %#0x\n", self.name_offset())
	result += fmt.Sprintf("  Flags: %v\n", self.Flags().DebugString())
	result += fmt.Sprintf("  Attribute_id: %#0x\n", self.Attribute_id())
	if self.IsResident() {
		result += fmt.Sprintf("  Content_size: %#0x\n", self.Content_size())
		result += fmt.Sprintf("  Content_offset: %#0x\n", self.Content_offset())
	} else {
		result += fmt.Sprintf("  Runlist_vcn_start: %#0x\n", self.Runlist_vcn_start())
		result += fmt.Sprintf("  Runlist_vcn_end: %#0x\n", self.Runlist_vcn_end())
		result += fmt.Sprintf("  Runlist_offset: %#0x\n", self.Runlist_offset())
		result += fmt.Sprintf("  Compression_unit_size: %#0x\n", self.Compression_unit_size())
		result += fmt.Sprintf("  Allocated_size: %#0x\n", self.Allocated_size())
		result += fmt.Sprintf("  Actual_size: %#0x\n", self.Actual_size())
		result += fmt.Sprintf("  Initialized_size: %#0x\n", self.Initialized_size())
	}
	return result
}

// MFT_ENTRY is a view over a fixed up MFT record buffer.
type MFT_ENTRY struct {
	b []byte

	// The MFT id this entry was fetched for.
	Id int64
}

func (self *MFT_ENTRY) Size() int {
	return len(self.b)
}

// Bytes returns the fixed up record. Callers must not modify it.
func (self *MFT_ENTRY) Bytes() []byte {
	return self.b
}

func (self *MFT_ENTRY) Magic() string {
	if len(self.b) < 4 {
		return ""
	}
	return string(self.b[0:4])
}

func (self *MFT_ENTRY) Fixup_offset() uint16 {
	return getUint16(self.b, 4)
}

func (self *MFT_ENTRY) Fixup_count() uint16 {
	return getUint16(self.b, 6)
}

func (self *MFT_ENTRY) Logfile_sequence_number() uint64 {
	return getUint64(self.b, 8)
}

func (self *MFT_ENTRY) Sequence_value() uint16 {
	return getUint16(self.b, 16)
}

func (self *MFT_ENTRY) Link_count() uint16 {
	return getUint16(self.b, 18)
}

func (self *MFT_ENTRY) Attribute_offset() uint16 {
	return getUint16(self.b, 20)
}

func (self *MFT_ENTRY) Flags() *Flags {
	value := getUint16(self.b, 22)
	names := make(map[string]bool)

	if value&(1<<0) != 0 {
		names["ALLOCATED"] = true
	}

	if value&(1<<1) != 0 {
		names["DIRECTORY"] = true
	}

	return &Flags{Value: uint64(value), Names: names}
}

func (self *MFT_ENTRY) Mft_entry_size() uint32 {
	return getUint32(self.b, 24)
}

func (self *MFT_ENTRY) Mft_entry_allocated() uint32 {
	return getUint32(self.b, 28)
}

func (self *MFT_ENTRY) Base_record_reference() uint64 {
	return getUint64(self.b, 32)
}

func (self *MFT_ENTRY) Next_attribute_id() uint16 {
	return getUint16(self.b, 40)
}

func (self *MFT_ENTRY) Record_number() uint32 {
	return getUint32(self.b, 44)
}

func (self *MFT_ENTRY) DebugString() string {
	result := fmt.Sprintf("struct MFT_ENTRY %d:\n", self.Id)
	result += fmt.Sprintf("  Magic: %q\n", self.Magic())
	result += fmt.Sprintf("  Fixup_offset: %#0x\n", self.Fixup_offset())
	result += fmt.Sprintf("  Fixup_count: %#0x\n", self.Fixup_count())
	result += fmt.Sprintf("  Logfile_sequence_number: %#0x\n", self.Logfile_sequence_number())
	result += fmt.Sprintf("  Sequence_value: %#0x\n", self.Sequence_value())
	result += fmt.Sprintf("  Link_count: %#0x\n", self.Link_count())
	result += fmt.Sprintf("  Attribute_offset: %#0x\n", self.Attribute_offset())
	result += fmt.Sprintf("  Flags: %v\n", self.Flags().DebugString())
	result += fmt.Sprintf("  Mft_entry_size: %#0x\n", self.Mft_entry_size())
	result += fmt.Sprintf("  Mft_entry_allocated: %#0x\n", self.Mft_entry_allocated())
	result += fmt.Sprintf("  Base_record_reference: %#0x\n", self.Base_record_reference())
	result += fmt.Sprintf("  Next_attribute_id: %#0x\n", self.Next_attribute_id())
	result += fmt.Sprintf("  Record_number: %#0x\n", self.Record_number())
	return result
}

const (
	FILE_NAME_POSIX     = 0
	FILE_NAME_WIN32     = 1
	FILE_NAME_DOS       = 2
	FILE_NAME_DOS_WIN32 = 3

	FILE_NAME_HEADER_SIZE = 66
)

// FILE_NAME is a view over the resident content of a $FILE_NAME
// attribute.
type FILE_NAME struct {
	b []byte
}

func NewFILE_NAME(b []byte) *FILE_NAME {
	STATS.Inc_FILE_NAME()
	return &FILE_NAME{b: b}
}

// The MFT id of the parent directory.
func (self *FILE_NAME) MftReference() uint64 {
	return getUint64(self.b, 0) & 0xFFFFFFFFFFFF
}

func (self *FILE_NAME) Seq_num() uint16 {
	return getUint16(self.b, 6)
}

func (self *FILE_NAME) Created() *WinFileTime {
	return NewWinFileTime(getUint64(self.b, 8))
}

func (self *FILE_NAME) File_modified() *WinFileTime {
	return NewWinFileTime(getUint64(self.b, 16))
}

func (self *FILE_NAME) Mft_modified() *WinFileTime {
	return NewWinFileTime(getUint64(self.b, 24))
}

func (self *FILE_NAME) File_accessed() *WinFileTime {
	return NewWinFileTime(getUint64(self.b, 32))
}

func (self *FILE_NAME) FilenameSize() uint64 {
	return getUint64(self.b, 48)
}

func (self *FILE_NAME) _length_of_name() uint8 {
	return getUint8(self.b, 64)
}

func (self *FILE_NAME) NameType() *Enumeration {
	value := getUint8(self.b, 65)
	name := "Unknown"
	switch value {
	case FILE_NAME_POSIX:
		name = "POSIX"
	case FILE_NAME_WIN32:
		name = "Win32"
	case FILE_NAME_DOS:
		name = "DOS"
	case FILE_NAME_DOS_WIN32:
		name = "DOS+Win32"
	}
	return &Enumeration{Value: uint64(value), Name: name}
}

// Name decodes the UTF-16LE file name. The name length counts code
// units, so the name occupies twice that many bytes.
func (self *FILE_NAME) Name() (string, error) {
	length := int(self._length_of_name()) * 2
	if len(self.b) < FILE_NAME_HEADER_SIZE ||
		FILE_NAME_HEADER_SIZE+length > len(self.b) {
		return "", fmt.Errorf(
			"%w: $FILE_NAME name of %d bytes outside content of length %d",
			CorruptRecordError, length, len(self.b))
	}

	return DecodeUTF16(self.b[FILE_NAME_HEADER_SIZE : FILE_NAME_HEADER_SIZE+length])
}

func (self *FILE_NAME) DebugString() string {
	name, _ := self.Name()
	result := "struct FILE_NAME:\n"
	result += fmt.Sprintf("  MftReference: %#0x\n", self.MftReference())
	result += fmt.Sprintf("  Seq_num: %#0x\n", self.Seq_num())
	result += fmt.Sprintf("  FilenameSize: %#0x\n", self.FilenameSize())
	result += fmt.Sprintf("  NameType: %v\n", self.NameType().DebugString())
	result += fmt.Sprintf("  Name: %q\n", name)
	return result
}
