package parser

import "errors"

var (
	// The boot sector or the $MFT bootstrap is unusable. Fatal to
	// the NTFSContext.
	VolumeFormatError = errors.New("VolumeFormatError")

	// A fetched MFT entry has a bad signature, a torn write or a
	// malformed attribute table. Fatal to that request only.
	CorruptRecordError = errors.New("CorruptRecordError")

	AttributeNotFoundError = errors.New("AttributeNotFoundError")

	// The requested MFT id lies outside the known $MFT extents.
	RecordOutOfRangeError = errors.New("RecordOutOfRangeError")

	RunListError = errors.New("RunListError")

	EntryTooShortError = errors.New("EntryTooShortError")
	ShortReadError     = errors.New("ShortReadError")
)
