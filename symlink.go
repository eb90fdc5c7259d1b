package reparse

import (
	"encoding/binary"
	"fmt"
)

const (
	// The fixed fields before the path buffer. See MS-FSCC 2.1.2.4
	// and 2.1.2.5; the 8 byte reparse header is already stripped.
	SYMLINK_PATH_BUFFER_OFFSET     = 12
	MOUNT_POINT_PATH_BUFFER_OFFSET = 8
)

type SymlinkInfo struct {
	SubstituteName FieldValue
	PrintName      FieldValue
	Flags          FieldValue

	// Only meaningful when Flags decoded.
	IsRelative bool
}

// DecodeSymlink decodes a symbolic link payload. It never fails: each
// field carries its own error.
func DecodeSymlink(data []byte) *SymlinkInfo {
	result := &SymlinkInfo{
		SubstituteName: nameField(data, 0, SYMLINK_PATH_BUFFER_OFFSET,
			SubstituteNamePlaceholder),
		PrintName: nameField(data, 4, SYMLINK_PATH_BUFFER_OFFSET,
			PrintNamePlaceholder),
	}

	if len(data) < 12 {
		result.Flags = failedField(FlagsPlaceholder, fmt.Errorf(
			"%w: flags beyond payload of %d bytes", PayloadError, len(data)))
		return result
	}

	flags := binary.LittleEndian.Uint32(data[8:12])
	result.IsRelative = flags&SYMLINK_FLAG_RELATIVE != 0
	if result.IsRelative {
		result.Flags = parsedField(RelativePathFlag)
	} else {
		result.Flags = parsedField(AbsolutePathFlag)
	}

	return result
}

type MountPointInfo struct {
	SubstituteName FieldValue
	PrintName      FieldValue
}

// DecodeMountPoint decodes a mount point (junction) payload. Mount
// points have no flags field.
func DecodeMountPoint(data []byte) *MountPointInfo {
	return &MountPointInfo{
		SubstituteName: nameField(data, 0, MOUNT_POINT_PATH_BUFFER_OFFSET,
			SubstituteNamePlaceholder),
		PrintName: nameField(data, 4, MOUNT_POINT_PATH_BUFFER_OFFSET,
			PrintNamePlaceholder),
	}
}
