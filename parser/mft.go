package parser

import (
	"fmt"
)

// Walk the attribute table of the entry. cb is called for every well
// formed attribute and stops the walk by returning false. A malformed
// length ends the walk with CorruptRecordError.
func (self *MFT_ENTRY) walkAttributes(cb func(attr_type uint32, offset, length int) bool) error {
	offset := int(self.Attribute_offset())
	record_size := len(self.b)

	for offset+8 <= record_size {
		attr_type := getUint32(self.b, offset)
		if attr_type == ATTR_TYPE_END {
			return nil
		}

		length := int(getUint32(self.b, offset+4))
		if length < 8 || length > record_size-offset {
			return fmt.Errorf(
				"%w: MFT entry %d attribute at %#x has invalid length %#x",
				CorruptRecordError, self.Id, offset, length)
		}

		if !cb(attr_type, offset, length) {
			return nil
		}

		offset += length
	}

	// The table ran off the end of the record without an end
	// marker. Nothing more can be found.
	return nil
}

func (self *MFT_ENTRY) findAttribute(attr_type uint32) (int, int, error) {
	STATS.Inc_AttributeSearch()

	found_offset, found_length := -1, 0
	err := self.walkAttributes(func(current uint32, offset, length int) bool {
		if current == attr_type {
			found_offset, found_length = offset, length
			return false
		}
		return true
	})
	if err != nil {
		return 0, 0, err
	}

	if found_offset < 0 {
		return 0, 0, fmt.Errorf("%w: no %s in MFT entry %d",
			AttributeNotFoundError, AttributeTypeName(attr_type), self.Id)
	}
	return found_offset, found_length, nil
}

// GetRawAttribute returns the bytes of the first attribute of
// attr_type, from its header to the end of the attribute. The slice
// aliases the entry buffer.
func (self *MFT_ENTRY) GetRawAttribute(attr_type uint32) ([]byte, error) {
	offset, length, err := self.findAttribute(attr_type)
	if err != nil {
		return nil, err
	}
	return self.b[offset : offset+length], nil
}

func (self *MFT_ENTRY) GetAttribute(attr_type uint32) (*NTFS_ATTRIBUTE, error) {
	offset, length, err := self.findAttribute(attr_type)
	if err != nil {
		return nil, err
	}
	return NewNTFS_ATTRIBUTE(self.b[offset:offset+length], int64(offset)), nil
}

// EnumerateAttributes returns every attribute in the entry. Attribute
// lists are not followed.
func (self *MFT_ENTRY) EnumerateAttributes() ([]*NTFS_ATTRIBUTE, error) {
	result := make([]*NTFS_ATTRIBUTE, 0, 16)

	err := self.walkAttributes(func(attr_type uint32, offset, length int) bool {
		result = append(result, NewNTFS_ATTRIBUTE(
			self.b[offset:offset+length], int64(offset)))
		return true
	})
	return result, err
}

// FileNames returns all resident $FILE_NAME attributes of the entry.
func (self *MFT_ENTRY) FileNames() ([]*FILE_NAME, error) {
	attributes, err := self.EnumerateAttributes()
	if err != nil {
		return nil, err
	}

	result := []*FILE_NAME{}
	for _, attr := range attributes {
		if attr.Type().Value != ATTR_TYPE_FILE_NAME {
			continue
		}

		content, err := attr.Content()
		if err != nil {
			return nil, err
		}
		result = append(result, NewFILE_NAME(content))
	}

	return result, nil
}

// FileName returns the preferred name of the entry. Long names win
// over the DOS short name.
func (self *MFT_ENTRY) FileName() (string, error) {
	file_names, err := self.FileNames()
	if err != nil {
		return "", err
	}

	if len(file_names) == 0 {
		return "", fmt.Errorf("%w: no $FILE_NAME in MFT entry %d",
			AttributeNotFoundError, self.Id)
	}

	short_name := file_names[0]
	for _, fn := range file_names {
		switch fn.NameType().Value {
		case FILE_NAME_WIN32, FILE_NAME_DOS_WIN32, FILE_NAME_POSIX:
			return fn.Name()
		default:
			short_name = fn
		}
	}

	return short_name.Name()
}

func (self *MFT_ENTRY) IsDir() bool {
	return self.Flags().IsSet("DIRECTORY")
}
