package reparse

import (
	"encoding/binary"
	"errors"
	"fmt"

	"www.velocidex.com/golang/go-reparse/parser"
)

var (
	// A family resolver was called for a tag outside its family.
	NotApplicableError = errors.New("NotApplicableError")

	// A payload field could not be decoded.
	PayloadError = errors.New("PayloadError")
)

const (
	SubstituteNamePlaceholder = "Unable to parse substitute name"
	PrintNamePlaceholder      = "Unable to parse print name"
	FlagsPlaceholder          = "Unable to parse flags"

	AbsolutePathFlag = "Substitute name is an absolute path name"
	RelativePathFlag = "Substitute name is a relative path name"
)

// FieldValue is a single decoded payload field. Fields are decoded
// independently: when Err is set the field failed and renders as its
// placeholder, while its siblings may still be valid.
type FieldValue struct {
	Value       string
	Placeholder string
	Err         error
}

func parsedField(value string) FieldValue {
	return FieldValue{Value: value}
}

func failedField(placeholder string, err error) FieldValue {
	return FieldValue{Placeholder: placeholder, Err: err}
}

func (self FieldValue) OK() bool {
	return self.Err == nil
}

func (self FieldValue) String() string {
	if self.Err != nil {
		return self.Placeholder
	}
	return self.Value
}

// Decodes one of the (offset, length) name descriptors at
// header_offset. Name offsets are relative to the path buffer which
// starts at path_buffer.
func decodeName(data []byte, header_offset int, path_buffer int) (string, error) {
	if header_offset+4 > len(data) {
		return "", fmt.Errorf("%w: name descriptor at %d beyond payload of %d bytes",
			PayloadError, header_offset, len(data))
	}

	offset := int(binary.LittleEndian.Uint16(data[header_offset:])) + path_buffer
	length := int(binary.LittleEndian.Uint16(data[header_offset+2:]))
	if offset+length > len(data) {
		return "", fmt.Errorf("%w: name %d+%d beyond payload of %d bytes",
			PayloadError, offset, length, len(data))
	}

	name, err := parser.DecodeUTF16(data[offset : offset+length])
	if err != nil {
		return "", fmt.Errorf("%w: %w", PayloadError, err)
	}
	return name, nil
}

func nameField(data []byte, header_offset, path_buffer int,
	placeholder string) FieldValue {
	name, err := decodeName(data, header_offset, path_buffer)
	if err != nil {
		return failedField(placeholder, err)
	}
	return parsedField(name)
}
