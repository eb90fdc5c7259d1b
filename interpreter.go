package reparse

import (
	"fmt"

	"github.com/Velocidex/ordereddict"
	"www.velocidex.com/golang/go-reparse/parser"
)

// Interpreter turns a reparse bundle into labelled, human readable
// fields.
type Interpreter struct {
	bundle *parser.ReparseBundle
	tags   *TagTable
	tag    uint32
}

// NewInterpreter takes ownership of bundle. A nil table means the
// default MS-FSCC table.
func NewInterpreter(bundle *parser.ReparseBundle, tags *TagTable) *Interpreter {
	if tags == nil {
		tags = DefaultTagTable()
	}

	return &Interpreter{
		bundle: bundle,
		tags:   tags,
		tag:    bundle.TagValue(),
	}
}

func (self *Interpreter) Tag() uint32 {
	return self.tag
}

func (self *Interpreter) TagInfo() TagInfo {
	return self.tags.Lookup(self.tag)
}

func (self *Interpreter) ResolveReparseTag() *ordereddict.Dict {
	info := self.TagInfo()
	return ordereddict.NewDict().
		Set("Tag Value", fmt.Sprintf("0x%08X", self.tag)).
		Set("Tag Identity", info.Identifier).
		Set("Tag Description", info.Description)
}

func (self *Interpreter) Symlink() (*SymlinkInfo, error) {
	if self.tag != IO_REPARSE_TAG_SYMLINK {
		return nil, fmt.Errorf("%w: tag 0x%08X is not a symbolic link",
			NotApplicableError, self.tag)
	}
	return DecodeSymlink(self.bundle.Data), nil
}

func (self *Interpreter) MountPoint() (*MountPointInfo, error) {
	if self.tag != IO_REPARSE_TAG_MOUNT_POINT {
		return nil, fmt.Errorf("%w: tag 0x%08X is not a mount point",
			NotApplicableError, self.tag)
	}
	return DecodeMountPoint(self.bundle.Data), nil
}

func (self *Interpreter) Cloud() (*CloudInfo, error) {
	if !IsCloudTag(self.tag) {
		return nil, fmt.Errorf("%w: tag 0x%08X is not a cloud files tag",
			NotApplicableError, self.tag)
	}
	return DecodeCloud(self.bundle.Data), nil
}

func (self *Interpreter) ResolveSymLinkInfo() (*ordereddict.Dict, error) {
	info, err := self.Symlink()
	if err != nil {
		return nil, err
	}

	return ordereddict.NewDict().
		Set("Substitute Name", info.SubstituteName.String()).
		Set("Print Name", info.PrintName.String()).
		Set("Flag Info", info.Flags.String()), nil
}

func (self *Interpreter) ResolveMountPointInfo() (*ordereddict.Dict, error) {
	info, err := self.MountPoint()
	if err != nil {
		return nil, err
	}

	return ordereddict.NewDict().
		Set("Substitute Name", info.SubstituteName.String()).
		Set("Print Name", info.PrintName.String()), nil
}

func (self *Interpreter) ResolveOneDriveInfo() (*ordereddict.Dict, error) {
	info, err := self.Cloud()
	if err != nil {
		return nil, err
	}

	return ordereddict.NewDict().
		Set("OneDrive CID", info.CID.String()).
		Set("OneDrive Account Type", info.AccountType), nil
}

// ResolveAllInfo returns the tag fields, the file name and the fields
// of the payload decoder matching the tag, if any. It never fails;
// undecodable fields carry their placeholders.
func (self *Interpreter) ResolveAllInfo() *ordereddict.Dict {
	result := self.ResolveReparseTag()
	result.Set("File Name", self.bundle.FileName)

	var payload *ordereddict.Dict
	var err error

	switch {
	case self.tag == IO_REPARSE_TAG_SYMLINK:
		payload, err = self.ResolveSymLinkInfo()
	case self.tag == IO_REPARSE_TAG_MOUNT_POINT:
		payload, err = self.ResolveMountPointInfo()
	case IsCloudTag(self.tag):
		payload, err = self.ResolveOneDriveInfo()
	}

	if err == nil && payload != nil {
		for _, k := range payload.Keys() {
			v, _ := payload.Get(k)
			result.Set(k, v)
		}
	}

	return result
}
