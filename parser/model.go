package parser

import (
	"fmt"
	"time"
)

// This file defines a model for MFT entry.

type TimeStamps struct {
	CreateTime       time.Time
	FileModifiedTime time.Time
	MFTModifiedTime  time.Time
	AccessedTime     time.Time
}

type FilenameInfo struct {
	Times        TimeStamps
	Type         string
	Name         string
	ParentEntry  uint64
	ParentSeqNum uint16
}

type Attribute struct {
	Type     string
	TypeId   uint64
	Id       uint64
	Inode    string
	Resident bool
	Length   uint32
	Size     int64
	Name     string
}

// Describe a single MFT entry.
type MFTEntryInformation struct {
	MFTID         int64
	RecordNumber  uint32
	SequenceValue uint16
	LinkCount     uint16
	Allocated     bool
	IsDir         bool

	// Set when the entry carries a $REPARSE_POINT attribute.
	HasReparsePoint bool

	// If multiple filenames are given, we list them here.
	Filenames []*FilenameInfo

	Attributes []*Attribute
}

func ModelMFTEntry(mft_entry *MFT_ENTRY) (*MFTEntryInformation, error) {
	mft_id := mft_entry.Id

	result := &MFTEntryInformation{
		MFTID:         mft_id,
		RecordNumber:  mft_entry.Record_number(),
		SequenceValue: mft_entry.Sequence_value(),
		LinkCount:     mft_entry.Link_count(),
		Allocated:     mft_entry.Flags().IsSet("ALLOCATED"),
		IsDir:         mft_entry.IsDir(),
	}

	file_names, err := mft_entry.FileNames()
	if err != nil {
		return nil, err
	}

	for _, filename := range file_names {
		name, err := filename.Name()
		if err != nil {
			return nil, err
		}

		result.Filenames = append(result.Filenames, &FilenameInfo{
			Times: TimeStamps{
				CreateTime:       filename.Created().Time,
				FileModifiedTime: filename.File_modified().Time,
				MFTModifiedTime:  filename.Mft_modified().Time,
				AccessedTime:     filename.File_accessed().Time,
			},
			Type:         filename.NameType().Name,
			Name:         name,
			ParentEntry:  filename.MftReference(),
			ParentSeqNum: filename.Seq_num(),
		})
	}

	attributes, err := mft_entry.EnumerateAttributes()
	if err != nil {
		return nil, err
	}

	for _, attr := range attributes {
		attr_type := attr.Type()
		attr_id := attr.Attribute_id()

		if attr_type.Value == ATTR_TYPE_REPARSE_POINT {
			result.HasReparsePoint = true
		}

		size := int64(attr.Content_size())
		if !attr.IsResident() {
			size = int64(CapUint64(attr.Actual_size(), 1<<62))
		}

		result.Attributes = append(result.Attributes, &Attribute{
			Type:   attr_type.Name,
			TypeId: attr_type.Value,
			Inode: fmt.Sprintf("%v-%v-%v",
				mft_id, attr_type.Value, attr_id),
			Resident: attr.IsResident(),
			Length:   attr.Length(),
			Size:     size,
			Id:       uint64(attr_id),
			Name:     attr.Name(),
		})
	}

	return result, nil
}
