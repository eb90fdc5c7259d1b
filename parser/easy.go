package parser

// Implement some easy APIs.

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

// GetNTFSContext parses the boot sector at offset and bootstraps the
// $MFT extent map. Any failure is a VolumeFormatError.
func GetNTFSContext(image io.ReaderAt, offset int64, options Options) (*NTFSContext, error) {
	if offset != 0 {
		image = &OffsetReader{Offset: offset, Reader: image}
	}

	ntfs := newNTFSContext(image, options)

	// NTFS Parsing starts with the boot record.
	boot, err := NewNTFS_BOOT_SECTOR(image, 0)
	if err != nil {
		return nil, err
	}

	err = boot.IsValid()
	if err != nil {
		return nil, err
	}

	ntfs.Boot = boot
	ntfs.Geometry = boot.Geometry()

	ntfs.logger.Debug("Parsed boot sector",
		zap.Int64("image_offset", offset),
		zap.Int64("sector_size", ntfs.Geometry.SectorSize),
		zap.Int64("cluster_size", ntfs.Geometry.ClusterSize),
		zap.Int64("mft_cluster", ntfs.Geometry.MFTCluster))

	err = BootstrapMFT(ntfs)
	if err != nil {
		if !errors.Is(err, VolumeFormatError) {
			err = fmt.Errorf("%w: bootstrapping $MFT: %w", VolumeFormatError, err)
		}
		return nil, err
	}

	return ntfs, nil
}

// OpenNTFSContext opens an image file read only. The returned context
// owns the file until Close().
func OpenNTFSContext(path string, options Options) (*NTFSContext, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var reader io.ReaderAt = fd
	if options.RecordDirectory != "" {
		reader = NewRecorder(options.RecordDirectory, reader)
	}

	ntfs, err := GetNTFSContext(reader, options.ImageOffset, options)
	if err != nil {
		fd.Close()
		return nil, err
	}

	ntfs.closer = fd
	return ntfs, nil
}

// GetReparseEntry assembles the reparse bundle of MFT record id: the
// record's file name and the tag and payload of its $REPARSE_POINT
// attribute.
func (self *NTFSContext) GetReparseEntry(id int64) (*ReparseBundle, error) {
	mft_entry, err := self.GetMFT(id)
	if err != nil {
		return nil, err
	}

	file_name, err := mft_entry.FileName()
	if err != nil {
		return nil, err
	}

	attr, err := mft_entry.GetAttribute(ATTR_TYPE_REPARSE_POINT)
	if err != nil {
		return nil, err
	}

	content, err := self.AttributeContent(attr, MAX_REPARSE_CONTENT_SIZE)
	if err != nil {
		return nil, fmt.Errorf("MFT entry %d: %w", id, err)
	}

	bundle, err := NewReparseBundle(id, file_name, content)
	if err != nil {
		return nil, fmt.Errorf("MFT entry %d: %w", id, err)
	}

	self.logger.Debug("Assembled reparse bundle",
		zap.Int64("id", id),
		zap.String("file_name", file_name),
		zap.String("tag", fmt.Sprintf("%#08x", bundle.TagValue())),
		zap.Int("data_length", len(bundle.Data)))

	return bundle, nil
}
