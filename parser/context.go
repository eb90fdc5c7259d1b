package parser

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"go.uber.org/zap"
)

// NTFSContext navigates a single NTFS volume. It holds the geometry
// and the $MFT extent map; records are read on demand and never
// cached.
type NTFSContext struct {
	mu sync.Mutex

	// The reader over the disk
	DiskReader io.ReaderAt

	// Set when the context opened the image itself.
	closer io.Closer

	Boot     *NTFS_BOOT_SECTOR
	Geometry VolumeGeometry

	// The decoded $MFT run list.
	MFTRuns []Run

	// Absolute cluster of every $MFT virtual cluster.
	extents []int64

	options Options
	logger  *zap.Logger
}

func newNTFSContext(image io.ReaderAt, options Options) *NTFSContext {
	STATS.Inc_NTFSContext()

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &NTFSContext{
		DiskReader: image,
		options:    options,
		logger:     logger,
	}
}

func (self *NTFSContext) Options() Options {
	self.mu.Lock()
	defer self.mu.Unlock()

	return self.options
}

// Extents returns a copy of the $MFT extent map.
func (self *NTFSContext) Extents() []int64 {
	self.mu.Lock()
	defer self.mu.Unlock()

	return append([]int64{}, self.extents...)
}

// MaxRecords is the number of MFT records the extent map covers.
func (self *NTFSContext) MaxRecords() int64 {
	self.mu.Lock()
	defer self.mu.Unlock()

	return int64(len(self.extents)) * self.Geometry.ClusterSize /
		self.Geometry.RecordSize
}

func (self *NTFSContext) Close() error {
	self.logger.Debug("Closing NTFS context",
		zap.String("stats", STATS.DebugString()))

	self.mu.Lock()
	defer self.mu.Unlock()

	if self.closer != nil {
		err := self.closer.Close()
		self.closer = nil
		return err
	}
	return nil
}

// GetRawMFTEntry reads the raw 1kb record for id without fixup. The
// record is mapped through the extent map: its byte position in the
// $MFT stream is id * RecordSize. A record may span clusters when the
// cluster size is smaller than the record, in which case each piece
// is read from its own extent.
func (self *NTFSContext) GetRawMFTEntry(id int64) ([]byte, error) {
	self.mu.Lock()
	defer self.mu.Unlock()

	record_size := self.Geometry.RecordSize
	cluster_size := self.Geometry.ClusterSize

	if id < 0 || id > math.MaxInt64/record_size-1 {
		return nil, fmt.Errorf("%w: invalid MFT id %d",
			RecordOutOfRangeError, id)
	}

	position := id * record_size

	// Check the whole record is mapped before reading anything.
	last_vcn := (position + record_size - 1) / cluster_size
	if last_vcn >= int64(len(self.extents)) {
		return nil, fmt.Errorf(
			"%w: MFT id %d needs VCN %d but $MFT has %d clusters",
			RecordOutOfRangeError, id, last_vcn, len(self.extents))
	}

	buffer := make([]byte, record_size)
	for buf_idx := int64(0); buf_idx < record_size; {
		vcn := (position + buf_idx) / cluster_size
		cluster_offset := (position + buf_idx) % cluster_size

		to_read := cluster_size - cluster_offset
		if to_read > record_size-buf_idx {
			to_read = record_size - buf_idx
		}

		disk_offset := self.extents[vcn]*cluster_size + cluster_offset
		n, err := self.DiskReader.ReadAt(
			buffer[buf_idx:buf_idx+to_read], disk_offset)
		if int64(n) < to_read {
			if err == nil || errors.Is(err, io.EOF) {
				err = ShortReadError
			}
			return nil, fmt.Errorf("reading MFT id %d at %#x: %w",
				id, disk_offset, err)
		}

		buf_idx += to_read
	}

	self.logger.Debug("Read MFT entry", zap.Int64("id", id),
		zap.Int64("vcn", position/cluster_size))

	return buffer, nil
}

// GetMFT fetches the record for id, checks its signature and applies
// the fixup.
func (self *NTFSContext) GetMFT(id int64) (*MFT_ENTRY, error) {
	buffer, err := self.GetRawMFTEntry(id)
	if err != nil {
		return nil, err
	}

	return GetFixedUpMFTEntry(buffer, id)
}

// AttributeContent returns the content of an attribute. Resident
// content is copied out of the record. Non-resident content is read
// through the attribute's run list, up to max_size bytes.
func (self *NTFSContext) AttributeContent(
	attr *NTFS_ATTRIBUTE, max_size int64) ([]byte, error) {
	if attr.IsResident() {
		content, err := attr.Content()
		if err != nil {
			return nil, err
		}
		return append([]byte{}, content...), nil
	}

	runlist, err := attr.RunList()
	if err != nil {
		return nil, err
	}

	runs, err := ParseRunList(runlist)
	if err != nil {
		return nil, err
	}

	size := CapInt64(int64(CapUint64(attr.Actual_size(), math.MaxInt64)), max_size)
	reader, err := NewRunReader(runs, self.Geometry.ClusterSize, size, self.DiskReader)
	if err != nil {
		return nil, fmt.Errorf("reading non-resident %s: %w",
			attr.Type().Name, err)
	}

	if reader.Size() < 0 || reader.Size() > max_size {
		return nil, fmt.Errorf("%w: non-resident %s of %d bytes",
			CorruptRecordError, attr.Type().Name, reader.Size())
	}

	buffer := make([]byte, reader.Size())
	n, err := reader.ReadAt(buffer, 0)
	if n < len(buffer) {
		if err == nil || errors.Is(err, io.EOF) {
			err = ShortReadError
		}
		return nil, fmt.Errorf("reading non-resident %s: %w",
			attr.Type().Name, err)
	}

	return buffer, nil
}
