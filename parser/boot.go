package parser

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"go.uber.org/zap"
)

const (
	BOOT_SECTOR_SIZE = 512

	// All supported volumes use 1kb MFT records.
	MFT_RECORD_SIZE = 1024

	// Fixup protects the last two bytes of every 512 byte stride,
	// independent of the volume sector size.
	FIXUP_STRIDE = 512

	// NTFS clusters are at most 2mb.
	MAX_CLUSTER_SIZE = 1 << 21
)

// VolumeGeometry is the subset of the boot sector needed to locate
// the MFT.
type VolumeGeometry struct {
	SectorSize        int64
	SectorsPerCluster int64
	ClusterSize       int64
	RecordSize        int64
	MFTCluster        int64
	MFTOffset         int64
}

func (self VolumeGeometry) String() string {
	return fmt.Sprintf("Sector %d x %d = Cluster %d, MFT at cluster %d (%#x)",
		self.SectorSize, self.SectorsPerCluster, self.ClusterSize,
		self.MFTCluster, self.MFTOffset)
}

type NTFS_BOOT_SECTOR struct {
	b [BOOT_SECTOR_SIZE]byte

	// Disk offset the boot sector was read from.
	Offset int64
}

func NewNTFS_BOOT_SECTOR(reader io.ReaderAt, offset int64) (*NTFS_BOOT_SECTOR, error) {
	STATS.Inc_BOOT_SECTOR()

	result := &NTFS_BOOT_SECTOR{Offset: offset}
	n, err := reader.ReadAt(result.b[:], offset)
	if n < BOOT_SECTOR_SIZE {
		if err == nil || errors.Is(err, io.EOF) {
			err = ShortReadError
		}
		return nil, fmt.Errorf("%w: reading boot sector at %#x: %w",
			VolumeFormatError, offset, err)
	}
	return result, nil
}

func (self *NTFS_BOOT_SECTOR) OEMName() string {
	return string(bytes.TrimRight(self.b[3:11], " \x00"))
}

func (self *NTFS_BOOT_SECTOR) Sector_size() uint16 {
	return binary.LittleEndian.Uint16(self.b[11:13])
}

func (self *NTFS_BOOT_SECTOR) _cluster_size() uint8 {
	return self.b[13]
}

func (self *NTFS_BOOT_SECTOR) _volume_size() uint64 {
	return binary.LittleEndian.Uint64(self.b[40:48])
}

func (self *NTFS_BOOT_SECTOR) _mft_cluster() uint64 {
	return binary.LittleEndian.Uint64(self.b[48:56])
}

func (self *NTFS_BOOT_SECTOR) _mirror_mft_cluster() uint64 {
	return binary.LittleEndian.Uint64(self.b[56:64])
}

func (self *NTFS_BOOT_SECTOR) _mft_record_size() int8 {
	return int8(self.b[64])
}

func (self *NTFS_BOOT_SECTOR) Serial() uint64 {
	return binary.LittleEndian.Uint64(self.b[72:80])
}

func (self *NTFS_BOOT_SECTOR) Magic() uint16 {
	return binary.LittleEndian.Uint16(self.b[510:512])
}

// Values above 0x80 use the newer encoding: the cluster holds
// 2^(256-value) sectors.
func (self *NTFS_BOOT_SECTOR) SectorsPerCluster() int64 {
	value := int64(self._cluster_size())
	if value > 0x80 {
		return 1 << uint(256-value)
	}
	return value
}

func (self *NTFS_BOOT_SECTOR) ClusterSize() int64 {
	return self.SectorsPerCluster() * int64(self.Sector_size())
}

func (self *NTFS_BOOT_SECTOR) BlockCount() int64 {
	cluster_size := self.ClusterSize()
	if cluster_size == 0 {
		return 0
	}
	return int64(self._volume_size()) / cluster_size
}

func isPowerOfTwo(v int64) bool {
	return v > 0 && v&(v-1) == 0
}

func (self *NTFS_BOOT_SECTOR) IsValid() error {
	if self.Magic() != 0xaa55 {
		return fmt.Errorf("%w: invalid boot sector magic %#x",
			VolumeFormatError, self.Magic())
	}

	sector_size := int64(self.Sector_size())
	if !isPowerOfTwo(sector_size) || sector_size%512 != 0 {
		return fmt.Errorf("%w: invalid sector size %d",
			VolumeFormatError, sector_size)
	}

	sectors_per_cluster := self.SectorsPerCluster()
	if !isPowerOfTwo(sectors_per_cluster) ||
		sectors_per_cluster > MAX_CLUSTER_SIZE/sector_size {
		return fmt.Errorf("%w: invalid sectors per cluster %d",
			VolumeFormatError, self._cluster_size())
	}

	cluster_size := self.ClusterSize()
	mft_cluster := self._mft_cluster()
	if mft_cluster > uint64(math.MaxInt64/cluster_size) {
		return fmt.Errorf("%w: MFT cluster %#x is outside any volume",
			VolumeFormatError, mft_cluster)
	}

	return nil
}

// Geometry is only meaningful after IsValid() succeeded.
func (self *NTFS_BOOT_SECTOR) Geometry() VolumeGeometry {
	cluster_size := self.ClusterSize()
	mft_cluster := int64(self._mft_cluster())

	return VolumeGeometry{
		SectorSize:        int64(self.Sector_size()),
		SectorsPerCluster: self.SectorsPerCluster(),
		ClusterSize:       cluster_size,
		RecordSize:        MFT_RECORD_SIZE,
		MFTCluster:        mft_cluster,
		MFTOffset:         mft_cluster * cluster_size,
	}
}

func (self *NTFS_BOOT_SECTOR) DebugString() string {
	result := fmt.Sprintf("struct NTFS_BOOT_SECTOR @ %#x:\n", self.Offset)
	result += fmt.Sprintf("  OEMName: %q\n", self.OEMName())
	result += fmt.Sprintf("  Sector_size: %#0x\n", self.Sector_size())
	result += fmt.Sprintf("  _cluster_size: %#0x\n", self._cluster_size())
	result += fmt.Sprintf("  _volume_size: %#0x\n", self._volume_size())
	result += fmt.Sprintf("  _mft_cluster: %#0x\n", self._mft_cluster())
	result += fmt.Sprintf("  _mirror_mft_cluster: %#0x\n", self._mirror_mft_cluster())
	result += fmt.Sprintf("  _mft_record_size: %d\n", self._mft_record_size())
	result += fmt.Sprintf("  Serial: %#0x\n", self.Serial())
	result += fmt.Sprintf("  Magic: %#0x\n", self.Magic())
	return result
}

// ApplyFixup restores the sector tails of an MFT record in place.
//
// Entry 0 of the fixup array is the update sequence number; entry i
// holds the original value of the last two bytes of sector i. A tail
// already holding its original value is left alone so applying the
// fixup twice is harmless. Any other tail means a torn write. Every
// tail is checked before the buffer is modified.
func ApplyFixup(buffer []byte) error {
	STATS.Inc_FixUp()

	if len(buffer) < 8 {
		return fmt.Errorf("%w: record of %d bytes has no fixup header",
			CorruptRecordError, len(buffer))
	}

	fixup_offset := int(getUint16(buffer, 4))
	fixup_count := int(getUint16(buffer, 6))

	if fixup_count == 0 {
		return nil
	}

	if fixup_offset+2*fixup_count > len(buffer) {
		return fmt.Errorf("%w: fixup array %#x+%d outside record of %d bytes",
			CorruptRecordError, fixup_offset, fixup_count, len(buffer))
	}

	if (fixup_count-1)*FIXUP_STRIDE > len(buffer) {
		return fmt.Errorf("%w: fixup count %d exceeds record of %d bytes",
			CorruptRecordError, fixup_count, len(buffer))
	}

	var usn [2]byte
	copy(usn[:], buffer[fixup_offset:fixup_offset+2])

	originals := make([][2]byte, fixup_count)
	for idx := 1; idx < fixup_count; idx++ {
		entry := fixup_offset + 2*idx
		copy(originals[idx][:], buffer[entry:entry+2])

		tail := idx*FIXUP_STRIDE - 2
		if buffer[tail] == usn[0] && buffer[tail+1] == usn[1] {
			continue
		}

		if buffer[tail] == originals[idx][0] &&
			buffer[tail+1] == originals[idx][1] {
			continue
		}

		return fmt.Errorf("%w: fixup mismatch in sector %d (torn write)",
			CorruptRecordError, idx-1)
	}

	for idx := 1; idx < fixup_count; idx++ {
		tail := idx*FIXUP_STRIDE - 2
		buffer[tail] = originals[idx][0]
		buffer[tail+1] = originals[idx][1]
	}

	return nil
}

// GetFixedUpMFTEntry checks the signature of a raw record and applies
// the fixup in place. The returned entry owns the buffer.
func GetFixedUpMFTEntry(buffer []byte, id int64) (*MFT_ENTRY, error) {
	STATS.Inc_MFT_ENTRY()

	if len(buffer) < MFT_ENTRY_HEADER_SIZE {
		return nil, fmt.Errorf("%w: MFT entry %d: %w",
			CorruptRecordError, id, EntryTooShortError)
	}

	if string(buffer[0:4]) != "FILE" {
		return nil, fmt.Errorf("%w: MFT entry %d has signature %q",
			CorruptRecordError, id, buffer[0:4])
	}

	err := ApplyFixup(buffer)
	if err != nil {
		return nil, fmt.Errorf("MFT entry %d: %w", id, err)
	}

	return &MFT_ENTRY{b: buffer, Id: id}, nil
}

// BootstrapMFT locates the $MFT's own record at the boot sector's MFT
// offset and expands the run list of its $DATA attribute into the
// extent map used for every later record lookup.
func BootstrapMFT(ntfs *NTFSContext) error {
	offset := ntfs.Geometry.MFTOffset
	buffer := make([]byte, ntfs.Geometry.RecordSize)

	n, err := ntfs.DiskReader.ReadAt(buffer, offset)
	if n < len(buffer) {
		if err == nil || errors.Is(err, io.EOF) {
			err = ShortReadError
		}
		return fmt.Errorf("reading $MFT record at %#x: %w", offset, err)
	}

	root_mft, err := GetFixedUpMFTEntry(buffer, 0)
	if err != nil {
		return err
	}

	attr, err := root_mft.GetAttribute(ATTR_TYPE_DATA)
	if err != nil {
		return err
	}

	runlist, err := attr.RunList()
	if err != nil {
		return err
	}

	runs, err := ParseRunList(runlist)
	if err != nil {
		return err
	}

	extents, err := ExpandRuns(runs)
	if err != nil {
		return err
	}

	if len(extents) == 0 {
		return fmt.Errorf("%w: $MFT run list is empty", RunListError)
	}

	ntfs.MFTRuns = runs
	ntfs.extents = extents

	ntfs.logger.Debug("Bootstrapped $MFT",
		zap.Int64("mft_offset", offset),
		zap.Int("runs", len(runs)),
		zap.Int("clusters", len(extents)))

	return nil
}
