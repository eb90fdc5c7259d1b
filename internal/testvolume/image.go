package testvolume

import (
	"bytes"
	"os"
)

// Image is an in memory disk image.
type Image struct {
	ClusterSize int64

	data []byte
}

func NewImage(clusterSize int64, clusters int64) *Image {
	return &Image{
		ClusterSize: clusterSize,
		data:        make([]byte, clusterSize*clusters),
	}
}

// WriteAt grows the image as needed.
func (self *Image) WriteAt(buf []byte, offset int64) (int, error) {
	end := offset + int64(len(buf))
	if end > int64(len(self.data)) {
		grown := make([]byte, end)
		copy(grown, self.data)
		self.data = grown
	}
	copy(self.data[offset:], buf)
	return len(buf), nil
}

// Truncate drops everything from size on.
func (self *Image) Truncate(size int64) {
	if size < int64(len(self.data)) {
		self.data = self.data[:size]
	}
}

func (self *Image) Bytes() []byte {
	return self.data
}

func (self *Image) Reader() *bytes.Reader {
	return bytes.NewReader(self.data)
}

// WriteFile stores the image at path.
func (self *Image) WriteFile(path string) error {
	return os.WriteFile(path, self.data, 0644)
}

// Volume is an image with a boot sector and an $MFT laid out over the
// clusters described by MFTRuns.
type Volume struct {
	*Image

	SectorSize        uint16
	SectorsPerCluster uint8
	MFTRuns           []Run

	// Absolute cluster of every $MFT virtual cluster.
	Extents []int64
}

// NewVolume writes the boot sector and the $MFT record. The $MFT
// starts at the first cluster of MFTRuns.
func NewVolume(sectorSize uint16, sectorsPerCluster uint8,
	mftRuns []Run, clusters int64) *Volume {
	cluster_size := int64(sectorSize) * int64(sectorsPerCluster)
	self := &Volume{
		Image:             NewImage(cluster_size, clusters),
		SectorSize:        sectorSize,
		SectorsPerCluster: sectorsPerCluster,
		MFTRuns:           mftRuns,
	}

	lcn := int64(0)
	for _, r := range mftRuns {
		lcn += r.Delta
		for i := int64(0); i < r.Length; i++ {
			self.Extents = append(self.Extents, lcn+i)
		}
	}

	self.WriteAt(BootSector(sectorSize, sectorsPerCluster,
		uint64(self.Extents[0])), 0)

	mft_clusters := uint64(len(self.Extents))
	mft := NewRecord(0).
		AddFileName("$MFT", 3).
		AddRaw(NonResidentAttribute(0x80, 1, EncodeRunList(mftRuns),
			mft_clusters, uint64(cluster_size),
			mft_clusters*uint64(cluster_size)))
	self.WriteRecord(0, mft.Bytes())

	return self
}

// RecordCount is the number of records the $MFT extents hold.
func (self *Volume) RecordCount() int64 {
	return int64(len(self.Extents)) * self.ClusterSize / RecordSize
}

// RecordOffset is the disk offset of the first byte of record id.
func (self *Volume) RecordOffset(id int64) int64 {
	position := id * RecordSize
	return self.Extents[position/self.ClusterSize]*self.ClusterSize +
		position%self.ClusterSize
}

// WriteRecord writes a raw record through the extent map, splitting
// it across clusters smaller than a record.
func (self *Volume) WriteRecord(id int64, record []byte) {
	position := id * RecordSize
	for written := int64(0); written < int64(len(record)); {
		vcn := (position + written) / self.ClusterSize
		cluster_offset := (position + written) % self.ClusterSize

		to_write := self.ClusterSize - cluster_offset
		if to_write > int64(len(record))-written {
			to_write = int64(len(record)) - written
		}

		self.WriteAt(record[written:written+to_write],
			self.Extents[vcn]*self.ClusterSize+cluster_offset)
		written += to_write
	}
}
