package parser_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"www.velocidex.com/golang/go-reparse/internal/testvolume"
	"www.velocidex.com/golang/go-reparse/parser"
)

const (
	IO_REPARSE_TAG_SYMLINK     = 0xA000000C
	IO_REPARSE_TAG_MOUNT_POINT = 0xA0000003
	IO_REPARSE_TAG_CLOUD_3     = 0x9000301A
)

// Counts reads so tests can prove a lookup did no I/O.
type countingReader struct {
	mu     sync.Mutex
	reader io.ReaderAt
	reads  int
}

func (self *countingReader) ReadAt(buf []byte, offset int64) (int, error) {
	self.mu.Lock()
	self.reads++
	self.mu.Unlock()
	return self.reader.ReadAt(buf, offset)
}

func (self *countingReader) Reads() int {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.reads
}

// A 4kb cluster volume whose $MFT is split over three extents, the
// last one before the second: VCNs 0-4 map to clusters 4,5,10,11,8.
func buildVolume() *testvolume.Volume {
	volume := testvolume.NewVolume(512, 8, []testvolume.Run{
		{Length: 2, Delta: 4},
		{Length: 2, Delta: 6},
		{Length: 1, Delta: -2},
	}, 12)

	volume.WriteRecord(3, testvolume.NewRecord(3).
		AddFileName("plain.txt", 1).Bytes())

	volume.WriteRecord(6, testvolume.NewRecord(6).
		AddFileName("mnt", 1).
		AddReparse(IO_REPARSE_TAG_MOUNT_POINT,
			testvolume.MountPointData(`\??\Volume{1b2c}\`, `D:\`)).Bytes())

	volume.WriteRecord(9, testvolume.NewRecord(9).
		AddFileName("link", 1).
		AddReparse(IO_REPARSE_TAG_SYMLINK,
			testvolume.SymlinkData(`C:\target`, "target", 0)).Bytes())

	bad := testvolume.NewRecord(12).AddFileName("bad", 1).Bytes()
	copy(bad[0:4], "BAAD")
	volume.WriteRecord(12, bad)

	torn := testvolume.NewRecord(13).AddFileName("torn", 1).Bytes()
	copy(torn[1022:], []byte{0x99, 0x99})
	volume.WriteRecord(13, torn)

	volume.WriteRecord(17, testvolume.NewRecord(17).
		AddFileName("OneDrive", 1).
		AddReparse(IO_REPARSE_TAG_CLOUD_3,
			append([]byte{0x01, 0x00, 0x20},
				[]byte("1234ABCD1234ABCD!\x00data")...)).Bytes())

	return volume
}

func TestNavigatorBootstrap(t *testing.T) {
	volume := buildVolume()

	ntfs, err := parser.GetNTFSContext(volume.Reader(), 0, parser.GetDefaultOptions())
	require.NoError(t, err)
	defer ntfs.Close()

	assert.Equal(t, int64(4096), ntfs.Geometry.ClusterSize)
	assert.Equal(t, int64(4*4096), ntfs.Geometry.MFTOffset)
	assert.Equal(t, []int64{4, 5, 10, 11, 8}, ntfs.Extents())
	assert.Equal(t, int64(20), ntfs.MaxRecords())

	// Extents() hands out a copy.
	ntfs.Extents()[0] = 99
	assert.Equal(t, int64(4), ntfs.Extents()[0])
}

func TestNavigatorRecordMapping(t *testing.T) {
	volume := buildVolume()
	ntfs, err := parser.GetNTFSContext(volume.Reader(), 0, parser.GetDefaultOptions())
	require.NoError(t, err)

	// Record 9 is VCN 2 (cluster 10), second record in the cluster.
	assert.Equal(t, int64(10*4096+1024), volume.RecordOffset(9))

	raw, err := ntfs.GetRawMFTEntry(9)
	require.NoError(t, err)
	assert.Equal(t, volume.Bytes()[10*4096+1024:10*4096+2048], raw)

	// Record 17 lives in the extent that precedes the others on disk.
	entry, err := ntfs.GetMFT(17)
	require.NoError(t, err)
	assert.Equal(t, uint32(17), entry.Record_number())

	name, err := entry.FileName()
	require.NoError(t, err)
	assert.Equal(t, "OneDrive", name)
}

func TestNavigatorOutOfRange(t *testing.T) {
	volume := buildVolume()
	reader := &countingReader{reader: volume.Reader()}

	ntfs, err := parser.GetNTFSContext(reader, 0, parser.GetDefaultOptions())
	require.NoError(t, err)

	before := reader.Reads()
	for _, id := range []int64{20, 1000, -1, 1 << 62} {
		_, err = ntfs.GetReparseEntry(id)
		assert.True(t, errors.Is(err, parser.RecordOutOfRangeError), "id %d: %v", id, err)
	}
	assert.Equal(t, before, reader.Reads())

	// The last mapped slot is in range but was never written.
	_, err = ntfs.GetMFT(19)
	assert.True(t, errors.Is(err, parser.CorruptRecordError))
}

func TestGetReparseEntry(t *testing.T) {
	volume := buildVolume()
	ntfs, err := parser.GetNTFSContext(volume.Reader(), 0, parser.GetDefaultOptions())
	require.NoError(t, err)

	bundle, err := ntfs.GetReparseEntry(9)
	require.NoError(t, err)

	assert.Equal(t, int64(9), bundle.MFTId)
	assert.Equal(t, "link", bundle.FileName)
	assert.Equal(t, [4]byte{0x0C, 0x00, 0x00, 0xA0}, bundle.Tag)
	assert.Equal(t, uint32(IO_REPARSE_TAG_SYMLINK), bundle.TagValue())
	assert.Equal(t, testvolume.SymlinkData(`C:\target`, "target", 0), bundle.Data)

	bundle, err = ntfs.GetReparseEntry(17)
	require.NoError(t, err)
	assert.Equal(t, uint32(IO_REPARSE_TAG_CLOUD_3), bundle.TagValue())
	assert.True(t, bytes.Contains(bundle.Data, []byte("1234ABCD1234ABCD!")))

	bundle, err = ntfs.GetReparseEntry(6)
	require.NoError(t, err)
	assert.Equal(t, "mnt", bundle.FileName)
}

func TestGetReparseEntryErrors(t *testing.T) {
	volume := buildVolume()
	ntfs, err := parser.GetNTFSContext(volume.Reader(), 0, parser.GetDefaultOptions())
	require.NoError(t, err)

	_, err = ntfs.GetReparseEntry(3)
	assert.True(t, errors.Is(err, parser.AttributeNotFoundError), err)

	_, err = ntfs.GetReparseEntry(12)
	assert.True(t, errors.Is(err, parser.CorruptRecordError), err)

	_, err = ntfs.GetReparseEntry(13)
	assert.True(t, errors.Is(err, parser.CorruptRecordError), err)

	// A zeroed slot has no signature.
	_, err = ntfs.GetReparseEntry(15)
	assert.True(t, errors.Is(err, parser.CorruptRecordError), err)

	// Failures never poison the context.
	_, err = ntfs.GetReparseEntry(9)
	assert.NoError(t, err)
}

func TestReparseBundleIsACopy(t *testing.T) {
	volume := buildVolume()
	ntfs, err := parser.GetNTFSContext(volume.Reader(), 0, parser.GetDefaultOptions())
	require.NoError(t, err)

	first, err := ntfs.GetReparseEntry(9)
	require.NoError(t, err)
	first.Data[0] = 0xFF

	second, err := ntfs.GetReparseEntry(9)
	require.NoError(t, err)
	assert.Equal(t, byte(0), second.Data[0])
}

func TestReparseLengthClamped(t *testing.T) {
	content := testvolume.ReparseContent(IO_REPARSE_TAG_SYMLINK, []byte{1, 2, 3, 4})
	binary.LittleEndian.PutUint32(content[4:], 1000)

	bundle, err := parser.NewReparseBundle(1, "x", content)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, bundle.Data)

	_, err = parser.NewReparseBundle(1, "x", content[:6])
	assert.True(t, errors.Is(err, parser.CorruptRecordError))
}

func TestNonResidentReparsePoint(t *testing.T) {
	volume := buildVolume()

	// Payload stored out of line in cluster 7.
	payload := testvolume.ReparseContent(IO_REPARSE_TAG_SYMLINK,
		testvolume.SymlinkData(`\??\C:\far\away`, `C:\far\away`, 0))
	volume.WriteAt(payload, 7*4096)

	volume.WriteRecord(10, testvolume.NewRecord(10).
		AddFileName("far", 1).
		AddRaw(testvolume.NonResidentAttribute(parser.ATTR_TYPE_REPARSE_POINT, 1,
			testvolume.EncodeRunList([]testvolume.Run{{Length: 1, Delta: 7}}),
			1, 4096, uint64(len(payload)))).Bytes())

	ntfs, err := parser.GetNTFSContext(volume.Reader(), 0, parser.GetDefaultOptions())
	require.NoError(t, err)

	bundle, err := ntfs.GetReparseEntry(10)
	require.NoError(t, err)
	assert.Equal(t, "far", bundle.FileName)
	assert.Equal(t, payload[8:], bundle.Data)
}

func TestSmallClusters(t *testing.T) {
	// 512 byte clusters: every record spans two extents, and record
	// 2 straddles the gap between the runs.
	volume := testvolume.NewVolume(512, 1, []testvolume.Run{
		{Length: 5, Delta: 16},
		{Length: 5, Delta: 40},
	}, 64)

	volume.WriteRecord(2, testvolume.NewRecord(2).
		AddFileName("split", 1).
		AddReparse(IO_REPARSE_TAG_SYMLINK,
			testvolume.SymlinkData("a", "b", 1)).Bytes())

	ntfs, err := parser.GetNTFSContext(volume.Reader(), 0, parser.GetDefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []int64{16, 17, 18, 19, 20, 56, 57, 58, 59, 60}, ntfs.Extents())

	bundle, err := ntfs.GetReparseEntry(2)
	require.NoError(t, err)
	assert.Equal(t, "split", bundle.FileName)

	_, err = ntfs.GetMFT(5)
	assert.True(t, errors.Is(err, parser.RecordOutOfRangeError))
}

func TestBootstrapFailures(t *testing.T) {
	// Bad $MFT signature.
	volume := buildVolume()
	copy(volume.Bytes()[4*4096:], "BAAD")
	_, err := parser.GetNTFSContext(volume.Reader(), 0, parser.GetDefaultOptions())
	assert.True(t, errors.Is(err, parser.VolumeFormatError), err)
	assert.True(t, errors.Is(err, parser.CorruptRecordError), err)

	// Resident $DATA for the $MFT.
	volume = buildVolume()
	volume.WriteRecord(0, testvolume.NewRecord(0).
		AddFileName("$MFT", 3).
		AddResident(parser.ATTR_TYPE_DATA, []byte("resident")).Bytes())
	_, err = parser.GetNTFSContext(volume.Reader(), 0, parser.GetDefaultOptions())
	assert.True(t, errors.Is(err, parser.VolumeFormatError), err)

	// No $DATA at all.
	volume = buildVolume()
	volume.WriteRecord(0, testvolume.NewRecord(0).AddFileName("$MFT", 3).Bytes())
	_, err = parser.GetNTFSContext(volume.Reader(), 0, parser.GetDefaultOptions())
	assert.True(t, errors.Is(err, parser.VolumeFormatError), err)
	assert.True(t, errors.Is(err, parser.AttributeNotFoundError), err)

	// Image ends before the $MFT.
	volume = buildVolume()
	volume.Truncate(4 * 4096)
	_, err = parser.GetNTFSContext(volume.Reader(), 0, parser.GetDefaultOptions())
	assert.True(t, errors.Is(err, parser.VolumeFormatError), err)
	assert.True(t, errors.Is(err, parser.ShortReadError), err)

	// Not NTFS at all.
	_, err = parser.GetNTFSContext(bytes.NewReader(make([]byte, 8192)), 0,
		parser.GetDefaultOptions())
	assert.True(t, errors.Is(err, parser.VolumeFormatError), err)
}

func TestShortReadOnRecord(t *testing.T) {
	volume := buildVolume()

	// Cut the image in the middle of cluster 11 (VCN 3).
	volume.Truncate(11*4096 + 100)

	ntfs, err := parser.GetNTFSContext(volume.Reader(), 0, parser.GetDefaultOptions())
	require.NoError(t, err)

	_, err = ntfs.GetMFT(12)
	assert.True(t, errors.Is(err, parser.ShortReadError), err)
}

func TestImageOffset(t *testing.T) {
	volume := buildVolume()
	partition := append(make([]byte, 1<<20), volume.Bytes()...)

	ntfs, err := parser.GetNTFSContext(bytes.NewReader(partition), 1<<20,
		parser.GetDefaultOptions())
	require.NoError(t, err)

	bundle, err := ntfs.GetReparseEntry(9)
	require.NoError(t, err)
	assert.Equal(t, "link", bundle.FileName)
}

func TestOpenNTFSContext(t *testing.T) {
	dir := t.TempDir()
	image := filepath.Join(dir, "volume.dd")
	require.NoError(t, buildVolume().WriteFile(image))

	options := parser.GetDefaultOptions()
	options.RecordDirectory = filepath.Join(dir, "record")
	require.NoError(t, os.Mkdir(options.RecordDirectory, 0700))

	ntfs, err := parser.OpenNTFSContext(image, options)
	require.NoError(t, err)

	bundle, err := ntfs.GetReparseEntry(9)
	require.NoError(t, err)
	assert.Equal(t, "link", bundle.FileName)
	require.NoError(t, ntfs.Close())

	// Replay from the recording without the image.
	require.NoError(t, os.Remove(image))
	recorded := parser.NewRecorder(options.RecordDirectory, bytes.NewReader(nil))
	ntfs, err = parser.GetNTFSContext(recorded, 0, parser.GetDefaultOptions())
	require.NoError(t, err)

	bundle, err = ntfs.GetReparseEntry(9)
	require.NoError(t, err)
	assert.Equal(t, "link", bundle.FileName)

	_, err = parser.OpenNTFSContext(image, options)
	assert.Error(t, err)
}

func TestModelMFTEntry(t *testing.T) {
	volume := buildVolume()
	ntfs, err := parser.GetNTFSContext(volume.Reader(), 0, parser.GetDefaultOptions())
	require.NoError(t, err)

	entry, err := ntfs.GetMFT(9)
	require.NoError(t, err)

	model, err := parser.ModelMFTEntry(entry)
	require.NoError(t, err)

	assert.Equal(t, int64(9), model.MFTID)
	assert.True(t, model.HasReparsePoint)
	assert.True(t, model.Allocated)
	require.Equal(t, 1, len(model.Filenames))
	assert.Equal(t, "link", model.Filenames[0].Name)
	assert.Equal(t, "Win32", model.Filenames[0].Type)

	require.Equal(t, 2, len(model.Attributes))
	assert.Equal(t, "$REPARSE_POINT", model.Attributes[1].Type)
	assert.Equal(t, "9-192-1", model.Attributes[1].Inode)
}

func init() {
	spew.Config.DisablePointerAddresses = true
	spew.Config.SortKeys = true
}
