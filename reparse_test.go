package reparse_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
	reparse "www.velocidex.com/golang/go-reparse"
	"www.velocidex.com/golang/go-reparse/internal/testvolume"
	"www.velocidex.com/golang/go-reparse/parser"
)

type ReparseTestSuite struct {
	suite.Suite

	image string
	ntfs  *parser.NTFSContext
}

func (self *ReparseTestSuite) SetupTest() {
	volume := testvolume.NewVolume(512, 8, []testvolume.Run{
		{Length: 1, Delta: 3},
		{Length: 2, Delta: 5},
	}, 12)

	volume.WriteRecord(5, testvolume.NewRecord(5).
		AddFileName("target-link", 1).
		AddReparse(reparse.IO_REPARSE_TAG_SYMLINK,
			testvolume.SymlinkData(`\??\C:\Users\Public`, `C:\Users\Public`, 0)).
		Bytes())

	volume.WriteRecord(6, testvolume.NewRecord(6).
		AddFileName("junction", 1).
		AddReparse(reparse.IO_REPARSE_TAG_MOUNT_POINT,
			testvolume.MountPointData(`\??\C:\Windows`, `C:\Windows`)).
		Bytes())

	volume.WriteRecord(9, testvolume.NewRecord(9).
		AddFileName("Documents", 1).
		AddReparse(0x9000701A, append([]byte{0x02, 0x00, 0x01},
			[]byte("\x00c\x00i\x00d3f2504e0-4f89-41d3-9a0c-0305e82c3301\x00")...)).
		Bytes())

	volume.WriteRecord(10, testvolume.NewRecord(10).
		AddFileName("plain.txt", 1).Bytes())

	self.image = filepath.Join(self.T().TempDir(), "image.dd")
	self.Require().NoError(volume.WriteFile(self.image))

	ntfs, err := parser.OpenNTFSContext(self.image, parser.GetDefaultOptions())
	self.Require().NoError(err)
	self.ntfs = ntfs
}

func (self *ReparseTestSuite) TearDownTest() {
	self.Require().NoError(self.ntfs.Close())
}

func (self *ReparseTestSuite) resolve(id int64) map[string]interface{} {
	bundle, err := self.ntfs.GetReparseEntry(id)
	self.Require().NoError(err)

	info := reparse.NewInterpreter(bundle, reparse.DefaultTagTable()).ResolveAllInfo()
	result := make(map[string]interface{})
	for _, k := range info.Keys() {
		result[k], _ = info.Get(k)
	}
	return result
}

func (self *ReparseTestSuite) TestSymlink() {
	fields := self.resolve(5)
	self.Equal("target-link", fields["File Name"])
	self.Equal(`\??\C:\Users\Public`, fields["Substitute Name"])
	self.Equal(`C:\Users\Public`, fields["Print Name"])
	self.Equal(reparse.AbsolutePathFlag, fields["Flag Info"])
}

func (self *ReparseTestSuite) TestMountPoint() {
	fields := self.resolve(6)
	self.Equal("junction", fields["File Name"])
	self.Equal("IO_REPARSE_TAG_MOUNT_POINT", fields["Tag Identity"])
	self.Equal(`C:\Windows`, fields["Print Name"])
}

func (self *ReparseTestSuite) TestOneDriveBusiness() {
	fields := self.resolve(9)
	self.Equal("0x9000701A", fields["Tag Value"])
	self.Equal("IO_REPARSE_TAG_CLOUD_7", fields["Tag Identity"])
	self.Equal("3f2504e0-4f89-41d3-9a0c-0305e82c3301", fields["OneDrive CID"])
	self.Equal("OneDrive Business", fields["OneDrive Account Type"])
}

func (self *ReparseTestSuite) TestErrors() {
	_, err := self.ntfs.GetReparseEntry(10)
	self.True(errors.Is(err, parser.AttributeNotFoundError))

	_, err = self.ntfs.GetReparseEntry(12)
	self.True(errors.Is(err, parser.RecordOutOfRangeError))
}

func TestReparseTestSuite(t *testing.T) {
	suite.Run(t, &ReparseTestSuite{})
}
