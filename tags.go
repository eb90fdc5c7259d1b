package reparse

import "sync"

// Reparse tag values. The high bits of a tag carry flags: bit 31
// marks Microsoft tags and bit 29 name surrogates.
const (
	IO_REPARSE_TAG_MOUNT_POINT = 0xA0000003
	IO_REPARSE_TAG_SYMLINK     = 0xA000000C
	IO_REPARSE_TAG_CLOUD       = 0x9000001A

	// Cloud tags carry a sub type in bits 12-15.
	IO_REPARSE_TAG_CLOUD_MASK = 0xFFFF0FFF

	SYMLINK_FLAG_RELATIVE = 0x00000001
)

type TagInfo struct {
	Identifier  string
	Description string
}

var (
	UnknownTag = TagInfo{
		Identifier:  "UNKNOWN",
		Description: "No description available.",
	}

	default_table      *TagTable
	default_table_once sync.Once
)

// TagTable maps reparse tags to their identity. It is never modified
// after construction so it can be shared freely.
type TagTable struct {
	tags map[uint32]TagInfo
}

// NewTagTable copies tags into a new table.
func NewTagTable(tags map[uint32]TagInfo) *TagTable {
	result := &TagTable{tags: make(map[uint32]TagInfo, len(tags))}
	for k, v := range tags {
		result.tags[k] = v
	}
	return result
}

// DefaultTagTable returns the shared table of tags documented in
// MS-FSCC 2.1.2.1.
func DefaultTagTable() *TagTable {
	default_table_once.Do(func() {
		default_table = NewTagTable(msfsccTags())
	})
	return default_table
}

func (self *TagTable) Lookup(tag uint32) TagInfo {
	info, pres := self.tags[tag]
	if !pres {
		return UnknownTag
	}
	return info
}

func (self *TagTable) Len() int {
	return len(self.tags)
}

func IsCloudTag(tag uint32) bool {
	return tag&IO_REPARSE_TAG_CLOUD_MASK == IO_REPARSE_TAG_CLOUD
}

func msfsccTags() map[uint32]TagInfo {
	return map[uint32]TagInfo{
		0x00000000: {
			Identifier:  "IO_REPARSE_TAG_RESERVED_ZERO",
			Description: "Reserved reparse tag value",
		},
		0x00000001: {
			Identifier:  "IO_REPARSE_TAG_RESERVED_ONE",
			Description: "Reserved reparse tag value",
		},
		0x00000002: {
			Identifier:  "IO_REPARSE_TAG_RESERVED_TWO",
			Description: "Reserved reparse tag value",
		},
		0xA0000003: {
			Identifier:  "IO_REPARSE_TAG_MOUNT_POINT",
			Description: "Contains information about mount point reparse points",
		},
		0xC0000004: {
			Identifier:  "IO_REPARSE_TAG_HSM",
			Description: "Obsolete. Used by legacy Hierarchical Storage Manager Product",
		},
		0x80000005: {
			Identifier:  "IO_REPARSE_TAG_DRIVE_EXTENDER",
			Description: "Home server drive extender",
		},
		0x80000006: {
			Identifier:  "IO_REPARSE_TAG_HSM2",
			Description: "Obsolete. Used by legacy Hierarchical Storage Manager Product",
		},
		0x80000007: {
			Identifier:  "IO_REPARSE_TAG_SIS",
			Description: "Used by single-instance storage (SIS) filter driver",
		},
		0x80000008: {
			Identifier:  "IO_REPARSE_TAG_WIM",
			Description: "Used by the WIM Mount filter",
		},
		0x80000009: {
			Identifier:  "IO_REPARSE_TAG_CSV",
			Description: "Obsolete. Used by Clustered Shared Volumes (CSV) version 1 in Windows Server 2008 R2",
		},
		0x8000000A: {
			Identifier:  "IO_REPARSE_TAG_DFS",
			Description: "Used by the DFS filter. DFS is described in the Distributed File System (DFS): Referral Protocol Specification [MS-DFSC]",
		},
		0x8000000B: {
			Identifier:  "IO_REPARSE_TAG_FILTER_MANAGER",
			Description: "Used by filter manager test harness",
		},
		0xA000000C: {
			Identifier:  "IO_REPARSE_TAG_SYMLINK",
			Description: "Used for symbolic link support. Contains information on symbolic link reparse points",
		},
		0xA0000010: {
			Identifier:  "IO_REPARSE_TAG_IIS_CACHE",
			Description: "Used by Microsoft Internet Information Services (IIS) caching",
		},
		0x80000012: {
			Identifier:  "IO_REPARSE_TAG_DFSR",
			Description: "Used by the DFS filter. DFS is described in the Distributed File System (DFS): Referral Protocol Specification [MS-DFSC]",
		},
		0x80000013: {
			Identifier:  "IO_REPARSE_TAG_DEDUP",
			Description: "Used by the Data Deduplication (Dedup) filter",
		},
		0xC0000014: {
			Identifier:  "IO_REPARSE_TAG_APPXSTRM",
			Description: "Not used",
		},
		0x80000014: {
			Identifier:  "IO_REPARSE_TAG_NFS",
			Description: "Used by the Network File System (NFS) component",
		},
		0x80000015: {
			Identifier:  "IO_REPARSE_TAG_FILE_PLACEHOLDER",
			Description: "Obsolete. Used by Windows Shell for legacy placeholder files in Windows 8.1",
		},
		0x80000016: {
			Identifier:  "IO_REPARSE_TAG_DFM",
			Description: "Used by the Dynamic File filter",
		},
		0x80000017: {
			Identifier:  "IO_REPARSE_TAG_WOF",
			Description: "Used by the Windows Overlay filter, for either WIMBoot or single-file compression",
		},
		0x80000018: {
			Identifier:  "IO_REPARSE_TAG_WCI",
			Description: "Used by the Windows Container Isolation filter",
		},
		0x90001018: {
			Identifier:  "IO_REPARSE_TAG_WCI_1",
			Description: "Used by the Windows Container Isolation filter",
		},
		0xA0000019: {
			Identifier:  "IO_REPARSE_TAG_GLOBAL_REPARSE",
			Description: "Used by NPFS to indicate a named pipe symbolic link from a server silo into the host silo",
		},
		0x9000001A: {
			Identifier:  "IO_REPARSE_TAG_CLOUD",
			Description: "Used by the Cloud Files filter, for files managed by a sync engine such as Microsoft OneDrive",
		},
		0x9000101A: {
			Identifier:  "IO_REPARSE_TAG_CLOUD_1",
			Description: "Used by the Cloud Files filter, for files managed by a sync engine such as Microsoft OneDrive",
		},
		0x9000201A: {
			Identifier:  "IO_REPARSE_TAG_CLOUD_2",
			Description: "Used by the Cloud Files filter, for files managed by a sync engine such as Microsoft OneDrive",
		},
		0x9000301A: {
			Identifier:  "IO_REPARSE_TAG_CLOUD_3",
			Description: "Used by the Cloud Files filter, for files managed by a sync engine such as Microsoft OneDrive",
		},
		0x9000401A: {
			Identifier:  "IO_REPARSE_TAG_CLOUD_4",
			Description: "Used by the Cloud Files filter, for files managed by a sync engine such as Microsoft OneDrive",
		},
		0x9000501A: {
			Identifier:  "IO_REPARSE_TAG_CLOUD_5",
			Description: "Used by the Cloud Files filter, for files managed by a sync engine such as Microsoft OneDrive",
		},
		0x9000601A: {
			Identifier:  "IO_REPARSE_TAG_CLOUD_6",
			Description: "Used by the Cloud Files filter, for files managed by a sync engine such as Microsoft OneDrive",
		},
		0x9000701A: {
			Identifier:  "IO_REPARSE_TAG_CLOUD_7",
			Description: "Used by the Cloud Files filter, for files managed by a sync engine such as Microsoft OneDrive",
		},
		0x9000801A: {
			Identifier:  "IO_REPARSE_TAG_CLOUD_8",
			Description: "Used by the Cloud Files filter, for files managed by a sync engine such as Microsoft OneDrive",
		},
		0x9000901A: {
			Identifier:  "IO_REPARSE_TAG_CLOUD_9",
			Description: "Used by the Cloud Files filter, for files managed by a sync engine such as Microsoft OneDrive",
		},
		0x9000A01A: {
			Identifier:  "IO_REPARSE_TAG_CLOUD_A",
			Description: "Used by the Cloud Files filter, for files managed by a sync engine such as Microsoft OneDrive",
		},
		0x9000B01A: {
			Identifier:  "IO_REPARSE_TAG_CLOUD_B",
			Description: "Used by the Cloud Files filter, for files managed by a sync engine such as Microsoft OneDrive",
		},
		0x9000C01A: {
			Identifier:  "IO_REPARSE_TAG_CLOUD_C",
			Description: "Used by the Cloud Files filter, for files managed by a sync engine such as Microsoft OneDrive",
		},
		0x9000D01A: {
			Identifier:  "IO_REPARSE_TAG_CLOUD_D",
			Description: "Used by the Cloud Files filter, for files managed by a sync engine such as Microsoft OneDrive",
		},
		0x9000E01A: {
			Identifier:  "IO_REPARSE_TAG_CLOUD_E",
			Description: "Used by the Cloud Files filter, for files managed by a sync engine such as Microsoft OneDrive",
		},
		0x9000F01A: {
			Identifier:  "IO_REPARSE_TAG_CLOUD_F",
			Description: "Used by the Cloud Files filter, for files managed by a sync engine such as Microsoft OneDrive",
		},
		0x8000001B: {
			Identifier:  "IO_REPARSE_TAG_APPEXECLINK",
			Description: "Used by Universal Windows Platform (UWP) packages to encode information that allows the application to be launched by CreateProcess",
		},
		0x9000001C: {
			Identifier:  "IO_REPARSE_TAG_PROJFS",
			Description: "Used by the Windows Projected File System filter, for files managed by a user mode provider such as VFS for Git",
		},
		0xA000001D: {
			Identifier:  "IO_REPARSE_TAG_LX_SYMLINK",
			Description: "Used by the Windows Subsystem for Linux (WSL) to represent a UNIX symbolic link",
		},
		0x8000001E: {
			Identifier:  "IO_REPARSE_TAG_STORAGE_SYNC",
			Description: "Used by the Azure File Sync (AFS) filter",
		},
		0xA000001F: {
			Identifier:  "IO_REPARSE_TAG_WCI_TOMBSTONE",
			Description: "Used by the Windows Container Isolation filter",
		},
		0x80000020: {
			Identifier:  "IO_REPARSE_TAG_UNHANDLED",
			Description: "Used by the Windows Container Isolation filter",
		},
		0x80000021: {
			Identifier:  "IO_REPARSE_TAG_ONEDRIVE",
			Description: "Not used",
		},
		0xA0000022: {
			Identifier:  "IO_REPARSE_TAG_PROJFS_TOMBSTONE",
			Description: "Used by the Windows Projected File System filter, for files managed by a user mode provider such as VFS for Git",
		},
		0x80000023: {
			Identifier:  "IO_REPARSE_TAG_AF_UNIX",
			Description: "Used by the Windows Subsystem for Linux (WSL) to represent a UNIX domain socket",
		},
		0x80000024: {
			Identifier:  "IO_REPARSE_TAG_LX_FIFO",
			Description: "Used by the Windows Subsystem for Linux (WSL) to represent a UNIX FIFO (named pipe)",
		},
		0x80000025: {
			Identifier:  "IO_REPARSE_TAG_LX_CHR",
			Description: "Used by the Windows Subsystem for Linux (WSL) to represent a UNIX character special file",
		},
		0x80000026: {
			Identifier:  "IO_REPARSE_TAG_LX_BLK",
			Description: "Used by the Windows Subsystem for Linux (WSL) to represent a UNIX block special file",
		},
		0xA0000027: {
			Identifier:  "IO_REPARSE_TAG_WCI_LINK",
			Description: "Used by the Windows Container Isolation filter",
		},
		0xA0001027: {
			Identifier:  "IO_REPARSE_TAG_WCI_LINK_1",
			Description: "Used by the Windows Container Isolation filter",
		},
	}
}
