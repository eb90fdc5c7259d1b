package parser

import (
	"encoding/json"
	"sync"
)

var (
	STATS = Stats{}
)

type Stats struct {
	mu sync.Mutex

	BOOT_SECTOR     int
	MFT_ENTRY       int
	NTFS_ATTRIBUTE  int
	FILE_NAME       int
	FixUp           int
	AttributeSearch int
	ReparseBundle   int
	NTFSContext     int
}

func (self *Stats) DebugString() string {
	self.mu.Lock()
	defer self.mu.Unlock()

	serialized, _ := json.MarshalIndent(self, " ", " ")
	return string(serialized)
}

func (self *Stats) Reset() {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.BOOT_SECTOR = 0
	self.MFT_ENTRY = 0
	self.NTFS_ATTRIBUTE = 0
	self.FILE_NAME = 0
	self.FixUp = 0
	self.AttributeSearch = 0
	self.ReparseBundle = 0
	self.NTFSContext = 0
}

func (self *Stats) Inc_BOOT_SECTOR() {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.BOOT_SECTOR++
}

func (self *Stats) Inc_MFT_ENTRY() {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.MFT_ENTRY++
}

func (self *Stats) Inc_NTFSContext() {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.NTFSContext++
}

func (self *Stats) Inc_FixUp() {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.FixUp++
}

func (self *Stats) Inc_NTFS_ATTRIBUTE() {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.NTFS_ATTRIBUTE++
}

func (self *Stats) Inc_FILE_NAME() {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.FILE_NAME++
}

func (self *Stats) Inc_AttributeSearch() {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.AttributeSearch++
}

func (self *Stats) Inc_ReparseBundle() {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.ReparseBundle++
}
