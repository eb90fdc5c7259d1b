package parser

import (
	"os"
	"strings"
	"sync"

	"github.com/davecgh/go-spew/spew"
)

var (
	ntfs_debug      bool
	ntfs_debug_once sync.Once
)

func Debug(arg interface{}) {
	spew.Dump(arg)
}

type Debugger interface {
	DebugString() string
}

func DebugString(arg interface{}, indent string) string {
	debugger, ok := arg.(Debugger)
	if !ok {
		return ""
	}

	lines := strings.Split(debugger.DebugString(), "\n")
	for idx, line := range lines {
		lines[idx] = indent + line
	}
	return strings.Join(lines, "\n")
}

// IsDebugEnabled reports whether NTFS_DEBUG is set in the
// environment. os.Environ() is expensive so the answer is cached.
func IsDebugEnabled() bool {
	ntfs_debug_once.Do(func() {
		for _, x := range os.Environ() {
			if strings.HasPrefix(x, "NTFS_DEBUG=") {
				ntfs_debug = true
				break
			}
		}
	})
	return ntfs_debug
}
