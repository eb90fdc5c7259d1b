package parser

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Recorder caches every read of the delegate in a directory, one file
// per read offset. A later run over the same directory replays the
// reads without the original image, which makes small fixtures out
// of large volumes.
type Recorder struct {
	path string

	// Delegate reader
	reader io.ReaderAt
}

func (self *Recorder) ReadAt(buf []byte, offset int64) (int, error) {
	// Check if the read comes from the cache directory.
	full_path := filepath.Join(self.path, fmt.Sprintf("%#08x.bin", offset))
	fd, err := os.Open(full_path)
	if err != nil {
		// Cache file does not exist - pass the read to the
		// delegate and cache it for next time.
		n, err := self.reader.ReadAt(buf, offset)
		if err == nil || err == io.EOF {
			fd, err := os.OpenFile(full_path,
				os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0660)
			if err == nil {
				fd.Write(buf[:n])
				fd.Close()
			}
		}
		return n, err
	}
	defer fd.Close()

	n, err := fd.ReadAt(buf, 0)
	if err == io.EOF && n == len(buf) {
		err = nil
	}
	return n, err
}

func NewRecorder(path string, reader io.ReaderAt) *Recorder {
	return &Recorder{path: path, reader: reader}
}
