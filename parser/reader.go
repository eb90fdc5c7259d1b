package parser

import (
	"fmt"
	"io"
	"math"
)

// A run mapped to its absolute position on disk. Offsets and lengths
// are in bytes.
type MappedRun struct {
	FileOffset   int64
	TargetOffset int64
	Length       int64
	IsSparse     bool
}

// RunReader presents the stream of a non-resident attribute as a
// flat io.ReaderAt over the disk reader. Sparse runs read as zeros.
type RunReader struct {
	runs   []MappedRun
	size   int64
	reader io.ReaderAt
}

// NewRunReader maps runs onto the disk. Runs whose byte extent or
// disk position does not fit an int64 are a RunListError.
func NewRunReader(runs []Run, cluster_size int64,
	size int64, reader io.ReaderAt) (*RunReader, error) {
	if cluster_size <= 0 {
		return nil, fmt.Errorf("%w: invalid cluster size %d",
			RunListError, cluster_size)
	}

	result := &RunReader{size: size, reader: reader}

	file_offset := int64(0)
	lcn := int64(0)
	for idx, r := range runs {
		if r.Length < 0 || r.Length > (math.MaxInt64-file_offset)/cluster_size {
			return nil, fmt.Errorf("%w: run %d length %d clusters overflows the stream",
				RunListError, idx, r.Length)
		}

		mapped := MappedRun{
			FileOffset: file_offset,
			Length:     r.Length * cluster_size,
			IsSparse:   r.IsSparse,
		}
		if !r.IsSparse {
			lcn += r.RelativeOffset
			if lcn < 0 || lcn > math.MaxInt64/cluster_size {
				return nil, fmt.Errorf("%w: run %d starts at invalid cluster %d",
					RunListError, idx, lcn)
			}
			mapped.TargetOffset = lcn * cluster_size
		}
		result.runs = append(result.runs, mapped)
		file_offset += mapped.Length
	}

	// The stream can never be longer than its runs.
	if result.size > file_offset {
		result.size = file_offset
	}
	if result.size < 0 {
		result.size = 0
	}

	return result, nil
}

func (self *RunReader) Size() int64 {
	return self.size
}

// ReadAt follows io.ReaderAt: a read ending past the stream returns
// the available bytes and io.EOF.
func (self *RunReader) ReadAt(buf []byte, offset int64) (int, error) {
	if offset < 0 || offset >= self.size {
		return 0, io.EOF
	}

	to_read := int64(len(buf))
	if offset+to_read > self.size {
		to_read = self.size - offset
	}

	read := int64(0)
	for _, run := range self.runs {
		if read >= to_read {
			break
		}

		current := offset + read
		if current < run.FileOffset || current >= run.FileOffset+run.Length {
			continue
		}

		run_offset := current - run.FileOffset
		available := run.Length - run_offset
		if available > to_read-read {
			available = to_read - read
		}

		target := buf[read : read+available]
		if run.IsSparse {
			for i := range target {
				target[i] = 0
			}
		} else {
			n, err := self.reader.ReadAt(target, run.TargetOffset+run_offset)
			if int64(n) < available {
				if err == nil || err == io.EOF {
					err = ShortReadError
				}
				return int(read) + n, err
			}
		}
		read += available
	}

	if read < int64(len(buf)) {
		return int(read), io.EOF
	}
	return int(read), nil
}
