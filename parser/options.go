package parser

import "go.uber.org/zap"

type Options struct {
	// Offset of the NTFS partition inside the image. Used by
	// OpenNTFSContext.
	ImageOffset int64

	// If set, all disk reads are cached in this directory and
	// replayed from it on the next run.
	RecordDirectory string

	// Receives debug logs for geometry, bootstrap and record reads.
	// Nil discards them.
	Logger *zap.Logger
}

func GetDefaultOptions() Options {
	return Options{
		Logger: zap.NewNop(),
	}
}
