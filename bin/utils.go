package main

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
	"www.velocidex.com/golang/go-reparse/parser"
)

// Accepts a plain MFT id or MFT notation (e.g. 43-128-0), of which
// only the entry number is used.
func parseMFTId(mft_id string) (int64, error) {
	parts := strings.SplitN(mft_id, "-", 2)
	id, err := strconv.ParseInt(parts[0], 0, 64)
	if err != nil {
		return 0, fmt.Errorf("Invalid MFT id %q: %w", mft_id, err)
	}
	if id < 0 {
		return 0, fmt.Errorf("Invalid MFT id %q: negative", mft_id)
	}
	return id, nil
}

func getOptions(image_offset int64) parser.Options {
	options := parser.GetDefaultOptions()
	options.ImageOffset = image_offset
	options.RecordDirectory = *record_directory
	options.Logger = logger
	return options
}

func openContext(path string, image_offset int64) *parser.NTFSContext {
	if *record_directory != "" {
		logger.Info("Recording reads", zap.String("directory", *record_directory))
	}

	ntfs_ctx, err := parser.OpenNTFSContext(path, getOptions(image_offset))
	kingpin.FatalIfError(err, "Can not open filesystem")

	return ntfs_ctx
}
