package main

import (
	"os"

	kingpin "gopkg.in/alecthomas/kingpin.v2"
	reparse "www.velocidex.com/golang/go-reparse"
	"www.velocidex.com/golang/go-reparse/parser"
)

var (
	reparse_command = app.Command(
		"reparse", "Resolve the reparse point of an MFT entry.")

	reparse_command_file_arg = reparse_command.Arg(
		"file", "The image file to inspect",
	).Required().ExistingFile()

	reparse_command_arg = reparse_command.Arg(
		"mft_id", "An MFT entry id e.g. 43 or 43-128-0.",
	).Required().String()

	reparse_command_image_offset = reparse_command.Flag(
		"image_offset", "An offset into the file.",
	).Default("0").Int64()

	reparse_command_format = reparse_command.Flag(
		"format", "Output format",
	).Default(configString("format")).Enum(output_formats...)

	reparse_command_label_width = reparse_command.Flag(
		"label_width", "Column width of labels in text output",
	).Default(configInt("label_width")).Int()
)

func doReparse() {
	mft_id, err := parseMFTId(*reparse_command_arg)
	kingpin.FatalIfError(err, "MFT id")

	ntfs_ctx := openContext(*reparse_command_file_arg,
		*reparse_command_image_offset)
	defer ntfs_ctx.Close()

	bundle, err := ntfs_ctx.GetReparseEntry(mft_id)
	kingpin.FatalIfError(err, "Can not read reparse point")

	if *verbose_flag {
		parser.Debug(bundle)
	}

	info := reparse.NewInterpreter(bundle, nil).ResolveAllInfo()
	err = render(os.Stdout, *reparse_command_format,
		"Gathered reparse info:", info, *reparse_command_label_width)
	kingpin.FatalIfError(err, "Render")
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case "reparse":
			doReparse()
		default:
			return false
		}
		return true
	})
}
