package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
	"www.velocidex.com/golang/go-reparse/parser"
)

var (
	stat_command = app.Command(
		"stat", "Inspect the MFT record.")

	stat_command_file_arg = stat_command.Arg(
		"file", "The image file to inspect",
	).Required().ExistingFile()

	stat_command_arg = stat_command.Arg(
		"mft_id", "An MFT entry id e.g. 43 or 43-128-0.",
	).Default("5").String()

	stat_command_image_offset = stat_command.Flag(
		"image_offset", "An offset into the file.",
	).Default("0").Int64()

	stat_command_format = stat_command.Flag(
		"format", "Output format",
	).Default(configString("format")).Enum(output_formats...)
)

func doSTAT() {
	mft_id, err := parseMFTId(*stat_command_arg)
	kingpin.FatalIfError(err, "MFT id")

	ntfs_ctx := openContext(*stat_command_file_arg, *stat_command_image_offset)
	defer ntfs_ctx.Close()

	mft_entry, err := ntfs_ctx.GetMFT(mft_id)
	kingpin.FatalIfError(err, "Can not open MFT entry")

	if *verbose_flag {
		fmt.Println(mft_entry.DebugString())
	}

	stat, err := parser.ModelMFTEntry(mft_entry)
	kingpin.FatalIfError(err, "Can not model MFT entry")

	if *stat_command_format == "json" {
		serialized, err := json.MarshalIndent(stat, " ", " ")
		kingpin.FatalIfError(err, "Marshal")

		fmt.Println(string(serialized))
		return
	}

	for _, filename := range stat.Filenames {
		fmt.Printf("%v (%v) parent %v-%v\n", filename.Name, filename.Type,
			filename.ParentEntry, filename.ParentSeqNum)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{
		"Inode",
		"Type",
		"Name",
		"Resident",
		"Length",
		"Size",
	})
	table.SetCaption(true, fmt.Sprintf(
		"MFT %d: record %d seq %d links %d allocated %v dir %v reparse %v",
		stat.MFTID, stat.RecordNumber, stat.SequenceValue, stat.LinkCount,
		stat.Allocated, stat.IsDir, stat.HasReparsePoint))

	for _, attr := range stat.Attributes {
		table.Append([]string{
			attr.Inode,
			attr.Type,
			attr.Name,
			fmt.Sprintf("%v", attr.Resident),
			fmt.Sprintf("%v", attr.Length),
			fmt.Sprintf("%v", attr.Size),
		})
	}
	table.Render()
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case "stat":
			doSTAT()
		default:
			return false
		}
		return true
	})
}
