package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"www.velocidex.com/golang/go-reparse/parser"
)

var (
	runs_command = app.Command(
		"runs", "Display the $MFT run list.")

	runs_command_file_arg = runs_command.Arg(
		"file", "The image file to inspect",
	).Required().ExistingFile()

	runs_command_image_offset = runs_command.Flag(
		"image_offset", "An offset into the file.",
	).Default("0").Int64()

	runs_command_raw_runs = runs_command.Flag(
		"raw_runs", "Also show raw runs.",
	).Bool()
)

func doRuns() {
	ntfs_ctx := openContext(*runs_command_file_arg, *runs_command_image_offset)
	defer ntfs_ctx.Close()

	if *runs_command_raw_runs {
		fmt.Println(parser.DebugRawRuns(ntfs_ctx.MFTRuns))
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{
		"Run",
		"VCN",
		"LCN",
		"Length",
		"Sparse",
		"Disk Offset",
	})
	table.SetCaption(true, fmt.Sprintf(
		"$MFT covers %d clusters (%d records)",
		len(ntfs_ctx.Extents()), ntfs_ctx.MaxRecords()))

	for _, r := range parser.DebugRuns(ntfs_ctx.MFTRuns,
		ntfs_ctx.Geometry.ClusterSize) {
		if *verbose_flag {
			fmt.Println(r)
		}

		table.Append([]string{
			fmt.Sprintf("%d", r.Index),
			fmt.Sprintf("%d", r.VCN),
			fmt.Sprintf("%d", r.LCN),
			fmt.Sprintf("%d", r.Length),
			fmt.Sprintf("%v", r.IsSparse),
			fmt.Sprintf("%#x", r.LCN*r.ClusterSize),
		})
	}
	table.Render()
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case "runs":
			doRuns()
		default:
			return false
		}
		return true
	})
}
