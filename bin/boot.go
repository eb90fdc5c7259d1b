package main

import (
	"fmt"
	"os"

	"github.com/Velocidex/ordereddict"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
	"www.velocidex.com/golang/go-reparse/parser"
)

var (
	boot_command = app.Command(
		"boot", "Inspect the boot record.")

	boot_command_file_arg = boot_command.Arg(
		"file", "The image file to inspect",
	).Required().ExistingFile()

	boot_command_image_offset = boot_command.Flag(
		"image_offset", "An offset into the file.",
	).Default("0").Int64()

	boot_command_format = boot_command.Flag(
		"format", "Output format",
	).Default(configString("format")).Enum(output_formats...)
)

func geometryDict(ntfs_ctx *parser.NTFSContext) *ordereddict.Dict {
	geometry := ntfs_ctx.Geometry
	return ordereddict.NewDict().
		Set("OEM Name", ntfs_ctx.Boot.OEMName()).
		Set("Serial", fmt.Sprintf("%#x", ntfs_ctx.Boot.Serial())).
		Set("Sector Size", geometry.SectorSize).
		Set("Sectors Per Cluster", geometry.SectorsPerCluster).
		Set("Cluster Size", geometry.ClusterSize).
		Set("Record Size", geometry.RecordSize).
		Set("MFT Cluster", geometry.MFTCluster).
		Set("MFT Offset", fmt.Sprintf("%#x", geometry.MFTOffset)).
		Set("MFT Records", ntfs_ctx.MaxRecords())
}

func doBoot() {
	ntfs_ctx := openContext(*boot_command_file_arg, *boot_command_image_offset)
	defer ntfs_ctx.Close()

	if *verbose_flag {
		fmt.Println(ntfs_ctx.Boot.DebugString())
		parser.Debug(ntfs_ctx.Geometry)
	}

	err := render(os.Stdout, *boot_command_format, "Volume geometry:",
		geometryDict(ntfs_ctx), settings.GetInt("label_width"))
	kingpin.FatalIfError(err, "Render")
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case "boot":
			doBoot()
		default:
			return false
		}
		return true
	})
}
