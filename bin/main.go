package main

import (
	"os"

	kingpin "gopkg.in/alecthomas/kingpin.v2"
)

type CommandHandler func(command string) bool

var (
	app = kingpin.New("goreparse",
		"A tool for resolving reparse points on ntfs volumes.")

	verbose_flag = app.Flag(
		"verbose", "Show verbose information and debug logs").
		Default(configBool("verbose")).Bool()

	record_directory = app.Flag(
		"record", "Path to read/write recorded data").
		Default("").String()

	command_handlers []CommandHandler
)

func main() {
	app.HelpFlag.Short('h')
	app.UsageTemplate(kingpin.CompactUsageTemplate)
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	initLogging()
	defer logger.Sync()

	for _, command_handler := range command_handlers {
		if command_handler(command) {
			break
		}
	}
}
