package main

import (
	"go.uber.org/zap"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
	"www.velocidex.com/golang/go-reparse/parser"
)

var logger = zap.NewNop()

func initLogging() {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.TimeKey = ""

	level := zap.InfoLevel
	if *verbose_flag || parser.IsDebugEnabled() {
		level = zap.DebugLevel
	}
	config.Level = zap.NewAtomicLevelAt(level)

	built, err := config.Build()
	kingpin.FatalIfError(err, "Logger")

	logger = built
}
