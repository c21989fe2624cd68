package main

import (
	"io"

	"github.com/decred/slog"

	"github.com/mahdiidarabi/inputsign/internal/command"
	"github.com/mahdiidarabi/inputsign/pkg/inputsign"
)

// subsystemLoggers maps each subsystem tag to its logger.
var subsystemLoggers = map[string]slog.Logger{}

// initLogging creates the subsystem loggers on a backend writing to w and
// sets all of them to level.
func initLogging(w io.Writer, level string) {
	backend := slog.NewBackend(w)

	subsystemLoggers = map[string]slog.Logger{
		"ISGN": backend.Logger("ISGN"),
		"SIGN": backend.Logger("SIGN"),
		"CMND": backend.Logger("CMND"),
	}
	inputsign.UseLogger(subsystemLoggers["SIGN"])
	command.UseLogger(subsystemLoggers["CMND"])

	lvl, _ := slog.LevelFromString(level)
	for _, logger := range subsystemLoggers {
		logger.SetLevel(lvl)
	}
	log = subsystemLoggers["ISGN"]
}

// log is the logger of the main package.
var log = slog.Disabled
