package utils

import (
	"os"

	"github.com/labstack/gommon/log"
)

const logHeader = `{"time":"${time_rfc3339}","level":"${level}","prefix":"${prefix}"}`

// NewLogger builds the logger handed to each component.
func NewLogger(prefix string, debug bool) *log.Logger {
	logger := log.New(prefix)
	logger.SetHeader(logHeader)
	logger.SetOutput(os.Stdout)
	if debug {
		logger.SetLevel(log.DEBUG)
	} else {
		logger.SetLevel(log.INFO)
	}
	return logger
}

// NewSilentLogger discards everything; used where no output is wanted (tests, CLI quiet mode).
func NewSilentLogger() *log.Logger {
	logger := log.New("-")
	logger.SetLevel(log.OFF)
	return logger
}
