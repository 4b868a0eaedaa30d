package cmd

import (
	"github.com/sirupsen/logrus"
)

// newLogger returns the logger for a command run. The verbose flag forces
// DebugLevel; otherwise commands share the LOG_LEVEL-configured Logger.
func newLogger(verbose bool) *logrus.Logger {
	if verbose {
		log := logrus.New()
		log.SetLevel(logrus.DebugLevel)
		return log
	}
	return Logger
}
