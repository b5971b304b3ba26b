package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

func NewLogger(format LogFormat) *logrus.Logger {
	return NewLoggerWithLevel(format, "info")
}

// NewLoggerWithLevel builds a logger writing to stdout. Unknown levels fall
// back to info.
func NewLoggerWithLevel(format LogFormat, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	switch LogFormat(strings.ToLower(string(format))) {
	case LogFormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}
