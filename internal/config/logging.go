package config

import (
	"io"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the logrus logger the binaries share.
func NewLogger(level string, out io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logger, nil
}

// ComponentLogger adapts logger to the func(string) loggers taken by the
// internal packages, tagging each line with component. Lines go out at info.
func ComponentLogger(logger logrus.FieldLogger, component string) func(string) {
	return ComponentLoggerAt(logger, component, logrus.InfoLevel)
}

// ComponentLoggerAt is ComponentLogger for failures, which must still show
// when the configured level hides info lines.
func ComponentLoggerAt(logger logrus.FieldLogger, component string, level logrus.Level) func(string) {
	entry := logger.WithField("component", component)
	return func(message string) {
		switch level {
		case logrus.ErrorLevel:
			entry.Error(message)
		case logrus.WarnLevel:
			entry.Warn(message)
		case logrus.DebugLevel:
			entry.Debug(message)
		default:
			entry.Info(message)
		}
	}
}
