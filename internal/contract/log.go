package contract

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// LogLevelEnv overrides the default log level.
const LogLevelEnv = "GITSPARK_LOG_LEVEL"

var (
	logger     *logrus.Logger
	loggerOnce sync.Once
)

// Logger returns the process-wide logger writing text to stderr.
func Logger() *logrus.Logger {
	loggerOnce.Do(func() {
		logger = logrus.New()
		logger.SetOutput(os.Stderr)
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
		logger.SetLevel(logrus.InfoLevel)
		if lvl, err := logrus.ParseLevel(strings.TrimSpace(os.Getenv(LogLevelEnv))); err == nil {
			logger.SetLevel(lvl)
		}
	})
	return logger
}

// SetVerbose switches the logger to debug level.
func SetVerbose(verbose bool) {
	if verbose {
		Logger().SetLevel(logrus.DebugLevel)
	}
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	Logger().WithError(err).Fatal(msg)
}

// LogWarn logs a warning with an optional error.
func LogWarn(msg string, err error) {
	entry := logrus.NewEntry(Logger())
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Warn(msg)
}

// LogInfo logs an informational message with structured fields.
func LogInfo(msg string, fields logrus.Fields) {
	Logger().WithFields(fields).Info(msg)
}

// LogDebug logs a debug message with structured fields.
func LogDebug(msg string, fields logrus.Fields) {
	Logger().WithFields(fields).Debug(msg)
}
