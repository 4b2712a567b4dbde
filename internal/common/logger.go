package common

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// LoggerWrapper provides a verbosity-gated Info, an Error that always fires
// and can duplicate to stderr, and an optional on-disk log file, backed by
// logrus (see SPEC_FULL.md §2).
type LoggerWrapper struct {
	impl              *logrus.Logger
	fileName          string
	verbosity         int
	duplicateToStderr bool
}

func MakeLogger(logFile string, verbosity int64, noLogsIfEmpty bool, duplicateToStderr bool) (*LoggerWrapper, error) {
	if verbosity < -1 || verbosity > 2 {
		return nil, fmt.Errorf("incorrect verbosity passed: %d", verbosity)
	}

	impl := logrus.New()
	impl.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   true,
	})

	switch {
	case logFile != "" && logFile != "stderr":
		out, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
		if err != nil {
			return nil, err
		}
		impl.SetOutput(out)
	case !noLogsIfEmpty:
		impl.SetOutput(os.Stderr)
	default:
		impl.SetOutput(nil)
		impl.SetLevel(logrus.PanicLevel)
	}

	return &LoggerWrapper{
		impl:              impl,
		fileName:          logFile,
		verbosity:         int(verbosity),
		duplicateToStderr: duplicateToStderr,
	}, nil
}

func (logger *LoggerWrapper) Info(verbosity int, v ...interface{}) {
	if logger.verbosity >= verbosity {
		logger.impl.Infoln(v...)
	}
}

// WithField attaches structured context (e.g. "file", "module", "sessionID")
// before logging — the logrus idiom the teacher's plain fmt.Sprintln had no room for.
func (logger *LoggerWrapper) WithField(key string, value interface{}) *logrus.Entry {
	return logger.impl.WithField(key, value)
}

func (logger *LoggerWrapper) Error(v ...interface{}) {
	logger.impl.Errorln(v...)
	if logger.duplicateToStderr && logger.fileName != "" && logger.fileName != "stderr" {
		fmt.Fprintln(os.Stderr, v...)
	}
}

// Warn is used for recoverable/permissive conditions: spec.md §4.4's unrecognized
// mapper verbs and §7's CorruptInfoFile both warn-and-continue rather than abort.
func (logger *LoggerWrapper) Warn(v ...interface{}) {
	logger.impl.Warnln(v...)
}

func (logger *LoggerWrapper) TmpDebug(v ...interface{}) {
	logger.impl.Debugln(v...)
}

func (logger *LoggerWrapper) RotateLogFile() error {
	if logger.fileName == "" || logger.fileName == "stderr" {
		return nil
	}
	out, err := os.OpenFile(logger.fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		return err
	}

	logger.impl.SetOutput(out)
	return nil
}

func (logger *LoggerWrapper) GetFileName() string {
	return logger.fileName
}

func (logger *LoggerWrapper) GetFileSize() int64 {
	if logger.fileName == "" {
		return 0
	}
	stat, err := os.Stat(logger.fileName)
	if err != nil {
		return 0
	}
	return stat.Size()
}
