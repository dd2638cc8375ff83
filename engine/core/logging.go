package core

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

// ParseLogLevel maps a configuration string to a LogLevel. Unknown values fall back to info.
func ParseLogLevel(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "fatal":
		return FatalLevel
	default:
		return InfoLevel
	}
}

func (l LogLevel) toCharm() log.Level {
	switch l {
	case DebugLevel:
		return log.DebugLevel
	case WarnLevel:
		return log.WarnLevel
	case ErrorLevel:
		return log.ErrorLevel
	case FatalLevel:
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

/** @brief Configuration for the engine logger. */
type LoggerConfig struct {
	/** @brief The minimum level that gets written. */
	Level LogLevel
	/** @brief Optional log file. When empty only stderr is used. */
	File string
	/** @brief Max size in megabytes of the log file before it gets rotated. */
	MaxSizeMB int
	/** @brief How many rotated files are kept around. */
	MaxBackups int
}

var once sync.Once

type logger struct {
	*log.Logger
}

var singleton *logger

func newLogger(w io.Writer, level LogLevel) *logger {
	l := log.NewWithOptions(w, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "Anima2D 🎨 ",
		// the helpers below add one frame
		CallerOffset: 1,
	})
	l.SetLevel(level.toCharm())
	return &logger{l}
}

func getLogger() *logger {
	if singleton == nil {
		once.Do(
			func() {
				singleton = newLogger(os.Stderr, DebugLevel)
			})
	}
	return singleton
}

// LogConfigure replaces the engine logger. When a file is configured the output
// is duplicated into a rotating log file.
func LogConfigure(config LoggerConfig) {
	var w io.Writer = os.Stderr
	if config.File != "" {
		w = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   config.File,
			MaxSize:    config.MaxSizeMB,
			MaxBackups: config.MaxBackups,
		})
	}
	// make sure the default singleton is not created afterwards
	once.Do(func() {})
	singleton = newLogger(w, config.Level)
}

func LogSetLevel(level LogLevel) {
	getLogger().SetLevel(level.toCharm())
}

func LogDebug(msg string, args ...interface{}) {
	getLogger().Debugf(msg, args...)
}

func LogInfo(msg string, args ...interface{}) {
	getLogger().Infof(msg, args...)
}

func LogWarn(msg string, args ...interface{}) {
	getLogger().Warnf(msg, args...)
}

func LogError(msg string, args ...interface{}) {
	getLogger().Errorf(msg, args...)
}

func LogFatal(msg string, args ...interface{}) {
	getLogger().Fatalf(msg, args...)
}
