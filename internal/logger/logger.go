package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a leveled printf-style logger
type Logger struct {
	base  *logrus.Logger
	level logrus.Level
}

// Printf logs at the logger's level
func (l *Logger) Printf(format string, args ...interface{}) {
	l.base.Logf(l.level, format, args...)
}

var (
	Info    *Logger
	Warn    *Logger
	Debug   *Logger
	Verbose *Logger
	Error   *Logger
	Always  *Logger // Always logs to file regardless of log level

	// Current log level for filtering
	currentLogLevel string
)

// Config controls the log file and its rotation
type Config struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	// Quiet keeps errors out of stderr, for hosts that own the terminal
	Quiet bool
}

// Loggers discard everything until InitFromConfig is called
func init() {
	setWriters("info", io.Discard, io.Discard)
}

// InitFromConfig opens a rotating log file and points every logger at it.
func InitFromConfig(cfg Config) error {
	if cfg.File == "" {
		return fmt.Errorf("log file path is empty")
	}
	if dir := filepath.Dir(cfg.File); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
	}
	file := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	setWriters(cfg.Level, file, errorOutput(cfg.Quiet, file))
	return nil
}

// errorOutput copies errors to stderr unless quiet
func errorOutput(quiet bool, file io.Writer) io.Writer {
	if quiet {
		return file
	}
	return io.MultiWriter(os.Stderr, file)
}

func newBase(out io.Writer, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   true,
	})
	return l
}

func setWriters(logLevel string, out, errOut io.Writer) {
	level := levelFor(strings.ToLower(logLevel))
	currentLogLevel = strings.ToLower(logLevel)
	if level == logrus.InfoLevel {
		currentLogLevel = "info"
	}

	leveled := newBase(out, level)
	Info = &Logger{base: leveled, level: logrus.InfoLevel}
	Warn = &Logger{base: leveled, level: logrus.WarnLevel}
	Debug = &Logger{base: leveled, level: logrus.DebugLevel}
	Verbose = &Logger{base: leveled, level: logrus.TraceLevel}
	Error = &Logger{base: newBase(errOut, logrus.ErrorLevel), level: logrus.ErrorLevel}
	Always = &Logger{base: newBase(out, logrus.TraceLevel), level: logrus.InfoLevel}
}

// levelFor maps the configured level name; unknown names mean info.
func levelFor(name string) logrus.Level {
	switch name {
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	case "verbose":
		return logrus.TraceLevel
	}
	return logrus.InfoLevel
}

// Level returns the active level name, info for unknown names
func Level() string {
	return currentLogLevel
}
