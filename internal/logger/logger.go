package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const fileName = "habitlog.log"

var (
	// Logger is the global logger instance. It stays nil until Init, and
	// the package helpers drop messages while it is nil.
	Logger *log.Logger

	discard = log.New(io.Discard)
)

// Config holds logger configuration
type Config struct {
	Debug bool
	// LogDir is the directory for habitlog.log
	LogDir string
	// Stderr mirrors log output to stderr; the web server enables it
	Stderr bool
	// JSON writes JSON lines instead of logfmt text
	JSON bool
}

// Init replaces the global logger with one writing to a rotating file in
// cfg.LogDir.
func Init(cfg Config) error {
	if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
		return err
	}

	var w io.Writer = &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, fileName),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	if cfg.Debug || cfg.Stderr {
		w = io.MultiWriter(os.Stderr, w)
	}

	Logger = New(w, cfg)
	return nil
}

// New builds a logger over w without touching the global one
func New(w io.Writer, cfg Config) *log.Logger {
	level := log.InfoLevel
	if cfg.Debug {
		level = log.DebugLevel
	}
	formatter := log.TextFormatter
	if cfg.JSON {
		formatter = log.JSONFormatter
	}
	return log.NewWithOptions(w, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "habitlog",
		Formatter:       formatter,
	})
}

// With returns a child logger carrying keyvals on every line
func With(keyvals ...interface{}) *log.Logger {
	if Logger == nil {
		return discard
	}
	return Logger.With(keyvals...)
}

func Debug(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}

// Fatal logs msg and exits with status 1
func Fatal(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
	os.Exit(1)
}
