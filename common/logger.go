// Package common provides shared constants, types, and utilities
// used across the Leaf VPN shell.
package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSilent
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelSilent:
		return "SILENT"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) logrus() log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	case LevelSilent:
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// ParseLevel maps a configuration or flag value to a LogLevel.
// Unknown values fall back to LevelInfo.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "verbose":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "quiet", "silent":
		return LevelSilent
	default:
		return LevelInfo
	}
}

// AppLogger is the application logger. It wraps a logrus logger and
// optionally mirrors output to a size-rotated file.
type AppLogger struct {
	mu          sync.Mutex
	level       LogLevel
	logger      *log.Logger
	rotator     *lumberjack.Logger
	filePath    string
	maxFileSize int64 // Maximum file size in bytes before rotation (default: 5MB)
	maxBackups  int   // Maximum number of backup files to keep (default: 5)
}

// LogConfig holds configuration options for the logger.
type LogConfig struct {
	Level       LogLevel
	EnableFile  bool
	MaxFileSize int64 // in bytes, default 5MB
	MaxBackups  int   // number of rotated files to keep, default 5
}

var _ Logger = (*AppLogger)(nil)

var (
	defaultLogger *AppLogger
	loggerOnce    sync.Once
)

const (
	defaultMaxFileSize = 5 * 1024 * 1024 // 5MB
	defaultMaxBackups  = 5
	timestampFormat    = "2006/01/02 15:04:05"
)

// isSymlink checks if a path is a symbolic link.
// Returns false if path doesn't exist (safe to create).
func isSymlink(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSymlink != 0
}

func newAppLogger(w io.Writer, level LogLevel) *AppLogger {
	l := log.New()
	l.SetOutput(w)
	l.SetLevel(level.logrus())
	l.SetFormatter(&log.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: timestampFormat,
	})
	return &AppLogger{
		level:       level,
		logger:      l,
		maxFileSize: defaultMaxFileSize,
		maxBackups:  defaultMaxBackups,
	}
}

// GetLogger returns the singleton logger instance.
func GetLogger() *AppLogger {
	loggerOnce.Do(func() {
		defaultLogger = newAppLogger(os.Stdout, LevelInfo)
	})
	return defaultLogger
}

// InitLogger initializes the logger with custom configuration.
// Should be called early in application startup.
func InitLogger(config LogConfig) error {
	logger := GetLogger()
	logger.SetLevel(config.Level)

	logger.mu.Lock()
	if config.MaxFileSize > 0 {
		logger.maxFileSize = config.MaxFileSize
	}
	if config.MaxBackups > 0 {
		logger.maxBackups = config.MaxBackups
	}
	logger.mu.Unlock()

	if config.EnableFile {
		return logger.EnableFileLogging()
	}
	return nil
}

// SetLevel sets the minimum log level.
func (l *AppLogger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.logger.SetLevel(level.logrus())
}

// Level returns the current minimum log level.
func (l *AppLogger) Level() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetOutput sets the log output destination.
func (l *AppLogger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.SetOutput(w)
}

// DetachStdout stops writing to stdout, keeping the log file if one is
// open. Used while a full-screen terminal UI owns the terminal.
func (l *AppLogger) DetachStdout() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.rotator != nil {
		l.logger.SetOutput(l.rotator)
		return
	}
	l.logger.SetOutput(io.Discard)
}

// EnableFileLogging enables logging to a file in addition to stdout.
// The file is rotated by lumberjack once it exceeds maxFileSize.
func (l *AppLogger) EnableFileLogging() error {
	logDir := GetLogDir()
	if logDir == "" {
		return fmt.Errorf("cannot resolve log directory")
	}
	return l.enableFileLoggingAt(logDir)
}

func (l *AppLogger) enableFileLoggingAt(logDir string) error {
	if isSymlink(logDir) {
		return fmt.Errorf("security error: log directory is a symlink")
	}
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return err
	}

	logPath := filepath.Join(logDir, LogFileName)
	if isSymlink(logPath) {
		return fmt.Errorf("security error: log file is a symlink")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.rotator != nil {
		l.rotator.Close()
	}

	maxSizeMB := int(l.maxFileSize / (1024 * 1024))
	if maxSizeMB < 1 {
		maxSizeMB = 1
	}
	l.rotator = &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    maxSizeMB,
		MaxBackups: l.maxBackups,
		Compress:   true,
	}
	l.filePath = logPath
	l.logger.SetOutput(io.MultiWriter(os.Stdout, l.rotator))
	return nil
}

// FilePath returns the active log file path, or "" when file logging is off.
func (l *AppLogger) FilePath() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filePath
}

// GetLogDir returns the log directory path.
func GetLogDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config", ConfigDirName, "logs")
}

// log writes one entry. skip is the number of frames between the logging
// call site and log itself.
func (l *AppLogger) log(skip int, level LogLevel, msg string, args ...interface{}) {
	if level < l.Level() {
		return
	}

	caller := "???"
	if _, file, line, ok := runtime.Caller(skip + 1); ok {
		caller = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}

	formattedMsg := msg
	if len(args) > 0 {
		formattedMsg = fmt.Sprintf(msg, args...)
	}

	entry := l.logger.WithField("caller", caller)
	switch level {
	case LevelDebug:
		entry.Debug(formattedMsg)
	case LevelInfo:
		entry.Info(formattedMsg)
	case LevelWarn:
		entry.Warn(formattedMsg)
	default:
		entry.Error(formattedMsg)
	}
}

// Debug logs a debug message.
func (l *AppLogger) Debug(msg string, args ...interface{}) {
	l.log(1, LevelDebug, msg, args...)
}

// Info logs an informational message.
func (l *AppLogger) Info(msg string, args ...interface{}) {
	l.log(1, LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *AppLogger) Warn(msg string, args ...interface{}) {
	l.log(1, LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *AppLogger) Error(msg string, args ...interface{}) {
	l.log(1, LevelError, msg, args...)
}

// Shorthand functions for default logger.

// LogDebug logs a debug message to the default logger.
func LogDebug(msg string, args ...interface{}) {
	GetLogger().log(2, LevelDebug, msg, args...)
}

// LogInfo logs an info message to the default logger.
func LogInfo(msg string, args ...interface{}) {
	GetLogger().log(2, LevelInfo, msg, args...)
}

// LogWarn logs a warning message to the default logger.
func LogWarn(msg string, args ...interface{}) {
	GetLogger().log(2, LevelWarn, msg, args...)
}

// LogError logs an error message to the default logger.
func LogError(msg string, args ...interface{}) {
	GetLogger().log(2, LevelError, msg, args...)
}

// Close closes the log file. Should be called on application shutdown.
func (l *AppLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.rotator == nil {
		return nil
	}
	err := l.rotator.Close()
	l.rotator = nil
	l.filePath = ""
	l.logger.SetOutput(os.Stdout)
	return err
}

// CloseLogger closes the default logger.
func CloseLogger() error {
	return GetLogger().Close()
}
