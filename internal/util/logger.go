package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const LOG_BUFFER_SIZE = 1000

var (
	ErrLogNotInitialized = errors.New("log object is not initialized yet")
	ErrUnknownLogLevel   = errors.New("unknown log level")
)

const (
	LOG_LEVEL_ERROR = iota + 1
	LOG_LEVEL_WARN
	LOG_LEVEL_INFO
	LOG_LEVEL_DEBUG
)

// LoggerOptions controls where ServiceLogger writes.
type LoggerOptions struct {
	Dir      string
	FileName string
	Level    int
	// Rewrite truncates an existing log file instead of appending.
	Rewrite bool
	// Console tees every entry to stderr as well.
	Console bool
}

// ServiceLogger queues entries on a buffered channel and writes them
// through zap from a single goroutine, so request handlers never block on disk.
// The zero value is usable: LogEvent returns ErrLogNotInitialized.
type ServiceLogger struct {
	mu                sync.RWMutex
	logBuffer         chan leveledEntry
	handle            *os.File
	wg                sync.WaitGroup
	loggerInitialized bool
	zapLogger         *zap.Logger
}

type leveledEntry struct {
	level  int
	logMsg string
}

func (m *ServiceLogger) Init(opts LoggerOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loggerInitialized {
		return nil
	}

	flags := os.O_RDWR | os.O_CREATE | os.O_APPEND
	if opts.Rewrite {
		flags = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	}

	handle, err := os.OpenFile(filepath.Join(opts.Dir, opts.FileName), flags, 0666)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	m.handle = handle
	m.zapLogger = newZapLogger(handle, zapLevel(opts.Level), opts.Console)
	m.logBuffer = make(chan leveledEntry, LOG_BUFFER_SIZE)

	m.wg.Add(1)
	go m.logWriter()

	m.loggerInitialized = true
	return nil
}

func newZapLogger(file *os.File, level zapcore.Level, console bool) *zap.Logger {
	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncodeLevel = zapcore.CapitalLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(config), zapcore.AddSync(file), level),
	}
	if console {
		consoleConfig := config
		consoleConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(consoleConfig), zapcore.Lock(os.Stderr), level))
	}
	return zap.New(zapcore.NewTee(cores...))
}

func zapLevel(level int) zapcore.Level {
	switch level {
	case LOG_LEVEL_ERROR:
		return zapcore.ErrorLevel
	case LOG_LEVEL_WARN:
		return zapcore.WarnLevel
	case LOG_LEVEL_DEBUG:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLogLevel maps error, warn, info or debug to a LOG_LEVEL_* constant.
func ParseLogLevel(name string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "error":
		return LOG_LEVEL_ERROR, nil
	case "warn", "warning":
		return LOG_LEVEL_WARN, nil
	case "info":
		return LOG_LEVEL_INFO, nil
	case "debug":
		return LOG_LEVEL_DEBUG, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLogLevel, name)
}

func (m *ServiceLogger) logWriter() {
	defer m.wg.Done()
	for entry := range m.logBuffer {
		switch entry.level {
		case LOG_LEVEL_ERROR:
			m.zapLogger.Error(entry.logMsg)
		case LOG_LEVEL_WARN:
			m.zapLogger.Warn(entry.logMsg)
		case LOG_LEVEL_DEBUG:
			m.zapLogger.Debug(entry.logMsg)
		default:
			m.zapLogger.Info(entry.logMsg)
		}
	}
	_ = m.zapLogger.Sync()
}

// LogEvent accepts either a single message (logged at INFO) or a
// LOG_LEVEL_* constant followed by the message parts.
func (m *ServiceLogger) LogEvent(v ...interface{}) error {
	if len(v) == 0 {
		return nil
	}

	level := LOG_LEVEL_INFO
	parts := v
	if l, ok := v[0].(int); ok && len(v) > 1 && l >= LOG_LEVEL_ERROR && l <= LOG_LEVEL_DEBUG {
		level = l
		parts = v[1:]
	}
	msg := strings.TrimSuffix(fmt.Sprintln(parts...), "\n")

	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.loggerInitialized {
		return ErrLogNotInitialized
	}
	m.logBuffer <- leveledEntry{level, msg}
	return nil
}

// DeInit drains queued entries and closes the log file.
func (m *ServiceLogger) DeInit() {
	m.mu.Lock()
	if !m.loggerInitialized {
		m.mu.Unlock()
		return
	}
	m.loggerInitialized = false
	close(m.logBuffer)
	m.mu.Unlock()

	m.wg.Wait()
	m.handle.Close()
}

func CheckAndCreateLogFolder(folderNameWithPath string) error {
	_, err := os.Stat(folderNameWithPath)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(folderNameWithPath, 0755); err != nil {
			return fmt.Errorf("creating log folder: %w", err)
		}
		return nil
	}
	return err
}
