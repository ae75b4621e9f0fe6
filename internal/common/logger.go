package common

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/hk1947/apicontract/internal/util"
)

// LogLevel represents logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LogLevelError:
		return "error"
	case LogLevelWarn:
		return "warn"
	case LogLevelInfo:
		return "info"
	case LogLevelDebug:
		return "debug"
	default:
		return "info"
	}
}

// ToSlogLevel converts LogLevel to slog.Level
func (l LogLevel) ToSlogLevel() slog.Level {
	switch l {
	case LogLevelError:
		return slog.LevelError
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelDebug:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// ParseLogLevel maps a config string onto a LogLevel. Empty means info.
func ParseLogLevel(s string) (LogLevel, error) {
	switch util.TrimAndLower(s) {
	case "error":
		return LogLevelError, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "info", "":
		return LogLevelInfo, nil
	case "debug":
		return LogLevelDebug, nil
	default:
		return LogLevelInfo, fmt.Errorf("invalid logging level: %s (valid: error, warn, info, debug)", s)
	}
}

// Logger provides a centralized logging interface for apicontract
type Logger struct {
	*slog.Logger
	level LogLevel
}

// NewLogger creates a new structured logger with the specified level
func NewLogger(level LogLevel) *Logger {
	return newLoggerTo(os.Stdout, level, "text")
}

// NewJSONLogger creates a structured logger with JSON output
func NewJSONLogger(level LogLevel) *Logger {
	return newLoggerTo(os.Stdout, level, "json")
}

// NewColorLogger creates a logger with colorized, masked text output
func NewColorLogger(level LogLevel) *Logger {
	return newLoggerTo(os.Stdout, level, "color")
}

func newLoggerTo(w io.Writer, level LogLevel, format string) *Logger {
	opts := &slog.HandlerOptions{Level: level.ToSlogLevel()}

	var handler slog.Handler
	switch format {
	case "json":
		handler = NewMaskingHandler(slog.NewJSONHandler(w, opts), GetGlobalMasker())
	case "color":
		ch := NewColorHandler(w, opts)
		ch.SetMasker(GetGlobalMasker())
		handler = ch
	default:
		handler = NewMaskingHandler(slog.NewTextHandler(w, opts), GetGlobalMasker())
	}

	return &Logger{
		Logger: slog.New(handler),
		level:  level,
	}
}

// Level returns the current log level
func (l *Logger) Level() LogLevel {
	return l.level
}

// WithComponent returns a logger with component context
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", component),
		level:  l.level,
	}
}

// WithEnvironment returns a logger tagged with the active config environment
func (l *Logger) WithEnvironment(env string) *Logger {
	return &Logger{
		Logger: l.Logger.With("env", env),
		level:  l.level,
	}
}

// WithSchema returns a logger with schema document context
func (l *Logger) WithSchema(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("schema", name),
		level:  l.level,
	}
}

// WithRequest returns a logger with HTTP request context
func (l *Logger) WithRequest(method, url string) *Logger {
	return &Logger{
		Logger: l.Logger.With("method", method, "url", url),
		level:  l.level,
	}
}

var (
	loggerMu      sync.RWMutex
	defaultLogger = NewLogger(LogLevelInfo)
)

// SetDefaultLogger sets the global default logger
func SetDefaultLogger(logger *Logger) {
	if logger == nil {
		return
	}
	loggerMu.Lock()
	defaultLogger = logger
	loggerMu.Unlock()
}

// GetLogger returns the default logger
func GetLogger() *Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return defaultLogger
}

// Configure builds and installs the global logger from config values.
// format is one of text, json or color; color forces colored text output.
func Configure(level, format string, color *bool, mask bool) error {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return err
	}
	f := util.TrimAndLower(format)
	useColor := f == "color" || f == "colour"
	if color != nil {
		useColor = *color
	}

	EnableMasking(mask)

	var logger *Logger
	switch f {
	case "json":
		logger = NewJSONLogger(lvl)
	case "color", "colour", "text", "":
		if useColor {
			logger = NewColorLogger(lvl)
		} else {
			logger = NewLogger(lvl)
		}
	default:
		return fmt.Errorf("invalid logging format: %s (valid: text, json, color)", format)
	}
	SetDefaultLogger(logger)

	logger.Debug("logging configured",
		"level", lvl.String(),
		"format", util.TrimWithDefault(f, "text"),
		"color", useColor,
		"mask_sensitive", mask)
	return nil
}

// LogError logs an error with context
func LogError(msg string, err error, attrs ...any) {
	args := append([]any{"error", err}, attrs...)
	GetLogger().Error(msg, args...)
}

// LogInfo logs informational message
func LogInfo(msg string, attrs ...any) {
	GetLogger().Info(msg, attrs...)
}

// LogDebug logs debug message
func LogDebug(msg string, attrs ...any) {
	GetLogger().Debug(msg, attrs...)
}

// LogWarn logs warning message
func LogWarn(msg string, attrs ...any) {
	GetLogger().Warn(msg, attrs...)
}
