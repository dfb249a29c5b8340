// Package logger wires zap as the process logger and exposes it both as a
// *zap.Logger for infrastructure clients and through log/slog for services.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

var (
	mu           sync.RWMutex
	globalLogger *slog.Logger
	zapLogger    *zap.Logger
)

// ParseLevel maps a config level name onto a zap level. Unknown names yield info.
func ParseLevel(levelStr string) (zapcore.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return zapcore.DebugLevel, true
	case "INFO", "":
		return zapcore.InfoLevel, true
	case "WARN", "WARNING":
		return zapcore.WarnLevel, true
	case "ERROR":
		return zapcore.ErrorLevel, true
	default:
		return zapcore.InfoLevel, false
	}
}

// Init builds a JSON zap logger at the given level and installs it as the
// slog default.
func Init(levelStr string) *zap.Logger {
	level, ok := ParseLevel(levelStr)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(os.Stdout),
		zap.NewAtomicLevelAt(level),
	)
	Set(zap.New(core))

	if !ok {
		Warn("Invalid log level string, defaulting to INFO", "input", levelStr)
	}
	return Zap()
}

// Set installs l as the process logger.
func Set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	zapLogger = l
	globalLogger = slog.New(zapslog.NewHandler(l.Core()))
	slog.SetDefault(globalLogger)
}

// Zap returns the process zap logger.
func Zap() *zap.Logger {
	ensureInitialized()
	mu.RLock()
	defer mu.RUnlock()
	return zapLogger
}

// Sync flushes buffered entries.
func Sync() {
	_ = Zap().Sync()
}

func ensureInitialized() {
	mu.RLock()
	ready := globalLogger != nil
	mu.RUnlock()
	if !ready {
		Init("INFO")
	}
}

func current() *slog.Logger {
	ensureInitialized()
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

func log(level slog.Level, msg string, args ...any) {
	l := current()
	if l.Enabled(context.Background(), level) {
		l.Log(context.Background(), level, msg, args...)
	}
}

// Debug logs a message at DebugLevel.
func Debug(msg string, args ...any) { log(slog.LevelDebug, msg, args...) }

// Info logs a message at InfoLevel.
func Info(msg string, args ...any) { log(slog.LevelInfo, msg, args...) }

// Warn logs a message at WarnLevel.
func Warn(msg string, args ...any) { log(slog.LevelWarn, msg, args...) }

// Error logs a message at ErrorLevel.
func Error(msg string, args ...any) { log(slog.LevelError, msg, args...) }

// Fatal logs a message at ErrorLevel then exits.
func Fatal(msg string, args ...any) {
	current().Error(msg, args...)
	Sync()
	os.Exit(1)
}
