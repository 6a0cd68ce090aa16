/* pkg/logger/fallback.go */

package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewConsoleLogger builds a stdout-only logger.
func NewConsoleLogger() *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(DefaultConsoleEncoderConfig()),
		zapcore.Lock(os.Stdout),
		ParseLogLevel(os.Getenv("LOG_LEVEL")),
	)
	return zap.New(core, zap.AddStacktrace(zapcore.FatalLevel))
}

// InitializeWithFallback tees console output with a JSON log file. When no
// log path is writable it logs to the console only.
func InitializeWithFallback() {
	level := ParseLogLevel(os.Getenv("LOG_LEVEL"))

	path := ResolveLogPath(os.Getenv)
	if path == "" {
		fmt.Fprintln(os.Stderr, "⚠️  No writable log path found. Logging to console only.")
		SetLogger(NewConsoleLogger())
		return
	}

	file, err := openLogFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "⚠️  Could not open log file, logging to console only:", err)
		SetLogger(NewConsoleLogger())
		return
	}

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(DefaultConsoleEncoderConfig()), zapcore.Lock(os.Stdout), level),
		zapcore.NewCore(zapcore.NewJSONEncoder(DefaultFileEncoderConfig()), zapcore.AddSync(file), zapcore.DebugLevel),
	)

	mu.Lock()
	logPath = path
	logFile = file
	mu.Unlock()

	l := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.FatalLevel))
	SetLogger(l)
	l.Debug("Logger initialized",
		zap.String("log_level", level.String()),
		zap.String("log_path", path))
}
