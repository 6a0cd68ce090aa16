// pkg/logger/logger.go

package logger

import (
	"io"
	"sync"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var (
	mu      sync.RWMutex
	log     *zap.Logger
	logPath string
	logFile io.Writer = io.Discard
)

// L returns the process logger, or a no-op logger before initialization.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if log == nil {
		return zap.NewNop()
	}
	return log
}

// SetLogger installs l as the process logger and as the zap and otelzap globals.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	log = l
	mu.Unlock()
	zap.ReplaceGlobals(l)
	otelzap.ReplaceGlobals(otelzap.New(l))
}

// Path returns the log file in use, or "" when logging to the console only.
func Path() string {
	mu.RLock()
	defer mu.RUnlock()
	return logPath
}

// FileWriter returns the raw log file sink. External command output is
// copied here so the log holds everything printed during a run.
func FileWriter() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return logFile
}

// Sync flushes any buffered log entries. Should be called before the application exits.
func Sync() error {
	mu.RLock()
	l := log
	mu.RUnlock()
	if l == nil {
		return nil
	}
	return l.Sync()
}
