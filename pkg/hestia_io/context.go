// pkg/hestia_io/context.go

package hestia_io

import (
	"context"
	"os"
	"os/user"
	"runtime"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_err"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RuntimeContext carries the per-invocation context, logger and span through
// every component. It holds no configuration; that is passed explicitly.
type RuntimeContext struct {
	Ctx        context.Context
	Log        *zap.Logger
	Timestamp  time.Time
	Span       trace.Span
	RunID      string
	Command    string
	Attributes map[string]string
}

// NewContext sets up tracing and logging for one command invocation.
func NewContext(parent context.Context, cmdName string) *RuntimeContext {
	if parent == nil {
		parent = context.Background()
	}
	ctx, span := telemetry.Start(parent, cmdName)
	runID := logger.GenerateRunID()

	log := logger.L().With(
		zap.String("command", cmdName),
		zap.String("run_id", runID),
	)

	return &RuntimeContext{
		Ctx:        ctx,
		Span:       span,
		Log:        log,
		RunID:      runID,
		Timestamp:  time.Now(),
		Command:    cmdName,
		Attributes: make(map[string]string),
	}
}

// HandlePanic recovers panics, logs them, and converts to an error.
func (rc *RuntimeContext) HandlePanic(errPtr *error) {
	if r := recover(); r != nil {
		*errPtr = hestia_err.NewInternalError("panic recovered", cerr.AssertionFailedf("panic: %v", r))
		rc.logger().Error("Panic recovered", zap.Any("panic", r))
	}
}

// End logs outcome and closes the command span with key attributes.
func (rc *RuntimeContext) End(errPtr *error) {
	duration := time.Since(rc.Timestamp)
	var err error
	if errPtr != nil {
		err = *errPtr
	}

	if err == nil {
		rc.logger().Info("Command completed", zap.Duration("duration", duration))
	} else {
		rc.logger().Error("Command failed",
			zap.Duration("duration", duration),
			zap.String("error_type", hestia_err.CategoryOf(err).String()),
			zap.Error(err))
	}

	if rc.Span == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.Bool("success", err == nil),
		attribute.Int64("duration_ms", duration.Milliseconds()),
		attribute.String("os", runtime.GOOS),
		attribute.String("run_id", rc.RunID),
	}
	if err != nil {
		attrs = append(attrs, attribute.String("error_type", hestia_err.CategoryOf(err).String()))
		rc.Span.RecordError(err)
	}
	for k, v := range rc.Attributes {
		attrs = append(attrs, attribute.String(k, v))
	}
	rc.Span.SetAttributes(attrs...)
	rc.Span.End()
}

func (rc *RuntimeContext) logger() *zap.Logger {
	if rc.Log == nil {
		return zap.NewNop()
	}
	return rc.Log
}

// LogRuntimeExecutionContext records who is running the binary and from where.
func LogRuntimeExecutionContext(rc *RuntimeContext) {
	log := rc.logger()

	if currentUser, err := user.Current(); err != nil {
		log.Warn("Failed to get current user", zap.Error(err))
	} else {
		log.Debug("User + UID/GID context",
			zap.String("username", currentUser.Username),
			zap.String("uid", currentUser.Uid),
			zap.String("home", currentUser.HomeDir),
			zap.Int("effective_uid", os.Geteuid()),
			zap.String("sudo_user", os.Getenv("SUDO_USER")))
	}

	if execPath, err := os.Executable(); err == nil {
		log.Debug("Executing binary",
			zap.String("path", execPath),
			zap.String("args", strings.Join(redactArgs(os.Args[1:]), " ")))
	}
}

// redactArgs hides the values of password flags before they reach the log.
func redactArgs(args []string) []string {
	out := make([]string, len(args))
	hideNext := false
	for i, a := range args {
		switch {
		case hideNext:
			out[i] = "***"
			hideNext = false
		case strings.Contains(a, "password") && strings.Contains(a, "="):
			out[i] = a[:strings.Index(a, "=")+1] + "***"
		case strings.Contains(a, "password"):
			out[i] = a
			hideNext = true
		default:
			out[i] = a
		}
	}
	return out
}
