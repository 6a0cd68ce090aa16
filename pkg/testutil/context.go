package testutil

import (
	"context"
	"testing"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_io"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// TestContext returns a RuntimeContext that logs through the test.
func TestContext(t *testing.T) *hestia_io.RuntimeContext {
	t.Helper()
	return &hestia_io.RuntimeContext{
		Ctx:        context.Background(),
		Log:        zaptest.NewLogger(t),
		Command:    t.Name(),
		Attributes: map[string]string{},
	}
}

// ObserveLogs routes the global otelzap logger into an in-memory recorder
// for the rest of the test.
func ObserveLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	restore := otelzap.ReplaceGlobals(otelzap.New(zap.New(core)))
	t.Cleanup(restore)
	return logs
}
