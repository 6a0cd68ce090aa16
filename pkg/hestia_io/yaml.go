/* pkg/hestia_io/yaml.go */

package hestia_io

import (
	"context"
	"fmt"
	"io"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// WriteYAML marshals in as YAML onto w.
func WriteYAML(ctx context.Context, w io.Writer, in interface{}) error {
	logger := otelzap.Ctx(ctx)

	data, err := yaml.Marshal(in)
	if err != nil {
		logger.Error("Failed to marshal YAML", zap.Error(err))
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write YAML: %w", err)
	}

	logger.Debug("YAML written", zap.Int("size", len(data)))
	return nil
}
