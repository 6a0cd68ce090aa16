// pkg/workflow/pipeline.go
//
// Sequential step driver. Steps run strictly in order; the first failure
// stops the run and is reported with the step's name.

package workflow

import (
	"fmt"
	"time"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_err"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_io"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/telemetry"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// Step is one stage of the installation.
type Step struct {
	Name string
	// Skip, when set and true, bypasses the step.
	Skip func(*State) bool
	Run  func(*hestia_io.RuntimeContext, *State) error
}

// StepError names the step that aborted the run.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Run executes steps in order against st.
func Run(rc *hestia_io.RuntimeContext, steps []Step, st *State) error {
	logger := otelzap.Ctx(rc.Ctx)

	for i, step := range steps {
		if step.Skip != nil && step.Skip(st) {
			logger.Info("Skipping step", zap.String("step", step.Name))
			st.Skipped = append(st.Skipped, step.Name)
			continue
		}
		if err := rc.Ctx.Err(); err != nil {
			return &StepError{Step: step.Name, Err: hestia_err.FromContext(err)}
		}

		ctx, span := telemetry.Start(rc.Ctx, "step."+step.Name,
			attribute.Int("step.index", i+1),
			attribute.Int("step.total", len(steps)))
		stepRC := *rc
		stepRC.Ctx = ctx

		logger.Info(fmt.Sprintf("[%d/%d] %s", i+1, len(steps), step.Name))
		start := time.Now()
		err := step.Run(&stepRC, st)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, hestia_err.CategoryOf(err).String())
			span.End()
			logger.Error("Step failed",
				zap.String("step", step.Name),
				zap.String("category", hestia_err.CategoryOf(err).String()),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err))
			return &StepError{Step: step.Name, Err: err}
		}
		span.End()
		st.Completed = append(st.Completed, step.Name)
		logger.Debug("Step complete", zap.String("step", step.Name), zap.Duration("duration", time.Since(start)))
	}
	return nil
}
