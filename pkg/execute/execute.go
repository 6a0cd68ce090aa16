// pkg/execute/execute.go

package execute

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_err"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/telemetry"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ExecRunner runs commands on the host. Shell execution is never used; every
// command is an argv.
type ExecRunner struct {
	// Console receives live output of non-captured commands.
	Console io.Writer
	// Log receives all output.
	Log io.Writer
	// DryRun logs commands instead of running them.
	DryRun bool
}

// NewExecRunner returns a runner streaming to stdout and the log file.
func NewExecRunner(dryRun bool) *ExecRunner {
	return &ExecRunner{Console: os.Stdout, Log: logger.FileWriter(), DryRun: dryRun}
}

// Run executes opts and returns its combined output.
func (r *ExecRunner) Run(ctx context.Context, opts Options) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	log := otelzap.Ctx(ctx)
	display := opts.Display()

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	ctx, span := telemetry.Start(ctx, "execute.Run",
		attribute.String("command", opts.Command),
		attribute.String("user", opts.User),
	)
	defer span.End()

	if r.DryRun {
		log.Info("Dry run mode - command not executed",
			zap.String("command", display),
			zap.String("user", opts.User),
			zap.String("dir", opts.Dir))
		return "", nil
	}

	log.Info("Starting execution",
		zap.String("command", display),
		zap.String("user", opts.User),
		zap.String("dir", opts.Dir))

	argv := opts.Argv()
	name := argv[0]
	if opts.User == "" {
		name = lookPathIn(name, opts.Env)
	}
	cmd := exec.CommandContext(ctx, name, argv[1:]...)
	cmd.Dir = opts.Dir
	if opts.User == "" && len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}
	if opts.Stdin != "" {
		cmd.Stdin = strings.NewReader(opts.Stdin)
	}

	var buf bytes.Buffer
	writers := []io.Writer{&buf}
	if r.Log != nil {
		writers = append(writers, r.Log)
	}
	if !opts.Capture && r.Console != nil {
		writers = append(writers, r.Console)
	}
	w := io.MultiWriter(writers...)
	cmd.Stdout = w
	cmd.Stderr = w

	err := cmd.Run()
	output := buf.String()
	if err == nil {
		log.Info("Execution succeeded", zap.String("command", display))
		return output, nil
	}

	span.RecordError(err)
	if ctx.Err() != nil {
		log.Warn("Execution interrupted", zap.String("command", display), zap.Error(ctx.Err()))
		return output, hestia_err.FromContext(ctx.Err())
	}

	masked := opts.mask(output)
	log.Error("Execution failed",
		zap.String("command", display),
		zap.String("summary", hestia_err.ExtractSummary(masked, 2)),
		zap.Error(err))
	return output, hestia_err.NewExternalCommandError(display, err, masked)
}

// lookPathIn resolves name against the PATH carried in env. exec only
// searches the parent's PATH, which under sudo is secure_path. Without a
// match the bare name is returned.
func lookPathIn(name string, env []string) string {
	if strings.Contains(name, "/") {
		return name
	}
	path := ""
	for _, kv := range env {
		if v, ok := strings.CutPrefix(kv, "PATH="); ok {
			path = v
		}
	}
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		st, err := os.Stat(candidate)
		if err == nil && st.Mode().IsRegular() && st.Mode().Perm()&0o111 != 0 {
			return candidate
		}
	}
	return name
}
