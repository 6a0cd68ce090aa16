// Package preflight verifies the host before anything is installed: identity,
// target account, distribution and release compatibility.
package preflight

import (
	"context"
	"fmt"
	"net"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Check represents a single advisory preflight check
type Check struct {
	Name        string
	Description string
	Check       func(context.Context) error
	Required    bool
}

// CheckResult contains the result of running preflight checks
type CheckResult struct {
	Name    string `yaml:"name"`
	Passed  bool   `yaml:"passed"`
	Error   error  `yaml:"-"`
	Warning string `yaml:"warning,omitempty"`
}

// RunChecks executes all checks and returns results. Only Required checks
// can make it fail.
func RunChecks(ctx context.Context, checks []Check) ([]CheckResult, error) {
	logger := otelzap.Ctx(ctx)

	results := make([]CheckResult, 0, len(checks))
	criticalFailures := 0

	for _, check := range checks {
		result := CheckResult{Name: check.Name}

		checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := check.Check(checkCtx)
		cancel()

		switch {
		case err == nil:
			result.Passed = true
			logger.Info("Check passed", zap.String("check", check.Name))
		case check.Required:
			result.Error = err
			logger.Error("Check failed (required)", zap.String("check", check.Name), zap.Error(err))
			criticalFailures++
		default:
			result.Error = err
			result.Warning = err.Error()
			logger.Warn("Check failed (advisory)", zap.String("check", check.Name), zap.Error(err))
		}
		results = append(results, result)
	}

	if criticalFailures > 0 {
		return results, cerr.Newf("%d required check(s) failed", criticalFailures)
	}
	return results, nil
}

// FreeBytes reports free space available to unprivileged users at path.
func FreeBytes(path string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, err
	}
	return st.Bavail * uint64(st.Bsize), nil
}

// CheckDiskSpace warns when path has less than minGiB free.
func CheckDiskSpace(path string, minGiB uint64, free func(string) (uint64, error)) func(context.Context) error {
	if free == nil {
		free = FreeBytes
	}
	return func(context.Context) error {
		b, err := free(path)
		if err != nil {
			return cerr.Wrapf(err, "failed to check disk space at %s", path)
		}
		if gib := b >> 30; gib < minGiB {
			return fmt.Errorf("only %d GiB free at %s, at least %d GiB recommended", gib, path, minGiB)
		}
		return nil
	}
}

// CheckPort warns when a TCP port is already bound.
func CheckPort(port int) func(context.Context) error {
	return func(ctx context.Context) error {
		var lc net.ListenConfig
		ln, err := lc.Listen(ctx, "tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			return fmt.Errorf("port %d is already in use", port)
		}
		return ln.Close()
	}
}
