// pkg/python/python.go
//
// Python floor enforcement. Frappe pins a minimum interpreter per release;
// on Ubuntu a newer interpreter comes from the deadsnakes PPA, on Debian the
// operator has to provide it.

package python

import (
	"fmt"
	"regexp"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/apt"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_err"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_io"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/platform"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/release"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// DeadsnakesPPA provides newer CPython builds for Ubuntu.
const DeadsnakesPPA = "ppa:deadsnakes/ppa"

var versionRe = regexp.MustCompile(`Python\s+(\d+\.\d+(?:\.\d+)?)`)

// ParseVersion extracts "3.12.3" from "Python 3.12.3".
func ParseVersion(output string) (string, bool) {
	m := versionRe.FindStringSubmatch(output)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Detect runs `<bin> --version`. An empty version means no usable interpreter.
func Detect(rc *hestia_io.RuntimeContext, runner execute.Runner, bin string) string {
	out, err := runner.Run(rc.Ctx, execute.Options{Command: bin, Args: []string{"--version"}, Capture: true})
	if err != nil {
		otelzap.Ctx(rc.Ctx).Debug("Python not detected", zap.String("binary", bin), zap.Error(err))
		return ""
	}
	v, _ := ParseVersion(out)
	return v
}

// Installer makes sure an interpreter meeting the plan's floor exists.
type Installer struct {
	Runner execute.Runner
	Apt    apt.Installer
	// DryRun means the runner returns no output, so versions cannot be
	// observed and are assumed to be good enough.
	DryRun bool
}

// Ensure returns the interpreter binary bench should use.
func (i Installer) Ensure(rc *hestia_io.RuntimeContext, plan release.Plan, facts platform.HostFacts) (string, error) {
	logger := otelzap.Ctx(rc.Ctx)

	// ASSESS
	have := facts.PythonVersion
	if have == "" {
		have = Detect(rc, i.Runner, "python3")
	}
	if have == "" && i.DryRun {
		logger.Info("Dry run mode - assuming system Python meets the floor",
			zap.String("floor", plan.PythonFloor))
		return "python3", nil
	}
	if Meets(have, plan.PythonFloor) {
		logger.Info("System Python meets the floor",
			zap.String("found", have),
			zap.String("floor", plan.PythonFloor))
		return "python3", nil
	}

	found := have
	if found == "" {
		found = "none"
	}
	if plan.StrictPython {
		return "", hestia_err.NewUnsupportedPlatformError(
			fmt.Sprintf("version %d requires Python %s or newer, found %s", plan.Version, plan.PythonFloor, found),
			fmt.Sprintf("Use a distribution release that ships Python %s", plan.PythonFloor))
	}
	if !facts.IsUbuntu() {
		return "", hestia_err.NewUnsupportedPlatformError(
			fmt.Sprintf("Python %s or newer is required, found %s", plan.PythonFloor, found),
			fmt.Sprintf("Install python%s with its -dev and -venv packages manually, then re-run", plan.PythonFloor))
	}

	// INTERVENE
	bin := "python" + plan.PythonFloor
	logger.Info("Installing Python from deadsnakes",
		zap.String("found", found),
		zap.String("floor", plan.PythonFloor))

	if err := i.Apt.AddPPA(rc, DeadsnakesPPA); err != nil {
		return "", err
	}
	if err := i.Apt.Install(rc, bin, bin+"-dev", bin+"-venv"); err != nil {
		return "", err
	}

	// EVALUATE
	if i.DryRun {
		logger.Info("Dry run mode - installed interpreter not verified", zap.String("binary", bin))
		return bin, nil
	}
	installed := Detect(rc, i.Runner, bin)
	if !Meets(installed, plan.PythonFloor) {
		return "", hestia_err.NewUnsupportedPlatformError(
			fmt.Sprintf("%s reports version %q after install, need %s", bin, installed, plan.PythonFloor))
	}
	logger.Info("Python installed", zap.String("binary", bin), zap.String("version", installed))
	return bin, nil
}

// Meets reports whether have is at least floor. An unknown version never
// meets a floor.
func Meets(have, floor string) bool {
	if have == "" {
		return false
	}
	ok, err := release.AtLeast(have, floor)
	return err == nil && ok
}
