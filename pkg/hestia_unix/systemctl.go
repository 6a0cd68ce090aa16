// pkg/hestia_unix/systemctl.go

package hestia_unix

import (
	"context"
	"fmt"
	"regexp"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_err"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// SystemctlCommand represents different systemctl subcommands
type SystemctlCommand string

const (
	CmdIsActive SystemctlCommand = "is-active"
	CmdRestart  SystemctlCommand = "restart"
	CmdEnable   SystemctlCommand = "enable"
	CmdStatus   SystemctlCommand = "status"
)

var unitNameRe = regexp.MustCompile(`^[A-Za-z0-9@._-]+$`)

// Systemctl drives systemd units through a Runner.
type Systemctl struct {
	Runner execute.Runner
}

// ValidateUnit rejects names that are not plain systemd unit names.
func ValidateUnit(unit string) error {
	if unit == "" || len(unit) > 100 || !unitNameRe.MatchString(unit) {
		return hestia_err.NewInternalError(fmt.Sprintf("invalid unit name %q", unit), nil)
	}
	return nil
}

// Restart restarts unit and fails with the status output attached.
func (s Systemctl) Restart(ctx context.Context, unit string) error {
	logger := otelzap.Ctx(ctx)
	if err := ValidateUnit(unit); err != nil {
		return err
	}

	logger.Info("Restarting systemd unit", zap.String("unit", unit))
	if _, err := s.Runner.Run(ctx, execute.Options{
		Command: "systemctl",
		Args:    []string{string(CmdRestart), unit},
		Capture: true,
	}); err != nil {
		status, _ := s.Runner.Run(ctx, execute.Options{
			Command: "systemctl",
			Args:    []string{string(CmdStatus), "--no-pager", "--lines=20", unit},
			Capture: true,
		})
		logger.Error("Failed to restart unit",
			zap.String("unit", unit),
			zap.String("status_output", status),
			zap.Error(err))
		return cerr.WithHintf(err, "Run 'systemctl status %s' and 'journalctl -u %s -n 50' for details", unit, unit)
	}
	return nil
}

// EnableNow enables and starts unit.
func (s Systemctl) EnableNow(ctx context.Context, unit string) error {
	if err := ValidateUnit(unit); err != nil {
		return err
	}
	otelzap.Ctx(ctx).Info("Enabling and starting systemd unit", zap.String("unit", unit))
	_, err := s.Runner.Run(ctx, execute.Options{
		Command: "systemctl",
		Args:    []string{string(CmdEnable), "--now", unit},
		Capture: true,
	})
	return err
}

// IsActive reports whether unit is running. Errors mean "not active".
func (s Systemctl) IsActive(ctx context.Context, unit string) bool {
	if ValidateUnit(unit) != nil {
		return false
	}
	_, err := s.Runner.Run(ctx, execute.Options{
		Command: "systemctl",
		Args:    []string{string(CmdIsActive), "--quiet", unit},
		Capture: true,
	})
	return err == nil
}
