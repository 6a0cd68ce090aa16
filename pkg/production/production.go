// pkg/production/production.go

package production

import (
	"fmt"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/apt"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/bench"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/config"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_io"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_unix"
	"github.com/hashicorp/go-multierror"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// HRMSApp is the HR add-on installed on request.
const HRMSApp = "hrms"

// ServicePackages front the workspace in production. All are optional.
var ServicePackages = []string{"nginx", "supervisor", "fail2ban"}

// Configurator turns a development workspace into a production deployment.
type Configurator struct {
	Apt       apt.Installer
	Bench     bench.Provisioner
	Systemctl hestia_unix.Systemctl
	TLS       Certbot
}

// Result describes what Configure did.
type Result struct {
	TLSInstalled bool
	// Warnings collects failures of the optional steps.
	Warnings error
}

// Configure runs the production setup for cfg.SiteName inside ws.
func (c Configurator) Configure(rc *hestia_io.RuntimeContext, ws bench.Workspace, cfg config.Config) (Result, error) {
	logger := otelzap.Ctx(rc.Ctx)
	var res Result

	// ASSESS
	logger.Info("ASSESS: configuring production services",
		zap.String("site", cfg.SiteName),
		zap.Bool("hrms", cfg.InstallHRMS),
		zap.Bool("tls", cfg.TLS))

	// INTERVENE
	if err := c.Apt.InstallBestEffort(rc, ServicePackages...); err != nil {
		res.Warnings = multierror.Append(res.Warnings, err)
	}

	if _, err := c.Bench.Runner.Run(rc.Ctx, ws.BenchAsRoot("setup", "production", ws.Account.Username, "--yes")); err != nil {
		return res, err
	}
	if err := c.Systemctl.EnableNow(rc.Ctx, "fail2ban"); err != nil {
		logger.Warn("fail2ban could not be enabled", zap.Error(err))
		res.Warnings = multierror.Append(res.Warnings, fmt.Errorf("fail2ban: %w", err))
	}

	for _, args := range [][]string{
		{"--site", cfg.SiteName, "enable-scheduler"},
		{"--site", cfg.SiteName, "set-maintenance-mode", "off"},
	} {
		if _, err := c.Bench.Runner.Run(rc.Ctx, ws.Bench(args...)); err != nil {
			return res, err
		}
	}

	if cfg.InstallHRMS {
		if err := c.Bench.InstallApp(rc, ws, cfg.SiteName, HRMSApp, cfg.Channel); err != nil {
			return res, err
		}
	}

	if cfg.TLS {
		if err := c.TLS.Issue(rc, cfg.SiteName, cfg.Email); err != nil {
			return res, err
		}
		res.TLSInstalled = true
	}

	// EVALUATE
	if !c.Systemctl.IsActive(rc.Ctx, "nginx") {
		logger.Warn("nginx is not active after production setup")
		res.Warnings = multierror.Append(res.Warnings, fmt.Errorf("nginx is not active"))
	}
	logger.Info("EVALUATE: production setup complete",
		zap.Bool("tls_installed", res.TLSInstalled),
		zap.Bool("warnings", res.Warnings != nil))
	return res, nil
}
