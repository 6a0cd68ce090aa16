// pkg/bench/bench.go

package bench

import (
	"path/filepath"
	"strings"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/apt"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/config"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_io"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/release"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/user"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Package name of the bench CLI on PyPI.
const Package = "frappe-bench"

// Provisioner installs bench and drives it as the target account.
type Provisioner struct {
	Runner execute.Runner
	Apt    apt.Installer
	// ExternallyManaged reports a PEP 668 system Python. Defaults to
	// looking for the EXTERNALLY-MANAGED marker.
	ExternallyManaged func() bool
}

// InstallCLI installs bench with pipx, falling back to pip --user.
func (p Provisioner) InstallCLI(rc *hestia_io.RuntimeContext, acct *user.Account, pythonBin string) error {
	logger := otelzap.Ctx(rc.Ctx)
	ws := NewWorkspace(acct, "", "")
	asUser := func(cmd string, args ...string) execute.Options {
		return execute.Options{Command: cmd, Args: args, User: acct.Username, Env: ws.Env, Dir: acct.HomeDir}
	}

	if err := p.Apt.InstallBestEffort(rc, "pipx"); err != nil {
		logger.Warn("pipx package unavailable, will use pip", zap.Error(err))
	}

	if _, err := p.Runner.Run(rc.Ctx, asUser("pipx", "--version")); err == nil {
		args := []string{"install", "--force"}
		if pythonBin != "" && pythonBin != "python3" {
			args = append(args, "--python", pythonBin)
		}
		args = append(args, Package)
		logger.Info("Installing bench with pipx", zap.String("user", acct.Username))
		if _, err := p.Runner.Run(rc.Ctx, asUser("pipx", args...)); err != nil {
			return err
		}
	} else {
		args := []string{"install", "--user"}
		if p.externallyManaged() {
			args = append(args, "--break-system-packages")
		}
		args = append(args, Package)
		logger.Info("Installing bench with pip", zap.String("user", acct.Username))
		if _, err := p.Runner.Run(rc.Ctx, asUser("pip3", args...)); err != nil {
			return err
		}
	}

	_, err := p.Runner.Run(rc.Ctx, asUser("bench", "--version"))
	return err
}

func (p Provisioner) externallyManaged() bool {
	if p.ExternallyManaged != nil {
		return p.ExternallyManaged()
	}
	matches, _ := filepath.Glob("/usr/lib/python3*/EXTERNALLY-MANAGED")
	return len(matches) > 0
}

// Init creates the workspace unless the directory already exists.
func (p Provisioner) Init(rc *hestia_io.RuntimeContext, ws Workspace, cfg config.Config, pythonBin string) error {
	logger := otelzap.Ctx(rc.Ctx)
	if ws.Exists() {
		logger.Info("Workspace already exists, skipping bench init", zap.String("dir", ws.Dir))
		return nil
	}

	args := []string{"init", "--frappe-branch", cfg.Channel}
	if pythonBin != "" {
		args = append(args, "--python", pythonBin)
	}
	args = append(args, ws.Name)

	opts := ws.Bench(args...)
	opts.Dir = ws.Account.HomeDir
	logger.Info("Initializing bench workspace", zap.String("dir", ws.Dir), zap.String("branch", cfg.Channel))
	_, err := p.Runner.Run(rc.Ctx, opts)
	return err
}

// NewSite creates the site unless sites/<site> already exists.
func (p Provisioner) NewSite(rc *hestia_io.RuntimeContext, ws Workspace, cfg config.Config, plan release.Plan) error {
	logger := otelzap.Ctx(rc.Ctx)
	if ws.SiteExists(cfg.SiteName) {
		logger.Info("Site already exists, skipping bench new-site", zap.String("site", cfg.SiteName))
		return nil
	}

	opts := ws.Bench("new-site", cfg.SiteName,
		plan.NewSiteRootPasswordFlag, cfg.DBRootPassword,
		"--admin-password", cfg.AdminPassword)
	opts.Redact = cfg.Secrets()

	logger.Info("Creating site", zap.String("site", cfg.SiteName))
	if _, err := p.Runner.Run(rc.Ctx, opts); err != nil {
		return err
	}
	_, err := p.Runner.Run(rc.Ctx, ws.Bench("use", cfg.SiteName))
	return err
}

// InstallApp fetches app on the channel branch and installs it on site.
// Both halves are skipped when already done.
func (p Provisioner) InstallApp(rc *hestia_io.RuntimeContext, ws Workspace, site, app, channel string) error {
	logger := otelzap.Ctx(rc.Ctx)

	if ws.AppFetched(app) {
		logger.Info("App already fetched", zap.String("app", app))
	} else {
		logger.Info("Fetching app", zap.String("app", app), zap.String("branch", channel))
		if _, err := p.Runner.Run(rc.Ctx, ws.Bench("get-app", app, "--branch", channel)); err != nil {
			return err
		}
	}

	list := ws.Bench("--site", site, "list-apps")
	list.Capture = true
	if out, err := p.Runner.Run(rc.Ctx, list); err == nil && listsApp(out, app) {
		logger.Info("App already installed on site", zap.String("app", app), zap.String("site", site))
		return nil
	}

	logger.Info("Installing app on site", zap.String("app", app), zap.String("site", site))
	_, err := p.Runner.Run(rc.Ctx, ws.Bench("--site", site, "install-app", app))
	return err
}

// listsApp matches an app name at the start of a list-apps line; newer
// bench versions append version and branch columns.
func listsApp(out, app string) bool {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 && fields[0] == app {
			return true
		}
	}
	return false
}
