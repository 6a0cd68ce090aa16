// pkg/apt/apt.go
//
// apt-get wrapper. Every invocation is non-interactive and keeps the package
// maintainer's version of changed config files.

package apt

import (
	"fmt"
	"strings"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_io"
	"github.com/hashicorp/go-multierror"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var (
	aptEnv   = []string{"DEBIAN_FRONTEND=noninteractive"}
	aptFlags = []string{"-y", "-o", "Dpkg::Options::=--force-confnew"}
)

// Installer runs apt-get through a Runner.
type Installer struct {
	Runner execute.Runner
}

func (a Installer) aptGet(rc *hestia_io.RuntimeContext, sub string, args ...string) error {
	argv := append([]string{sub}, aptFlags...)
	argv = append(argv, args...)
	_, err := a.Runner.Run(rc.Ctx, execute.Options{
		Command: "apt-get",
		Args:    argv,
		Env:     aptEnv,
	})
	return err
}

// Update refreshes the package index.
func (a Installer) Update(rc *hestia_io.RuntimeContext) error {
	return a.aptGet(rc, "update")
}

// Upgrade refreshes the index and upgrades installed packages.
func (a Installer) Upgrade(rc *hestia_io.RuntimeContext) error {
	logger := otelzap.Ctx(rc.Ctx)
	logger.Info("Updating package index and upgrading the system")
	if err := a.Update(rc); err != nil {
		return err
	}
	return a.aptGet(rc, "upgrade")
}

// Install installs packages; any failure is returned.
func (a Installer) Install(rc *hestia_io.RuntimeContext, pkgs ...string) error {
	if len(pkgs) == 0 {
		return nil
	}
	otelzap.Ctx(rc.Ctx).Info("Installing packages", zap.Strings("packages", pkgs))
	return a.aptGet(rc, "install", pkgs...)
}

// InstallBestEffort installs each package on its own and collects failures
// instead of stopping.
func (a Installer) InstallBestEffort(rc *hestia_io.RuntimeContext, pkgs ...string) error {
	logger := otelzap.Ctx(rc.Ctx)
	var result error
	for _, p := range pkgs {
		if err := a.aptGet(rc, "install", p); err != nil {
			logger.Warn("Optional package failed to install", zap.String("package", p), zap.Error(err))
			result = multierror.Append(result, fmt.Errorf("%s: %w", p, err))
		}
	}
	return result
}

// AddPPA adds a Launchpad PPA (Ubuntu only) and refreshes the index.
func (a Installer) AddPPA(rc *hestia_io.RuntimeContext, ppa string) error {
	if !strings.HasPrefix(ppa, "ppa:") {
		ppa = "ppa:" + ppa
	}
	otelzap.Ctx(rc.Ctx).Info("Adding package archive", zap.String("ppa", ppa))
	if _, err := a.Runner.Run(rc.Ctx, execute.Options{
		Command: "add-apt-repository",
		Args:    []string{"-y", ppa},
		Env:     aptEnv,
	}); err != nil {
		return err
	}
	return a.Update(rc)
}
