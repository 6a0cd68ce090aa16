// pkg/apt/packages.go

package apt

import (
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_io"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/platform"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// BasePackages is the build toolchain and libraries bench needs.
func BasePackages(distro string) []string {
	pkgs := []string{
		"git", "curl", "wget", "ca-certificates", "cron", "sudo",
		"build-essential", "pkg-config",
		"python3-dev", "python3-pip", "python3-venv", "python3-setuptools",
		"libffi-dev", "libssl-dev", "default-libmysqlclient-dev",
	}
	if distro == platform.Ubuntu {
		pkgs = append(pkgs, "software-properties-common")
	}
	return pkgs
}

// DataServicePackages are the database, cache and PDF renderer.
var DataServicePackages = []string{
	"mariadb-server", "mariadb-client", "redis-server",
	"wkhtmltopdf", "xvfb", "libfontconfig1",
}

// PDFPackages is dropped from DataServicePackages on the fallback attempt.
var PDFPackages = []string{"wkhtmltopdf", "xvfb", "libfontconfig1"}

// InstallBase installs BasePackages for the host distribution.
func (a Installer) InstallBase(rc *hestia_io.RuntimeContext, facts platform.HostFacts) error {
	return a.Install(rc, BasePackages(facts.Distro)...)
}

// InstallDataServices installs MariaDB, Redis and wkhtmltopdf. If that fails
// it retries exactly once without the PDF packages. The boolean reports
// whether the PDF renderer was installed.
func (a Installer) InstallDataServices(rc *hestia_io.RuntimeContext) (bool, error) {
	logger := otelzap.Ctx(rc.Ctx)

	err := a.Install(rc, DataServicePackages...)
	if err == nil {
		return true, nil
	}

	logger.Warn("Data service install failed; retrying without wkhtmltopdf",
		zap.Strings("dropped", PDFPackages),
		zap.Error(err))

	if err := a.Install(rc, without(DataServicePackages, PDFPackages)...); err != nil {
		return false, err
	}
	logger.Warn("wkhtmltopdf is not installed; PDF printing will not work until it is installed manually")
	return false, nil
}

func without(list, drop []string) []string {
	skip := make(map[string]bool, len(drop))
	for _, d := range drop {
		skip[d] = true
	}
	out := make([]string, 0, len(list))
	for _, p := range list {
		if !skip[p] {
			out = append(out, p)
		}
	}
	return out
}
