// pkg/preflight/preflight.go

package preflight

import (
	"fmt"
	"os"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_err"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_io"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/platform"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/python"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/release"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/user"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// MinFreeGiB is the free space recommended in the target home.
const MinFreeGiB = 10

// Checker gathers host facts and enforces the hard requirements. Function
// fields default to the real system when nil.
type Checker struct {
	Runner        execute.Runner
	Users         user.Lookup
	Getenv        func(string) string
	Euid          func() int
	OSReleasePath string
	FreeBytes     func(string) (uint64, error)
	Address       func() string
}

// Result is what preflight learned about the host.
type Result struct {
	Facts      platform.HostFacts `yaml:"facts"`
	Plan       release.Plan       `yaml:"plan"`
	Account    *user.Account      `yaml:"account"`
	Advisories []CheckResult      `yaml:"advisories,omitempty"`
}

// Run performs the checks in order and stops at the first hard failure.
func (c Checker) Run(rc *hestia_io.RuntimeContext, version int, production bool) (*Result, error) {
	logger := otelzap.Ctx(rc.Ctx)
	euid := c.Euid
	if euid == nil {
		euid = unix.Geteuid
	}
	getenv := c.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	address := c.Address
	if address == nil {
		address = platform.PrimaryAddress
	}

	logger.Info("ASSESS: running preflight checks", zap.Int("version", version))

	if id := euid(); id != 0 {
		return nil, hestia_err.NewPrivilegeError(
			fmt.Sprintf("hestia must run as root (effective uid %d)", id),
			"Re-run with: sudo hestia")
	}

	account, err := user.ResolveTarget(rc, c.Users, getenv)
	if err != nil {
		return nil, err
	}

	osInfo, err := platform.ReadOSRelease(rc, c.OSReleasePath)
	if err != nil {
		return nil, err
	}
	if err := platform.CheckDistro(osInfo.ID); err != nil {
		return nil, err
	}

	plan, err := release.For(version)
	if err != nil {
		return nil, err
	}
	if err := plan.CheckOS(osInfo.ID, osInfo.VersionID); err != nil {
		return nil, err
	}

	facts := platform.HostFacts{
		Distro:         osInfo.ID,
		DistroVersion:  osInfo.VersionID,
		Codename:       osInfo.VersionCodename,
		PrettyName:     osInfo.PrettyName,
		TargetUser:     account.Username,
		HomeDir:        account.HomeDir,
		PrimaryAddress: address(),
	}
	if c.Runner != nil {
		facts.PythonVersion = python.Detect(rc, c.Runner, "python3")
	}
	if plan.StrictPython && facts.PythonVersion != "" && !python.Meets(facts.PythonVersion, plan.PythonFloor) {
		return nil, hestia_err.NewUnsupportedPlatformError(
			fmt.Sprintf("version %d requires Python %s or newer, found %s", plan.Version, plan.PythonFloor, facts.PythonVersion),
			fmt.Sprintf("Use a distribution release that ships Python %s", plan.PythonFloor))
	}

	checks := []Check{{
		Name:        "disk-space",
		Description: "free space in the target home",
		Check:       CheckDiskSpace(account.HomeDir, MinFreeGiB, c.FreeBytes),
	}}
	if production {
		checks = append(checks,
			Check{Name: "port-80", Description: "HTTP port free for nginx", Check: CheckPort(80)},
			Check{Name: "port-443", Description: "HTTPS port free for nginx", Check: CheckPort(443)},
		)
	}
	advisories, err := RunChecks(rc.Ctx, checks)
	if err != nil {
		return nil, hestia_err.NewInternalError("advisory check marked required", err)
	}

	logger.Info("EVALUATE: preflight passed",
		zap.String("host", facts.DisplayName()),
		zap.String("python", facts.PythonVersion),
		zap.String("target_user", facts.TargetUser),
		zap.String("channel", plan.Channel))

	return &Result{Facts: facts, Plan: plan, Account: account, Advisories: advisories}, nil
}
