// pkg/workflow/install.go

package workflow

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/apt"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/bench"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/config"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_io"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_unix"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/interaction"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/mariadb"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/nodejs"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/platform"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/preflight"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/production"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/python"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/summary"
	cerr "github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// ERPNextApp is the optional ERP module.
const ERPNextApp = "erpnext"

// State is what the steps learn and hand to later steps.
type State struct {
	Input     config.Input
	Config    config.Config
	Preflight *preflight.Result
	PythonBin string
	NodeBin   string
	Workspace bench.Workspace

	PDFInstalled bool
	TLSInstalled bool
	Warnings     []string

	Completed []string
	Skipped   []string
}

// Installer holds the collaborators of the install workflow. Zero-valued
// optional fields fall back to the real system.
type Installer struct {
	Runner   execute.Runner
	Prompter interaction.Prompter
	Checker  preflight.Checker
	Out      io.Writer

	// Resolver is used by the summary to decide whether the site name
	// resolves.
	Resolver platform.Resolver
	// ProbeRedis checks the cache after installation. Warn only.
	ProbeRedis func(context.Context) error
	// MariaDBConfigPath overrides mariadb.DefaultConfigPath.
	MariaDBConfigPath string
	// ExternallyManaged overrides PEP 668 detection for the pip fallback.
	ExternallyManaged func() bool
	LogPath           string
}

func (in Installer) aptInstaller() apt.Installer { return apt.Installer{Runner: in.Runner} }

func (in Installer) benchProvisioner() bench.Provisioner {
	return bench.Provisioner{Runner: in.Runner, Apt: in.aptInstaller(), ExternallyManaged: in.ExternallyManaged}
}

// Install resolves the configuration and runs every step.
func (in Installer) Install(rc *hestia_io.RuntimeContext, input config.Input) (*State, error) {
	st := &State{Input: input}
	return st, Run(rc, in.Steps(), st)
}

// Steps returns the install pipeline in execution order.
func (in Installer) Steps() []Step {
	devMode := func(st *State) bool { return !st.Config.Production }

	return []Step{
		{Name: "configuration", Run: in.resolveConfig},
		{Name: "preflight", Run: in.runPreflight},
		{Name: "system upgrade", Run: func(rc *hestia_io.RuntimeContext, _ *State) error {
			return in.aptInstaller().Upgrade(rc)
		}},
		{Name: "base packages", Run: func(rc *hestia_io.RuntimeContext, st *State) error {
			return in.aptInstaller().InstallBase(rc, st.Preflight.Facts)
		}},
		{Name: "data services", Run: in.dataServices},
		{Name: "database bootstrap", Run: in.databaseBootstrap},
		{Name: "python", Run: func(rc *hestia_io.RuntimeContext, st *State) error {
			bin, err := python.Installer{Runner: in.Runner, Apt: in.aptInstaller(), DryRun: st.Config.DryRun}.Ensure(rc, st.Preflight.Plan, st.Preflight.Facts)
			st.PythonBin = bin
			return err
		}},
		{Name: "node", Run: func(rc *hestia_io.RuntimeContext, st *State) error {
			bin, err := nodejs.Installer{Runner: in.Runner}.Ensure(rc, st.Preflight.Account, st.Preflight.Plan)
			st.NodeBin = bin
			return err
		}},
		{Name: "bench cli", Run: func(rc *hestia_io.RuntimeContext, st *State) error {
			return in.benchProvisioner().InstallCLI(rc, st.Preflight.Account, st.PythonBin)
		}},
		{Name: "workspace", Run: func(rc *hestia_io.RuntimeContext, st *State) error {
			st.Workspace = bench.NewWorkspace(st.Preflight.Account, st.Config.BenchDir, st.NodeBin)
			return in.benchProvisioner().Init(rc, st.Workspace, st.Config, st.PythonBin)
		}},
		{Name: "site", Run: func(rc *hestia_io.RuntimeContext, st *State) error {
			return in.benchProvisioner().NewSite(rc, st.Workspace, st.Config, st.Preflight.Plan)
		}},
		{
			Name: "erpnext",
			Skip: func(st *State) bool { return !st.Config.InstallERPNext },
			Run: func(rc *hestia_io.RuntimeContext, st *State) error {
				return in.benchProvisioner().InstallApp(rc, st.Workspace, st.Config.SiteName, ERPNextApp, st.Config.Channel)
			},
		},
		{Name: "production", Skip: devMode, Run: in.configureProduction},
		{Name: "summary", Run: in.printSummary},
	}
}

func (in Installer) resolveConfig(rc *hestia_io.RuntimeContext, st *State) error {
	cfg, err := config.Resolver{Prompter: in.Prompter}.Resolve(rc, st.Input)
	if err != nil {
		return err
	}
	st.Config = cfg
	return nil
}

func (in Installer) runPreflight(rc *hestia_io.RuntimeContext, st *State) error {
	checker := in.Checker
	if checker.Runner == nil {
		checker.Runner = in.Runner
	}
	res, err := checker.Run(rc, st.Config.Version, st.Config.Production)
	if err != nil {
		return err
	}
	st.Preflight = res
	for _, a := range res.Advisories {
		if a.Warning != "" {
			st.Warnings = append(st.Warnings, a.Warning)
		}
	}
	return nil
}

func (in Installer) dataServices(rc *hestia_io.RuntimeContext, st *State) error {
	logger := otelzap.Ctx(rc.Ctx)
	pdf, err := in.aptInstaller().InstallDataServices(rc)
	if err != nil {
		return err
	}
	st.PDFInstalled = pdf
	if !pdf {
		st.Warnings = append(st.Warnings, "wkhtmltopdf could not be installed; PDF printing is unavailable")
	}

	if st.Config.DryRun {
		return nil
	}
	probe := in.ProbeRedis
	if probe == nil {
		probe = func(ctx context.Context) error { return apt.ProbeRedis(ctx, apt.DefaultRedisAddr) }
	}
	if err := probe(rc.Ctx); err != nil {
		logger.Warn("Redis did not answer after installation", zap.Error(err))
		st.Warnings = append(st.Warnings, "redis-server did not answer PING")
	}
	return nil
}

func (in Installer) databaseBootstrap(rc *hestia_io.RuntimeContext, st *State) error {
	acct := st.Preflight.Account
	b := mariadb.Bootstrapper{
		Runner:     in.Runner,
		Systemctl:  hestia_unix.Systemctl{Runner: in.Runner},
		Marker:     mariadb.MarkerFor(acct.HomeDir, acct.UID, acct.GID),
		ConfigPath: in.MariaDBConfigPath,
		DryRun:     st.Config.DryRun,
	}
	res, err := b.Bootstrap(rc, st.Config.DBRootPassword)
	if err != nil {
		return err
	}
	if res.Warnings != nil {
		st.Warnings = append(st.Warnings, warningLines("mariadb", res.Warnings)...)
	}
	return nil
}

func (in Installer) configureProduction(rc *hestia_io.RuntimeContext, st *State) error {
	a := in.aptInstaller()
	c := production.Configurator{
		Apt:       a,
		Bench:     in.benchProvisioner(),
		Systemctl: hestia_unix.Systemctl{Runner: in.Runner},
		TLS:       production.Certbot{Runner: in.Runner, Apt: a},
	}
	res, err := c.Configure(rc, st.Workspace, st.Config)
	st.TLSInstalled = res.TLSInstalled
	if res.Warnings != nil {
		st.Warnings = append(st.Warnings, warningLines("production", res.Warnings)...)
	}
	return err
}

func (in Installer) printSummary(rc *hestia_io.RuntimeContext, st *State) error {
	facts := st.Preflight.Facts
	r := summary.Reporter{Out: in.Out, Resolver: in.Resolver}
	if facts.PrimaryAddress != "" {
		r.Address = func() string { return facts.PrimaryAddress }
	}
	return r.Print(rc, summary.Report{
		Config:       st.Config,
		Facts:        facts,
		BenchDir:     st.Workspace.Dir,
		TLSInstalled: st.TLSInstalled,
		LogPath:      in.LogPath,
		Warnings:     st.Warnings,
	})
}

// warningLines flattens a multierror into one line per failure.
func warningLines(prefix string, err error) []string {
	var merr *multierror.Error
	if !cerr.As(err, &merr) {
		return []string{fmt.Sprintf("%s: %v", prefix, err)}
	}
	out := make([]string, 0, len(merr.Errors))
	for _, e := range merr.Errors {
		line, _, _ := strings.Cut(e.Error(), "\n")
		out = append(out, prefix+": "+line)
	}
	return out
}
