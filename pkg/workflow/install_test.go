package workflow_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/config"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_err"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_io"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/mariadb"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/preflight"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/testutil"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noDNS struct{}

func (noDNS) LookupHost(context.Context, string) ([]string, error) {
	return nil, errors.New("no such host")
}

type env struct {
	runner    *testutil.FakeRunner
	users     *testutil.FakeUsers
	env       map[string]string
	out       *bytes.Buffer
	installer workflow.Installer
}

func newEnv(t *testing.T, distro, version, codename, python string) *env {
	t.Helper()
	e := &env{
		runner: testutil.NewFakeRunner().On("python3 --version", "Python "+python+"\n", nil),
		users:  testutil.NewFakeUsers(t, "frappe"),
		env:    map[string]string{"SUDO_USER": "frappe"},
		out:    &bytes.Buffer{},
	}
	e.installer = workflow.Installer{
		Runner: e.runner,
		Checker: preflight.Checker{
			Users:         e.users,
			Getenv:        func(k string) string { return e.env[k] },
			Euid:          func() int { return 0 },
			OSReleasePath: testutil.WriteOSRelease(t, t.TempDir(), distro, version, codename),
			FreeBytes:     func(string) (uint64, error) { return 100 << 30, nil },
			Address:       func() string { return "10.0.0.5" },
		},
		Out:               e.out,
		Resolver:          noDNS{},
		ProbeRedis:        func(context.Context) error { return nil },
		MariaDBConfigPath: filepath.Join(t.TempDir(), "99-hestia-frappe.cnf"),
		ExternallyManaged: func() bool { return false },
		LogPath:           "/var/log/hestia/install.log",
	}
	return e
}

func (e *env) home() string { return e.users.Accounts["frappe"].HomeDir }

func intp(n int) *int       { return &n }
func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }

func devInput(version int) config.Input {
	return config.Input{
		Version:        intp(version),
		Site:           strp("site1.local"),
		DBRootPassword: strp("rootpw"),
		AdminPassword:  strp("adminpw"),
		Production:     boolp(false),
		InstallERPNext: boolp(false),
		AssumeDefaults: true,
	}
}

func aptInstalls(lines []string) int {
	n := 0
	for _, l := range lines {
		if strings.HasPrefix(l, "apt-get") {
			n++
		}
	}
	return n
}

func TestInstallDevelopmentV14(t *testing.T) {
	rc := testutil.TestContext(t)
	e := newEnv(t, "ubuntu", "22.04", "jammy", "3.10.12")

	st, err := e.installer.Install(rc, devInput(14))
	require.NoError(t, err)

	assert.Equal(t, "version-14", st.Config.Channel)
	assert.Equal(t, "python3", st.PythonBin)
	assert.Equal(t, []string{"erpnext", "production"}, st.Skipped)
	assert.Contains(t, st.Completed, "site")

	assert.Equal(t, 1, e.runner.Count("bench init --frappe-branch version-14"))
	newSite, ok := e.runner.Find("bench new-site")
	require.True(t, ok)
	assert.Contains(t, newSite.Args, "--mariadb-root-password")
	assert.Zero(t, e.runner.Count("bench setup production"))
	assert.Zero(t, e.runner.Count("bench get-app"))
	assert.Zero(t, e.runner.Count("add-apt-repository"))

	for _, c := range e.runner.Calls {
		if c.Command == "bench" && !strings.HasPrefix(c.Line(), "bench setup production") {
			assert.Equal(t, "frappe", c.User, c.Line())
		}
	}

	out := e.out.String()
	assert.Contains(t, out, "bench start")
	assert.Contains(t, out, "8000")

	testutil.AssertFileExists(t, filepath.Join(e.home(), mariadb.MarkerRelPath))
	testutil.AssertFileExists(t, e.installer.MariaDBConfigPath)
}

func TestInstallV16BelowOSFloor(t *testing.T) {
	rc := testutil.TestContext(t)
	e := newEnv(t, "ubuntu", "22.04", "jammy", "3.10.12")

	_, err := e.installer.Install(rc, devInput(16))
	require.Error(t, err)

	var stepErr *workflow.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "preflight", stepErr.Step)
	assert.True(t, hestia_err.IsUnsupportedPlatformError(err))
	assert.Equal(t, 69, hestia_err.GetExitCode(err))
	assert.Zero(t, aptInstalls(e.runner.Lines()))
}

func TestInstallV16PythonBelowStrictFloorStopsAtPreflight(t *testing.T) {
	rc := testutil.TestContext(t)
	e := newEnv(t, "ubuntu", "24.04", "noble", "3.12.3")

	st, err := e.installer.Install(rc, devInput(16))
	require.Error(t, err)

	var stepErr *workflow.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "preflight", stepErr.Step)
	assert.True(t, hestia_err.IsUnsupportedPlatformError(err))
	assert.Contains(t, err.Error(), "3.14")
	assert.Equal(t, []string{"configuration"}, st.Completed)
	assert.Zero(t, aptInstalls(e.runner.Lines()))
	assert.Zero(t, e.runner.Count("mysql"))
}

func TestInstallDryRunReachesSummary(t *testing.T) {
	rc := testutil.TestContext(t)
	e := newEnv(t, "ubuntu", "22.04", "jammy", "3.10.12")
	e.installer.Runner = &execute.ExecRunner{DryRun: true}

	in := devInput(14)
	in.DryRun = true
	in.InstallERPNext = boolp(true)

	st, err := e.installer.Install(rc, in)
	require.NoError(t, err)

	assert.Equal(t, "summary", st.Completed[len(st.Completed)-1])
	assert.Contains(t, st.Completed, "python")
	assert.Contains(t, st.Completed, "erpnext")
	assert.Equal(t, "python3", st.PythonBin)
	assert.Contains(t, e.out.String(), "bench start")

	testutil.AssertFileNotExists(t, filepath.Join(e.home(), mariadb.MarkerRelPath))
	testutil.AssertFileNotExists(t, e.installer.MariaDBConfigPath)
}

func TestInstallUnsupportedDistro(t *testing.T) {
	rc := testutil.TestContext(t)
	e := newEnv(t, "fedora", "40", "", "3.12.3")

	_, err := e.installer.Install(rc, devInput(15))
	require.Error(t, err)
	assert.True(t, hestia_err.IsUnsupportedPlatformError(err))
	assert.Zero(t, aptInstalls(e.runner.Lines()))
}

func TestInstallRootTarget(t *testing.T) {
	rc := testutil.TestContext(t)
	e := newEnv(t, "debian", "12", "bookworm", "3.11.2")
	e.env = map[string]string{}

	_, err := e.installer.Install(rc, devInput(15))
	require.Error(t, err)
	assert.True(t, hestia_err.IsPrivilegeError(err))
	assert.Zero(t, aptInstalls(e.runner.Lines()))
}

func TestInstallEmptySiteFailsBeforeInstalling(t *testing.T) {
	rc := testutil.TestContext(t)
	e := newEnv(t, "debian", "12", "bookworm", "3.11.2")
	e.installer.Prompter = testutil.NewFakePrompter("15", "   ")

	in := config.Input{}
	_, err := e.installer.Install(rc, in)
	require.Error(t, err)

	var stepErr *workflow.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "configuration", stepErr.Step)
	assert.True(t, hestia_err.IsConfigurationError(err))
	assert.Empty(t, e.runner.Calls)
}

func TestInstallSkipsBootstrapWhenMarked(t *testing.T) {
	rc := testutil.TestContext(t)
	e := newEnv(t, "debian", "12", "bookworm", "3.11.2")
	testutil.CreateTestFile(t, e.home(), mariadb.MarkerRelPath, "", 0600)

	_, err := e.installer.Install(rc, devInput(15))
	require.NoError(t, err)
	assert.Zero(t, e.runner.Count("mysql"))
	assert.Zero(t, e.runner.Count("systemctl restart mariadb"))
	testutil.AssertFileNotExists(t, e.installer.MariaDBConfigPath)
}

func TestInstallCommandFailureNamesStep(t *testing.T) {
	rc := testutil.TestContext(t)
	e := newEnv(t, "debian", "12", "bookworm", "3.11.2")
	e.runner.On("bench init", "", testutil.CommandFailure("bench init", "fatal: unable to access"))

	st, err := e.installer.Install(rc, devInput(15))
	require.Error(t, err)

	var stepErr *workflow.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "workspace", stepErr.Step)
	assert.True(t, hestia_err.IsExternalCommandError(err))
	assert.Equal(t, 1, hestia_err.GetExitCode(err))
	assert.Zero(t, e.runner.Count("bench new-site"))
	assert.NotContains(t, st.Completed, "workspace")
}

func TestInstallProductionWithERPNext(t *testing.T) {
	rc := testutil.TestContext(t)
	e := newEnv(t, "ubuntu", "24.04", "noble", "3.12.3")
	in := devInput(15)
	in.Site = strp("erp.example.com")
	in.Production = boolp(true)
	in.InstallERPNext = boolp(true)
	in.InstallHRMS = boolp(true)
	in.TLS = boolp(false)

	st, err := e.installer.Install(rc, in)
	require.NoError(t, err)
	assert.Empty(t, st.Skipped)

	assert.Equal(t, 1, e.runner.Count("bench get-app erpnext --branch version-15"))
	assert.Equal(t, 1, e.runner.Count("bench get-app hrms --branch version-15"))
	assert.Equal(t, 1, e.runner.Count("bench setup production frappe --yes"))
	assert.Zero(t, e.runner.Count("certbot"))
	assert.Contains(t, e.out.String(), "http://10.0.0.5")
}

func TestInstallPDFFallbackWarns(t *testing.T) {
	rc := testutil.TestContext(t)
	e := newEnv(t, "debian", "12", "bookworm", "3.11.2")
	e.runner.OnFunc(func(o execute.Options) bool {
		return o.Command == "apt-get" && strings.Contains(o.Line(), "wkhtmltopdf")
	}, "", testutil.CommandFailure("apt-get install", "E: Package 'wkhtmltopdf' has no installation candidate"))

	st, err := e.installer.Install(rc, devInput(15))
	require.NoError(t, err)
	assert.False(t, st.PDFInstalled)
	assert.Contains(t, strings.Join(st.Warnings, "\n"), "wkhtmltopdf")
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	rc := testutil.TestContext(t)
	ctx, cancel := context.WithCancel(rc.Ctx)
	cancel()
	rc.Ctx = ctx

	ran := false
	err := workflow.Run(rc, []workflow.Step{{Name: "first", Run: func(*hestia_io.RuntimeContext, *workflow.State) error {
		ran = true
		return nil
	}}}, &workflow.State{})
	require.Error(t, err)
	assert.False(t, ran)
	assert.Equal(t, 130, hestia_err.GetExitCode(err))
}
