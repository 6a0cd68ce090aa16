package production_test

import (
	"testing"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/apt"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/bench"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/config"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_err"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_unix"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/production"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/testutil"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConfigurator(runner *testutil.FakeRunner) production.Configurator {
	a := apt.Installer{Runner: runner}
	return production.Configurator{
		Apt:       a,
		Bench:     bench.Provisioner{Runner: runner, Apt: a},
		Systemctl: hestia_unix.Systemctl{Runner: runner},
		TLS:       production.Certbot{Runner: runner, Apt: a},
	}
}

func workspace(t *testing.T) bench.Workspace {
	acct := &user.Account{Username: "frappe", UID: 1000, GID: 1000, HomeDir: t.TempDir()}
	return bench.NewWorkspace(acct, config.DefaultBenchDir, "")
}

func baseConfig() config.Config {
	return config.Config{
		Version: 15, Channel: "version-15", SiteName: "erp.example.com",
		Production: true, InstallERPNext: true,
	}
}

func TestConfigureMinimal(t *testing.T) {
	rc := testutil.TestContext(t)
	runner := testutil.NewFakeRunner()
	ws := workspace(t)

	res, err := newConfigurator(runner).Configure(rc, ws, baseConfig())
	require.NoError(t, err)
	assert.False(t, res.TLSInstalled)
	assert.NoError(t, res.Warnings)

	setup, ok := runner.Find("bench setup production")
	require.True(t, ok)
	assert.Equal(t, "bench setup production frappe --yes", setup.Line())
	assert.Empty(t, setup.User, "production setup runs as root")
	assert.Equal(t, ws.Dir, setup.Dir)

	sched, ok := runner.Find("bench --site erp.example.com enable-scheduler")
	require.True(t, ok)
	assert.Equal(t, "frappe", sched.User)
	assert.Equal(t, 1, runner.Count("bench --site erp.example.com set-maintenance-mode off"))
	assert.Zero(t, runner.Count("bench get-app hrms"))
	assert.Zero(t, runner.Count("snap"))
	assert.Zero(t, runner.Count("certbot"))
}

func TestConfigureOptionalPackagesAreBestEffort(t *testing.T) {
	rc := testutil.TestContext(t)
	runner := testutil.NewFakeRunner().
		On("apt-get install -y -o Dpkg::Options::=--force-confnew fail2ban", "", testutil.CommandFailure("apt-get install fail2ban", "E: Unable to locate package"))

	res, err := newConfigurator(runner).Configure(rc, workspace(t), baseConfig())
	require.NoError(t, err)
	require.Error(t, res.Warnings)
	assert.Contains(t, res.Warnings.Error(), "fail2ban")
	assert.Equal(t, 1, runner.Count("bench setup production"))
}

func TestConfigureSetupFailureIsFatal(t *testing.T) {
	rc := testutil.TestContext(t)
	runner := testutil.NewFakeRunner().
		On("bench setup production", "", testutil.CommandFailure("bench setup production", "supervisor not found"))

	_, err := newConfigurator(runner).Configure(rc, workspace(t), baseConfig())
	require.Error(t, err)
	assert.True(t, hestia_err.IsExternalCommandError(err))
	assert.Zero(t, runner.Count("bench --site"))
}

func TestConfigureHRMSAndTLS(t *testing.T) {
	rc := testutil.TestContext(t)
	runner := testutil.NewFakeRunner()
	cfg := baseConfig()
	cfg.InstallHRMS = true
	cfg.TLS = true
	cfg.Email = "ops@example.com"

	res, err := newConfigurator(runner).Configure(rc, workspace(t), cfg)
	require.NoError(t, err)
	assert.True(t, res.TLSInstalled)

	assert.Equal(t, 1, runner.Count("bench get-app hrms --branch version-15"))
	assert.Equal(t, 1, runner.Count("bench --site erp.example.com install-app hrms"))

	lines := runner.Lines()
	idx := func(line string) int {
		for i, l := range lines {
			if l == line {
				return i
			}
		}
		return -1
	}
	order := []string{
		"snap install core",
		"snap refresh core",
		"snap install --classic certbot",
		"ln -sf /snap/bin/certbot /usr/bin/certbot",
		"certbot --nginx --non-interactive --agree-tos --email ops@example.com -d erp.example.com",
	}
	prev := -1
	for _, l := range order {
		i := idx(l)
		require.NotEqual(t, -1, i, l)
		assert.Greater(t, i, prev, l)
		prev = i
	}
}

func TestCertbotRequiresEmail(t *testing.T) {
	rc := testutil.TestContext(t)
	runner := testutil.NewFakeRunner()
	c := production.Certbot{Runner: runner, Apt: apt.Installer{Runner: runner}}

	err := c.Issue(rc, "erp.example.com", "")
	require.Error(t, err)
	assert.True(t, hestia_err.IsConfigurationError(err))
	assert.Empty(t, runner.Calls)
}

func TestCertbotFailureStops(t *testing.T) {
	rc := testutil.TestContext(t)
	runner := testutil.NewFakeRunner().
		On("snap install --classic certbot", "", testutil.CommandFailure("snap install", "error: too early for operation"))
	c := production.Certbot{Runner: runner, Apt: apt.Installer{Runner: runner}}

	err := c.Issue(rc, "erp.example.com", "ops@example.com")
	require.Error(t, err)
	assert.Zero(t, runner.Count("certbot --nginx"))
}
