package python_test

import (
	"testing"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/apt"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_err"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/platform"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/python"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/release"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plan(t *testing.T, v int) release.Plan {
	p, err := release.For(v)
	require.NoError(t, err)
	return p
}

func TestParseVersion(t *testing.T) {
	tests := []testutil.TableTest[string]{
		{Name: "full", Input: "Python 3.12.3\n", Expected: "3.12.3"},
		{Name: "two part", Input: "Python 3.14", Expected: "3.14"},
		{Name: "garbage", Input: "command not found", Expected: "", ExpectError: true},
	}
	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			v, ok := python.ParseVersion(tt.Input)
			assert.Equal(t, !tt.ExpectError, ok)
			assert.Equal(t, tt.Expected, v)
		})
	}
}

func TestEnsureFloorMet(t *testing.T) {
	rc := testutil.TestContext(t)
	runner := testutil.NewFakeRunner()
	i := python.Installer{Runner: runner, Apt: apt.Installer{Runner: runner}}

	bin, err := i.Ensure(rc, plan(t, 14), platform.HostFacts{Distro: "ubuntu", PythonVersion: "3.10.12"})
	require.NoError(t, err)
	assert.Equal(t, "python3", bin)
	assert.Empty(t, runner.Calls)
}

func TestEnsureDeadsnakesOnUbuntu(t *testing.T) {
	rc := testutil.TestContext(t)
	runner := testutil.NewFakeRunner().On("python3.11 --version", "Python 3.11.9\n", nil)
	i := python.Installer{Runner: runner, Apt: apt.Installer{Runner: runner}}

	bin, err := i.Ensure(rc, plan(t, 15), platform.HostFacts{Distro: "ubuntu", PythonVersion: "3.10.12"})
	require.NoError(t, err)
	assert.Equal(t, "python3.11", bin)

	assert.Equal(t, 1, runner.Count("add-apt-repository -y ppa:deadsnakes/ppa"))
	install, ok := runner.Find("apt-get install")
	require.True(t, ok)
	assert.Subset(t, install.Args, []string{"python3.11", "python3.11-dev", "python3.11-venv"})
}

func TestEnsureDebianBelowFloor(t *testing.T) {
	rc := testutil.TestContext(t)
	runner := testutil.NewFakeRunner()
	i := python.Installer{Runner: runner, Apt: apt.Installer{Runner: runner}}

	_, err := i.Ensure(rc, plan(t, 15), platform.HostFacts{Distro: "debian", PythonVersion: "3.9.2"})
	assert.True(t, hestia_err.IsUnsupportedPlatformError(err))
	assert.Zero(t, runner.Count("apt-get"))
}

func TestEnsureStrictFailsWithoutInstall(t *testing.T) {
	rc := testutil.TestContext(t)
	runner := testutil.NewFakeRunner()
	i := python.Installer{Runner: runner, Apt: apt.Installer{Runner: runner}}

	_, err := i.Ensure(rc, plan(t, 16), platform.HostFacts{Distro: "ubuntu", PythonVersion: "3.12.3"})
	assert.True(t, hestia_err.IsUnsupportedPlatformError(err))
	assert.Zero(t, runner.Count("add-apt-repository"))
	assert.Zero(t, runner.Count("apt-get"))
}

func TestEnsureDetectsWhenFactsEmpty(t *testing.T) {
	rc := testutil.TestContext(t)
	runner := testutil.NewFakeRunner().On("python3 --version", "Python 3.12.3", nil)
	i := python.Installer{Runner: runner, Apt: apt.Installer{Runner: runner}}

	bin, err := i.Ensure(rc, plan(t, 15), platform.HostFacts{Distro: "debian"})
	require.NoError(t, err)
	assert.Equal(t, "python3", bin)
}

func TestEnsureDryRun(t *testing.T) {
	tests := []struct {
		name  string
		facts platform.HostFacts
		want  string
		ppa   int
	}{
		{name: "nothing detected", facts: platform.HostFacts{Distro: "debian"}, want: "python3"},
		{name: "known below floor on ubuntu", facts: platform.HostFacts{Distro: "ubuntu", PythonVersion: "3.10.12"}, want: "python3.11", ppa: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := testutil.TestContext(t)
			runner := testutil.NewFakeRunner()
			i := python.Installer{Runner: runner, Apt: apt.Installer{Runner: runner}, DryRun: true}

			bin, err := i.Ensure(rc, plan(t, 15), tt.facts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, bin)
			assert.Equal(t, tt.ppa, runner.Count("add-apt-repository"))
			assert.Zero(t, runner.Count("python3.11 --version"))
		})
	}
}

func TestMeets(t *testing.T) {
	assert.True(t, python.Meets("3.14.0", "3.14"))
	assert.True(t, python.Meets("3.12.3", "3.10"))
	assert.False(t, python.Meets("3.12.3", "3.14"))
	assert.False(t, python.Meets("", "3.10"))
}
