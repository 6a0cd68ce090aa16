package config_test

import (
	"testing"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/config"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_err"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/testutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func fullInput() config.Input {
	return config.Input{
		Version:        ptr(14),
		Site:           ptr("erp.example.com"),
		DBRootPassword: ptr("rootpw"),
		AdminPassword:  ptr("adminpw"),
		Production:     ptr(false),
		InstallERPNext: ptr(false),
		InstallHRMS:    ptr(false),
		TLS:            ptr(false),
		AssumeDefaults: true,
	}
}

func TestResolveNonInteractiveAllFlags(t *testing.T) {
	rc := testutil.TestContext(t)
	prompter := testutil.NewFakePrompter()
	r := config.Resolver{Prompter: prompter}

	first, err := r.Resolve(rc, fullInput())
	require.NoError(t, err)
	second, err := r.Resolve(rc, fullInput())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Empty(t, prompter.Asked)
	assert.Equal(t, 14, first.Version)
	assert.Equal(t, "version-14", first.Channel)
	assert.Equal(t, "erp.example.com", first.SiteName)
	assert.Equal(t, config.DefaultBenchDir, first.BenchDir)
	assert.False(t, first.GeneratedAdminPassword)
}

func TestResolveDefaults(t *testing.T) {
	rc := testutil.TestContext(t)
	r := config.Resolver{}

	cfg, err := r.Resolve(rc, config.Input{AssumeDefaults: true})
	require.NoError(t, err)

	assert.Equal(t, 15, cfg.Version)
	assert.Equal(t, "version-15", cfg.Channel)
	assert.Equal(t, config.DefaultSiteName, cfg.SiteName)
	assert.True(t, cfg.InstallERPNext)
	assert.False(t, cfg.Production)
	assert.False(t, cfg.TLS)
	assert.Len(t, cfg.DBRootPassword, 24)
	assert.Len(t, cfg.AdminPassword, 24)
	assert.NotEqual(t, cfg.DBRootPassword, cfg.AdminPassword)
	assert.True(t, cfg.GeneratedDBRootPassword)
	assert.True(t, cfg.GeneratedAdminPassword)
}

func TestResolveInteractive(t *testing.T) {
	rc := testutil.TestContext(t)
	prompter := testutil.NewFakePrompter(
		"16",              // version
		"ERP.Example.com", // site
		"root1", "root1",  // db root password + confirm
		"adm", "nope", "adm", "adm", // mismatch once, then match
		"y",   // production
		"",    // erpnext default yes
		"y",   // hrms
		"y",   // tls
		"ops@example.com",
	)
	r := config.Resolver{Prompter: prompter}

	cfg, err := r.Resolve(rc, config.Input{})
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Version)
	assert.Equal(t, "erp.example.com", cfg.SiteName)
	assert.Equal(t, "root1", cfg.DBRootPassword)
	assert.Equal(t, "adm", cfg.AdminPassword)
	assert.True(t, cfg.Production)
	assert.True(t, cfg.InstallERPNext)
	assert.True(t, cfg.InstallHRMS)
	assert.True(t, cfg.TLS)
	assert.Equal(t, "ops@example.com", cfg.Email)
	assert.Empty(t, prompter.Answers)
}

func TestResolveDevelopmentSkipsProductionPrompts(t *testing.T) {
	rc := testutil.TestContext(t)
	prompter := testutil.NewFakePrompter("14", "dev.local", "r", "r", "a", "a", "n", "n")
	cfg, err := config.Resolver{Prompter: prompter}.Resolve(rc, config.Input{})
	require.NoError(t, err)

	assert.False(t, cfg.Production)
	assert.False(t, cfg.InstallERPNext)
	assert.Len(t, prompter.Asked, 8)
}

func TestResolveErrors(t *testing.T) {
	rc := testutil.TestContext(t)

	tests := []struct {
		name    string
		input   func() config.Input
		answers []string
	}{
		{
			name:    "empty site answer",
			input:   func() config.Input { return config.Input{} },
			answers: []string{"15", ""},
		},
		{
			name: "empty site flag",
			input: func() config.Input {
				in := fullInput()
				in.Site = ptr("  ")
				return in
			},
		},
		{
			name: "tls without email",
			input: func() config.Input {
				in := fullInput()
				in.Production = ptr(true)
				in.TLS = ptr(true)
				return in
			},
		},
		{
			name: "malformed email",
			input: func() config.Input {
				in := fullInput()
				in.Production = ptr(true)
				in.TLS = ptr(true)
				in.Email = ptr("ops-at-example")
				return in
			},
		},
		{
			name: "unknown version",
			input: func() config.Input {
				in := fullInput()
				in.Version = ptr(12)
				return in
			},
		},
		{
			name: "empty password flag",
			input: func() config.Input {
				in := fullInput()
				in.AdminPassword = ptr("")
				return in
			},
		},
		{
			name:    "password never matches",
			input:   func() config.Input { return config.Input{} },
			answers: []string{"15", "s.local", "a", "b", "a", "b", "a", "b"},
		},
		{
			name:    "stdin closed",
			input:   func() config.Input { return config.Input{} },
			answers: []string{"15"},
		},
		{
			name: "invalid site name",
			input: func() config.Input {
				in := fullInput()
				in.Site = ptr("bad_site!")
				return in
			},
		},
		{
			name: "hrms without erpnext",
			input: func() config.Input {
				in := fullInput()
				in.Production = ptr(true)
				in.InstallHRMS = ptr(true)
				return in
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := config.Resolver{Prompter: testutil.NewFakePrompter(tt.answers...)}
			_, err := r.Resolve(rc, tt.input())
			require.Error(t, err)
			assert.True(t, hestia_err.IsConfigurationError(err), "got %v", err)
		})
	}
}

func TestResolveTLSIgnoredOutsideProduction(t *testing.T) {
	rc := testutil.TestContext(t)
	in := fullInput()
	in.TLS = ptr(true)
	in.InstallHRMS = ptr(true)

	cfg, err := config.Resolver{}.Resolve(rc, in)
	require.NoError(t, err)
	assert.False(t, cfg.TLS)
	assert.False(t, cfg.InstallHRMS)
}

func TestInputFromViper(t *testing.T) {
	cmd := &cobra.Command{Use: "hestia"}
	cli.AddStringFlag(cmd, config.KeyVersion, "", "", "")
	cli.AddStringFlag(cmd, config.KeySite, "", "", "")
	cli.AddStringFlag(cmd, config.KeyDBRootPassword, "", "", "")
	cli.AddStringFlag(cmd, config.KeyAdminPassword, "", "", "")
	cli.AddStringFlag(cmd, config.KeyEmail, "", "", "")
	cli.AddStringFlag(cmd, config.KeyBenchDir, "", config.DefaultBenchDir, "")
	cli.AddBoolFlag(cmd, config.KeyProduction, "", false, "")
	cli.AddBoolFlag(cmd, config.KeyInstallERPNext, "", false, "")
	cli.AddBoolFlag(cmd, config.KeyInstallHRMS, "", false, "")
	cli.AddBoolFlag(cmd, config.KeySSL, "", false, "")
	cli.AddBoolFlag(cmd, config.KeyYes, "", false, "")
	cli.AddBoolFlag(cmd, config.KeyDryRun, "", false, "")
	require.NoError(t, cmd.ParseFlags([]string{"--version", "16", "--site", "erp.local", "--production=false", "--yes"}))

	v, err := cli.NewViper(cmd)
	require.NoError(t, err)

	in, err := config.InputFromViper(v)
	require.NoError(t, err)
	require.NotNil(t, in.Version)
	assert.Equal(t, 16, *in.Version)
	assert.Equal(t, "erp.local", *in.Site)
	require.NotNil(t, in.Production)
	assert.False(t, *in.Production)
	assert.Nil(t, in.InstallERPNext)
	assert.Nil(t, in.AdminPassword)
	assert.True(t, in.AssumeDefaults)
	assert.Equal(t, config.DefaultBenchDir, in.BenchDir)

	require.NoError(t, cmd.ParseFlags([]string{"--version", "sixteen"}))
	_, err = config.InputFromViper(v)
	assert.True(t, hestia_err.IsConfigurationError(err))
}

func TestGeneratePassword(t *testing.T) {
	a, err := config.GeneratePassword(16)
	require.NoError(t, err)
	assert.Len(t, a, 16)
	assert.Regexp(t, `^[A-Za-z0-9]+$`, a)
}
