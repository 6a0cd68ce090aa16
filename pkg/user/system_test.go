package user_test

import (
	"testing"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_err"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/testutil"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestResolveTargetOrder(t *testing.T) {
	rc := testutil.TestContext(t)
	users := testutil.NewFakeUsers(t, "frappe", "alice", "bob")
	users.CurrentName = "bob"

	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "override wins", env: map[string]string{user.EnvTargetUser: "frappe", "SUDO_USER": "alice"}, want: "frappe"},
		{name: "sudo user", env: map[string]string{"SUDO_USER": "alice"}, want: "alice"},
		{name: "current user", env: map[string]string{}, want: "bob"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acct, err := user.ResolveTarget(rc, users, env(tt.env))
			require.NoError(t, err)
			assert.Equal(t, tt.want, acct.Username)
			assert.Equal(t, users.Accounts[tt.want].HomeDir, acct.HomeDir)
			assert.NotZero(t, acct.UID)
		})
	}
}

func TestResolveTargetRootIsPrivilegeError(t *testing.T) {
	rc := testutil.TestContext(t)
	users := testutil.NewFakeUsers(t)

	_, err := user.ResolveTarget(rc, users, env(nil))
	assert.True(t, hestia_err.IsPrivilegeError(err))

	_, err = user.ResolveTarget(rc, users, env(map[string]string{"SUDO_USER": "root"}))
	assert.True(t, hestia_err.IsPrivilegeError(err))
}

func TestResolveTargetMissingHome(t *testing.T) {
	rc := testutil.TestContext(t)
	users := testutil.NewFakeUsers(t, "frappe")
	users.Accounts["frappe"].HomeDir = "/nonexistent/home/frappe"

	_, err := user.ResolveTarget(rc, users, env(map[string]string{"SUDO_USER": "frappe"}))
	assert.True(t, hestia_err.IsConfigurationError(err))
}

func TestResolveTargetUnknownAccount(t *testing.T) {
	rc := testutil.TestContext(t)
	users := testutil.NewFakeUsers(t)

	_, err := user.ResolveTarget(rc, users, env(map[string]string{user.EnvTargetUser: "ghost"}))
	assert.True(t, hestia_err.IsConfigurationError(err))
}

func TestResolveTargetRejectsOddNames(t *testing.T) {
	rc := testutil.TestContext(t)
	users := testutil.NewFakeUsers(t, "Deploy;Ops")

	_, err := user.ResolveTarget(rc, users, env(map[string]string{user.EnvTargetUser: "Deploy;Ops"}))
	require.Error(t, err)
	assert.True(t, hestia_err.IsConfigurationError(err))
}
