package testutil

import (
	"fmt"
	"os"
	osuser "os/user"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteOSRelease writes an os-release file into dir and returns its path.
func WriteOSRelease(t *testing.T, dir, id, versionID, codename string) string {
	t.Helper()
	content := fmt.Sprintf("NAME=%q\nID=%s\nVERSION_ID=%q\nVERSION_CODENAME=%s\nPRETTY_NAME=%q\n",
		id, id, versionID, codename, fmt.Sprintf("%s %s", id, versionID))
	return CreateTestFile(t, dir, "os-release", content, 0644)
}

// CreateTestFile creates a test file with specified content and permissions
func CreateTestFile(t *testing.T, dir, filename, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	return path
}

// AssertFileExists verifies that a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	_, err := os.Stat(path)
	require.NoError(t, err, "expected file to exist: %s", path)
}

// AssertFileNotExists verifies that a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "expected file to not exist: %s", path)
}

// FakeUsers is an in-memory account database.
type FakeUsers struct {
	Accounts    map[string]*osuser.User
	CurrentName string
}

// NewFakeUsers creates accounts with homes under t.TempDir(). root is always
// present with uid 0.
func NewFakeUsers(t *testing.T, names ...string) *FakeUsers {
	t.Helper()
	base := t.TempDir()
	u := &FakeUsers{
		Accounts:    map[string]*osuser.User{"root": {Username: "root", Uid: "0", Gid: "0", HomeDir: "/root"}},
		CurrentName: "root",
	}
	for i, name := range names {
		home := filepath.Join(base, name)
		require.NoError(t, os.MkdirAll(home, 0755))
		id := fmt.Sprint(1000 + i)
		u.Accounts[name] = &osuser.User{Username: name, Uid: id, Gid: id, HomeDir: home}
	}
	return u
}

// Lookup finds an account by name.
func (u *FakeUsers) Lookup(name string) (*osuser.User, error) {
	if a, ok := u.Accounts[name]; ok {
		return a, nil
	}
	return nil, osuser.UnknownUserError(name)
}

// Current returns the account named by CurrentName.
func (u *FakeUsers) Current() (*osuser.User, error) {
	return u.Lookup(u.CurrentName)
}
