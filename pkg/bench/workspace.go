// pkg/bench/workspace.go

package bench

import (
	"os"
	"path/filepath"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/nodejs"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/user"
)

// Workspace is a bench directory owned by the target account.
type Workspace struct {
	Account *user.Account
	Name    string
	Dir     string
	Env     []string
}

// NewWorkspace describes <home>/<name>. nodeBin is put first on PATH so
// bench finds node and yarn; ~/.local/bin holds the bench CLI itself.
func NewWorkspace(acct *user.Account, name, nodeBin string) Workspace {
	path := filepath.Join(acct.HomeDir, ".local", "bin") + ":" + nodejs.SystemPath
	if nodeBin != "" {
		path = nodeBin + ":" + path
	}
	return Workspace{
		Account: acct,
		Name:    name,
		Dir:     filepath.Join(acct.HomeDir, name),
		Env:     []string{"HOME=" + acct.HomeDir, "PATH=" + path},
	}
}

// Exists reports whether the workspace directory is present.
func (w Workspace) Exists() bool {
	st, err := os.Stat(w.Dir)
	return err == nil && st.IsDir()
}

// SiteExists reports whether sites/<site> is present.
func (w Workspace) SiteExists(site string) bool {
	_, err := os.Stat(filepath.Join(w.Dir, "sites", site))
	return err == nil
}

// AppFetched reports whether apps/<app> is present.
func (w Workspace) AppFetched(app string) bool {
	_, err := os.Stat(filepath.Join(w.Dir, "apps", app))
	return err == nil
}

// Bench returns a bench invocation run as the target account inside the
// workspace.
func (w Workspace) Bench(args ...string) execute.Options {
	return execute.Options{
		Command: "bench",
		Args:    args,
		Dir:     w.Dir,
		User:    w.Account.Username,
		Env:     w.Env,
	}
}

// BenchAsRoot is Bench without the user switch. Only bench's production
// setup needs this.
func (w Workspace) BenchAsRoot(args ...string) execute.Options {
	o := w.Bench(args...)
	o.User = ""
	return o
}
