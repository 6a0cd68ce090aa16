// pkg/nodejs/nodejs.go
//
// Node.js for the target account via nvm, plus yarn. nvm is a shell function,
// so every nvm call is a bash -c line sourcing nvm.sh; paths in those lines
// are quoted with the bash printer from mvdan.cc/sh.

package nodejs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_err"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_io"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/release"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/user"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"mvdan.cc/sh/v3/syntax"
)

// NVMVersion is the nvm release installed.
const NVMVersion = "v0.40.3"

// NVMInstallURL is the upstream install script for NVMVersion.
var NVMInstallURL = "https://raw.githubusercontent.com/nvm-sh/nvm/" + NVMVersion + "/install.sh"

// SystemPath is appended after the user's tool directories.
const SystemPath = "/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin"

// Installer provisions node and yarn as the target account.
type Installer struct {
	Runner execute.Runner
}

// Ensure installs nvm if needed, installs the plan's Node major as default
// and yarn globally. It returns the directory holding node, npm and yarn.
func (i Installer) Ensure(rc *hestia_io.RuntimeContext, acct *user.Account, plan release.Plan) (string, error) {
	logger := otelzap.Ctx(rc.Ctx)
	nvmDir := filepath.Join(acct.HomeDir, ".nvm")
	nvmSh := filepath.Join(nvmDir, "nvm.sh")
	env := []string{"HOME=" + acct.HomeDir, "NVM_DIR=" + nvmDir}

	// ASSESS
	if _, err := os.Stat(nvmSh); err != nil {
		logger.Info("Installing nvm", zap.String("version", NVMVersion), zap.String("user", acct.Username))
		if err := i.installNVM(rc, acct, env); err != nil {
			return "", err
		}
	} else {
		logger.Info("nvm already present", zap.String("path", nvmSh))
	}

	// INTERVENE
	major := plan.NodeFloor
	if _, err := i.nvm(rc, acct, env, nvmSh, false, "nvm install "+major, "nvm alias default "+major); err != nil {
		return "", err
	}

	out, err := i.nvm(rc, acct, env, nvmSh, true, "nvm which "+major)
	if err != nil {
		return "", err
	}
	binDir := binDirFrom(out)
	if binDir == "" {
		binDir = filepath.Join(nvmDir, "versions", "node", "v"+major, "bin")
		logger.Warn("Could not read node path from nvm, assuming default layout", zap.String("bin_dir", binDir))
	}

	if _, err := i.Runner.Run(rc.Ctx, execute.Options{
		Command: "npm",
		Args:    []string{"install", "-g", "yarn"},
		User:    acct.Username,
		Env:     append(env, "PATH="+binDir+":"+SystemPath),
	}); err != nil {
		return "", err
	}

	// EVALUATE
	logger.Info("Node.js toolchain ready", zap.String("node_major", major), zap.String("bin_dir", binDir))
	return binDir, nil
}

func (i Installer) installNVM(rc *hestia_io.RuntimeContext, acct *user.Account, env []string) error {
	cacheDir := filepath.Join(acct.HomeDir, ".cache", "hestia")
	script := filepath.Join(cacheDir, "nvm-install.sh")

	steps := []execute.Options{
		{Command: "mkdir", Args: []string{"-p", cacheDir}},
		{Command: "curl", Args: []string{"-fsSL", "-o", script, NVMInstallURL}},
		{Command: "bash", Args: []string{script}, Env: append(env, "PROFILE=/dev/null")},
	}
	for _, s := range steps {
		s.User = acct.Username
		if s.Env == nil {
			s.Env = env
		}
		if _, err := i.Runner.Run(rc.Ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// nvm runs commands in a bash that has sourced nvm.sh.
func (i Installer) nvm(rc *hestia_io.RuntimeContext, acct *user.Account, env []string, nvmSh string, capture bool, cmds ...string) (string, error) {
	line, err := NVMLine(nvmSh, cmds...)
	if err != nil {
		return "", err
	}
	return i.Runner.Run(rc.Ctx, execute.Options{
		Command: "bash",
		Args:    []string{"-c", line},
		User:    acct.Username,
		Env:     env,
		Capture: capture,
	})
}

// NVMLine builds "source '<nvm.sh>' && cmd1 && cmd2".
func NVMLine(nvmSh string, cmds ...string) (string, error) {
	quoted, err := syntax.Quote(nvmSh, syntax.LangBash)
	if err != nil {
		return "", hestia_err.NewConfigurationError(fmt.Sprintf("cannot quote path %q: %v", nvmSh, err))
	}
	return strings.Join(append([]string{"source " + quoted}, cmds...), " && "), nil
}

func binDirFrom(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if !strings.HasPrefix(last, "/") {
		return ""
	}
	return filepath.Dir(last)
}
