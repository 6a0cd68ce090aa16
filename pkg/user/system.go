package user

import (
	"fmt"
	"os"
	osuser "os/user"
	"strconv"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_err"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_io"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/interaction"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// EnvTargetUser overrides the account hestia provisions for.
const EnvTargetUser = "HESTIA_TARGET_USER"

// Account is the unprivileged account that owns the bench workspace.
type Account struct {
	Username string `yaml:"username"`
	UID      int    `yaml:"uid"`
	GID      int    `yaml:"gid"`
	HomeDir  string `yaml:"home_dir"`
}

// Lookup is the subset of os/user used here.
type Lookup interface {
	Lookup(name string) (*osuser.User, error)
	Current() (*osuser.User, error)
}

// SystemLookup reads the real account database.
type SystemLookup struct{}

func (SystemLookup) Lookup(name string) (*osuser.User, error) { return osuser.Lookup(name) }
func (SystemLookup) Current() (*osuser.User, error)           { return osuser.Current() }

// ResolveTarget picks the target account: override env, then SUDO_USER, then
// the current user. The result is never root.
func ResolveTarget(rc *hestia_io.RuntimeContext, users Lookup, getenv func(string) string) (*Account, error) {
	logger := otelzap.Ctx(rc.Ctx)
	if users == nil {
		users = SystemLookup{}
	}
	if getenv == nil {
		getenv = os.Getenv
	}

	// ASSESS - find where the account name comes from
	var (
		u      *osuser.User
		err    error
		source string
	)
	switch {
	case getenv(EnvTargetUser) != "":
		source = EnvTargetUser
		u, err = users.Lookup(getenv(EnvTargetUser))
	case getenv("SUDO_USER") != "":
		source = "SUDO_USER"
		u, err = users.Lookup(getenv("SUDO_USER"))
	default:
		source = "current user"
		u, err = users.Current()
	}
	if err != nil {
		return nil, hestia_err.NewConfigurationError(
			fmt.Sprintf("cannot resolve target account from %s: %v", source, err),
			fmt.Sprintf("Set %s to an existing unprivileged account", EnvTargetUser))
	}

	// EVALUATE - never provision for root
	if u.Uid == "0" || u.Username == "root" {
		return nil, hestia_err.NewPrivilegeError(
			fmt.Sprintf("target account resolved to root (via %s)", source),
			"Run hestia with sudo from an unprivileged account",
			fmt.Sprintf("Or set %s to the account that should own the bench", EnvTargetUser))
	}

	if err := interaction.ValidateUsername(u.Username); err != nil {
		return nil, hestia_err.ConfigurationErrorf("account name %q (via %s): %v", u.Username, source, err)
	}

	if u.HomeDir == "" {
		return nil, hestia_err.ConfigurationErrorf("account %s has no home directory", u.Username)
	}
	if st, statErr := os.Stat(u.HomeDir); statErr != nil || !st.IsDir() {
		return nil, hestia_err.NewConfigurationError(
			fmt.Sprintf("home directory %s of %s does not exist", u.HomeDir, u.Username),
			fmt.Sprintf("Create it with: mkhomedir_helper %s", u.Username))
	}

	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return nil, hestia_err.NewInternalError("non-numeric uid", err)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return nil, hestia_err.NewInternalError("non-numeric gid", err)
	}

	logger.Info("Target account resolved",
		zap.String("user", u.Username),
		zap.String("home", u.HomeDir),
		zap.String("source", source))

	return &Account{Username: u.Username, UID: uid, GID: gid, HomeDir: u.HomeDir}, nil
}
