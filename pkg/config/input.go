// pkg/config/input.go

package config

import (
	"strconv"
	"strings"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_err"
	"github.com/spf13/viper"
)

// Flag and viper key names.
const (
	KeyVersion        = "version"
	KeySite           = "site"
	KeyDBRootPassword = "db-root-password"
	KeyAdminPassword  = "admin-password"
	KeyProduction     = "production"
	KeyInstallERPNext = "install-erpnext"
	KeyInstallHRMS    = "install-hrms"
	KeySSL            = "ssl"
	KeyEmail          = "email"
	KeyYes            = "yes"
	KeyBenchDir       = "bench-dir"
	KeyDryRun         = "dry-run"
)

// EnvAssumeDefaults forces non-interactive defaults mode.
const EnvAssumeDefaults = "HESTIA_ASSUME_DEFAULTS"

// Input is what the operator supplied. Nil pointers mean "not given", so the
// resolver can tell an explicit false from an unset flag.
type Input struct {
	Version        *int
	Site           *string
	DBRootPassword *string
	AdminPassword  *string
	Production     *bool
	InstallERPNext *bool
	InstallHRMS    *bool
	TLS            *bool
	Email          *string

	AssumeDefaults bool
	BenchDir       string
	DryRun         bool
}

// InputFromViper collects values that were set by flag or environment.
func InputFromViper(v *viper.Viper) (Input, error) {
	in := Input{
		AssumeDefaults: v.GetBool(KeyYes),
		BenchDir:       v.GetString(KeyBenchDir),
		DryRun:         v.GetBool(KeyDryRun),
	}

	if v.IsSet(KeyVersion) {
		raw := strings.TrimSpace(v.GetString(KeyVersion))
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Input{}, hestia_err.ConfigurationErrorf("--version must be a number, got %q", raw)
		}
		in.Version = &n
	}

	in.Site = stringIfSet(v, KeySite)
	in.DBRootPassword = stringIfSet(v, KeyDBRootPassword)
	in.AdminPassword = stringIfSet(v, KeyAdminPassword)
	in.Email = stringIfSet(v, KeyEmail)

	in.Production = boolIfSet(v, KeyProduction)
	in.InstallERPNext = boolIfSet(v, KeyInstallERPNext)
	in.InstallHRMS = boolIfSet(v, KeyInstallHRMS)
	in.TLS = boolIfSet(v, KeySSL)

	return in, nil
}

func stringIfSet(v *viper.Viper, key string) *string {
	if !v.IsSet(key) {
		return nil
	}
	s := v.GetString(key)
	return &s
}

func boolIfSet(v *viper.Viper, key string) *bool {
	if !v.IsSet(key) {
		return nil
	}
	b := v.GetBool(key)
	return &b
}
