// pkg/config/config.go
//
// Resolved installer configuration. A Config is built once by the Resolver
// and passed by value to every component; nothing mutates it afterwards and
// it is never written to disk.

package config

import (
	"fmt"
	"strings"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_err"
	cerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultSiteName = "site1.local"
	DefaultBenchDir = "frappe-bench"
)

// Config is the final, validated set of installer options.
type Config struct {
	Version  int    `yaml:"version" validate:"oneof=13 14 15 16"`
	Channel  string `yaml:"channel" validate:"required"`
	SiteName string `yaml:"site_name" validate:"required,hostname_rfc1123"`

	DBRootPassword string `yaml:"-" validate:"required"`
	AdminPassword  string `yaml:"-" validate:"required"`

	Production     bool   `yaml:"production"`
	InstallERPNext bool   `yaml:"install_erpnext"`
	InstallHRMS    bool   `yaml:"install_hrms"`
	TLS            bool   `yaml:"tls"`
	Email          string `yaml:"email,omitempty" validate:"omitempty,email"`

	AssumeDefaults bool   `yaml:"assume_defaults"`
	BenchDir       string `yaml:"bench_dir" validate:"required,excludesall=/"`
	DryRun         bool   `yaml:"dry_run"`

	// Set when the password was generated instead of supplied, so the
	// summary can show it once.
	GeneratedDBRootPassword bool `yaml:"generated_db_root_password,omitempty"`
	GeneratedAdminPassword  bool `yaml:"generated_admin_password,omitempty"`
}

// Secrets lists the credential values for log redaction.
func (c Config) Secrets() []string {
	return []string{c.DBRootPassword, c.AdminPassword}
}

// Validate checks field constraints and returns a ConfigurationError naming
// the offending fields.
func (c Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !cerr.As(err, &verrs) {
		return hestia_err.NewInternalError("configuration validation failed", err)
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, describe(fe))
	}
	return hestia_err.NewConfigurationError("invalid configuration: " + strings.Join(problems, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Field() {
	case "DBRootPassword":
		return "database root password is required"
	case "AdminPassword":
		return "administrator password is required"
	case "SiteName":
		if fe.Tag() == "required" {
			return "site name is required"
		}
		return fmt.Sprintf("site name %q is not a valid host name", fe.Value())
	case "Email":
		return fmt.Sprintf("email %q is not valid", fe.Value())
	case "Version":
		return fmt.Sprintf("version %v is not one of 13, 14, 15, 16", fe.Value())
	case "BenchDir":
		return fmt.Sprintf("bench directory %q must be a plain directory name", fe.Value())
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}
