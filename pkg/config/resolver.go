// pkg/config/resolver.go

package config

import (
	"strconv"
	"strings"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_err"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_io"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/interaction"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/release"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const generatedPasswordLength = 24

// Resolver merges flags, environment and prompts into a Config.
type Resolver struct {
	Prompter interaction.Prompter
}

// Resolve builds the final configuration. Unset fields are prompted for
// unless AssumeDefaults is set, in which case the documented defaults apply.
func (r Resolver) Resolve(rc *hestia_io.RuntimeContext, in Input) (Config, error) {
	logger := otelzap.Ctx(rc.Ctx)
	interactive := !in.AssumeDefaults
	if interactive && r.Prompter == nil {
		return Config{}, hestia_err.NewInternalError("interactive resolution without a prompter", nil)
	}

	cfg := Config{
		AssumeDefaults: in.AssumeDefaults,
		BenchDir:       in.BenchDir,
		DryRun:         in.DryRun,
	}
	if cfg.BenchDir == "" {
		cfg.BenchDir = DefaultBenchDir
	}

	logger.Info("Resolving configuration", zap.Bool("interactive", interactive))

	var err error
	if cfg.Version, err = r.version(rc, in, interactive); err != nil {
		return Config{}, err
	}
	cfg.Channel = release.Channel(cfg.Version)

	if cfg.SiteName, err = r.site(rc, in, interactive); err != nil {
		return Config{}, err
	}

	if cfg.DBRootPassword, cfg.GeneratedDBRootPassword, err = r.secret(rc, in.DBRootPassword, interactive,
		"MariaDB root password", KeyDBRootPassword); err != nil {
		return Config{}, err
	}
	if cfg.AdminPassword, cfg.GeneratedAdminPassword, err = r.secret(rc, in.AdminPassword, interactive,
		"Administrator password", KeyAdminPassword); err != nil {
		return Config{}, err
	}

	if cfg.Production, err = r.flag(rc, in.Production, interactive, "Set up for production (nginx, supervisor)?", false); err != nil {
		return Config{}, err
	}
	if cfg.InstallERPNext, err = r.flag(rc, in.InstallERPNext, interactive, "Install ERPNext?", true); err != nil {
		return Config{}, err
	}

	// HRMS and TLS are part of the production setup; they are only asked
	// about when production was chosen.
	askProd := interactive && cfg.Production
	if cfg.InstallHRMS, err = r.flag(rc, in.InstallHRMS, askProd, "Install HRMS?", false); err != nil {
		return Config{}, err
	}
	if cfg.TLS, err = r.flag(rc, in.TLS, askProd, "Request a Let's Encrypt certificate?", false); err != nil {
		return Config{}, err
	}

	if !cfg.Production {
		if cfg.InstallHRMS {
			logger.Warn("HRMS is installed by the production setup; ignoring --install-hrms in development mode")
			cfg.InstallHRMS = false
		}
		if cfg.TLS {
			logger.Warn("TLS requires production mode; ignoring --ssl")
			cfg.TLS = false
		}
	}
	if cfg.InstallHRMS && !cfg.InstallERPNext {
		return Config{}, hestia_err.NewConfigurationError("HRMS requires ERPNext",
			"Pass --install-erpnext or drop --install-hrms")
	}

	if cfg.TLS {
		if cfg.Email, err = r.email(rc, in, interactive); err != nil {
			return Config{}, err
		}
	} else if in.Email != nil {
		cfg.Email = strings.TrimSpace(*in.Email)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	logger.Info("Configuration resolved",
		zap.Int("version", cfg.Version),
		zap.String("channel", cfg.Channel),
		zap.String("site", cfg.SiteName),
		zap.Bool("production", cfg.Production),
		zap.Bool("erpnext", cfg.InstallERPNext),
		zap.Bool("hrms", cfg.InstallHRMS),
		zap.Bool("tls", cfg.TLS),
		zap.String("bench_dir", cfg.BenchDir))
	return cfg, nil
}

func (r Resolver) version(rc *hestia_io.RuntimeContext, in Input, interactive bool) (int, error) {
	v := release.DefaultVersion
	switch {
	case in.Version != nil:
		v = *in.Version
	case interactive:
		label := "Frappe/ERPNext version (" + strings.Join(release.SupportedVersionStrings(), "/") + ")"
		raw, err := r.Prompter.Input(rc.Ctx, label, strconv.Itoa(release.DefaultVersion))
		if err != nil {
			return 0, promptError(err, "version")
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return 0, hestia_err.ConfigurationErrorf("version must be a number, got %q", raw)
		}
		v = n
	}
	if _, err := release.For(v); err != nil {
		return 0, err
	}
	return v, nil
}

func (r Resolver) site(rc *hestia_io.RuntimeContext, in Input, interactive bool) (string, error) {
	var site string
	switch {
	case in.Site != nil:
		site = *in.Site
	case interactive:
		answer, err := r.Prompter.Input(rc.Ctx, "Site name (e.g. erp.example.com)", "")
		if err != nil {
			return "", promptError(err, "site name")
		}
		site = answer
	default:
		site = DefaultSiteName
	}
	site = strings.ToLower(strings.TrimSpace(site))
	if site == "" {
		return "", hestia_err.NewConfigurationError("site name cannot be empty",
			"Pass --site or answer the site name prompt")
	}
	return site, nil
}

func (r Resolver) secret(rc *hestia_io.RuntimeContext, given *string, interactive bool, label, flag string) (string, bool, error) {
	switch {
	case given != nil:
		if strings.TrimSpace(*given) == "" {
			return "", false, hestia_err.ConfigurationErrorf("--%s cannot be empty", flag)
		}
		return *given, false, nil
	case interactive:
		v, err := interaction.ConfirmedSecret(rc.Ctx, r.Prompter, label)
		if err != nil {
			return "", false, promptError(err, strings.ToLower(label))
		}
		return v, false, nil
	}

	v, err := GeneratePassword(generatedPasswordLength)
	if err != nil {
		return "", false, hestia_err.NewInternalError("generate password", err)
	}
	otelzap.Ctx(rc.Ctx).Info("Generated password", zap.String("for", flag))
	return v, true, nil
}

func (r Resolver) flag(rc *hestia_io.RuntimeContext, given *bool, ask bool, label string, def bool) (bool, error) {
	if given != nil {
		return *given, nil
	}
	if !ask {
		return def, nil
	}
	v, err := r.Prompter.YesNo(rc.Ctx, label, def)
	if err != nil {
		return false, promptError(err, label)
	}
	return v, nil
}

func (r Resolver) email(rc *hestia_io.RuntimeContext, in Input, interactive bool) (string, error) {
	var email string
	switch {
	case in.Email != nil:
		email = *in.Email
	case interactive:
		answer, err := r.Prompter.Input(rc.Ctx, "Email for certificate notices", "")
		if err != nil {
			return "", promptError(err, "email")
		}
		email = answer
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return "", hestia_err.NewConfigurationError("TLS requires a notification email",
			"Pass --email you@example.com or drop --ssl")
	}
	if err := interaction.ValidateEmail(email); err != nil {
		return "", hestia_err.ConfigurationErrorf("invalid email %q: %v", email, err)
	}
	return email, nil
}

func promptError(err error, what string) error {
	switch {
	case cerr.Is(err, interaction.ErrMismatch):
		return hestia_err.ConfigurationErrorf("%s entries did not match after %d attempts", what, interaction.MaxConfirmAttempts)
	case cerr.Is(err, interaction.ErrEmpty):
		return hestia_err.ConfigurationErrorf("%s cannot be empty", what)
	case cerr.Is(err, interaction.ErrNoInput):
		return hestia_err.NewConfigurationError("no answer for "+what,
			"Supply it as a flag or pass --yes to accept defaults")
	}
	return hestia_err.NewConfigurationError("failed to read "+what+": "+err.Error())
}
