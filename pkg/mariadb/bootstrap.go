// pkg/mariadb/bootstrap.go

package mariadb

import (
	"os"
	"strings"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_err"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_io"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_unix"
	"github.com/hashicorp/go-multierror"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// DefaultService is the systemd unit of the distribution package.
const DefaultService = "mariadb"

// Bootstrapper performs the one-time hardening of a fresh MariaDB install.
type Bootstrapper struct {
	Runner     execute.Runner
	Systemctl  hestia_unix.Systemctl
	Marker     Marker
	ConfigPath string
	Service    string
	// Hostname is the second host anonymous accounts are created for.
	// Defaults to os.Hostname.
	Hostname string
	DryRun   bool
}

// Result describes what Bootstrap did.
type Result struct {
	AlreadyConfigured bool
	// Warnings holds failures of the best-effort hardening statements.
	Warnings error
}

type statement struct {
	name string
	sql  string
}

func hardening(rootPassword, hostname string) []statement {
	anonymous := "DROP USER IF EXISTS ''@'localhost'"
	if hostname != "" && hostname != "localhost" {
		anonymous += ", ''@'" + quoteSQL(hostname) + "'"
	}
	return []statement{
		{"set root password", "ALTER USER 'root'@'localhost' IDENTIFIED BY '" + quoteSQL(rootPassword) + "';"},
		{"remove anonymous users", anonymous + ";"},
		{"drop test database", "DROP DATABASE IF EXISTS test;"},
		{"flush privileges", "FLUSH PRIVILEGES;"},
	}
}

// Bootstrap hardens MariaDB unless the marker says it already happened.
func (b Bootstrapper) Bootstrap(rc *hestia_io.RuntimeContext, rootPassword string) (Result, error) {
	logger := otelzap.Ctx(rc.Ctx)

	// ASSESS
	if b.Marker.IsBootstrapped() {
		logger.Info("MariaDB already configured, skipping", zap.String("marker", b.Marker.Path))
		return Result{AlreadyConfigured: true}, nil
	}

	hostname := b.Hostname
	if hostname == "" {
		hostname, _ = os.Hostname()
	}

	// INTERVENE - hardening is best-effort
	var warnings error
	for _, st := range hardening(rootPassword, hostname) {
		_, err := b.Runner.Run(rc.Ctx, execute.Options{
			Command: "mysql",
			Args:    []string{"--user=root"},
			Env:     []string{"MYSQL_PWD=" + rootPassword},
			Stdin:   st.sql,
			Capture: true,
			Redact:  []string{rootPassword},
		})
		if err != nil {
			if hestia_err.CategoryOf(err) == hestia_err.CategoryInterrupted {
				return Result{}, err
			}
			logger.Warn("MariaDB hardening step failed, continuing",
				zap.String("step", st.name),
				zap.Error(err))
			warnings = multierror.Append(warnings, err)
		}
	}

	configPath := b.ConfigPath
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	service := b.Service
	if service == "" {
		service = DefaultService
	}

	if b.DryRun {
		logger.Info("Dry run mode - config and marker not written",
			zap.String("config", configPath),
			zap.String("marker", b.Marker.Path))
	} else {
		if err := WriteConfig(configPath); err != nil {
			return Result{}, hestia_err.NewInternalError("failed to write MariaDB config", err)
		}
		logger.Info("MariaDB charset config written", zap.String("path", configPath))
	}

	if err := b.Systemctl.Restart(rc.Ctx, service); err != nil {
		return Result{}, err
	}

	// EVALUATE
	if !b.DryRun {
		if err := b.Marker.Mark(); err != nil {
			return Result{}, hestia_err.NewInternalError("failed to write bootstrap marker", err)
		}
		if err := b.Marker.HandOver(); err != nil {
			logger.Warn("Could not hand marker to target account", zap.Error(err))
		}
	}
	logger.Info("MariaDB bootstrap complete", zap.String("marker", b.Marker.Path))
	return Result{Warnings: warnings}, nil
}

var sqlQuoter = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func quoteSQL(s string) string {
	return sqlQuoter.Replace(s)
}
