/* cmd/root.go */

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/config"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_cli"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_err"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_io"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/interaction"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/preflight"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/release"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/workflow"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// KeyEnvFile names the dotenv file flag.
const KeyEnvFile = "env-file"

// RootCmd installs Frappe when run without a subcommand.
var RootCmd = &cobra.Command{
	Use:   "hestia",
	Short: "Provision a single-host Frappe/ERPNext installation",
	Long: `Hestia installs Frappe (and optionally ERPNext and HRMS) on one Ubuntu or
Debian host: system packages, MariaDB, Redis, Python, Node.js, the bench
workspace and a site. With --production it also configures nginx, supervisor
and optionally a Let's Encrypt certificate.

Run it with sudo from the account that should own the bench.`,
	Args:          noArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          hestia_cli.Wrap(runInstall),
}

func init() {
	addInstallFlags(RootCmd)
	RootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return hestia_err.NewConfigurationError(err.Error(), "Run 'hestia --help' for the list of flags")
	})
	RootCmd.AddCommand(InspectCmd, PreflightCmd)
}

func addInstallFlags(cmd *cobra.Command) {
	cli.AddStringFlag(cmd, config.KeyVersion, "", "", fmt.Sprintf("Frappe major version (%v, default %d)", release.SupportedVersionStrings(), release.DefaultVersion))
	cli.AddStringFlag(cmd, config.KeySite, "", "", "Site name, e.g. erp.example.com (default "+config.DefaultSiteName+")")
	cli.AddStringFlag(cmd, config.KeyDBRootPassword, "", "", "MariaDB root password (generated when omitted with --yes)")
	cli.AddStringFlag(cmd, config.KeyAdminPassword, "", "", "Administrator password (generated when omitted with --yes)")
	cli.AddBoolFlag(cmd, config.KeyProduction, "", false, "Configure nginx and supervisor for production")
	cli.AddBoolFlag(cmd, config.KeyInstallERPNext, "", true, "Install ERPNext on the site")
	cli.AddBoolFlag(cmd, config.KeyInstallHRMS, "", false, "Install HRMS (production only, requires ERPNext)")
	cli.AddBoolFlag(cmd, config.KeySSL, "", false, "Obtain a Let's Encrypt certificate (production only)")
	cli.AddStringFlag(cmd, config.KeyEmail, "", "", "Email for Let's Encrypt notices (required with --ssl)")
	cli.AddBoolFlag(cmd, config.KeyYes, "y", false, "Never prompt; use defaults for anything not given")
	cli.AddStringFlag(cmd, config.KeyBenchDir, "", config.DefaultBenchDir, "Workspace directory name under the target home")
	cli.AddBoolFlag(cmd, config.KeyDryRun, "", false, "Log commands instead of running them")
	cli.AddStringFlag(cmd, KeyEnvFile, "", "", "Load HESTIA_* settings from a dotenv file")
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return hestia_err.ConfigurationErrorf("unexpected argument %q for %s", args[0], cmd.CommandPath())
	}
	return nil
}

// inputFor loads the env file, binds flags and environment, and collects
// what the operator supplied.
func inputFor(cmd *cobra.Command) (config.Input, error) {
	envFile, _ := cmd.Flags().GetString(KeyEnvFile)
	if err := cli.LoadEnvFile(envFile); err != nil {
		return config.Input{}, hestia_err.NewConfigurationError(
			fmt.Sprintf("cannot load env file %s: %v", envFile, err))
	}

	v, err := cli.NewViper(cmd)
	if err != nil {
		return config.Input{}, hestia_err.NewInternalError("failed to bind flags", err)
	}
	if err := cli.BindEnvAliases(v, config.KeyYes, "HESTIA_YES", config.EnvAssumeDefaults); err != nil {
		return config.Input{}, hestia_err.NewInternalError("failed to bind environment", err)
	}

	return config.InputFromViper(v)
}

func runInstall(rc *hestia_io.RuntimeContext, cmd *cobra.Command, _ []string) error {
	log := otelzap.Ctx(rc.Ctx)

	in, err := inputFor(cmd)
	if err != nil {
		return err
	}
	if in.DryRun {
		log.Warn("Dry run: commands are logged, not executed")
	}

	installer := workflow.Installer{
		Runner:   execute.NewExecRunner(in.DryRun),
		Prompter: interaction.NewTerminalPrompter(),
		Checker:  preflight.Checker{},
		Out:      cmd.OutOrStdout(),
		LogPath:  logger.Path(),
	}
	st, err := installer.Install(rc, in)
	if err != nil {
		return err
	}

	log.Info("Installation finished",
		zap.String("site", st.Config.SiteName),
		zap.Strings("steps", st.Completed),
		zap.Int("warnings", len(st.Warnings)))
	return nil
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Failed to flush logs: %v\n", err)
		}
	}()

	signals := hestia_cli.NewSignalHandler(context.Background())
	defer signals.Stop()

	err := RootCmd.ExecuteContext(signals.Context())
	if err == nil {
		return 0
	}

	report(os.Stderr, err, logger.Path())
	logger.L().Error("hestia failed",
		zap.String("category", hestia_err.CategoryOf(err).String()),
		zap.Error(err))
	return hestia_err.GetExitCode(err)
}

// report prints the failure for the operator, naming the failed step and
// the log file when known.
func report(w io.Writer, err error, logPath string) {
	fmt.Fprintf(w, "\n❌ %v\n", err)

	var stepErr *workflow.StepError
	if cerr.As(err, &stepErr) {
		if logPath != "" {
			fmt.Fprintf(w, "Step %q failed, see log %s\n", stepErr.Step, logPath)
		} else {
			fmt.Fprintf(w, "Step %q failed\n", stepErr.Step)
		}
	} else if logPath != "" {
		fmt.Fprintf(w, "See log %s\n", logPath)
	}
}
