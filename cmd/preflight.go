/* cmd/preflight.go */

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/config"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_cli"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_io"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/preflight"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/release"
	"github.com/spf13/cobra"
)

// PreflightCmd runs only the host checks.
var PreflightCmd = &cobra.Command{
	Use:   "preflight",
	Short: "Check whether this host can be provisioned",
	Long: `Preflight performs the same checks as the installer before it touches the
system: root privileges, target account, distribution and the OS floor of the
selected version. The exit status tells whether the host is ready.`,
	Args: noArgs,
	RunE: hestia_cli.Wrap(func(rc *hestia_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		in, err := inputFor(cmd)
		if err != nil {
			return err
		}
		version := release.DefaultVersion
		if in.Version != nil {
			version = *in.Version
		}
		production := in.Production != nil && *in.Production

		checker := preflight.Checker{Runner: execute.NewExecRunner(false)}
		res, err := checker.Run(rc, version, production)
		if err != nil {
			return err
		}
		printPreflight(cmd, res, production, in.BenchDir)
		return nil
	}),
}

func printPreflight(cmd *cobra.Command, res *preflight.Result, production bool, benchDir string) {
	out := cmd.OutOrStdout()
	mode := "development"
	if production {
		mode = "production"
	}
	fmt.Fprintf(out, "✅ %s is ready for Frappe %s (%s)\n", res.Facts.DisplayName(), res.Plan.Channel, mode)
	fmt.Fprintf(out, "   target account: %s (%s)\n", res.Account.Username, res.Account.HomeDir)
	python := res.Facts.PythonVersion
	if python == "" {
		python = "not found"
	}
	fmt.Fprintf(out, "   python3: %s (needs %s)\n", python, res.Plan.PythonFloor)
	for _, a := range res.Advisories {
		if a.Warning != "" {
			fmt.Fprintf(out, "⚠️  %s\n", a.Warning)
		}
	}
	if benchDir == "" {
		benchDir = config.DefaultBenchDir
	}
	fmt.Fprintf(out, "   workspace: %s\n", filepath.Join(res.Facts.HomeDir, benchDir))
}
