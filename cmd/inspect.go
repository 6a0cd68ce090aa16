/* cmd/inspect.go */

package cmd

import (
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_cli"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_io"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/platform"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/python"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/release"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/user"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// InspectCmd prints host facts and the release plan without changing anything.
var InspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show detected host facts and the release plan as YAML",
	Long: `Inspect reads /etc/os-release, detects Python and the target account and
prints them together with the requirements of the selected Frappe version.
Nothing is installed or modified and root is not required.`,
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
		report, err := Inspect(rc, execute.NewExecRunner(false), platform.DefaultOSReleasePath, version)
		if err != nil {
			return err
		}
		return hestia_io.WriteYAML(rc.Ctx, cmd.OutOrStdout(), report)
	}),
}

// InspectReport is the YAML document printed by inspect.
type InspectReport struct {
	Facts     platform.HostFacts `yaml:"facts"`
	Plan      release.Plan       `yaml:"plan"`
	Supported bool               `yaml:"supported"`
	Problems  []string           `yaml:"problems,omitempty"`
}

// Inspect gathers facts without enforcing anything; failed checks are listed
// under problems.
func Inspect(rc *hestia_io.RuntimeContext, runner execute.Runner, osReleasePath string, version int) (*InspectReport, error) {
	logger := otelzap.Ctx(rc.Ctx)

	plan, err := release.For(version)
	if err != nil {
		return nil, err
	}
	info, err := platform.ReadOSRelease(rc, osReleasePath)
	if err != nil {
		return nil, err
	}

	report := &InspectReport{
		Plan: plan,
		Facts: platform.HostFacts{
			Distro:         info.ID,
			DistroVersion:  info.VersionID,
			Codename:       info.VersionCodename,
			PrettyName:     info.PrettyName,
			PythonVersion:  python.Detect(rc, runner, "python3"),
			PrimaryAddress: platform.PrimaryAddress(),
		},
	}

	if acct, err := user.ResolveTarget(rc, nil, nil); err != nil {
		report.Problems = append(report.Problems, err.Error())
	} else {
		report.Facts.TargetUser = acct.Username
		report.Facts.HomeDir = acct.HomeDir
	}
	if err := platform.CheckDistro(info.ID); err != nil {
		report.Problems = append(report.Problems, err.Error())
	}
	if err := plan.CheckOS(info.ID, info.VersionID); err != nil {
		report.Problems = append(report.Problems, err.Error())
	}
	if ok, err := release.AtLeast(report.Facts.PythonVersion, plan.PythonFloor); err == nil && !ok {
		note := "python3 " + report.Facts.PythonVersion + " is below " + plan.PythonFloor
		if plan.StrictPython {
			report.Problems = append(report.Problems, note)
		} else {
			logger.Info(note + ", hestia will install a newer interpreter")
		}
	}
	report.Supported = len(report.Problems) == 0

	logger.Debug("Inspection complete", zap.Bool("supported", report.Supported), zap.Int("problems", len(report.Problems)))
	return report, nil
}
