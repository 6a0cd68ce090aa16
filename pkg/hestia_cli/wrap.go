// pkg/hestia_cli/wrap.go

package hestia_cli

import (
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_err"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_io"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Wrap ensures panic recovery, telemetry and logging around a command body.
func Wrap(fn func(rc *hestia_io.RuntimeContext, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		rc := hestia_io.NewContext(cmd.Context(), cmd.Name())
		defer rc.End(&err)
		defer rc.HandlePanic(&err)

		hestia_io.LogRuntimeExecutionContext(rc)
		rc.Log.Debug("Command invoked", zap.String("path", cmd.CommandPath()))

		err = fn(rc, cmd, args)
		return hestia_err.WithStack(hestia_err.FromContext(err))
	}
}
