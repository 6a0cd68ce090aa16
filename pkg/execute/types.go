// pkg/execute/types.go

package execute

import (
	"context"
	"strings"
	"time"
)

// Options describes one external command. It is a plain value so tests can
// record and compare invocations.
type Options struct {
	Command string
	Args    []string

	// Dir is the working directory.
	Dir string

	// User runs the command as this account (sudo -u User -H). Empty means
	// the current (root) process identity.
	User string

	// Env entries are KEY=VALUE pairs added to the environment.
	Env []string

	// Stdin is written to the process's standard input.
	Stdin string

	// Capture returns the output without echoing it to the console. Output
	// is always copied to the log file.
	Capture bool

	Timeout time.Duration

	// Redact lists secret values masked in logs and error messages.
	Redact []string
}

// Runner executes external commands.
type Runner interface {
	Run(ctx context.Context, opts Options) (string, error)
}

// Line is the logical command line: command followed by args, without any
// user or environment wrapping.
func (o Options) Line() string {
	if len(o.Args) == 0 {
		return o.Command
	}
	return o.Command + " " + strings.Join(o.Args, " ")
}

// Display is Line with secrets masked.
func (o Options) Display() string {
	return o.mask(o.Line())
}

func (o Options) mask(s string) string {
	for _, secret := range o.Redact {
		if secret == "" {
			continue
		}
		s = strings.ReplaceAll(s, secret, "***")
	}
	return s
}

// Argv is the real argv executed, including the sudo and env wrapping used
// to switch to the target account.
func (o Options) Argv() []string {
	if o.User == "" {
		return append([]string{o.Command}, o.Args...)
	}
	argv := []string{"sudo", "-u", o.User, "-H"}
	if len(o.Env) > 0 {
		argv = append(argv, "env")
		argv = append(argv, o.Env...)
	}
	argv = append(argv, o.Command)
	return append(argv, o.Args...)
}
