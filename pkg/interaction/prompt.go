// pkg/interaction/prompt.go

package interaction

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	cerr "github.com/cockroachdb/errors"
	"github.com/mattn/go-isatty"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// ErrNoInput is returned when the input stream is closed before an answer.
var ErrNoInput = cerr.New("no input available")

// Prompter asks the operator for values.
type Prompter interface {
	Input(ctx context.Context, label, def string) (string, error)
	Secret(ctx context.Context, label string) (string, error)
	YesNo(ctx context.Context, label string, defYes bool) (bool, error)
}

// TerminalPrompter reads answers from In and writes labels to Out. When In is
// a terminal, secrets are read without echo.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

// NewTerminalPrompter prompts on the process stdin/stdout.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{In: os.Stdin, Out: os.Stdout}
}

func (p *TerminalPrompter) lineReader() *bufio.Reader {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	return p.reader
}

// Input reads one line; an empty answer returns def.
func (p *TerminalPrompter) Input(ctx context.Context, label, def string) (string, error) {
	if def != "" {
		label = fmt.Sprintf("%s [%s]", label, def)
	}
	answer, err := ReadLine(p.lineReader(), p.Out, label)
	if err != nil {
		return "", err
	}
	if answer == "" {
		otelzap.Ctx(ctx).Debug("Using default value", zap.String("prompt", label))
		return def, nil
	}
	return answer, nil
}

// Secret reads a value without echo when attached to a terminal.
func (p *TerminalPrompter) Secret(ctx context.Context, label string) (string, error) {
	if f, ok := p.In.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		fmt.Fprint(p.Out, label+": ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.Out)
		if err != nil {
			otelzap.Ctx(ctx).Error("Failed to read secret input", zap.Error(err))
			return "", cerr.Wrap(err, "read secret")
		}
		return strings.TrimSpace(string(b)), nil
	}
	return ReadLine(p.lineReader(), p.Out, label)
}

// YesNo asks a yes/no question; unknown or empty answers take the default.
func (p *TerminalPrompter) YesNo(ctx context.Context, label string, defYes bool) (bool, error) {
	defPrompt := DefaultNoPrompt
	if defYes {
		defPrompt = DefaultYesPrompt
	}
	answer, err := ReadLine(p.lineReader(), p.Out, fmt.Sprintf("%s [%s]", label, defPrompt))
	if err != nil {
		return false, err
	}
	if v, ok := NormalizeYesNoInput(answer); ok {
		return v, nil
	}
	otelzap.Ctx(ctx).Debug("Default applied", zap.String("prompt", label), zap.Bool("default_yes", defYes))
	return defYes, nil
}

// ReadLine prints label and reads a trimmed line. A closed stream with no
// data returns ErrNoInput.
func ReadLine(r *bufio.Reader, out io.Writer, label string) (string, error) {
	if out != nil {
		fmt.Fprint(out, label+": ")
	}
	line, err := r.ReadString('\n')
	if err != nil {
		if cerr.Is(err, io.EOF) {
			if line == "" {
				return "", ErrNoInput
			}
			return strings.TrimSpace(line), nil
		}
		return "", cerr.Wrap(err, "read input")
	}
	return strings.TrimSpace(line), nil
}

// NormalizeYesNoInput maps y/yes/n/no; the second value reports recognition.
func NormalizeYesNoInput(input string) (bool, bool) {
	switch strings.TrimSpace(strings.ToLower(input)) {
	case YesShort, YesLong:
		return true, true
	case NoShort, NoLong:
		return false, true
	}
	return false, false
}

const (
	YesShort = "y"
	YesLong  = "yes"
	NoShort  = "n"
	NoLong   = "no"

	DefaultYesPrompt = "Y/n"
	DefaultNoPrompt  = "y/N"
)
