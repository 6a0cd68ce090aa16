package testutil

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_err"
)

type rule struct {
	match  func(execute.Options) bool
	output string
	err    error
	once   bool
	used   bool
}

// FakeRunner records every command and answers from registered rules.
// Commands with no matching rule succeed with empty output.
type FakeRunner struct {
	mu    sync.Mutex
	Calls []execute.Options
	rules []*rule
}

// NewFakeRunner returns an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{}
}

// On answers every command whose Line starts with prefix.
func (f *FakeRunner) On(prefix, output string, err error) *FakeRunner {
	return f.OnFunc(linePrefix(prefix), output, err)
}

// Once answers only the first command whose Line starts with prefix.
func (f *FakeRunner) Once(prefix, output string, err error) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, &rule{match: linePrefix(prefix), output: output, err: err, once: true})
	return f
}

// OnFunc answers commands selected by match.
func (f *FakeRunner) OnFunc(match func(execute.Options) bool, output string, err error) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, &rule{match: match, output: output, err: err})
	return f
}

// Run implements execute.Runner.
func (f *FakeRunner) Run(ctx context.Context, opts execute.Options) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, opts)
	if ctx != nil && ctx.Err() != nil {
		return "", hestia_err.FromContext(ctx.Err())
	}
	for _, r := range f.rules {
		if r.once && r.used {
			continue
		}
		if r.match(opts) {
			r.used = true
			return r.output, r.err
		}
	}
	return "", nil
}

// Lines returns the logical command line of every recorded call.
func (f *FakeRunner) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		out[i] = c.Line()
	}
	return out
}

// Count returns how many recorded calls start with prefix.
func (f *FakeRunner) Count(prefix string) int {
	n := 0
	for _, l := range f.Lines() {
		if strings.HasPrefix(l, prefix) {
			n++
		}
	}
	return n
}

// Find returns the first recorded call starting with prefix.
func (f *FakeRunner) Find(prefix string) (execute.Options, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.Calls {
		if strings.HasPrefix(c.Line(), prefix) {
			return c, true
		}
	}
	return execute.Options{}, false
}

// CommandFailure builds the error ExecRunner returns for a failing command.
func CommandFailure(line, output string) error {
	return hestia_err.NewExternalCommandError(line, errors.New("exit status 1"), output)
}

func linePrefix(prefix string) func(execute.Options) bool {
	return func(o execute.Options) bool {
		return strings.HasPrefix(o.Line(), prefix)
	}
}
