package testutil

import (
	"context"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/interaction"
)

// FakePrompter answers prompts from a fixed script. When the script runs out
// it behaves like a closed stdin.
type FakePrompter struct {
	Answers []string
	Asked   []string
}

// NewFakePrompter returns a prompter answering with answers in order.
func NewFakePrompter(answers ...string) *FakePrompter {
	return &FakePrompter{Answers: answers}
}

func (p *FakePrompter) next(label string) (string, error) {
	p.Asked = append(p.Asked, label)
	if len(p.Answers) == 0 {
		return "", interaction.ErrNoInput
	}
	a := p.Answers[0]
	p.Answers = p.Answers[1:]
	return a, nil
}

// Input implements interaction.Prompter.
func (p *FakePrompter) Input(_ context.Context, label, def string) (string, error) {
	a, err := p.next(label)
	if err != nil {
		return "", err
	}
	if a == "" {
		return def, nil
	}
	return a, nil
}

// Secret implements interaction.Prompter.
func (p *FakePrompter) Secret(_ context.Context, label string) (string, error) {
	return p.next(label)
}

// YesNo implements interaction.Prompter.
func (p *FakePrompter) YesNo(_ context.Context, label string, defYes bool) (bool, error) {
	a, err := p.next(label)
	if err != nil {
		return false, err
	}
	if v, ok := interaction.NormalizeYesNoInput(a); ok {
		return v, nil
	}
	return defYes, nil
}
