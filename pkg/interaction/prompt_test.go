package interaction

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPrompter(input string) (*TerminalPrompter, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &TerminalPrompter{In: strings.NewReader(input), Out: out}, out
}

func TestInputDefault(t *testing.T) {
	p, out := newPrompter("\nerp.local\n")
	ctx := context.Background()

	v, err := p.Input(ctx, "Site name", "site1.local")
	require.NoError(t, err)
	assert.Equal(t, "site1.local", v)
	assert.Contains(t, out.String(), "Site name [site1.local]: ")

	v, err = p.Input(ctx, "Site name", "site1.local")
	require.NoError(t, err)
	assert.Equal(t, "erp.local", v)
}

func TestInputEOF(t *testing.T) {
	p, _ := newPrompter("")
	_, err := p.Input(context.Background(), "Site name", "")
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestYesNo(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		defYes bool
		want   bool
	}{
		{name: "yes", input: "y\n", want: true},
		{name: "no", input: "NO\n", defYes: true, want: false},
		{name: "empty takes default", input: "\n", defYes: true, want: true},
		{name: "garbage takes default", input: "maybe\n", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newPrompter(tt.input)
			got, err := p.YesNo(context.Background(), "Continue?", tt.defYes)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSecretFromPipe(t *testing.T) {
	p, _ := newPrompter("hunter2\n")
	v, err := p.Secret(context.Background(), "Password")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", v)
}

func TestConfirmedSecret(t *testing.T) {
	ctx := context.Background()

	p, _ := newPrompter("a\nb\nc\nc\n")
	v, err := ConfirmedSecret(ctx, p, "Admin password")
	require.NoError(t, err)
	assert.Equal(t, "c", v)

	p, _ = newPrompter("a\nb\na\nb\na\nb\n")
	_, err = ConfirmedSecret(ctx, p, "Admin password")
	assert.ErrorIs(t, err, ErrMismatch)

	p, _ = newPrompter("\n")
	_, err = ConfirmedSecret(ctx, p, "Admin password")
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestValidators(t *testing.T) {
	assert.NoError(t, ValidateNonEmpty("x"))
	assert.Error(t, ValidateNonEmpty("  "))
	assert.NoError(t, ValidateUsername("frappe"))
	assert.Error(t, ValidateUsername("Root!"))
	assert.NoError(t, ValidateEmail("ops@example.com"))
	assert.Error(t, ValidateEmail("nope"))
}
