// pkg/interaction/confirm.go

package interaction

import (
	"context"
	"fmt"

	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// MaxConfirmAttempts bounds how often a mismatched secret is re-asked.
const MaxConfirmAttempts = 3

// ErrMismatch is returned when the two entries never match.
var ErrMismatch = cerr.New("entries did not match")

// ErrEmpty is returned when a required answer is blank.
var ErrEmpty = cerr.New("value cannot be empty")

// ConfirmedSecret asks for a secret twice and requires both entries to match
// and be non-empty.
func ConfirmedSecret(ctx context.Context, p Prompter, label string) (string, error) {
	logger := otelzap.Ctx(ctx)

	for attempt := 1; attempt <= MaxConfirmAttempts; attempt++ {
		first, err := p.Secret(ctx, label)
		if err != nil {
			return "", err
		}
		if err := ValidateNonEmpty(first); err != nil {
			return "", cerr.WithSecondaryError(ErrEmpty, err)
		}

		second, err := p.Secret(ctx, fmt.Sprintf("Confirm %s", label))
		if err != nil {
			return "", err
		}
		if first == second {
			return first, nil
		}
		logger.Warn("Entries did not match",
			zap.String("prompt", label),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", MaxConfirmAttempts))
	}
	return "", ErrMismatch
}
