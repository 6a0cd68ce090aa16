// pkg/hestia_err/wrap.go

package hestia_err

import (
	"context"
	"errors"

	cerr "github.com/cockroachdb/errors"
)

// WithStack attaches a stack trace to unclassified errors. Classified errors
// are returned untouched so their category survives errors.As.
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return err
	}
	return cerr.WithStack(err)
}

// FromContext converts a cancelled or expired context error into an
// interrupted error. Other errors pass through unchanged.
func FromContext(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		var classified *ClassifiedError
		if errors.As(err, &classified) && classified.Category == CategoryInterrupted {
			return err
		}
		return NewInterruptedError(err)
	}
	return err
}
