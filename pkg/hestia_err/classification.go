// pkg/hestia_err/classification.go
//
// Error taxonomy for the provisioning workflow. Every failure that reaches the
// CLI boundary is one of four kinds (configuration, privilege, platform,
// external command) plus interrupted/internal for signals and bugs.

package hestia_err

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCategory classifies errors for appropriate handling
type ErrorCategory int

const (
	// CategoryInternal - bugs in hestia itself (exit 3)
	CategoryInternal ErrorCategory = iota
	// CategoryConfiguration - missing, invalid or mismatched input (exit 2)
	CategoryConfiguration
	// CategoryPrivilege - wrong execution identity (exit 77)
	CategoryPrivilege
	// CategoryUnsupportedPlatform - OS or version floor not met (exit 69)
	CategoryUnsupportedPlatform
	// CategoryExternalCommand - a delegated command returned non-zero (exit 1)
	CategoryExternalCommand
	// CategoryInterrupted - SIGINT/SIGTERM (exit 130)
	CategoryInterrupted
)

// String returns the taxonomy name used in logs and user-facing messages.
func (c ErrorCategory) String() string {
	switch c {
	case CategoryConfiguration:
		return "ConfigurationError"
	case CategoryPrivilege:
		return "PrivilegeError"
	case CategoryUnsupportedPlatform:
		return "UnsupportedPlatformError"
	case CategoryExternalCommand:
		return "ExternalCommandError"
	case CategoryInterrupted:
		return "Interrupted"
	default:
		return "InternalError"
	}
}

// ClassifiedError wraps an error with category and remediation info
type ClassifiedError struct {
	Category    ErrorCategory
	Message     string
	Cause       error
	Remediation []string

	// Command and Summary are only set for CategoryExternalCommand.
	Command string
	Summary string
}

// Error implements the error interface
func (e *ClassifiedError) Error() string {
	var sb strings.Builder

	sb.WriteString(e.Category.String())
	sb.WriteString(": ")
	sb.WriteString(e.Message)

	if e.Cause != nil && e.Cause.Error() != e.Message {
		sb.WriteString(fmt.Sprintf(" (cause: %v)", e.Cause))
	}

	if e.Summary != "" {
		sb.WriteString(fmt.Sprintf("\n  output: %s", e.Summary))
	}

	if len(e.Remediation) > 0 {
		sb.WriteString("\n\nHow to fix:")
		for i, step := range e.Remediation {
			sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, step))
		}
	}

	return sb.String()
}

// Unwrap returns the underlying error
func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error category
func (e *ClassifiedError) ExitCode() int {
	switch e.Category {
	case CategoryConfiguration:
		return 2
	case CategoryPrivilege:
		return 77 // EX_NOPERM
	case CategoryUnsupportedPlatform:
		return 69 // EX_UNAVAILABLE
	case CategoryInterrupted:
		return 130
	case CategoryInternal:
		return 3
	default:
		return 1
	}
}

// GetExitCode extracts exit code from any error.
// Returns 0 for nil, the category code for classified errors, 1 for others.
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.ExitCode()
	}
	return 1
}

// CategoryOf returns the category of err, or CategoryInternal when err
// carries no classification.
func CategoryOf(err error) ErrorCategory {
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Category
	}
	return CategoryInternal
}

// NewConfigurationError creates an error for missing, invalid or mismatched input.
func NewConfigurationError(message string, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryConfiguration,
		Message:     message,
		Remediation: remediation,
	}
}

// ConfigurationErrorf is NewConfigurationError with formatting and no remediation.
func ConfigurationErrorf(format string, args ...any) error {
	return NewConfigurationError(fmt.Sprintf(format, args...))
}

// NewPrivilegeError creates an error for a wrong execution identity.
func NewPrivilegeError(message string, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryPrivilege,
		Message:     message,
		Remediation: remediation,
	}
}

// NewUnsupportedPlatformError creates an error for an OS or version floor that is not met.
func NewUnsupportedPlatformError(message string, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryUnsupportedPlatform,
		Message:     message,
		Remediation: remediation,
	}
}

// NewExternalCommandError creates an error for a delegated command that failed.
func NewExternalCommandError(command string, cause error, output string) error {
	return &ClassifiedError{
		Category: CategoryExternalCommand,
		Message:  fmt.Sprintf("command failed: %s", command),
		Cause:    cause,
		Command:  command,
		Summary:  ExtractSummary(output, 2),
	}
}

// NewInterruptedError marks the workflow as aborted by a signal.
func NewInterruptedError(cause error) error {
	return &ClassifiedError{
		Category:    CategoryInterrupted,
		Message:     "interrupted",
		Cause:       cause,
		Remediation: []string{"Re-run the installer; completed steps are skipped or repeated safely"},
	}
}

// NewInternalError creates an error for hestia bugs.
func NewInternalError(message string, cause error) error {
	return &ClassifiedError{
		Category: CategoryInternal,
		Message:  message,
		Cause:    cause,
	}
}

// IsConfigurationError reports whether err is classified as a ConfigurationError.
func IsConfigurationError(err error) bool {
	return err != nil && CategoryOf(err) == CategoryConfiguration
}

// IsPrivilegeError reports whether err is classified as a PrivilegeError.
func IsPrivilegeError(err error) bool {
	return err != nil && CategoryOf(err) == CategoryPrivilege
}

// IsUnsupportedPlatformError reports whether err is classified as an UnsupportedPlatformError.
func IsUnsupportedPlatformError(err error) bool {
	return err != nil && CategoryOf(err) == CategoryUnsupportedPlatform
}

// IsExternalCommandError reports whether err is classified as an ExternalCommandError.
func IsExternalCommandError(err error) bool {
	return err != nil && CategoryOf(err) == CategoryExternalCommand
}
