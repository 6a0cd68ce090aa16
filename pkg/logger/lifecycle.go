/* pkg/logger/lifecycle.go */

package logger

import "github.com/google/uuid"

// GenerateRunID returns a short 8-char run identifier.
func GenerateRunID() string {
	return uuid.New().String()[:8]
}
