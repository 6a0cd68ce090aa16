/* pkg/logger/paths.go */

package logger

import (
	"os"
	"path/filepath"
)

const (
	// EnvLogFile overrides the log file location.
	EnvLogFile = "HESTIA_LOG_FILE"

	systemLogPath = "/var/log/hestia/install.log"
	localLogName  = "hestia-install.log"
)

// CandidateLogPaths returns log paths in order of priority.
func CandidateLogPaths(getenv func(string) string) []string {
	var paths []string
	if override := getenv(EnvLogFile); override != "" {
		paths = append(paths, override)
	}
	paths = append(paths, systemLogPath)
	if state := getenv("XDG_STATE_HOME"); state != "" {
		paths = append(paths, filepath.Join(state, "hestia", "install.log"))
	} else if home := getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".local", "state", "hestia", "install.log"))
	}
	return append(paths, localLogName)
}

// ResolveLogPath returns the first candidate that can be opened for appending.
func ResolveLogPath(getenv func(string) string) string {
	for _, path := range CandidateLogPaths(getenv) {
		f, err := openLogFile(path)
		if err != nil {
			continue
		}
		_ = f.Close()
		return path
	}
	return ""
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
}
