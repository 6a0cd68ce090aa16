// pkg/hestia_err/summary.go

package hestia_err

import "strings"

// ExtractSummary extracts a concise error summary from full command output.
// Lines mentioning error/failed/cannot/... are preferred; otherwise the last
// non-empty line is returned, since apt and bench report the cause last.
func ExtractSummary(output string, maxCandidates int) string {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return ""
	}
	if maxCandidates <= 0 {
		maxCandidates = 1
	}

	lines := strings.Split(trimmed, "\n")
	var candidates []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lowerLine := strings.ToLower(line)
		if strings.Contains(lowerLine, "error") ||
			strings.Contains(lowerLine, "failed") ||
			strings.Contains(lowerLine, "cannot") ||
			strings.Contains(lowerLine, "unable to") ||
			strings.Contains(lowerLine, "fatal") ||
			strings.HasPrefix(lowerLine, "e:") {
			candidates = append(candidates, line)
		}
	}

	if len(candidates) > 0 {
		if len(candidates) > maxCandidates {
			candidates = candidates[:maxCandidates]
		}
		return strings.Join(candidates, " - ")
	}

	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
