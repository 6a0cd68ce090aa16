package platform

import (
	"fmt"
	"os"
	"strings"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_err"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_io"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// DefaultOSReleasePath is where the distribution identifies itself.
const DefaultOSReleasePath = "/etc/os-release"

// OSReleaseInfo represents parsed /etc/os-release information
type OSReleaseInfo struct {
	Name            string `yaml:"name"`
	ID              string `yaml:"id"`
	IDLike          string `yaml:"id_like,omitempty"`
	VersionID       string `yaml:"version_id"`
	VersionCodename string `yaml:"version_codename,omitempty"`
	PrettyName      string `yaml:"pretty_name"`
}

// ReadOSRelease reads and parses an os-release file.
func ReadOSRelease(rc *hestia_io.RuntimeContext, path string) (*OSReleaseInfo, error) {
	logger := otelzap.Ctx(rc.Ctx)
	if path == "" {
		path = DefaultOSReleasePath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, hestia_err.NewUnsupportedPlatformError(
			fmt.Sprintf("cannot read %s: %v", path, err),
			"hestia supports Ubuntu and Debian hosts that provide /etc/os-release")
	}

	info := ParseOSRelease(string(data))
	logger.Debug("Parsed OS release information",
		zap.String("path", path),
		zap.String("id", info.ID),
		zap.String("version_id", info.VersionID),
		zap.String("version_codename", info.VersionCodename))

	if info.ID == "" || info.VersionID == "" {
		return nil, hestia_err.NewUnsupportedPlatformError(
			fmt.Sprintf("could not determine distribution and version from %s", path))
	}
	return info, nil
}

// ParseOSRelease parses os-release content. Unknown keys are ignored.
func ParseOSRelease(content string) *OSReleaseInfo {
	info := &OSReleaseInfo{}
	var ubuntuCodename string

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), "\"'")

		switch strings.TrimSpace(key) {
		case "NAME":
			info.Name = value
		case "ID":
			info.ID = strings.ToLower(value)
		case "ID_LIKE":
			info.IDLike = value
		case "VERSION_ID":
			info.VersionID = value
		case "VERSION_CODENAME":
			info.VersionCodename = value
		case "UBUNTU_CODENAME":
			ubuntuCodename = value
		case "PRETTY_NAME":
			info.PrettyName = value
		}
	}

	if info.VersionCodename == "" {
		info.VersionCodename = ubuntuCodename
	}
	return info
}
