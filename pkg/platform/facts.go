// pkg/platform/facts.go

package platform

import (
	"fmt"
	"strings"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_err"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	Ubuntu = "ubuntu"
	Debian = "debian"
)

// HostFacts are derived once during preflight and read-only afterwards.
type HostFacts struct {
	Distro          string `yaml:"distro"`
	DistroVersion   string `yaml:"distro_version"`
	Codename        string `yaml:"codename,omitempty"`
	PrettyName      string `yaml:"pretty_name,omitempty"`
	PythonVersion   string `yaml:"python_version,omitempty"`
	TargetUser      string `yaml:"target_user"`
	HomeDir         string `yaml:"home_dir"`
	PrimaryAddress  string `yaml:"primary_address,omitempty"`
	FreeHomeDiskGiB uint64 `yaml:"free_home_disk_gib,omitempty"`
}

// SupportedDistros lists distribution ids hestia provisions.
func SupportedDistros() []string {
	return []string{Ubuntu, Debian}
}

// CheckDistro rejects everything except Ubuntu and Debian.
func CheckDistro(id string) error {
	for _, d := range SupportedDistros() {
		if id == d {
			return nil
		}
	}
	return hestia_err.NewUnsupportedPlatformError(
		fmt.Sprintf("unsupported distribution %q", id),
		fmt.Sprintf("Use one of: %s", strings.Join(SupportedDistros(), ", ")))
}

// DisplayName renders e.g. "Ubuntu 24.04 (noble)".
func (f HostFacts) DisplayName() string {
	name := cases.Title(language.English).String(f.Distro)
	if f.Codename != "" {
		return fmt.Sprintf("%s %s (%s)", name, f.DistroVersion, f.Codename)
	}
	return fmt.Sprintf("%s %s", name, f.DistroVersion)
}

// IsUbuntu reports whether the host runs Ubuntu.
func (f HostFacts) IsUbuntu() bool { return f.Distro == Ubuntu }
