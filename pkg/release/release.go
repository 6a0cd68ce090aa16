// pkg/release/release.go
//
// Mapping from a Frappe major version to everything that depends on it:
// release branch, Python and Node floors, OS floors, and the flag bench
// expects for the database root password when creating a site.

package release

import (
	"fmt"
	"sort"
	"strings"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_err"
	"github.com/hashicorp/go-version"
)

// DefaultVersion is used when no version is given and prompts are off.
const DefaultVersion = 15

// Plan is the release-dependent part of a run. It is a pure function of the
// application version.
type Plan struct {
	Version     int    `yaml:"version"`
	Channel     string `yaml:"channel"`
	PythonFloor string `yaml:"python_floor"`
	NodeFloor   string `yaml:"node_floor"`

	// StrictPython means a Python below the floor fails immediately instead
	// of attempting an install.
	StrictPython bool `yaml:"strict_python"`

	// MinOS maps a distribution id to the lowest supported release.
	MinOS map[string]string `yaml:"min_os,omitempty"`

	NewSiteRootPasswordFlag string `yaml:"new_site_root_password_flag"`
}

var plans = map[int]Plan{
	13: {Version: 13, PythonFloor: "3.7", NodeFloor: "14", NewSiteRootPasswordFlag: "--mariadb-root-password"},
	14: {Version: 14, PythonFloor: "3.10", NodeFloor: "18", NewSiteRootPasswordFlag: "--mariadb-root-password"},
	15: {Version: 15, PythonFloor: "3.11", NodeFloor: "20", NewSiteRootPasswordFlag: "--db-root-password"},
	16: {
		Version:                 16,
		PythonFloor:             "3.14",
		NodeFloor:               "24",
		StrictPython:            true,
		MinOS:                   map[string]string{"ubuntu": "24.04", "debian": "13"},
		NewSiteRootPasswordFlag: "--db-root-password",
	},
}

// For returns the plan for an application version.
func For(v int) (Plan, error) {
	p, ok := plans[v]
	if !ok {
		return Plan{}, hestia_err.ConfigurationErrorf("unsupported application version %d (supported: %s)",
			v, strings.Join(SupportedVersionStrings(), ", "))
	}
	p.Channel = Channel(v)
	if p.MinOS != nil {
		m := make(map[string]string, len(p.MinOS))
		for k, val := range p.MinOS {
			m[k] = val
		}
		p.MinOS = m
	}
	return p, nil
}

// Channel is the branch name used for frappe and its apps.
func Channel(v int) string {
	return fmt.Sprintf("version-%d", v)
}

// SupportedVersions lists known versions in ascending order.
func SupportedVersions() []int {
	out := make([]int, 0, len(plans))
	for v := range plans {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// SupportedVersionStrings is SupportedVersions formatted for messages.
func SupportedVersionStrings() []string {
	vs := SupportedVersions()
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = fmt.Sprint(v)
	}
	return out
}

// CheckOS enforces the plan's OS floor for the given distribution.
func (p Plan) CheckOS(distro, distroVersion string) error {
	floor, ok := p.MinOS[distro]
	if !ok {
		return nil
	}
	okVer, err := AtLeast(distroVersion, floor)
	if err != nil {
		return hestia_err.NewUnsupportedPlatformError(
			fmt.Sprintf("cannot compare %s version %q with required %s", distro, distroVersion, floor))
	}
	if !okVer {
		return hestia_err.NewUnsupportedPlatformError(
			fmt.Sprintf("version %d requires %s %s or newer, found %s", p.Version, distro, floor, distroVersion),
			fmt.Sprintf("Upgrade the host to %s %s or choose an older application version", distro, floor))
	}
	return nil
}

// AtLeast reports whether have >= floor using semantic version ordering.
func AtLeast(have, floor string) (bool, error) {
	h, err := version.NewVersion(strings.TrimSpace(have))
	if err != nil {
		return false, err
	}
	f, err := version.NewVersion(strings.TrimSpace(floor))
	if err != nil {
		return false, err
	}
	return h.GreaterThanOrEqual(f), nil
}
