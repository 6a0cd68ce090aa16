// pkg/summary/summary.go
//
// Final report printed after a successful run: where the site is reachable
// and how to start it in development mode.

package summary

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/config"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_io"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/platform"
	"github.com/charmbracelet/lipgloss"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// DevPort is where bench start serves the site.
const DevPort = 8000

// AdminUser is the administrator account created by new-site.
const AdminUser = "Administrator"

// Report is everything the summary needs from the run.
type Report struct {
	Config       config.Config
	Facts        platform.HostFacts
	BenchDir     string
	TLSInstalled bool
	LogPath      string
	Warnings     []string
}

// Reporter renders a Report to Out.
type Reporter struct {
	Out      io.Writer
	Resolver platform.Resolver
	Address  func() string
}

// AccessURL picks the address users should open in production mode.
func (r Reporter) AccessURL(ctx context.Context, site string, tlsInstalled bool) string {
	if tlsInstalled {
		return "https://" + site
	}
	if platform.Resolves(ctx, r.Resolver, site) {
		return "http://" + site
	}
	addr := r.Address
	if addr == nil {
		addr = platform.PrimaryAddress
	}
	return "http://" + addr()
}

// Print writes the summary.
func (r Reporter) Print(rc *hestia_io.RuntimeContext, rep Report) error {
	cfg := rep.Config

	var access []string
	if cfg.Production {
		url := r.AccessURL(rc.Ctx, cfg.SiteName, rep.TLSInstalled)
		access = append(access, "Open "+url)
		otelzap.Ctx(rc.Ctx).Info("Site is ready", zap.String("url", url))
	} else {
		dir := "~/" + filepath.Base(rep.BenchDir)
		access = append(access,
			fmt.Sprintf("cd %s && bench start", dir),
			fmt.Sprintf("Then open http://%s:%d", r.devHost(rep), DevPort))
		otelzap.Ctx(rc.Ctx).Info("Development workspace is ready", zap.String("dir", rep.BenchDir), zap.Int("port", DevPort))
	}

	_, err := io.WriteString(r.Out, Render(r.Out, rep, access)+"\n")
	return err
}

func (r Reporter) devHost(rep Report) string {
	if rep.Facts.PrimaryAddress != "" {
		return rep.Facts.PrimaryAddress
	}
	return "localhost"
}

// Render lays the report out with lipgloss styles bound to w's terminal
// capabilities.
func Render(w io.Writer, rep Report, access []string) string {
	re := lipgloss.NewRenderer(w)
	title := re.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))
	label := re.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	warn := re.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	box := re.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

	cfg := rep.Config
	mode := "development"
	if cfg.Production {
		mode = "production"
	}

	var b strings.Builder
	b.WriteString(title.Render("Frappe "+cfg.Channel+" installed") + "\n\n")
	row := func(k, v string) {
		b.WriteString(label.Render(fmt.Sprintf("%-12s", k)) + " " + v + "\n")
	}
	row("Site", cfg.SiteName)
	row("Mode", mode)
	row("Workspace", rep.BenchDir)
	if rep.Facts.Distro != "" {
		row("Host", rep.Facts.DisplayName())
	}
	apps := []string{"frappe"}
	if cfg.InstallERPNext {
		apps = append(apps, "erpnext")
	}
	if cfg.InstallHRMS && cfg.Production {
		apps = append(apps, "hrms")
	}
	row("Apps", strings.Join(apps, ", "))

	b.WriteString("\n")
	for _, line := range access {
		b.WriteString(line + "\n")
	}

	if cfg.GeneratedAdminPassword || cfg.GeneratedDBRootPassword {
		b.WriteString("\n" + label.Render("Generated credentials, store them now:") + "\n")
		if cfg.GeneratedAdminPassword {
			row(AdminUser, cfg.AdminPassword)
		}
		if cfg.GeneratedDBRootPassword {
			row("DB root", cfg.DBRootPassword)
		}
	} else {
		row("Login", AdminUser)
	}

	for _, msg := range rep.Warnings {
		b.WriteString(warn.Render("! "+msg) + "\n")
	}
	if rep.LogPath != "" {
		b.WriteString("\n" + label.Render("Log: "+rep.LogPath))
	}

	return box.Render(strings.TrimRight(b.String(), "\n"))
}
