// pkg/production/certbot.go

package production

import (
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/apt"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_err"
	"github.com/CodeMonkeyCybersecurity/hestia/pkg/hestia_io"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Certbot obtains a Let's Encrypt certificate through the snap package and
// its nginx plugin.
type Certbot struct {
	Runner execute.Runner
	Apt    apt.Installer
}

// Issue installs certbot and requests a certificate for domain.
func (c Certbot) Issue(rc *hestia_io.RuntimeContext, domain, email string) error {
	logger := otelzap.Ctx(rc.Ctx)
	if email == "" {
		return hestia_err.NewConfigurationError("an email address is required for TLS", "pass --email")
	}

	logger.Info("Installing certbot", zap.String("domain", domain))
	if err := c.Apt.Install(rc, "snapd"); err != nil {
		return err
	}

	steps := []execute.Options{
		{Command: "snap", Args: []string{"install", "core"}},
		{Command: "snap", Args: []string{"refresh", "core"}},
		{Command: "snap", Args: []string{"install", "--classic", "certbot"}},
		{Command: "ln", Args: []string{"-sf", "/snap/bin/certbot", "/usr/bin/certbot"}},
		{Command: "certbot", Args: []string{
			"--nginx", "--non-interactive", "--agree-tos",
			"--email", email, "-d", domain,
		}},
	}
	for _, s := range steps {
		if _, err := c.Runner.Run(rc.Ctx, s); err != nil {
			return err
		}
	}

	logger.Info("Certificate installed", zap.String("domain", domain))
	return nil
}
