// pkg/mariadb/cnf.go

package mariadb

import (
	"bytes"
	"os"
	"path/filepath"

	cerr "github.com/cockroachdb/errors"
	"github.com/go-ini/ini"
)

// DefaultConfigPath is the drop-in read by the Debian/Ubuntu MariaDB packages.
const DefaultConfigPath = "/etc/mysql/mariadb.conf.d/99-hestia-frappe.cnf"

// charsetSettings is the utf8mb4 configuration Frappe requires.
var charsetSettings = []struct {
	section, key, value string
}{
	{"mysqld", "character-set-client-handshake", "FALSE"},
	{"mysqld", "character-set-server", "utf8mb4"},
	{"mysqld", "collation-server", "utf8mb4_unicode_ci"},
	{"mysql", "default-character-set", "utf8mb4"},
}

// RenderConfig returns the contents of the drop-in config file.
func RenderConfig() ([]byte, error) {
	cfg := ini.Empty()
	for _, s := range charsetSettings {
		sec, err := cfg.NewSection(s.section)
		if err != nil {
			return nil, cerr.Wrapf(err, "section %s", s.section)
		}
		if _, err := sec.NewKey(s.key, s.value); err != nil {
			return nil, cerr.Wrapf(err, "key %s", s.key)
		}
	}

	var buf bytes.Buffer
	buf.WriteString("# Managed by hestia. Character set settings required by Frappe.\n")
	if _, err := cfg.WriteTo(&buf); err != nil {
		return nil, cerr.Wrap(err, "render mariadb config")
	}
	return buf.Bytes(), nil
}

// WriteConfig writes the rendered config to path.
func WriteConfig(path string) error {
	data, err := RenderConfig()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return cerr.Wrapf(err, "create %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return cerr.Wrapf(err, "write %s", path)
	}
	return nil
}
