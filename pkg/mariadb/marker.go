// pkg/mariadb/marker.go

package mariadb

import (
	"os"
	"path/filepath"
	"time"

	cerr "github.com/cockroachdb/errors"
)

// MarkerRelPath is the marker location relative to the target home.
const MarkerRelPath = ".hestia/mariadb_configured"

// Marker records that the one-time database bootstrap has run. It is created
// once and never updated or removed by hestia.
type Marker struct {
	Path string
	// UID and GID own the marker and its directory. Negative values keep
	// the creating process's ownership.
	UID, GID int
}

// MarkerFor returns the marker under home.
func MarkerFor(home string, uid, gid int) Marker {
	return Marker{Path: filepath.Join(home, MarkerRelPath), UID: uid, GID: gid}
}

// IsBootstrapped reports whether the marker exists.
func (m Marker) IsBootstrapped() bool {
	_, err := os.Stat(m.Path)
	return err == nil
}

// Mark creates the marker.
func (m Marker) Mark() error {
	dir := filepath.Dir(m.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return cerr.Wrapf(err, "create %s", dir)
	}
	stamp := time.Now().UTC().Format(time.RFC3339) + "\n"
	if err := os.WriteFile(m.Path, []byte(stamp), 0o600); err != nil {
		return cerr.Wrapf(err, "write marker %s", m.Path)
	}
	return nil
}

// HandOver gives the marker and its directory to the target account.
func (m Marker) HandOver() error {
	if m.UID < 0 || m.GID < 0 {
		return nil
	}
	if err := os.Lchown(filepath.Dir(m.Path), m.UID, m.GID); err != nil {
		return err
	}
	return os.Lchown(m.Path, m.UID, m.GID)
}
