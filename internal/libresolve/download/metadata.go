// SPDX-License-Identifier: MPL-2.0

package download

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/mod/semver"
)

// MetadataFile marks a complete install inside a version directory.
const MetadataFile = "release.toml"

// Metadata describes one installed bundle version.
type Metadata struct {
	Version     string    `toml:"version"`
	Repository  string    `toml:"repository"`
	Archive     string    `toml:"archive"`
	SHA256      string    `toml:"sha256"`
	InstalledAt time.Time `toml:"installed_at"`
	Files       []string  `toml:"files"`
}

// ReadMetadata reads <dir>/release.toml.
func ReadMetadata(dir string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	if err != nil {
		return nil, err
	}
	var m Metadata
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Join(dir, MetadataFile), err)
	}
	if m.Version == "" {
		return nil, fmt.Errorf("%s: missing version", filepath.Join(dir, MetadataFile))
	}
	return &m, nil
}

// WriteMetadata writes m to <dir>/release.toml.
func WriteMetadata(dir string, m *Metadata) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding release metadata: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, MetadataFile), data, 0o644)
}

// LatestInstalled returns the version directory under cacheDir with the
// highest semantic version that holds valid metadata. ok is false when none
// does, including when cacheDir does not exist.
func LatestInstalled(cacheDir string) (dir string, meta *Metadata, ok bool) {
	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		return "", nil, false
	}

	best := ""
	for _, e := range entries {
		if !e.IsDir() || !semver.IsValid(e.Name()) {
			continue
		}
		if best != "" && semver.Compare(e.Name(), best) <= 0 {
			continue
		}
		m, err := ReadMetadata(filepath.Join(cacheDir, e.Name()))
		if err != nil {
			continue
		}
		best, meta = e.Name(), m
	}

	if best == "" {
		return "", nil, false
	}
	return filepath.Join(cacheDir, best), meta, true
}

// isInstalled reports whether dir holds a complete install.
func isInstalled(dir string) bool {
	_, err := ReadMetadata(dir)
	return err == nil
}
