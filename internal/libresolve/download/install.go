// SPDX-License-Identifier: MPL-2.0

package download

import (
	"archive/tar"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/mod/semver"
)

const (
	// ChecksumsAsset is the checksum file every release carries.
	ChecksumsAsset = "checksums.txt"

	// DefaultMaxPluginSize bounds each extracted plugin (256 MB).
	DefaultMaxPluginSize = 256 << 20
)

var (
	// ErrNoRelease is returned when the repository has no stable release.
	ErrNoRelease = errors.New("no stable analyzer release published")

	// ErrPluginTooLarge is returned when an archive entry exceeds the plugin
	// size limit. Nothing from the archive is installed.
	ErrPluginTooLarge = errors.New("plugin exceeds size limit")
)

type (
	// Installer installs the latest analyzer bundle into a cache directory.
	Installer struct {
		client   *Client
		cacheDir string
		goos     string
		goarch   string
		now      func() time.Time
		logger   *slog.Logger
		maxSize  int64
	}

	// InstallerOption configures an Installer.
	InstallerOption func(*Installer)
)

// WithPlatform overrides the target GOOS/GOARCH.
func WithPlatform(goos, goarch string) InstallerOption {
	return func(i *Installer) {
		i.goos = goos
		i.goarch = goarch
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) InstallerOption {
	return func(i *Installer) { i.logger = l }
}

// WithMaxPluginSize overrides DefaultMaxPluginSize.
func WithMaxPluginSize(n int64) InstallerOption {
	return func(i *Installer) { i.maxSize = n }
}

// NewInstaller returns an installer writing into cacheDir.
func NewInstaller(client *Client, cacheDir string, opts ...InstallerOption) *Installer {
	i := &Installer{
		client:   client,
		cacheDir: cacheDir,
		goos:     runtime.GOOS,
		goarch:   runtime.GOARCH,
		now:      time.Now,
		logger:   slog.Default(),
		maxSize:  DefaultMaxPluginSize,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// AssetName returns the archive name for a release tag and platform.
func AssetName(tag, goos, goarch string) string {
	return fmt.Sprintf("linthub-analyzers_%s_%s_%s.tar.gz", strings.TrimPrefix(tag, "v"), goos, goarch)
}

// InstallLatest installs the newest stable release and returns its version
// directory. An already complete install of that version is reused.
func (i *Installer) InstallLatest(ctx context.Context) (string, error) {
	releases, err := i.client.ListReleases(ctx)
	if err != nil {
		return "", err
	}
	if len(releases) == 0 || !semver.IsValid(releases[0].TagName) {
		return "", ErrNoRelease
	}
	return i.Install(ctx, &releases[0])
}

// Install installs rel into <cache>/<tag>/ and returns that directory.
func (i *Installer) Install(ctx context.Context, rel *Release) (string, error) {
	dir := filepath.Join(i.cacheDir, rel.TagName)
	if isInstalled(dir) {
		i.logger.Debug("analyzer bundle already installed", "version", rel.TagName, "dir", dir)
		return dir, nil
	}

	archiveName := AssetName(rel.TagName, i.goos, i.goarch)
	archive, err := findAsset(rel.Assets, archiveName)
	if err != nil {
		return "", err
	}
	sumsAsset, err := findAsset(rel.Assets, ChecksumsAsset)
	if err != nil {
		return "", err
	}

	expected, err := i.expectedDigest(ctx, sumsAsset, archiveName)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(i.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("creating cache directory: %w", err)
	}

	archivePath, got, err := i.downloadToTemp(ctx, archive)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", archiveName, err)
	}
	defer func() { _ = os.Remove(archivePath) }()

	if got != expected {
		return "", &ChecksumError{Filename: archiveName, Expected: expected, Got: got}
	}

	staging, err := os.MkdirTemp(i.cacheDir, ".staging-*")
	if err != nil {
		return "", fmt.Errorf("creating staging directory: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.RemoveAll(staging)
		}
	}()

	files, err := extractPlugins(archivePath, staging, i.maxSize)
	if err != nil {
		return "", fmt.Errorf("extracting %s: %w", archiveName, err)
	}
	if len(files) == 0 {
		return "", fmt.Errorf("extracting %s: archive contains no plugins", archiveName)
	}

	meta := &Metadata{
		Version:     rel.TagName,
		Repository:  i.client.owner + "/" + i.client.repo,
		Archive:     archiveName,
		SHA256:      got,
		InstalledAt: i.now().UTC().Truncate(time.Second),
		Files:       files,
	}
	if err := WriteMetadata(staging, meta); err != nil {
		return "", err
	}

	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("replacing incomplete install: %w", err)
	}
	if err := os.Rename(staging, dir); err != nil {
		return "", fmt.Errorf("committing install: %w", err)
	}
	committed = true

	i.logger.Info("installed analyzer bundle", "version", rel.TagName, "dir", dir, "plugins", len(files))
	return dir, nil
}

func (i *Installer) expectedDigest(ctx context.Context, sums *Asset, archiveName string) (string, error) {
	body, err := i.client.DownloadAsset(ctx, sums.BrowserDownloadURL)
	if err != nil {
		return "", fmt.Errorf("downloading checksums: %w", err)
	}
	defer func() { _ = body.Close() }()

	entries, err := ParseChecksums(body)
	if err != nil {
		return "", fmt.Errorf("parsing checksums: %w", err)
	}
	digest, ok := entries[archiveName]
	if !ok {
		return "", fmt.Errorf("%s missing from %s: %w", archiveName, ChecksumsAsset, ErrAssetNotFound)
	}
	return digest, nil
}

// downloadToTemp streams the asset into a temp file inside the cache
// directory, hashing it on the way.
func (i *Installer) downloadToTemp(ctx context.Context, a *Asset) (_ string, digest string, err error) {
	body, err := i.client.DownloadAsset(ctx, a.BrowserDownloadURL)
	if err != nil {
		return "", "", err
	}
	defer func() { _ = body.Close() }()

	tmp, err := os.CreateTemp(i.cacheDir, ".download-*")
	if err != nil {
		return "", "", fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if closeErr := tmp.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, h), body); err != nil {
		return "", "", fmt.Errorf("writing temp file: %w", err)
	}
	return tmp.Name(), hex.EncodeToString(h.Sum(nil)), nil
}

// extractPlugins copies every regular *.so entry of a .tar.gz archive into
// dir, flattening paths. It returns the installed file names.
func extractPlugins(archivePath, dir string, maxSize int64) ([]string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("creating gzip reader: %w", err)
	}
	defer func() { _ = gz.Close() }()

	var files []string
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar entry: %w", err)
		}

		name := filepath.Base(filepath.FromSlash(hdr.Name))
		if hdr.Typeflag != tar.TypeReg || filepath.Ext(name) != ".so" {
			continue
		}

		if hdr.Size > maxSize {
			return nil, fmt.Errorf("%w: %s is %d bytes", ErrPluginTooLarge, name, hdr.Size)
		}
		n, err := writeFile(filepath.Join(dir, name), io.LimitReader(tr, maxSize+1))
		if err != nil {
			return nil, err
		}
		if n > maxSize {
			return nil, fmt.Errorf("%w: %s", ErrPluginTooLarge, name)
		}
		files = append(files, name)
	}
	return files, nil
}

func writeFile(path string, r io.Reader) (n int64, err error) {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return 0, err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return io.Copy(out, r)
}

func findAsset(assets []Asset, name string) (*Asset, error) {
	for i := range assets {
		if assets[i].Name == name {
			return &assets[i], nil
		}
	}
	return nil, fmt.Errorf("asset %q not found in release: %w", name, ErrAssetNotFound)
}
