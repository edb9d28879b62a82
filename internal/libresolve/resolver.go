// SPDX-License-Identifier: MPL-2.0

package libresolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/linthub/linthub/internal/libresolve/download"
	"github.com/linthub/linthub/internal/provider"
	"github.com/linthub/linthub/pkg/providerspec"
)

const (
	// AnalyzersPathEnv overrides every other analyzer bundle location.
	AnalyzersPathEnv = "LINTHUB_ANALYZERS_PATH"

	// DefaultCacheSize is the library cache size used when none is configured.
	DefaultCacheSize = 64

	bundleSubdir = "lib/linthub/analyzers"
)

var (
	// ErrNotFound reports a reference that no stage could resolve.
	ErrNotFound = errors.New("provider library not found")

	// ErrDownloadDisabled reports that stage 5 is not configured.
	ErrDownloadDisabled = errors.New("analyzer download disabled")
)

type (
	// Loader loads one plugin file.
	Loader interface {
		Load(path string) (*provider.Library, error)
	}

	// Installer installs the latest analyzer bundle and returns its directory.
	Installer interface {
		InstallLatest(ctx context.Context) (string, error)
	}

	// Options configures a Resolver. Zero values select the defaults.
	Options struct {
		// InstallDir is the configured development install directory.
		InstallDir string
		// CacheDir is the persistent download cache root.
		CacheDir string
		// ExecutableDir overrides the directory of the running binary.
		ExecutableDir string
		// PackageDirs overrides the package manager locations.
		PackageDirs []string
		// Installer performs the one-shot download; nil disables it.
		Installer Installer
		// CacheSize bounds the library cache.
		CacheSize int
		// Getenv replaces os.Getenv.
		Getenv func(string) string
		Logger *slog.Logger
	}

	// Resolver turns provider references into loaded libraries. It is safe
	// for concurrent use.
	Resolver struct {
		loader      Loader
		installDir  string
		cacheDir    string
		exeDir      string
		packageDirs []string
		installer   Installer
		getenv      func(string) string
		logger      *slog.Logger
		libs        *lru.Cache[string, *provider.Library]

		// downloadMu serializes download attempts; downloaded is set once an
		// attempt finished without the caller's context ending.
		downloadMu  sync.Mutex
		downloaded  bool
		downloadErr error
		mu          sync.RWMutex
		downloadDir string
	}
)

// New creates a Resolver that loads plugins with loader.
func New(loader Loader, opts Options) (*Resolver, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	libs, err := lru.New[string, *provider.Library](size)
	if err != nil {
		return nil, fmt.Errorf("creating library cache: %w", err)
	}

	r := &Resolver{
		loader:      loader,
		installDir:  opts.InstallDir,
		cacheDir:    opts.CacheDir,
		exeDir:      opts.ExecutableDir,
		packageDirs: opts.PackageDirs,
		installer:   opts.Installer,
		getenv:      opts.Getenv,
		logger:      opts.Logger,
		libs:        libs,
	}
	if r.getenv == nil {
		r.getenv = os.Getenv
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.exeDir == "" {
		r.exeDir = executableDir()
	}
	if r.packageDirs == nil {
		r.packageDirs = DefaultPackageDirs(r.getenv)
	}
	return r, nil
}

// DefaultPackageDirs lists the package manager install locations in lookup order.
func DefaultPackageDirs(getenv func(string) string) []string {
	var dirs []string
	if prefix := getenv("HOMEBREW_PREFIX"); prefix != "" {
		dirs = append(dirs, filepath.Join(prefix, bundleSubdir))
	}
	return append(dirs,
		filepath.Join("/opt/homebrew", bundleSubdir),
		filepath.Join("/usr/local", bundleSubdir),
		filepath.Join("/usr", bundleSubdir),
	)
}

// ResolveOption adjusts a single Resolve call.
type ResolveOption func(*resolveCall)

type resolveCall struct {
	env map[string]string
}

// WithEnv supplies request-scoped variables, such as a project .env. They are
// consulted only for variables the process environment leaves empty.
func WithEnv(env map[string]string) ResolveOption {
	return func(c *resolveCall) { c.env = env }
}

// Resolve finds and loads the library spec refers to. The error is meant to
// be reported as a warning; it never invalidates the request.
func (r *Resolver) Resolve(ctx context.Context, spec providerspec.Spec, projectRoot string, opts ...ResolveOption) (*provider.Library, error) {
	var call resolveCall
	for _, opt := range opts {
		opt(&call)
	}

	var path string
	switch spec.Kind {
	case providerspec.BuiltinAlias, providerspec.FolderRelativeAlias:
		p, err := r.locate(ctx, spec.FileName, r.lookup(call.env))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", spec.Raw, err)
		}
		path = p
	default:
		path = spec.Path(projectRoot)
		if !isFile(path) {
			return nil, fmt.Errorf("%w: %s (%s)", ErrNotFound, spec.Raw, path)
		}
	}
	return r.load(path)
}

// lookup layers env under the process environment.
func (r *Resolver) lookup(env map[string]string) func(string) string {
	if len(env) == 0 {
		return r.getenv
	}
	return func(key string) string {
		if v := r.getenv(key); v != "" {
			return v
		}
		return env[key]
	}
}

// SearchDirs returns the directories stages 1 to 4 would currently inspect.
func (r *Resolver) SearchDirs() []string {
	var dirs []string
	for _, stage := range r.stages(r.getenv) {
		dirs = append(dirs, stage()...)
	}
	return dirs
}

func (r *Resolver) stages(getenv func(string) string) []func() []string {
	return []func() []string{
		func() []string { return r.devDirs(getenv) },
		r.downloadedDirs,
		r.cachedDirs,
		r.pkgDirs,
	}
}

func (r *Resolver) locate(ctx context.Context, fileName string, getenv func(string) string) (string, error) {
	if fileName == "" {
		return "", ErrNotFound
	}

	for _, stage := range r.stages(getenv) {
		for _, dir := range stage() {
			if p := filepath.Join(dir, fileName); isFile(p) {
				return p, nil
			}
		}
	}

	dir, err := r.download(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %s (download: %w)", ErrNotFound, fileName, err)
	}
	if p := filepath.Join(dir, fileName); isFile(p) {
		return p, nil
	}
	return "", fmt.Errorf("%w: %s is not part of the analyzer bundle", ErrNotFound, fileName)
}

func (r *Resolver) devDirs(getenv func(string) string) []string {
	var dirs []string
	if env := getenv(AnalyzersPathEnv); env != "" {
		dirs = append(dirs, env)
	}
	if r.installDir != "" {
		dirs = append(dirs, r.installDir)
	}
	if r.exeDir != "" {
		dirs = append(dirs,
			filepath.Join(r.exeDir, "analyzers"),
			filepath.Join(r.exeDir, "..", bundleSubdir),
		)
	}
	return dirs
}

func (r *Resolver) downloadedDirs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.downloadDir == "" {
		return nil
	}
	return []string{r.downloadDir}
}

func (r *Resolver) cachedDirs() []string {
	if r.cacheDir == "" {
		return nil
	}
	dir, _, ok := download.LatestInstalled(r.cacheDir)
	if !ok {
		return nil
	}
	return []string{dir}
}

func (r *Resolver) pkgDirs() []string { return r.packageDirs }

// download runs the installer once per Resolver; its outcome is memoized
// whether it succeeded or not. An attempt cut short by the caller's context
// is not memoized, so a later request tries again.
func (r *Resolver) download(ctx context.Context) (string, error) {
	r.downloadMu.Lock()
	defer r.downloadMu.Unlock()

	if !r.downloaded {
		if r.installer == nil {
			r.downloaded, r.downloadErr = true, ErrDownloadDisabled
		} else {
			r.logger.Info("downloading analyzer bundle")
			dir, err := r.installer.InstallLatest(ctx)
			if err != nil && ctx.Err() != nil {
				return "", err
			}
			r.downloaded = true
			if err != nil {
				r.logger.Warn("analyzer bundle download failed", "error", err)
				r.downloadErr = err
			} else {
				r.mu.Lock()
				r.downloadDir = dir
				r.mu.Unlock()
			}
		}
	}

	if r.downloadErr != nil {
		return "", r.downloadErr
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.downloadDir, nil
}

// load returns the cached library for path or loads it. Concurrent first
// loads of one path may both run; the first one cached is returned to all.
func (r *Resolver) load(path string) (*provider.Library, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	key = filepath.Clean(key)

	if lib, ok := r.libs.Get(key); ok {
		return lib, nil
	}

	lib, err := r.loader.Load(key)
	if err != nil {
		return nil, err
	}
	if found, _ := r.libs.ContainsOrAdd(key, lib); found {
		if cached, ok := r.libs.Get(key); ok {
			return cached, nil
		}
	}
	return lib, nil
}

// Purge empties the library cache.
func (r *Resolver) Purge() { r.libs.Purge() }

func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
