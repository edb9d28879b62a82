// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs an action when the inputs of a Go project change.
//
// Every directory under the project root is watched with fsnotify. Events are
// filtered through doublestar patterns and coalesced over a debounce window,
// so an editor's write-then-rename settles into a single callback carrying all
// changed paths.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Config.Debounce is unset.
const DefaultDebounce = 300 * time.Millisecond

// ErrStarted is returned by a second call to Run.
var ErrStarted = errors.New("watch: Run called more than once")

var (
	// DefaultPatterns select the files that change analysis results.
	DefaultPatterns = []string{
		"**/*.go",
		"**/go.mod",
		"**/go.sum",
		"**/*.ruleset.json",
		".vscode/settings.json",
		".linthub/settings.*",
		".env",
	}

	alwaysIgnored = []string{
		"**/.git/**",
		"**/node_modules/**",
		"**/*.swp",
		"**/*~",
		"**/.#*",
	}
)

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Dir is the project root. Empty means the working directory.
		Dir string
		// Patterns select the paths, relative to Dir, that trigger OnChange.
		// Empty means DefaultPatterns.
		Patterns []string
		// Ignore lists extra patterns that never trigger OnChange.
		Ignore []string
		// Debounce is the quiet period after the last event.
		Debounce time.Duration
		// OnChange receives the sorted, deduplicated changed paths.
		OnChange func(ctx context.Context, changed []string) error
		Logger   *slog.Logger
	}

	// Watcher fires a debounced callback when watched files change.
	Watcher struct {
		fsw      *fsnotify.Watcher
		dir      string
		patterns []string
		ignores  []string
		debounce time.Duration
		onChange func(ctx context.Context, changed []string) error
		logger   *slog.Logger
		started  atomic.Bool
	}
)

// New validates cfg and registers every non-ignored directory under cfg.Dir.
func New(cfg Config) (*Watcher, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", dir, err)
	}

	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	ignores := append(slices.Clone(alwaysIgnored), cfg.Ignore...)
	for _, p := range append(slices.Clone(patterns), cfg.Ignore...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("watch: invalid pattern %q", p)
		}
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	w := &Watcher{
		fsw:      fsw,
		dir:      abs,
		patterns: slices.Clone(patterns),
		ignores:  ignores,
		debounce: debounce,
		onChange: cfg.OnChange,
		logger:   logger,
	}
	if err := w.addTree(abs); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run processes events until ctx is done. A callback still running when the
// next window closes is not re-entered; the pending paths wait for it.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrStarted
	}
	defer func() {
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("closing watcher", "error", err)
		}
	}()

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		busy    atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !busy.CompareAndSwap(false, true) {
			mu.Lock()
			timer.Reset(w.debounce)
			mu.Unlock()
			return
		}
		defer busy.Store(false)

		mu.Lock()
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()
		if len(changed) == 0 || w.onChange == nil {
			return
		}
		w.logger.Debug("inputs changed", "paths", changed)
		if err := w.onChange(ctx, changed); err != nil {
			w.logger.Error("re-run failed", "error", err)
		}
	}

	defer func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed")
			}
			rel := w.rel(evt.Name)
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name, rel)
			}
			if !w.Matches(rel) {
				continue
			}
			mu.Lock()
			pending[rel] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: %w", err)
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// Matches reports whether rel, a slash or OS separated path relative to the
// project root, triggers the callback.
func (w *Watcher) Matches(rel string) bool {
	rel = filepath.ToSlash(rel)
	if matchAny(w.ignores, rel) {
		return false
	}
	return matchAny(w.patterns, rel)
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.dir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			w.logger.Debug("not watching", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.dir && w.ignoredDir(w.rel(path)) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) maybeAddDir(path, rel string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || w.ignoredDir(rel) {
		return
	}
	if err := w.addTree(path); err != nil {
		w.logger.Warn("watching new directory", "path", path, "error", err)
	}
}

func (w *Watcher) ignoredDir(rel string) bool {
	return matchAny(w.ignores, rel) || matchAny(w.ignores, rel+"/")
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}
