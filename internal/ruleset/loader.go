// SPDX-License-Identifier: MPL-2.0

package ruleset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/linthub/linthub/internal/cueutil"
)

const (
	// DefaultCacheSize is the merged-ruleset cache size used when none is configured.
	DefaultCacheSize = 32

	// DefaultFetchTimeout bounds one remote ruleset fetch.
	DefaultFetchTimeout = 10 * time.Second
)

type (
	// Result is a merged ruleset.
	Result struct {
		// Path is the normalized top-level path or URL.
		Path    string
		Actions ActionMap
		// Warnings lists nodes that were skipped.
		Warnings []string
	}

	// Loader merges ruleset trees and caches the outcome per top-level path.
	// It is safe for concurrent use.
	Loader struct {
		client       *http.Client
		fetchTimeout time.Duration
		logger       *slog.Logger
		cache        *lru.Cache[cacheKey, *Result]
	}

	// Option configures a Loader.
	Option func(*loaderOptions)

	loaderOptions struct {
		client       *http.Client
		fetchTimeout time.Duration
		cacheSize    int
		logger       *slog.Logger
	}

	// cacheKey separates results merged with and without remote includes.
	cacheKey struct {
		path   string
		remote bool
	}

	// merge is the state of one top-level load.
	merge struct {
		l           *Loader
		allowRemote bool
		visited     map[string]bool
		actions     ActionMap
		warnings    []string
	}
)

// WithHTTPClient sets the client used for remote rulesets.
func WithHTTPClient(c *http.Client) Option {
	return func(o *loaderOptions) { o.client = c }
}

// WithFetchTimeout bounds each remote fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(o *loaderOptions) { o.fetchTimeout = d }
}

// WithCacheSize sets how many merged rulesets are kept.
func WithCacheSize(n int) Option {
	return func(o *loaderOptions) { o.cacheSize = n }
}

// WithLogger sets the logger used for skipped nodes.
func WithLogger(l *slog.Logger) Option {
	return func(o *loaderOptions) { o.logger = l }
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) (*Loader, error) {
	o := loaderOptions{
		client:       http.DefaultClient,
		fetchTimeout: DefaultFetchTimeout,
		cacheSize:    DefaultCacheSize,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cacheSize <= 0 {
		o.cacheSize = DefaultCacheSize
	}

	cache, err := lru.New[cacheKey, *Result](o.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating ruleset cache: %w", err)
	}
	return &Loader{
		client:       o.client,
		fetchTimeout: o.fetchTimeout,
		logger:       o.logger,
		cache:        cache,
	}, nil
}

// Load merges the ruleset tree rooted at ref, a file path or http(s) URL.
// Nodes that cannot be read or parsed are skipped with a warning; Load itself
// never fails. Remote nodes are followed only when allowRemote is set.
func (l *Loader) Load(ctx context.Context, ref string, allowRemote bool) *Result {
	top := normalize(ref)
	key := cacheKey{path: top, remote: allowRemote}
	if cached, ok := l.cache.Get(key); ok {
		return cached.clone()
	}

	m := &merge{
		l:           l,
		allowRemote: allowRemote,
		visited:     make(map[string]bool),
		actions:     make(ActionMap),
	}
	m.visit(ctx, top)

	res := &Result{Path: top, Actions: m.actions, Warnings: m.warnings}
	if ctx.Err() == nil {
		l.cache.ContainsOrAdd(key, res)
		if cached, ok := l.cache.Get(key); ok {
			res = cached
		}
	}
	return res.clone()
}

// Purge empties the merged-ruleset cache.
func (l *Loader) Purge() { l.cache.Purge() }

func (r *Result) clone() *Result {
	return &Result{Path: r.Path, Actions: r.Actions.Clone(), Warnings: slices.Clone(r.Warnings)}
}

// visit merges one node: general action, then includes in document order,
// then local rules. Already visited nodes are skipped.
func (m *merge) visit(ctx context.Context, id string) {
	if m.visited[id] {
		return
	}
	m.visited[id] = true

	if isRemote(id) && !m.allowRemote {
		m.warn("skipping remote ruleset %s: external rulesets are disabled", id)
		return
	}

	data, err := m.l.read(ctx, id)
	if err != nil {
		m.warn("reading ruleset %s: %v", id, err)
		return
	}
	doc, err := ParseDocument(data, id)
	if err != nil {
		m.warn("parsing ruleset %s: %v", id, err)
		return
	}

	if doc.GeneralAction != "" {
		if a, ok := ParseAction(doc.GeneralAction); ok {
			m.actions[Wildcard] = a
		}
	}

	for _, inc := range doc.Includes {
		m.visit(ctx, resolveRef(id, inc.Path))
	}

	for _, r := range doc.Rules {
		a, _ := ParseAction(r.Action)
		m.actions[r.ID] = a
	}
}

func (m *merge) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	m.l.logger.Warn("ruleset node skipped", "reason", msg)
	m.warnings = append(m.warnings, msg)
}

func (l *Loader) read(ctx context.Context, id string) ([]byte, error) {
	if !isRemote(id) {
		return os.ReadFile(id)
	}

	ctx, cancel := context.WithTimeout(ctx, l.fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, id, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, cueutil.DefaultMaxFileSize+1))
}

func isRemote(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// normalize returns the identity used for cycle detection and caching: a
// cleaned absolute path, or a URL with its path cleaned and fragment dropped.
func normalize(ref string) string {
	ref = strings.TrimSpace(ref)
	if isRemote(ref) {
		u, err := url.Parse(ref)
		if err != nil {
			return ref
		}
		u.Fragment = ""
		if u.Path != "" {
			u.Path = path.Clean(u.Path)
		}
		return u.String()
	}
	if abs, err := filepath.Abs(ref); err == nil {
		return abs
	}
	return filepath.Clean(ref)
}

// resolveRef resolves ref against the node it appears in.
func resolveRef(parent, ref string) string {
	ref = strings.TrimSpace(ref)
	switch {
	case isRemote(ref):
		return normalize(ref)
	case isRemote(parent):
		base, err := url.Parse(parent)
		if err != nil {
			return normalize(ref)
		}
		rel, err := url.Parse(filepath.ToSlash(ref))
		if err != nil {
			return normalize(ref)
		}
		return normalize(base.ResolveReference(rel).String())
	case filepath.IsAbs(ref):
		return filepath.Clean(ref)
	default:
		return filepath.Join(filepath.Dir(parent), ref)
	}
}
