// SPDX-License-Identifier: MPL-2.0

package download

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const (
	defaultPerPage = 30

	// maxPages bounds pagination.
	maxPages = 3

	// maxJSONResponseBytes bounds API response bodies (10 MB).
	maxJSONResponseBytes = 10 << 20
)

type (
	// RateLimitError is returned when the GitHub API rate limit is exceeded.
	RateLimitError struct {
		Limit     int
		Remaining int
		ResetAt   time.Time
	}

	// Release is a published GitHub release.
	Release struct {
		TagName    string
		Name       string
		Prerelease bool
		Draft      bool
		Assets     []Asset
	}

	// Asset is one downloadable release file.
	Asset struct {
		Name               string
		BrowserDownloadURL string
		Size               int64
	}

	githubRelease struct {
		TagName    string        `json:"tag_name"`
		Name       string        `json:"name"`
		Prerelease bool          `json:"prerelease"`
		Draft      bool          `json:"draft"`
		Assets     []githubAsset `json:"assets"`
	}

	githubAsset struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
		Size               int64  `json:"size"`
	}

	// Client queries the GitHub Releases API of one repository.
	Client struct {
		httpClient *http.Client
		owner      string
		repo       string
		baseURL    string
		token      string
		userAgent  string
	}

	// ClientOption configures a Client.
	ClientOption func(*Client)
)

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("GitHub API rate limit exceeded (%d remaining, resets at %s)",
		e.Remaining, e.ResetAt.UTC().Format("15:04 UTC"))
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(g *Client) { g.httpClient = c }
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(base string) ClientOption {
	return func(g *Client) { g.baseURL = strings.TrimRight(base, "/") }
}

// WithToken authenticates requests to GitHub hosts.
func WithToken(token string) ClientOption {
	return func(g *Client) { g.token = token }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(g *Client) { g.userAgent = ua }
}

// WithRepo selects the repository that publishes the analyzer bundle.
func WithRepo(owner, repo string) ClientOption {
	return func(g *Client) {
		g.owner = owner
		g.repo = repo
	}
}

// NewClient returns a client for linthub/analyzers on api.github.com.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		owner:      "linthub",
		repo:       "analyzers",
		baseURL:    "https://api.github.com",
		userAgent:  "linthub/dev",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListReleases returns stable releases sorted by semantic version, newest
// first. Tags that are not valid semver sort last.
func (c *Client) ListReleases(ctx context.Context) ([]Release, error) {
	pageURL := fmt.Sprintf("%s/repos/%s/%s/releases?per_page=%d", c.baseURL, c.owner, c.repo, defaultPerPage)

	var all []Release
	for page := 0; page < maxPages && pageURL != ""; page++ {
		resp, err := c.doRequest(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("listing releases: %w", err)
		}

		if rlErr := checkRateLimit(resp); rlErr != nil {
			_ = resp.Body.Close()
			return nil, rlErr
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("listing releases: unexpected status %d", resp.StatusCode)
		}

		var raw []githubRelease
		err = json.NewDecoder(io.LimitReader(resp.Body, maxJSONResponseBytes)).Decode(&raw)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("listing releases: decoding response: %w", err)
		}

		for _, gr := range raw {
			if gr.Draft || gr.Prerelease {
				continue
			}
			all = append(all, toRelease(gr))
		}

		pageURL = parseLinkHeader(resp.Header.Get("Link"))
	}

	slices.SortStableFunc(all, func(a, b Release) int {
		return semver.Compare(b.TagName, a.TagName)
	})
	return all, nil
}

// DownloadAsset streams the asset at assetURL. The caller closes the body.
func (c *Client) DownloadAsset(ctx context.Context, assetURL string) (io.ReadCloser, error) {
	resp, err := c.doRequest(ctx, assetURL)
	if err != nil {
		return nil, fmt.Errorf("downloading asset %s: %w", redactURL(assetURL), err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("downloading asset %s: unexpected status %d", redactURL(assetURL), resp.StatusCode)
	}
	return resp.Body, nil
}

func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", c.userAgent)

	// Never send the token to hosts a download may redirect to.
	if c.token != "" && isGitHubHost(req.URL, c.baseURL) {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	return resp, nil
}

// checkRateLimit returns a RateLimitError when X-RateLimit-Remaining is zero.
func checkRateLimit(resp *http.Response) error {
	remaining := resp.Header.Get("X-RateLimit-Remaining")
	if remaining == "" {
		return nil
	}
	rem, err := strconv.Atoi(remaining)
	if err != nil || rem > 0 {
		return nil //nolint:nilerr // a malformed header is not a rate limit
	}

	limit, _ := strconv.Atoi(resp.Header.Get("X-RateLimit-Limit"))                 //nolint:errcheck // best effort
	resetUnix, _ := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64) //nolint:errcheck // best effort

	return &RateLimitError{Limit: limit, ResetAt: time.Unix(resetUnix, 0)}
}

// parseLinkHeader returns the rel="next" URL of a Link header, or "".
func parseLinkHeader(header string) string {
	for part := range strings.SplitSeq(header, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		start := strings.Index(part, "<")
		end := strings.Index(part, ">")
		if start >= 0 && end > start {
			return part[start+1 : end]
		}
	}
	return ""
}

func toRelease(gr githubRelease) Release {
	assets := make([]Asset, 0, len(gr.Assets))
	for _, ga := range gr.Assets {
		assets = append(assets, Asset(ga))
	}
	return Release{
		TagName:    gr.TagName,
		Name:       gr.Name,
		Prerelease: gr.Prerelease,
		Draft:      gr.Draft,
		Assets:     assets,
	}
}

func isGitHubHost(reqURL *url.URL, baseURL string) bool {
	base, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	if strings.EqualFold(reqURL.Host, base.Host) {
		return true
	}
	return strings.EqualFold(base.Host, "api.github.com") && strings.EqualFold(reqURL.Host, "github.com")
}

// redactURL drops query and fragment so tokens never reach error messages.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
