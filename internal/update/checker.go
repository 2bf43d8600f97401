package update

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "studio/internal/errors"
)

// Default configuration values.
const (
	DefaultRepoOwner = "Kiln-AI"
	DefaultRepoName  = "Kiln"
	DefaultAPIURL    = "https://api.github.com"
	DefaultTimeout   = 5 * time.Second
	DefaultUserAgent = "studio-update-checker"
)

// MessageUpdateData is reported when the release feed answers without a link or tag.
const MessageUpdateData = "Failed to fetch update data"

// maxReleaseBody bounds how much of the feed response is decoded.
const maxReleaseBody = 4 << 20

// Error variables for specific error conditions. They appear as causes of the
// structured errors returned by the checker.
var (
	ErrNetworkFailure   = fmt.Errorf("network request failed")
	ErrRateLimited      = fmt.Errorf("rate limited by GitHub API")
	ErrUnexpectedStatus = fmt.Errorf("unexpected response status")
)

// ReleaseInfo contains the fields of a GitHub release the checker reads.
type ReleaseInfo struct {
	TagName     string
	HTMLURL     string
	Name        string
	Body        string
	PublishedAt string
	Prerelease  bool
	Draft       bool
}

// releasePayload is the wire shape of a release. Only the link and tag are
// typed; the descriptive fields are read leniently so a malformed one never
// fails the check.
type releasePayload struct {
	TagName     string          `json:"tag_name"`
	HTMLURL     string          `json:"html_url"`
	Name        json.RawMessage `json:"name"`
	Body        json.RawMessage `json:"body"`
	PublishedAt json.RawMessage `json:"published_at"`
	Prerelease  json.RawMessage `json:"prerelease"`
	Draft       json.RawMessage `json:"draft"`
}

func (p releasePayload) release() *ReleaseInfo {
	return &ReleaseInfo{
		TagName:     p.TagName,
		HTMLURL:     p.HTMLURL,
		Name:        looseString(p.Name),
		Body:        looseString(p.Body),
		PublishedAt: looseString(p.PublishedAt),
		Prerelease:  looseBool(p.Prerelease),
		Draft:       looseBool(p.Draft),
	}
}

// looseString returns raw as a string, or "" when it is absent, null or not a string.
func looseString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// looseBool accepts a JSON bool or a quoted bool such as "true". Anything else is false.
func looseBool(raw json.RawMessage) bool {
	var b bool
	if len(raw) == 0 {
		return false
	}
	if json.Unmarshal(raw, &b) == nil {
		return b
	}
	b, _ = strconv.ParseBool(looseString(raw))
	return b
}

// UpdateCheckResult is the outcome of a successful, well-formed check.
// LatestVersion is the full release tag, suffix included.
type UpdateCheckResult struct {
	HasUpdate     bool
	LatestVersion string
	Link          string

	ReleaseName  string
	ReleaseNotes string
	// PublishedAt is the feed's timestamp as sent, possibly empty.
	PublishedAt string
	Prerelease  bool
}

// Checker handles version checking against GitHub releases.
type Checker struct {
	owner          string
	repo           string
	apiURL         string
	userAgent      string
	currentVersion string
	httpClient     *http.Client
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithHTTPClient sets a custom HTTP client for the checker.
func WithHTTPClient(client *http.Client) CheckerOption {
	return func(c *Checker) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the HTTP client timeout. Zero disables the timeout.
func WithTimeout(timeout time.Duration) CheckerOption {
	return func(c *Checker) {
		c.httpClient.Timeout = timeout
	}
}

// WithAPIURL points the checker at a different GitHub API base URL.
func WithAPIURL(apiURL string) CheckerOption {
	return func(c *Checker) {
		if trimmed := strings.TrimRight(strings.TrimSpace(apiURL), "/"); trimmed != "" {
			c.apiURL = trimmed
		}
	}
}

// WithUserAgent overrides the User-Agent header sent to the feed.
func WithUserAgent(ua string) CheckerOption {
	return func(c *Checker) {
		if strings.TrimSpace(ua) != "" {
			c.userAgent = ua
		}
	}
}

// NewChecker creates a version checker for the specified repository that
// compares releases against currentVersion.
func NewChecker(owner, repo, currentVersion string, opts ...CheckerOption) *Checker {
	c := &Checker{
		owner:          owner,
		repo:           repo,
		apiURL:         DefaultAPIURL,
		userAgent:      DefaultUserAgent,
		currentVersion: currentVersion,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CurrentVersion returns the running version the checker compares against.
func (c *Checker) CurrentVersion() string {
	return c.currentVersion
}

// ReleaseURL returns the feed endpoint queried by the checker.
func (c *Checker) ReleaseURL() string {
	return fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.apiURL, c.owner, c.repo)
}

// FetchLatestRelease queries the release feed and compares the latest tag with
// the running version. The returned error, when non-nil, is always an
// apperrors.Error: CodeUpdateData when the feed lacks a link or tag, otherwise
// the normalized transport or decoding failure.
func (c *Checker) FetchLatestRelease(ctx context.Context) (UpdateCheckResult, error) {
	release, status, err := c.fetchLatestRelease(ctx)
	if err != nil {
		return UpdateCheckResult{}, err
	}

	if release.HTMLURL == "" || release.TagName == "" {
		return UpdateCheckResult{}, apperrors.New(apperrors.CodeUpdateData, MessageUpdateData, statusCause(status))
	}

	version, _ := SplitTag(release.TagName)
	return UpdateCheckResult{
		HasUpdate:     SemanticVersionCompare(version, c.currentVersion),
		LatestVersion: release.TagName,
		Link:          release.HTMLURL,
		ReleaseName:   release.Name,
		ReleaseNotes:  release.Body,
		PublishedAt:   release.PublishedAt,
		Prerelease:    release.Prerelease,
	}, nil
}

// Check runs FetchLatestRelease and returns its outcome as a tagged value.
func (c *Checker) Check(ctx context.Context) Outcome {
	return OutcomeOf(c.FetchLatestRelease(ctx))
}

// fetchLatestRelease fetches the latest release from GitHub API.
// The body is decoded whatever the status, so an error payload surfaces as a
// release without a link or tag.
func (c *Checker) fetchLatestRelease(ctx context.Context) (*ReleaseInfo, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ReleaseURL(), nil)
	if err != nil {
		return nil, 0, apperrors.NormalizeWithCode(fmt.Errorf("create request: %w", err), apperrors.CodeUpdateTransport)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		e := apperrors.NormalizeWithCode(err, apperrors.CodeUpdateTransport)
		e.Err = fmt.Errorf("%w: %w", ErrNetworkFailure, err)
		return nil, 0, e
	}
	defer func() { _ = resp.Body.Close() }()

	var payload releasePayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxReleaseBody)).Decode(&payload); err != nil {
		e := apperrors.NormalizeWithCode(err, apperrors.CodeUpdateTransport)
		if cause := statusCause(resp.StatusCode); cause != nil {
			e.Err = fmt.Errorf("%w: %w", cause, err)
		}
		return nil, resp.StatusCode, e
	}

	return payload.release(), resp.StatusCode, nil
}

// statusCause explains a failed response by its status code.
func statusCause(status int) error {
	switch {
	case status == 0 || (status >= 200 && status < 300):
		return nil
	case status == http.StatusForbidden || status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrRateLimited, status)
	default:
		return fmt.Errorf("%w: status %d", ErrUnexpectedStatus, status)
	}
}
