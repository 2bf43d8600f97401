package ui

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"studio/internal/format"
	"studio/internal/update"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const defaultReportWidth = 80

// Messages shown for each phase of a check.
const (
	MessageChecking = "Checking for updates..."
	MessageUpToDate = "You're running the latest version."
)

// ReportOptions controls how an update state is rendered.
type ReportOptions struct {
	CurrentVersion string
	// NotesStyle is the glamour style for release notes: rich, light, dark or plain.
	NotesStyle string
	ShowNotes  bool
	Width      int
	// Plain strips all terminal styling from the output.
	Plain bool
}

func (o ReportOptions) width() int {
	if o.Width <= 0 {
		return defaultReportWidth
	}
	return o.Width
}

// RenderReport renders an update state as terminal text.
func RenderReport(state update.UpdateState, opts ReportOptions) string {
	var out string
	switch {
	case state.Err != nil:
		out = renderError(state, opts)
	case state.Result != nil:
		out = renderResult(*state.Result, opts)
	default:
		out = styleChecking.Render(MessageChecking)
	}
	if opts.Plain {
		return ansi.Strip(out)
	}
	return out
}

func renderResult(r update.UpdateCheckResult, opts ReportOptions) string {
	if !r.HasUpdate {
		line := styleUpToDate.Render(MessageUpToDate)
		if opts.CurrentVersion != "" {
			line += " " + styleDim.Render("("+opts.CurrentVersion+")")
		}
		return line
	}

	lines := []string{
		styleAvailable.Render("Update available: ") + styleVersion.Render(r.LatestVersion),
	}
	if opts.CurrentVersion != "" {
		lines = append(lines, field("Current", opts.CurrentVersion))
	}
	if r.ReleaseName != "" && r.ReleaseName != r.LatestVersion {
		lines = append(lines, field("Release", r.ReleaseName))
	}
	if strings.TrimSpace(r.PublishedAt) != "" {
		lines = append(lines, field("Published", publishedLabel(r.PublishedAt)))
	}
	if r.Prerelease {
		lines = append(lines, field("Channel", "pre-release"))
	}
	lines = append(lines, field("Download", styleLink.Render(r.Link)))

	if opts.ShowNotes && strings.TrimSpace(r.ReleaseNotes) != "" {
		style := opts.NotesStyle
		if opts.Plain {
			style = "plain"
		}
		render := buildMarkdownRenderer(style, opts.width())
		lines = append(lines, "", styleHeader.Render("Release notes"), render(r.ReleaseNotes))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderError(state update.UpdateState, opts ReportOptions) string {
	e := state.Err
	lines := []string{styleFailed.Render("Update check failed: ") + e.Message}
	for _, d := range e.Details {
		lines = append(lines, styleDetail.Render("  - "+d))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// publishedLabel renders a feed timestamp with its age, e.g. "Mar 3, 10:05 AM (3d ago)".
func publishedLabel(s string) string {
	label := format.FormatDate(s)
	t, err := format.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return label
	}
	if rel := format.FormatRelativeTime(t); strings.HasSuffix(rel, " ago") {
		label += " " + styleDim.Render("("+rel+")")
	}
	return label
}

func field(name, value string) string {
	return styleField.Render(name) + " " + value
}

// jsonReport is the machine-readable form of an update state.
type jsonReport struct {
	Status         string   `json:"status"`
	CurrentVersion string   `json:"current_version,omitempty"`
	HasUpdate      bool     `json:"has_update"`
	LatestVersion  string   `json:"latest_version,omitempty"`
	Link           string   `json:"link,omitempty"`
	PublishedAt    string   `json:"published_at,omitempty"`
	Prerelease     bool     `json:"prerelease,omitempty"`
	Error          string   `json:"error,omitempty"`
	ErrorName      string   `json:"error_name,omitempty"`
	ErrorCode      string   `json:"error_code,omitempty"`
	ErrorDetails   []string `json:"error_details,omitempty"`
}

// Report status values used in JSON output.
const (
	StatusChecking = "checking"
	StatusOK       = "ok"
	StatusError    = "error"
)

// publishedRFC3339 normalizes a feed timestamp to UTC RFC 3339. Timestamps
// that do not parse are passed through as sent.
func publishedRFC3339(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t, err := format.ParseDate(s)
	if err != nil {
		return s
	}
	return t.UTC().Format(time.RFC3339)
}

// RenderJSON renders an update state as a JSON document.
func RenderJSON(state update.UpdateState, currentVersion string) (string, error) {
	report := jsonReport{Status: StatusChecking, CurrentVersion: currentVersion}
	switch {
	case state.Err != nil:
		report.Status = StatusError
		report.Error = state.Err.Message
		report.ErrorName = state.Err.Name()
		report.ErrorCode = string(state.Err.Code)
		report.ErrorDetails = state.Err.Details
	case state.Result != nil:
		r := state.Result
		report.Status = StatusOK
		report.HasUpdate = r.HasUpdate
		report.LatestVersion = r.LatestVersion
		report.Link = r.Link
		report.Prerelease = r.Prerelease
		report.PublishedAt = publishedRFC3339(r.PublishedAt)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	return string(data), nil
}
