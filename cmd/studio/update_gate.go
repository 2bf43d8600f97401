package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"studio/internal/config"
	apperrors "studio/internal/errors"
	"studio/internal/update"
)

// handleUpdateError writes a troubleshooting hint for a failed check. It never
// asks the caller to exit: a failed update check is reported, not fatal.
func handleUpdateError(w io.Writer, e *apperrors.Error) {
	if e == nil {
		return
	}
	if hint := updateErrorHint(e); hint != "" {
		_, _ = fmt.Fprint(w, hint)
	}
}

func updateErrorHint(e *apperrors.Error) string {
	var timeout interface{ Timeout() bool }
	switch {
	case errors.Is(e, context.Canceled):
		return ""
	case errors.Is(e, context.DeadlineExceeded), errors.As(e, &timeout) && timeout.Timeout():
		return formatTimeoutHint()
	case errors.Is(e, update.ErrRateLimited):
		return formatRateLimitHint()
	case errors.Is(e, update.ErrUnexpectedStatus):
		return formatFeedHint(config.GetString(config.KeyUpdateOwner), config.GetString(config.KeyUpdateRepo))
	case errors.Is(e, update.ErrNetworkFailure):
		return formatNetworkHint(config.GetString(config.KeyUpdateAPIURL))
	default:
		return ""
	}
}

func formatTimeoutHint() string {
	return fmt.Sprintf(`
The update check timed out.
  Raise %s in ~/.studio/config.yaml, or set STUDIO_UPDATE_TIMEOUT=15s.
`, config.KeyUpdateTimeout)
}

func formatRateLimitHint() string {
	return `
GitHub is rate limiting anonymous requests from this address.
  Try again later, or skip the check with -skip-update-check.
`
}

func formatFeedHint(owner, repo string) string {
	if strings.TrimSpace(owner) == "" {
		owner = update.DefaultRepoOwner
	}
	if strings.TrimSpace(repo) == "" {
		repo = update.DefaultRepoName
	}
	return fmt.Sprintf(`
The release feed for %s/%s did not answer as expected.
  Check %s and %s in your config.
`, owner, repo, config.KeyUpdateOwner, config.KeyUpdateRepo)
}

func formatNetworkHint(apiURL string) string {
	if strings.TrimSpace(apiURL) == "" {
		apiURL = update.DefaultAPIURL
	}
	return fmt.Sprintf(`
Could not reach %s.
  Check your network connection or proxy settings.
`, apiURL)
}
