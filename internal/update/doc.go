// Package update provides the application's update notifier.
//
// This package handles:
//   - Querying the GitHub API for the latest release
//   - Comparing dot-separated versions to detect available updates
//   - Publishing the check's progress and outcome through a reactive cell
//
// The package is isolated from UI concerns. Failures are returned as values
// (apperrors.Error, Outcome, UpdateState) and never escape as panics, so a
// presentation layer only has to read UpdateState.
//
// Example usage:
//
//	checker := update.NewChecker(update.DefaultRepoOwner, update.DefaultRepoName, currentVersion)
//	s := update.NewStore(checker, nil)
//	unsubscribe := s.Cell().Subscribe(func(st update.UpdateState) {
//	    // render st
//	})
//	defer unsubscribe()
//	s.Refresh(ctx)
package update
