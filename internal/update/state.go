package update

import (
	"context"
	"time"

	"studio/internal/debug"
	apperrors "studio/internal/errors"
	"studio/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// UpdateState is the value held by the update cell. Result and Err are never
// both set.
type UpdateState struct {
	Result  *UpdateCheckResult
	Loading bool
	Err     *apperrors.Error
}

// DefaultUpdateState returns the state the cell starts in and is reset to at
// the start of every check.
func DefaultUpdateState() UpdateState {
	return UpdateState{}
}

// Done reports whether the state is the terminal state of a check.
func (s UpdateState) Done() bool {
	return !s.Loading && (s.Result != nil || s.Err != nil)
}

// Fetcher runs one release check against the running version.
// *Checker implements it.
type Fetcher interface {
	Check(ctx context.Context) Outcome
}

// Store owns the refresh cycle of an update cell: it is the cell's only writer.
type Store struct {
	fetcher Fetcher
	cell    *store.Cell[UpdateState]
	group   singleflight.Group
}

// NewStore creates a Store writing to cell. A nil cell gets a fresh one holding
// DefaultUpdateState.
func NewStore(fetcher Fetcher, cell *store.Cell[UpdateState]) *Store {
	if cell == nil {
		cell = store.NewCell(DefaultUpdateState())
	}
	return &Store{fetcher: fetcher, cell: cell}
}

// Cell returns the cell the store writes to, for subscribers.
func (s *Store) Cell() *store.Cell[UpdateState] {
	return s.cell
}

// Refresh runs one update check and returns the terminal state.
//
// The cell is reset to DefaultUpdateState, the release is fetched, and the
// terminal state is written whatever happens, including a panic inside the
// fetcher. Subscribers see the reset and the terminal state in that order.
// Calls made while a check is in flight wait for it and share its terminal
// state rather than starting a second cycle; the in-flight check keeps the
// context of the caller that started it.
func (s *Store) Refresh(ctx context.Context) UpdateState {
	v, _, _ := s.group.Do("refresh", func() (any, error) {
		return s.refresh(ctx), nil
	})
	return v.(UpdateState)
}

func (s *Store) refresh(ctx context.Context) (final UpdateState) {
	checkID := uuid.NewString()
	start := time.Now()

	var result *UpdateCheckResult
	var checkErr *apperrors.Error

	defer func() {
		if r := recover(); r != nil {
			e := apperrors.NormalizeWithCode(r, apperrors.CodeUpdatePanic)
			result, checkErr = nil, &e
		}
		final = UpdateState{Loading: false, Result: result, Err: checkErr}
		s.cell.Set(final)

		if checkErr != nil {
			debug.Logw("update check failed",
				zap.String("check_id", checkID),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("code", string(checkErr.Code)),
				zap.String("message", checkErr.Message),
				zap.Strings("details", checkErr.Details),
			)
			return
		}
		debug.Logw("update check done",
			zap.String("check_id", checkID),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("latest", result.LatestVersion),
			zap.Bool("has_update", result.HasUpdate),
		)
	}()

	s.cell.Set(DefaultUpdateState())
	debug.Logf("update check %s started", checkID)

	outcome := s.fetcher.Check(ctx)
	switch outcome.Kind {
	case OutcomeResult:
		r := outcome.Result
		result = &r
	default:
		e := outcome.Err
		checkErr = &e
	}
	return final
}
