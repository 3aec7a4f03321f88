// Package session owns the durable per-user conversation record: the last
// search snapshot with its pager index, and the persisted flow state that
// says what free-text input is expected next. All mutations are serialized
// per user id so concurrent updates for the same user cannot lose writes.
package session

import (
	"context"
	"log/slog"

	"github.com/m3rciful/pixbot/core/logger"
	"github.com/m3rciful/pixbot/internal/models"
	"github.com/m3rciful/pixbot/internal/storage"
)

// Service mediates all session-record access.
type Service struct {
	store storage.Storage
	locks *userLocks
}

func NewService(store storage.Storage) *Service {
	return &Service{store: store, locks: newUserLocks()}
}

// Get returns the current session record, or nil when the user has none.
func (s *Service) Get(ctx context.Context, userID int64) (*models.Session, error) {
	return s.store.GetSession(ctx, userID)
}

// Replace overwrites the whole session record with a fresh snapshot at
// index 0. Used after every successful search.
func (s *Service) Replace(ctx context.Context, userID int64, query string, category models.Category, results []models.Result) error {
	release := s.locks.Acquire(userID)
	defer release()

	return s.store.PutSession(ctx, &models.Session{
		UserID:   userID,
		Query:    query,
		Category: category,
		Results:  results,
		Index:    0,
	})
}

// SetCategory rewrites the record with a new category, keeping the rest.
// A user without a session gets a fresh record holding only the category.
func (s *Service) SetCategory(ctx context.Context, userID int64, category models.Category) error {
	release := s.locks.Acquire(userID)
	defer release()

	sess, err := s.store.GetSession(ctx, userID)
	if err != nil {
		return err
	}
	if sess == nil {
		sess = &models.Session{UserID: userID}
	}
	sess.Category = category
	return s.store.PutSession(ctx, sess)
}

// Next advances the pager by one. Clamp policy: at the last result the call
// is a no-op and reports moved=false without touching the record.
func (s *Service) Next(ctx context.Context, userID int64) (*models.Session, bool, error) {
	return s.step(ctx, userID, +1)
}

// Prev moves the pager back by one, clamped at index 0.
func (s *Service) Prev(ctx context.Context, userID int64) (*models.Session, bool, error) {
	return s.step(ctx, userID, -1)
}

func (s *Service) step(ctx context.Context, userID int64, delta int) (*models.Session, bool, error) {
	release := s.locks.Acquire(userID)
	defer release()

	sess, err := s.store.GetSession(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if sess == nil || len(sess.Results) == 0 {
		return sess, false, nil
	}

	next := sess.Index + delta
	if next < 0 || next >= len(sess.Results) {
		logger.Store.Debug("pager edge",
			slog.String("event", "pager.clamp"),
			slog.Int64("user_id", userID),
			slog.Int("index", sess.Index),
			slog.Int("results", len(sess.Results)),
		)
		return sess, false, nil
	}

	sess.Index = next
	if err := s.store.PutSession(ctx, sess); err != nil {
		return nil, false, err
	}
	return sess, true, nil
}

// Flow returns the pending free-text expectation for the user.
func (s *Service) Flow(ctx context.Context, userID int64) (models.FlowState, error) {
	return s.store.GetFlow(ctx, userID)
}

// SetFlow overwrites the pending expectation; a later SetFlow wins.
func (s *Service) SetFlow(ctx context.Context, userID int64, flow models.FlowState) error {
	release := s.locks.Acquire(userID)
	defer release()
	return s.store.SetFlow(ctx, userID, flow)
}

// ClearFlow drops the pending expectation.
func (s *Service) ClearFlow(ctx context.Context, userID int64) error {
	return s.SetFlow(ctx, userID, models.FlowNone)
}

// ConsumeFlow clears the pending expectation only while it still equals
// want, reporting whether this caller consumed it. Duplicate messages
// racing for the same expectation get exactly one winner.
func (s *Service) ConsumeFlow(ctx context.Context, userID int64, want models.FlowState) (bool, error) {
	release := s.locks.Acquire(userID)
	defer release()

	if want == models.FlowNone {
		return false, nil
	}
	flow, err := s.store.GetFlow(ctx, userID)
	if err != nil {
		return false, err
	}
	if flow != want {
		return false, nil
	}
	if err := s.store.SetFlow(ctx, userID, models.FlowNone); err != nil {
		return false, err
	}
	return true, nil
}
