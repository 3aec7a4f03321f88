// Package search turns a (query, category) pair into a provider call and a
// typed outcome, and applies the bookkeeping that only a successful search
// is allowed to perform.
package search

import (
	"context"
	"log/slog"
	"time"

	"github.com/m3rciful/pixbot/core/logger"
	"github.com/m3rciful/pixbot/internal/models"
	"github.com/m3rciful/pixbot/internal/session"
	"github.com/m3rciful/pixbot/internal/storage"
)

// Provider is the external media-search collaborator.
type Provider interface {
	Search(ctx context.Context, query string, category models.Category) ([]models.Result, error)
}

// OutcomeKind classifies a finished search.
type OutcomeKind int

const (
	// OutcomeSuccess means the provider returned at least one result.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeEmpty means the provider answered with zero results.
	OutcomeEmpty
	// OutcomeFailure means the provider call itself failed.
	OutcomeFailure
)

// Outcome is the result of one search run. Err is set only for failures.
type Outcome struct {
	Kind    OutcomeKind
	Results []models.Result
	Err     error
}

// Service orchestrates searches against the provider and the store.
type Service struct {
	store    storage.Storage
	sessions *session.Service
	provider Provider
}

func NewService(store storage.Storage, sessions *session.Service, provider Provider) *Service {
	return &Service{store: store, sessions: sessions, provider: provider}
}

// Run executes a search for the user. Only a non-empty success replaces the
// session snapshot (at index 0), appends a history row, and increments the
// user's search counter. Empty and failed searches mutate nothing.
func (s *Service) Run(ctx context.Context, userID int64, query string, category models.Category) Outcome {
	start := time.Now()
	results, err := s.provider.Search(ctx, query, category)
	if err != nil {
		logger.Search.Warn("provider call failed",
			slog.String("event", "search.provider"),
			slog.Int64("user_id", userID),
			slog.String("category", string(category)),
			slog.String("err", err.Error()),
			slog.Duration("duration", logger.RoundMS(time.Since(start))),
		)
		return Outcome{Kind: OutcomeFailure, Err: err}
	}
	if len(results) == 0 {
		logger.Search.Info("no results",
			slog.String("event", "search.empty"),
			slog.Int64("user_id", userID),
			slog.String("category", string(category)),
			slog.Duration("duration", logger.RoundMS(time.Since(start))),
		)
		return Outcome{Kind: OutcomeEmpty}
	}

	if err := s.sessions.Replace(ctx, userID, query, category, results); err != nil {
		return Outcome{Kind: OutcomeFailure, Err: err}
	}
	if err := s.store.AppendHistory(ctx, &models.SearchRecord{
		UserID:      userID,
		Query:       query,
		Category:    category,
		ResultCount: len(results),
	}); err != nil {
		return Outcome{Kind: OutcomeFailure, Err: err}
	}
	if err := s.store.IncrementSearchCount(ctx, userID); err != nil {
		return Outcome{Kind: OutcomeFailure, Err: err}
	}

	logger.Search.Info("search done",
		slog.String("event", "search.success"),
		slog.Int64("user_id", userID),
		slog.String("category", string(category)),
		slog.Int("results", len(results)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return Outcome{Kind: OutcomeSuccess, Results: results}
}
