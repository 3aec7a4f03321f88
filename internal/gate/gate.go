// Package gate decides whether a user may pass the mandatory-channel wall.
package gate

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/m3rciful/pixbot/core/logger"
	"github.com/m3rciful/pixbot/internal/models"
	"github.com/m3rciful/pixbot/internal/storage"
)

// MembershipChecker resolves the user's membership status in a channel.
// Implemented over the transport (see internal/bot); faked in tests.
type MembershipChecker interface {
	MemberStatus(ctx context.Context, channelID int64, userID int64) (string, error)
}

// Statuses that satisfy the subscription requirement.
const (
	StatusCreator       = "creator"
	StatusAdministrator = "administrator"
	StatusMember        = "member"
)

// Service checks the configured channel list against live membership.
type Service struct {
	store storage.Storage
}

func NewService(store storage.Storage) *Service {
	return &Service{store: store}
}

// Check reports whether the user satisfies every mandatory channel and, if
// not, which channels are still pending in configured order. Lookups run
// concurrently and fail closed: an unreachable channel counts as pending.
func (s *Service) Check(ctx context.Context, checker MembershipChecker, userID int64) (bool, []models.Channel, error) {
	channels, err := s.store.ListChannels(ctx)
	if err != nil {
		return false, nil, err
	}
	if len(channels) == 0 {
		return true, nil, nil
	}

	subscribed := make([]bool, len(channels))
	g, gctx := errgroup.WithContext(ctx)
	for i, ch := range channels {
		i, ch := i, ch
		g.Go(func() error {
			status, err := checker.MemberStatus(gctx, ch.ID, userID)
			if err != nil {
				logger.Gate.Debug("membership lookup failed",
					slog.String("event", "gate.lookup"),
					slog.Int64("user_id", userID),
					slog.Int64("channel_id", ch.ID),
					slog.String("err", err.Error()),
				)
				return nil
			}
			switch status {
			case StatusCreator, StatusAdministrator, StatusMember:
				subscribed[i] = true
			}
			return nil
		})
	}
	// Lookup failures never propagate; fail-closed handles them.
	_ = g.Wait()

	var pending []models.Channel
	for i, ok := range subscribed {
		if !ok {
			pending = append(pending, channels[i])
		}
	}
	return len(pending) == 0, pending, nil
}
