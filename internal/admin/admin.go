// Package admin implements the one-shot privileged input workflow: an admin
// action arms a single pending expectation, and the admin's next free-text
// message is interpreted by it exactly once.
package admin

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/pixbot/core/logger"
	"github.com/m3rciful/pixbot/internal/models"
	"github.com/m3rciful/pixbot/internal/session"
	"github.com/m3rciful/pixbot/internal/storage"
)

// ChannelResolver looks up a channel by public handle through the transport.
type ChannelResolver interface {
	ResolveChannel(ctx context.Context, handle string) (int64, error)
}

// Status classifies the handling of one admin input.
type Status int

const (
	// StatusApplied means the action was validated and executed.
	StatusApplied Status = iota
	// StatusInvalid means the input failed validation.
	StatusInvalid
	// StatusNotFound means the referenced channel is not in the list.
	StatusNotFound
	// StatusUnreachable means the transport could not resolve the channel.
	StatusUnreachable
)

// Result describes what one admin input did. The pending expectation is
// cleared before Result is produced, whatever the status.
type Result struct {
	Kind   models.FlowState
	Status Status
	// TargetID is the affected user id for ban/unban.
	TargetID int64
	// Channel is the affected channel for add/remove.
	Channel *models.Channel
	// BroadcastText, when non-empty, is a message the caller must fan out.
	BroadcastText string
}

// Service drives the admin workflow against the store.
type Service struct {
	store    storage.Storage
	sessions *session.Service
}

func NewService(store storage.Storage, sessions *session.Service) *Service {
	return &Service{store: store, sessions: sessions}
}

// Begin arms the pending expectation for the given sub-action. A second
// Begin before the first input arrives overwrites it; there is no queue.
func (s *Service) Begin(ctx context.Context, adminID int64, kind models.FlowState) error {
	if !kind.AdminInput() {
		return nil
	}
	logger.Admin.Info("awaiting input",
		slog.String("event", "admin.begin"),
		slog.String("kind", string(kind)),
	)
	return s.sessions.SetFlow(ctx, adminID, kind)
}

// HandleInput consumes the pending expectation with the admin's text. The
// expectation is cleared before any processing, good input or bad;
// validation failures are reported in the Result, only store/transport
// breakage comes back as an error. A duplicate message that lost the
// consume race yields an empty Result the caller treats as a no-op.
func (s *Service) HandleInput(ctx context.Context, resolver ChannelResolver, adminID int64, text string) (Result, error) {
	kind, err := s.sessions.Flow(ctx, adminID)
	if err != nil {
		return Result{}, err
	}
	won, err := s.sessions.ConsumeFlow(ctx, adminID, kind)
	if err != nil {
		return Result{}, err
	}
	if !won {
		return Result{}, nil
	}

	text = strings.TrimSpace(text)
	res := Result{Kind: kind}

	switch kind {
	case models.FlowAwaitingBan, models.FlowAwaitingUnban:
		target, parseErr := strconv.ParseInt(text, 10, 64)
		if parseErr != nil || target <= 0 {
			res.Status = StatusInvalid
			return res, nil
		}
		banned := kind == models.FlowAwaitingBan
		if err := s.store.SetBanned(ctx, target, banned); err != nil {
			return res, err
		}
		res.Status = StatusApplied
		res.TargetID = target
		logger.Admin.Info("ban flag updated",
			slog.String("event", "admin.ban"),
			slog.Int64("user_id", target),
			slog.Bool("banned", banned),
		)
		return res, nil

	case models.FlowAwaitingAddChannel:
		if !strings.HasPrefix(text, "@") || len(text) < 2 {
			res.Status = StatusInvalid
			return res, nil
		}
		handle := strings.TrimPrefix(text, "@")
		id, resolveErr := resolver.ResolveChannel(ctx, handle)
		if resolveErr != nil {
			logger.Admin.Warn("channel resolve failed",
				slog.String("event", "admin.add_channel"),
				slog.String("err", resolveErr.Error()),
			)
			res.Status = StatusUnreachable
			return res, nil
		}
		ch := &models.Channel{ID: id, Handle: handle, AddedBy: adminID}
		if err := s.store.AddChannel(ctx, ch); err != nil {
			return res, err
		}
		res.Status = StatusApplied
		res.Channel = ch
		return res, nil

	case models.FlowAwaitingRemoveChannel:
		ch, status, err := s.resolveRemoval(ctx, text)
		if err != nil {
			return res, err
		}
		res.Status = status
		res.Channel = ch
		if status != StatusApplied {
			return res, nil
		}
		if err := s.store.RemoveChannel(ctx, ch.ID); err != nil {
			return res, err
		}
		return res, nil

	case models.FlowAwaitingBroadcast:
		if text == "" {
			res.Status = StatusInvalid
			return res, nil
		}
		res.Status = StatusApplied
		res.BroadcastText = text
		return res, nil
	}

	res.Status = StatusInvalid
	return res, nil
}

// resolveRemoval accepts either an @handle known to the channel list or a
// raw numeric channel id.
func (s *Service) resolveRemoval(ctx context.Context, text string) (*models.Channel, Status, error) {
	if strings.HasPrefix(text, "@") {
		handle := strings.TrimPrefix(text, "@")
		channels, err := s.store.ListChannels(ctx)
		if err != nil {
			return nil, StatusInvalid, err
		}
		for i := range channels {
			if channels[i].Handle == handle {
				return &channels[i], StatusApplied, nil
			}
		}
		return nil, StatusNotFound, nil
	}
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, StatusInvalid, nil
	}
	return &models.Channel{ID: id}, StatusApplied, nil
}
