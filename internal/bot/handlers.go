// Package bot holds the Telegram-facing surface: command handlers, the
// callback dispatcher, the flow router for free-text input, keyboards and
// result rendering. All state lives in the services it delegates to.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/pixbot/core/logger"
	"github.com/m3rciful/pixbot/core/telegram/helpers"
	"github.com/m3rciful/pixbot/internal/admin"
	"github.com/m3rciful/pixbot/internal/broadcast"
	"github.com/m3rciful/pixbot/internal/gate"
	"github.com/m3rciful/pixbot/internal/models"
	"github.com/m3rciful/pixbot/internal/search"
	"github.com/m3rciful/pixbot/internal/session"
	"github.com/m3rciful/pixbot/internal/storage"
)

// Bot wires the services to Telegram updates.
type Bot struct {
	store     storage.Storage
	sessions  *session.Service
	gate      *gate.Service
	search    *search.Service
	admin     *admin.Service
	broadcast *broadcast.Executor
	adminID   int64
}

func New(
	store storage.Storage,
	sessions *session.Service,
	gateSvc *gate.Service,
	searchSvc *search.Service,
	adminSvc *admin.Service,
	bcast *broadcast.Executor,
	adminID int64,
) *Bot {
	return &Bot{
		store:     store,
		sessions:  sessions,
		gate:      gateSvc,
		search:    searchSvc,
		admin:     adminSvc,
		broadcast: bcast,
		adminID:   adminID,
	}
}

// HandleStart registers the user, applies the ban and subscription checks,
// and lands on the main menu.
func (b *Bot) HandleStart(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	from := c.Sender()

	if err := b.store.UpsertUser(ctx, &models.User{
		ID:        from.ID,
		Username:  from.Username,
		FirstName: from.FirstName,
		LastName:  from.LastName,
	}); err != nil {
		return err
	}

	banned, err := b.store.IsBanned(ctx, from.ID)
	if err != nil {
		return err
	}
	if banned {
		return helpers.SendMD(c, textBanned)
	}

	ok, pending, err := b.gate.Check(ctx, teleMembership{c.Bot()}, from.ID)
	if err != nil {
		return err
	}
	if !ok {
		return helpers.SendMD(c, textGateWall, gateKeyboard(pending))
	}
	return helpers.SendMD(c, textWelcome, mainMenuKeyboard())
}

// HandleAdmin opens the admin panel. Admin-only wrapping happens at route
// registration; non-admins never reach this handler.
func (b *Bot) HandleAdmin(c tele.Context) error {
	return helpers.SendMD(c, textAdminMenu, adminKeyboard())
}

// HandleUnknown answers text that no flow or command claimed.
func (b *Bot) HandleUnknown(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	banned, err := b.store.IsBanned(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	if banned {
		return helpers.SendMD(c, textBanned)
	}
	return helpers.SendMD(c, textHelp, mainMenuKeyboard())
}

// DispatchCallback is the single callback entry point. The action set is
// closed; unknown keys are dropped with a log line, and privileged actions
// from non-admins are dropped silently.
func (b *Bot) DispatchCallback(c tele.Context, key, payload string) error {
	ctx := helpers.BuildContext(c)
	userID := c.Sender().ID

	banned, err := b.store.IsBanned(ctx, userID)
	if err != nil {
		return err
	}
	if banned {
		return nil
	}

	action := Action(key)
	if action.Privileged() && userID != b.adminID {
		logger.Admin.Debug("privileged action dropped",
			slog.String("event", "admin.reject"),
			slog.Int64("user_id", userID),
			slog.String("cb_key", key),
		)
		return nil
	}

	switch action {
	case ActionVerify:
		return b.verify(ctx, c)
	case ActionMenu:
		return helpers.EditOrSendMD(c, textMenu, mainMenuKeyboard())
	case ActionSearch:
		if err := b.sessions.SetFlow(ctx, userID, models.FlowAwaitingQuery); err != nil {
			return err
		}
		return helpers.EditOrSendMD(c, textAskQuery)
	case ActionCategories:
		return b.categoryMenu(ctx, c)
	case ActionSetCategory:
		cat, ok := models.ParseCategory(payload)
		if !ok {
			return nil
		}
		if err := b.sessions.SetCategory(ctx, userID, cat); err != nil {
			return err
		}
		return helpers.EditOrSendMD(c, fmt.Sprintf(textCategoryMenu, categoryLabel(cat)), categoryKeyboard(cat))
	case ActionSearchIn:
		cat, ok := models.ParseCategory(payload)
		if !ok {
			return nil
		}
		if err := b.sessions.SetCategory(ctx, userID, cat); err != nil {
			return err
		}
		if err := b.sessions.SetFlow(ctx, userID, models.FlowAwaitingQuery); err != nil {
			return err
		}
		return helpers.EditOrSendMD(c, textAskQuery)
	case ActionPrev:
		return b.page(ctx, c, false)
	case ActionNext:
		return b.page(ctx, c, true)
	case ActionSelect:
		sess, err := b.sessions.Get(ctx, userID)
		if err != nil {
			return err
		}
		return renderResult(c, sess, false, true)

	case ActionAdminStats:
		return b.adminStats(ctx, c)
	case ActionAdminChannels:
		return b.adminChannels(ctx, c)
	case ActionAdminBack:
		return helpers.EditOrSendMD(c, textAdminMenu, adminKeyboard())
	case ActionAdminBan:
		return b.arm(ctx, c, models.FlowAwaitingBan, textAskBanID)
	case ActionAdminUnban:
		return b.arm(ctx, c, models.FlowAwaitingUnban, textAskUnbanID)
	case ActionAdminAddChan:
		return b.arm(ctx, c, models.FlowAwaitingAddChannel, textAskChannel)
	case ActionAdminRemoveChan:
		return b.arm(ctx, c, models.FlowAwaitingRemoveChannel, textAskRemoval)
	case ActionAdminBroadcast:
		return b.arm(ctx, c, models.FlowAwaitingBroadcast, textAskBcast)
	}

	logger.TG.Debug("unknown callback action",
		slog.String("event", "callback.unknown"),
		slog.String("cb_key", key),
	)
	return nil
}

func (b *Bot) verify(ctx context.Context, c tele.Context) error {
	ok, pending, err := b.gate.Check(ctx, teleMembership{c.Bot()}, c.Sender().ID)
	if err != nil {
		return err
	}
	if !ok {
		return helpers.EditOrSendMD(c, textGateStillNot, gateKeyboard(pending))
	}
	return helpers.EditOrSendMD(c, textWelcome, mainMenuKeyboard())
}

func (b *Bot) categoryMenu(ctx context.Context, c tele.Context) error {
	current := models.CategoryPhoto
	sess, err := b.sessions.Get(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	if sess != nil && sess.Category.Valid() {
		current = sess.Category
	}
	return helpers.EditOrSendMD(c, fmt.Sprintf(textCategoryMenu, categoryLabel(current)), categoryKeyboard(current))
}

func (b *Bot) page(ctx context.Context, c tele.Context, forward bool) error {
	userID := c.Sender().ID
	var (
		sess  *models.Session
		moved bool
		err   error
	)
	if forward {
		sess, moved, err = b.sessions.Next(ctx, userID)
	} else {
		sess, moved, err = b.sessions.Prev(ctx, userID)
	}
	if err != nil {
		return err
	}
	if sess == nil || len(sess.Results) == 0 {
		return helpers.SendMD(c, textHelp, mainMenuKeyboard())
	}
	if !moved {
		// Stale keyboard tap past an edge; the record is untouched.
		return nil
	}
	return renderResult(c, sess, true, true)
}

func (b *Bot) arm(ctx context.Context, c tele.Context, kind models.FlowState, prompt string) error {
	if err := b.admin.Begin(ctx, c.Sender().ID, kind); err != nil {
		return err
	}
	return helpers.EditOrSendMD(c, prompt)
}

func (b *Bot) adminStats(ctx context.Context, c tele.Context) error {
	stats, err := b.store.Statistics(ctx)
	if err != nil {
		return err
	}
	text := fmt.Sprintf(textStats, stats.TotalUsers, stats.TotalSearches, stats.Channels, stats.BannedUsers)
	return helpers.EditOrSendMD(c, text, adminKeyboard())
}

func (b *Bot) adminChannels(ctx context.Context, c tele.Context) error {
	channels, err := b.store.ListChannels(ctx)
	if err != nil {
		return err
	}
	list := textAdminNoChans
	if len(channels) > 0 {
		lines := make([]string, 0, len(channels))
		for _, ch := range channels {
			lines = append(lines, fmt.Sprintf("@%s (`%d`)", ch.Handle, ch.ID))
		}
		list = strings.Join(lines, "\n")
	}
	return helpers.EditOrSendMD(c, fmt.Sprintf(textAdminChannels, list), adminChannelsKeyboard())
}

// Route implements the flow router: a pending flow claims the text update.
func (b *Bot) Route(c tele.Context) (bool, error) {
	ctx := helpers.BuildContext(c)
	userID := c.Sender().ID

	flow, err := b.sessions.Flow(ctx, userID)
	if err != nil {
		return false, err
	}
	if flow == models.FlowNone {
		return false, nil
	}

	banned, err := b.store.IsBanned(ctx, userID)
	if err != nil {
		return false, err
	}
	if banned {
		return true, helpers.SendMD(c, textBanned)
	}

	switch {
	case flow == models.FlowAwaitingQuery:
		return true, b.runSearch(ctx, c, strings.TrimSpace(c.Text()))
	case flow.AdminInput():
		if userID != b.adminID {
			// Stale privileged flow on a non-admin record; drop it.
			_ = b.sessions.ClearFlow(ctx, userID)
			return false, nil
		}
		return true, b.runAdminInput(ctx, c)
	}
	return false, nil
}

func (b *Bot) runSearch(ctx context.Context, c tele.Context, query string) error {
	userID := c.Sender().ID
	won, err := b.sessions.ConsumeFlow(ctx, userID, models.FlowAwaitingQuery)
	if err != nil {
		return err
	}
	if !won {
		// A duplicate message already claimed this expectation.
		return nil
	}

	category := models.CategoryPhoto
	sess, err := b.sessions.Get(ctx, userID)
	if err != nil {
		return err
	}
	if sess != nil && sess.Category.Valid() {
		category = sess.Category
	}

	outcome := b.search.Run(ctx, userID, query, category)
	switch outcome.Kind {
	case search.OutcomeEmpty:
		return helpers.SendMD(c, textNoResults, mainMenuKeyboard())
	case search.OutcomeFailure:
		return helpers.SendMD(c, textSearchFailed, mainMenuKeyboard())
	}

	sess, err = b.sessions.Get(ctx, userID)
	if err != nil {
		return err
	}
	return renderResult(c, sess, true, false)
}

func (b *Bot) runAdminInput(ctx context.Context, c tele.Context) error {
	res, err := b.admin.HandleInput(ctx, teleResolver{c.Bot()}, b.adminID, c.Text())
	if err != nil {
		return err
	}

	switch res.Status {
	case admin.StatusInvalid:
		switch res.Kind {
		case models.FlowAwaitingBan, models.FlowAwaitingUnban:
			return helpers.SendMD(c, textBadUserID)
		case models.FlowAwaitingAddChannel, models.FlowAwaitingRemoveChannel:
			return helpers.SendMD(c, textBadHandle)
		case models.FlowAwaitingBroadcast:
			return helpers.SendMD(c, textBcastEmpty)
		}
		return helpers.SendMD(c, textHelp)
	case admin.StatusNotFound:
		return helpers.SendMD(c, textChanNotFound)
	case admin.StatusUnreachable:
		return helpers.SendMD(c, textChanUnreached)
	}

	switch res.Kind {
	case models.FlowAwaitingBan:
		return helpers.SendMD(c, fmt.Sprintf(textBanApplied, res.TargetID), adminKeyboard())
	case models.FlowAwaitingUnban:
		return helpers.SendMD(c, fmt.Sprintf(textUnbanApplied, res.TargetID), adminKeyboard())
	case models.FlowAwaitingAddChannel:
		return helpers.SendMD(c, fmt.Sprintf(textChanAdded, res.Channel.Handle), adminKeyboard())
	case models.FlowAwaitingRemoveChannel:
		return helpers.SendMD(c, textChanRemoved, adminKeyboard())
	case models.FlowAwaitingBroadcast:
		return b.runBroadcast(ctx, c, res.BroadcastText)
	}
	return nil
}

// runBroadcast fans the message out while editing one status message with
// the running tally.
func (b *Bot) runBroadcast(ctx context.Context, c tele.Context, text string) error {
	tb := c.Bot()
	status, err := tb.Send(c.Recipient(), textBcastStarted)
	if err != nil {
		return err
	}

	progress := func(done, sent, failed int) {
		_, _ = tb.Edit(status, fmt.Sprintf(textBcastProgress, done, sent, failed))
	}

	summary, err := b.broadcast.Run(ctx, teleSender{tb}, text, progress)
	if err != nil {
		return err
	}

	final := fmt.Sprintf(textBcastSummary, summary.Total, summary.Sent, summary.Failed)
	if _, err := tb.Edit(status, final); err != nil {
		return helpers.SendMD(c, final)
	}
	return nil
}
