// Package broadcast fans one message out to every known non-banned user.
package broadcast

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/m3rciful/pixbot/core/logger"
	"github.com/m3rciful/pixbot/internal/storage"
)

// Sender delivers one broadcast message to one recipient.
type Sender interface {
	Send(ctx context.Context, userID int64, text string) error
}

// Summary is the tally of a finished run.
type Summary struct {
	Total  int
	Sent   int
	Failed int
}

// ProgressFunc receives the running tally. Called every tenth processed
// recipient and once more at the end of the run.
type ProgressFunc func(done, sent, failed int)

const defaultWorkers = 4

// Executor runs broadcasts with a bounded worker pool. Individual delivery
// failures are tallied and never abort the run.
type Executor struct {
	store   storage.Storage
	workers int
}

func NewExecutor(store storage.Storage, workers int) *Executor {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Executor{store: store, workers: workers}
}

// Run delivers text to every non-banned user and returns the final tally.
// The error is non-nil only when the recipient list cannot be loaded.
func (e *Executor) Run(ctx context.Context, sender Sender, text string, progress ProgressFunc) (Summary, error) {
	ids, err := e.store.UserIDs(ctx, true)
	if err != nil {
		return Summary{}, err
	}

	runID := uuid.NewString()
	start := time.Now()
	logger.Broadcast.Info("run started",
		slog.String("event", "broadcast.start"),
		slog.String("rid", runID),
		slog.Int("recipients", len(ids)),
	)

	var (
		mu   sync.Mutex
		sent int
		fail int
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			err := sender.Send(gctx, id, text)

			mu.Lock()
			done++
			if err != nil {
				fail++
				logger.Broadcast.Debug("delivery failed",
					slog.String("event", "broadcast.send"),
					slog.String("rid", runID),
					slog.Int64("user_id", id),
					slog.String("err", err.Error()),
				)
			} else {
				sent++
			}
			if progress != nil && done%10 == 0 {
				progress(done, sent, fail)
			}
			mu.Unlock()
			return nil
		})
	}
	// Worker closures never return errors; failures live in the tally.
	_ = g.Wait()

	if progress != nil && len(ids)%10 != 0 {
		progress(done, sent, fail)
	}

	logger.Broadcast.Info("run finished",
		slog.String("event", "broadcast.done"),
		slog.String("rid", runID),
		slog.Int("recipients", len(ids)),
		slog.Int("sent", sent),
		slog.Int("failed", fail),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return Summary{Total: len(ids), Sent: sent, Failed: fail}, nil
}
