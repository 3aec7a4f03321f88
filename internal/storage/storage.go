package storage

import (
	"context"

	"github.com/m3rciful/pixbot/internal/models"
)

// Storage is keyed persistence for users, sessions, mandatory channels, and
// the append-only search history. Last write wins per key; there are no
// transactions, so callers that need an atomic read-modify-write must
// serialize it themselves (see internal/session).
type Storage interface {
	// UpsertUser creates or refreshes the user row. The ban flag and search
	// counter of an existing row are preserved.
	UpsertUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	IsBanned(ctx context.Context, userID int64) (bool, error)
	// SetBanned flips the ban flag, creating a minimal row for users that
	// never interacted with the bot.
	SetBanned(ctx context.Context, userID int64, banned bool) error
	IncrementSearchCount(ctx context.Context, userID int64) error
	// UserIDs lists all known user ids, optionally excluding banned ones.
	UserIDs(ctx context.Context, excludeBanned bool) ([]int64, error)

	// GetSession returns nil when the user has no session record.
	GetSession(ctx context.Context, userID int64) (*models.Session, error)
	// PutSession fully replaces the session record. The flow state column is
	// untouched; it is owned by SetFlow.
	PutSession(ctx context.Context, s *models.Session) error
	GetFlow(ctx context.Context, userID int64) (models.FlowState, error)
	SetFlow(ctx context.Context, userID int64, flow models.FlowState) error

	AppendHistory(ctx context.Context, rec *models.SearchRecord) error

	ListChannels(ctx context.Context) ([]models.Channel, error)
	// AddChannel upserts by channel id: exactly one row per channel identity.
	AddChannel(ctx context.Context, ch *models.Channel) error
	RemoveChannel(ctx context.Context, channelID int64) error

	// Statistics aggregates by full scan at call time.
	Statistics(ctx context.Context) (*models.Statistics, error)

	Close() error
}
