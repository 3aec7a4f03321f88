package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/pixbot/internal/models"
)

// PostgresStorage persists all collections in Postgres via sqlx.
// Schema lives in migrations/ and is applied by core/database.
type PostgresStorage struct {
	db *sqlx.DB
}

// NewPostgresStorage wraps an already connected pool.
func NewPostgresStorage(db *sqlx.DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

func (s *PostgresStorage) UpsertUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("storage: nil user")
	}
	joined := user.JoinedAt
	if joined.IsZero() {
		joined = time.Now().UTC()
	}
	const q = `
		INSERT INTO users (user_id, username, first_name, last_name, joined_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name`
	if _, err := s.db.ExecContext(ctx, q, user.ID, user.Username, user.FirstName, user.LastName, joined); err != nil {
		return fmt.Errorf("upsert user %d: %w", user.ID, err)
	}
	return nil
}

func (s *PostgresStorage) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	var u models.User
	const q = `SELECT user_id, username, first_name, last_name, joined_at, banned, search_count
		FROM users WHERE user_id = $1`
	if err := s.db.GetContext(ctx, &u, q, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	return &u, nil
}

func (s *PostgresStorage) IsBanned(ctx context.Context, userID int64) (bool, error) {
	var banned bool
	err := s.db.GetContext(ctx, &banned, `SELECT banned FROM users WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ban lookup %d: %w", userID, err)
	}
	return banned, nil
}

func (s *PostgresStorage) SetBanned(ctx context.Context, userID int64, banned bool) error {
	const q = `
		INSERT INTO users (user_id, joined_at, banned)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET banned = EXCLUDED.banned`
	if _, err := s.db.ExecContext(ctx, q, userID, time.Now().UTC(), banned); err != nil {
		return fmt.Errorf("set banned %d: %w", userID, err)
	}
	return nil
}

func (s *PostgresStorage) IncrementSearchCount(ctx context.Context, userID int64) error {
	const q = `UPDATE users SET search_count = search_count + 1 WHERE user_id = $1`
	if _, err := s.db.ExecContext(ctx, q, userID); err != nil {
		return fmt.Errorf("increment search count %d: %w", userID, err)
	}
	return nil
}

func (s *PostgresStorage) UserIDs(ctx context.Context, excludeBanned bool) ([]int64, error) {
	q := `SELECT user_id FROM users ORDER BY user_id`
	if excludeBanned {
		q = `SELECT user_id FROM users WHERE NOT banned ORDER BY user_id`
	}
	var ids []int64
	if err := s.db.SelectContext(ctx, &ids, q); err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	return ids, nil
}

type sessionRow struct {
	UserID   int64  `db:"user_id"`
	Query    string `db:"query"`
	Category string `db:"category"`
	Results  []byte `db:"results_snapshot"`
	Index    int    `db:"current_index"`
}

func (s *PostgresStorage) GetSession(ctx context.Context, userID int64) (*models.Session, error) {
	var row sessionRow
	const q = `SELECT user_id, query, category, results_snapshot, current_index
		FROM user_sessions WHERE user_id = $1`
	if err := s.db.GetContext(ctx, &row, q, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session %d: %w", userID, err)
	}
	sess := &models.Session{
		UserID:   row.UserID,
		Query:    row.Query,
		Category: models.Category(row.Category),
		Index:    row.Index,
	}
	if len(row.Results) > 0 {
		if err := json.Unmarshal(row.Results, &sess.Results); err != nil {
			return nil, fmt.Errorf("decode session %d: %w", userID, err)
		}
	}
	return sess, nil
}

func (s *PostgresStorage) PutSession(ctx context.Context, sess *models.Session) error {
	if sess == nil {
		return errors.New("storage: nil session")
	}
	snapshot, err := json.Marshal(sess.Results)
	if err != nil {
		return fmt.Errorf("encode session %d: %w", sess.UserID, err)
	}
	const q = `
		INSERT INTO user_sessions (user_id, query, category, results_snapshot, current_index)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			query = EXCLUDED.query,
			category = EXCLUDED.category,
			results_snapshot = EXCLUDED.results_snapshot,
			current_index = EXCLUDED.current_index`
	if _, err := s.db.ExecContext(ctx, q, sess.UserID, sess.Query, string(sess.Category), snapshot, sess.Index); err != nil {
		return fmt.Errorf("put session %d: %w", sess.UserID, err)
	}
	return nil
}

func (s *PostgresStorage) GetFlow(ctx context.Context, userID int64) (models.FlowState, error) {
	var flow string
	err := s.db.GetContext(ctx, &flow, `SELECT flow_state FROM user_sessions WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.FlowNone, nil
	}
	if err != nil {
		return models.FlowNone, fmt.Errorf("get flow %d: %w", userID, err)
	}
	return models.FlowState(flow), nil
}

func (s *PostgresStorage) SetFlow(ctx context.Context, userID int64, flow models.FlowState) error {
	const q = `
		INSERT INTO user_sessions (user_id, flow_state)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET flow_state = EXCLUDED.flow_state`
	if _, err := s.db.ExecContext(ctx, q, userID, string(flow)); err != nil {
		return fmt.Errorf("set flow %d: %w", userID, err)
	}
	return nil
}

func (s *PostgresStorage) AppendHistory(ctx context.Context, rec *models.SearchRecord) error {
	if rec == nil {
		return errors.New("storage: nil history record")
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	const q = `
		INSERT INTO search_history (user_id, query, category, created_at, result_count)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := s.db.ExecContext(ctx, q, rec.UserID, rec.Query, string(rec.Category), created, rec.ResultCount); err != nil {
		return fmt.Errorf("append history for %d: %w", rec.UserID, err)
	}
	return nil
}

func (s *PostgresStorage) ListChannels(ctx context.Context) ([]models.Channel, error) {
	var channels []models.Channel
	const q = `SELECT channel_id, handle, added_by, added_at
		FROM mandatory_channels ORDER BY added_at, channel_id`
	if err := s.db.SelectContext(ctx, &channels, q); err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	return channels, nil
}

func (s *PostgresStorage) AddChannel(ctx context.Context, ch *models.Channel) error {
	if ch == nil {
		return errors.New("storage: nil channel")
	}
	added := ch.AddedAt
	if added.IsZero() {
		added = time.Now().UTC()
	}
	const q = `
		INSERT INTO mandatory_channels (channel_id, handle, added_by, added_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (channel_id) DO UPDATE SET
			handle = EXCLUDED.handle,
			added_by = EXCLUDED.added_by`
	if _, err := s.db.ExecContext(ctx, q, ch.ID, ch.Handle, ch.AddedBy, added); err != nil {
		return fmt.Errorf("add channel %d: %w", ch.ID, err)
	}
	return nil
}

func (s *PostgresStorage) RemoveChannel(ctx context.Context, channelID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM mandatory_channels WHERE channel_id = $1`, channelID); err != nil {
		return fmt.Errorf("remove channel %d: %w", channelID, err)
	}
	return nil
}

func (s *PostgresStorage) Statistics(ctx context.Context) (*models.Statistics, error) {
	var stats models.Statistics
	const q = `
		SELECT
			(SELECT COUNT(*) FROM users) AS total_users,
			(SELECT COALESCE(SUM(search_count), 0) FROM users) AS total_searches,
			(SELECT COUNT(*) FROM mandatory_channels) AS channels,
			(SELECT COUNT(*) FROM users WHERE banned) AS banned_users`
	if err := s.db.GetContext(ctx, &stats, q); err != nil {
		return nil, fmt.Errorf("statistics: %w", err)
	}
	return &stats, nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
