package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/m3rciful/pixbot/internal/models"
)

// MemoryStorage is an in-memory Storage for tests and local development.
type MemoryStorage struct {
	mu       sync.RWMutex
	users    map[int64]*models.User
	sessions map[int64]*models.Session
	flows    map[int64]models.FlowState
	channels []models.Channel
	history  []models.SearchRecord
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		users:    make(map[int64]*models.User),
		sessions: make(map[int64]*models.Session),
		flows:    make(map[int64]models.FlowState),
	}
}

func (s *MemoryStorage) UpsertUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("storage: nil user")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.users[user.ID]; ok {
		existing.Username = user.Username
		existing.FirstName = user.FirstName
		existing.LastName = user.LastName
		return nil
	}
	u := *user
	if u.JoinedAt.IsZero() {
		u.JoinedAt = time.Now().UTC()
	}
	s.users[user.ID] = &u
	return nil
}

func (s *MemoryStorage) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[userID]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (s *MemoryStorage) IsBanned(ctx context.Context, userID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[userID]; ok {
		return u.Banned, nil
	}
	return false, nil
}

func (s *MemoryStorage) SetBanned(ctx context.Context, userID int64, banned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		u = &models.User{ID: userID, JoinedAt: time.Now().UTC()}
		s.users[userID] = u
	}
	u.Banned = banned
	return nil
}

func (s *MemoryStorage) IncrementSearchCount(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.SearchCount++
	}
	return nil
}

func (s *MemoryStorage) UserIDs(ctx context.Context, excludeBanned bool) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0, len(s.users))
	for id, u := range s.users {
		if excludeBanned && u.Banned {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *MemoryStorage) GetSession(ctx context.Context, userID int64) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, nil
	}
	cp := *sess
	cp.Results = append([]models.Result(nil), sess.Results...)
	return &cp, nil
}

func (s *MemoryStorage) PutSession(ctx context.Context, sess *models.Session) error {
	if sess == nil {
		return errors.New("storage: nil session")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sess
	cp.Results = append([]models.Result(nil), sess.Results...)
	s.sessions[sess.UserID] = &cp
	return nil
}

func (s *MemoryStorage) GetFlow(ctx context.Context, userID int64) (models.FlowState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flows[userID], nil
}

func (s *MemoryStorage) SetFlow(ctx context.Context, userID int64, flow models.FlowState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if flow == models.FlowNone {
		delete(s.flows, userID)
		return nil
	}
	s.flows[userID] = flow
	return nil
}

func (s *MemoryStorage) AppendHistory(ctx context.Context, rec *models.SearchRecord) error {
	if rec == nil {
		return errors.New("storage: nil history record")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	cp.ID = int64(len(s.history) + 1)
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	s.history = append(s.history, cp)
	return nil
}

// History returns a copy of the audit log for assertions in tests.
func (s *MemoryStorage) History() []models.SearchRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.SearchRecord(nil), s.history...)
}

func (s *MemoryStorage) ListChannels(ctx context.Context) ([]models.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Channel(nil), s.channels...), nil
}

func (s *MemoryStorage) AddChannel(ctx context.Context, ch *models.Channel) error {
	if ch == nil {
		return errors.New("storage: nil channel")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *ch
	if cp.AddedAt.IsZero() {
		cp.AddedAt = time.Now().UTC()
	}
	for i := range s.channels {
		if s.channels[i].ID == ch.ID {
			cp.AddedAt = s.channels[i].AddedAt
			s.channels[i] = cp
			return nil
		}
	}
	s.channels = append(s.channels, cp)
	return nil
}

func (s *MemoryStorage) RemoveChannel(ctx context.Context, channelID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.channels {
		if s.channels[i].ID == channelID {
			s.channels = append(s.channels[:i], s.channels[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *MemoryStorage) Statistics(ctx context.Context) (*models.Statistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := &models.Statistics{
		TotalUsers: int64(len(s.users)),
		Channels:   int64(len(s.channels)),
	}
	for _, u := range s.users {
		stats.TotalSearches += u.SearchCount
		if u.Banned {
			stats.BannedUsers++
		}
	}
	return stats, nil
}

func (s *MemoryStorage) Close() error { return nil }
