package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"userhub/internal/apperror"
	"userhub/internal/config"
	"userhub/internal/model"
)

// MemoryUserStore keeps users in process. It enforces the same unique
// username/email rule and ordering as the Postgres store and is safe for
// concurrent use. The service itself always runs on Postgres; this store
// backs the service and handler tests.
type MemoryUserStore struct {
	mu         sync.RWMutex
	now        func() time.Time
	nextID     int
	lastAt     time.Time
	users      []model.User
	byUsername map[string]int
	byEmail    map[string]int
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		now:        time.Now,
		byUsername: make(map[string]int),
		byEmail:    make(map[string]int),
	}
}

func (s *MemoryUserStore) Insert(ctx context.Context, u *model.User) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperror.Store("Insert", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byUsername[u.Username]; ok {
		return nil, apperror.DuplicateKey("username", nil)
	}
	if _, ok := s.byEmail[u.Email]; ok {
		return nil, apperror.DuplicateKey("email", nil)
	}

	// created_at must not go backwards relative to insertion order
	at := s.now().UTC()
	if !at.After(s.lastAt) {
		at = s.lastAt.Add(time.Microsecond)
	}
	s.lastAt = at
	s.nextID++

	u.ID = s.nextID
	u.CreatedAt = at
	s.users = append(s.users, *u)
	s.byUsername[u.Username] = u.ID
	s.byEmail[u.Email] = u.ID
	return u, nil
}

func (s *MemoryUserStore) GetByID(ctx context.Context, id int) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.users {
		if s.users[i].ID == id {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (s *MemoryUserStore) List(ctx context.Context, excludeAdmins bool, limit int) ([]model.User, error) {
	if limit <= 0 {
		limit = config.DefaultListLimit
	}

	s.mu.RLock()
	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		if excludeAdmins && u.IsAdmin {
			continue
		}
		out = append(out, u)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
