package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"eventreg/src/models"
	"eventreg/src/types"
)

// MemoryStorage keeps registrations in process. Used for local runs and tests.
type MemoryStorage struct {
	mu     sync.RWMutex
	nextID uint
	rows   map[uint]models.Registration
	now    func() time.Time
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{rows: map[uint]models.Registration{}, now: time.Now}
}

// WithClock overrides the creation timestamp source.
func (s *MemoryStorage) WithClock(now func() time.Time) *MemoryStorage {
	s.now = now
	return s
}

func (s *MemoryStorage) CreateRegistration(_ context.Context, in types.RegistrationInput) (*models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	r := newPendingRegistration(in, s.now())
	r.ID = s.nextID
	s.rows[r.ID] = r
	return &r, nil
}

func (s *MemoryStorage) GetRegistration(_ context.Context, id uint) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s *MemoryStorage) GetAllRegistrations(_ context.Context) ([]models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Registration, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, r)
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryStorage) UpdateRegistrationStatus(_ context.Context, id uint, status types.RegistrationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rows[id]; ok {
		r.Status = status
		s.rows[id] = r
	}
	return nil
}

func (s *MemoryStorage) UpdateCheckedInStatus(_ context.Context, id uint, checkedIn bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rows[id]; ok {
		r.CheckedIn = checkedIn
		s.rows[id] = r
	}
	return nil
}

func sortNewestFirst(rs []models.Registration) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].CreatedAt.Equal(rs[j].CreatedAt) {
			return rs[i].ID > rs[j].ID
		}
		return rs[i].CreatedAt.After(rs[j].CreatedAt)
	})
}
