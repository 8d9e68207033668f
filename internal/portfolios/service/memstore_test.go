package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/folio-review/folio-backend/internal/portfolios/domain"
	"github.com/google/uuid"
)

// memStore mimics the guarded-update semantics of the SQL repository.
type memStore struct {
	mu        sync.Mutex
	rows      map[string]domain.Portfolio
	failOn    map[string]error
	listErr   error
	updateLog []string
	admins    map[string]bool
}

func newMemStore(ps ...domain.Portfolio) *memStore {
	s := &memStore{rows: map[string]domain.Portfolio{}, failOn: map[string]error{}}
	for _, p := range ps {
		s.rows[p.ID] = p
	}
	return s
}

func (s *memStore) GetByID(_ context.Context, id string) (*domain.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *memStore) GetLiveByUser(_ context.Context, userID string) (*domain.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.rows {
		if p.UserID == userID && p.DeletedAt == nil {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memStore) Create(_ context.Context, p *domain.Portfolio, enforceSingle bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if enforceSingle {
		for _, existing := range s.rows {
			if existing.UserID == p.UserID && existing.DeletedAt == nil {
				return domain.ErrPortfolioExists
			}
		}
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	s.rows[p.ID] = *p
	return nil
}

func (s *memStore) Update(_ context.Context, p *domain.Portfolio, prev time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failOn[p.ID]; err != nil {
		return err
	}
	current, ok := s.rows[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if !current.UpdatedAt.Equal(prev) {
		return domain.ErrConflict
	}
	s.rows[p.ID] = *p
	s.updateLog = append(s.updateLog, p.ID)
	return nil
}

func (s *memStore) Restore(ctx context.Context, p *domain.Portfolio, prev time.Time) error {
	s.mu.Lock()
	if !s.admins[p.UserID] {
		for id, other := range s.rows {
			if id != p.ID && other.UserID == p.UserID && other.DeletedAt == nil {
				s.mu.Unlock()
				return domain.ErrPortfolioExists
			}
		}
	}
	s.mu.Unlock()
	return s.Update(ctx, p, prev)
}

func (s *memStore) liveCount(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.rows {
		if p.UserID == userID && p.DeletedAt == nil {
			n++
		}
	}
	return n
}

func (s *memStore) ListApprovedQueued(_ context.Context) ([]domain.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []domain.Portfolio
	for _, p := range s.rows {
		if domain.StateOf(&p) == domain.StateApprovedQueued && p.DeletedAt == nil {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.Before(out[j].UpdatedAt)
	})
	return out, nil
}

func (s *memStore) get(id string) domain.Portfolio {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows[id]
}

type memSettings struct {
	settings domain.AdminSettings
	err      error
}

func (m *memSettings) Get(context.Context) (domain.AdminSettings, error) {
	return m.settings, m.err
}

func (m *memSettings) Save(_ context.Context, s *domain.AdminSettings) error {
	if m.err != nil {
		return m.err
	}
	s.UpdatedAt = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	m.settings = *s
	return nil
}

type memFeedback map[string]int

func (m memFeedback) CompletedCount(_ context.Context, userID string) (int, error) {
	if n, ok := m["error"]; ok && n < 0 {
		return 0, errors.New("feedback store down")
	}
	return m[userID], nil
}

type fakeLock struct {
	held     bool
	acquired int
	released int
}

func (l *fakeLock) Acquire(context.Context) (bool, error) {
	if l.held {
		return false, nil
	}
	l.held = true
	l.acquired++
	return true, nil
}

func (l *fakeLock) Release(context.Context) error {
	l.held = false
	l.released++
	return nil
}
