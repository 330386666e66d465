// Package memory implements the repositories in process memory, matching
// the reference deployment. Suitable for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"hydropulse/internal/domain"
)

// Store holds all state behind one mutex; Update callbacks run under it,
// which serializes concurrent commands for the same user key.
type Store struct {
	mu       sync.Mutex
	profiles map[string]domain.UserProfile
	logs     map[string]*domain.DailyLog

	now func() time.Time
}

var (
	_ domain.ProfileRepository = (*Store)(nil)
	_ domain.LogRepository     = (*Store)(nil)
)

// New creates an empty store.
func New() *Store {
	return &Store{
		profiles: make(map[string]domain.UserProfile),
		logs:     make(map[string]*domain.DailyLog),
		now:      time.Now,
	}
}

// GetProfile returns a copy of the user's profile, or nil when absent.
func (s *Store) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// PutProfile inserts or replaces the user's profile.
func (s *Store) PutProfile(ctx context.Context, profile *domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[profile.UserID] = *profile
	return nil
}

// GetLog returns a copy of the user's daily log, opening one on first use.
func (s *Store) GetLog(ctx context.Context, userID string) (*domain.DailyLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.logFor(userID)
	cp := cloneLog(l)
	return &cp, nil
}

// UpdateLog runs fn on the user's log under the store lock and returns a
// copy of the updated log.
func (s *Store) UpdateLog(ctx context.Context, userID string, fn func(*domain.DailyLog) error) (*domain.DailyLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.logFor(userID)
	if err := fn(l); err != nil {
		return nil, err
	}
	cp := cloneLog(l)
	return &cp, nil
}

// logFor must be called with the lock held.
func (s *Store) logFor(userID string) *domain.DailyLog {
	if l, ok := s.logs[userID]; ok {
		return l
	}
	l := domain.NewDailyLog(userID, s.now())
	s.logs[userID] = l
	return l
}

func cloneLog(l *domain.DailyLog) domain.DailyLog {
	cp := *l
	cp.FoodLog = append([]domain.FoodEntry(nil), l.FoodLog...)
	cp.WorkoutLog = append([]domain.WorkoutEntry(nil), l.WorkoutLog...)
	return cp
}
