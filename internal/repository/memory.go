package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"vct-survivor/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

type ledgerKey struct {
	user    string
	stageID int
}

// MemoryStore keeps schedule, assignments and picks in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	schedule    []domain.Match
	assignments map[ledgerKey]domain.Assignment
	picks       map[ledgerKey]domain.Pick
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		assignments: map[ledgerKey]domain.Assignment{},
		picks:       map[ledgerKey]domain.Pick{},
	}
}

func (s *MemoryStore) LoadSchedule(ctx context.Context) ([]domain.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Match, len(s.schedule))
	copy(out, s.schedule)
	return out, nil
}

func (s *MemoryStore) ReplaceSchedule(ctx context.Context, matches []domain.Match) error {
	next := make([]domain.Match, len(matches))
	copy(next, matches)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedule = next
	return nil
}

func (s *MemoryStore) SetWinner(ctx context.Context, matchID, winner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.schedule {
		if s.schedule[i].ID == matchID {
			s.schedule[i].Winner = winner
			return nil
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrUnknownMatch, matchID)
}

func (s *MemoryStore) GetAssignment(ctx context.Context, user string, stageID int) (*domain.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assignments[ledgerKey{user, stageID}]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *MemoryStore) PutAssignment(ctx context.Context, a domain.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[ledgerKey{a.User, a.StageID}] = a
	return nil
}

func (s *MemoryStore) GetPick(ctx context.Context, user string, stageID int) (*domain.Pick, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.picks[ledgerKey{user, stageID}]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *MemoryStore) InsertPick(ctx context.Context, p domain.Pick) error {
	if p.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
		p.ID = id
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := ledgerKey{p.User, p.StageID}
	if _, exists := s.picks[key]; exists {
		return fmt.Errorf("%w: %s/%d", domain.ErrDuplicatePick, p.User, p.StageID)
	}
	s.picks[key] = p
	return nil
}

func (s *MemoryStore) ListPicks(ctx context.Context) ([]domain.Pick, error) {
	return s.listPicks(func(domain.Pick) bool { return true }), nil
}

func (s *MemoryStore) ListPicksByUser(ctx context.Context, user string) ([]domain.Pick, error) {
	return s.listPicks(func(p domain.Pick) bool { return p.User == user }), nil
}

func (s *MemoryStore) listPicks(keep func(domain.Pick) bool) []domain.Pick {
	s.mu.RLock()
	out := []domain.Pick{}
	for _, p := range s.picks {
		if keep(p) {
			out = append(out, p)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].StageID != out[j].StageID {
			return out[i].StageID < out[j].StageID
		}
		return out[i].User < out[j].User
	})
	return out
}
