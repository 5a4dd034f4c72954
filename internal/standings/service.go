// Package standings computes the ranked list of users and memoizes it
// between solves. The cache is a pure optimization: values must match a
// cache-disabled run exactly.
package standings

import (
	"context"
	"slices"
	"sync"

	"github.com/rangelab/warpoint/internal/domain"
	"github.com/rangelab/warpoint/internal/errors"
)

type Store interface {
	Standings(ctx context.Context) ([]domain.Standing, error)
}

type Config struct {
	Store Store
}

// Service builds standings and serves per-user score and place lookups
// from one snapshot per cache epoch. Any recorded solve drops the whole
// snapshot, not just the solver's rows: a single solve can move every
// other user's rank, so partial invalidation would serve stale places.
// The solve recorder calls Invalidate synchronously after committing a
// solve, so the read after a solve always lands in a fresh epoch.
type Service struct {
	store Store

	mu       sync.Mutex
	snapshot []domain.Standing
	index    map[int64]int
}

func NewService(c Config) *Service {
	return &Service{store: c.Store}
}

type StandingsRequest struct {
	// ExcludeUsernames filters reserved accounts out of public views.
	// Exclusion is the caller's policy; admin views pass none and see
	// every user.
	ExcludeUsernames []string
}

// Standings returns all users ordered by score descending, ties by
// ascending user id.
func (s *Service) Standings(ctx context.Context, req StandingsRequest) ([]domain.Standing, error) {
	snapshot, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Standing, 0, len(snapshot))
	for _, st := range snapshot {
		if slices.Contains(req.ExcludeUsernames, st.Username) {
			continue
		}
		out = append(out, st)
	}

	return out, nil
}

// Score returns the user's total from the current snapshot.
func (s *Service) Score(ctx context.Context, userID int64) (int, error) {
	snapshot, index, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	i, ok := index[userID]
	if !ok {
		return 0, errors.NotFoundf("user not in standings: id=%d", userID)
	}

	return snapshot[i].Score, nil
}

// Place returns the user's 1-based position in the full standings.
// Ties are not collapsed: each user holds a distinct sequential place
// according to the total order. NotFound means the user is absent from
// standings, e.g. deleted mid-computation.
func (s *Service) Place(ctx context.Context, userID int64) (int, error) {
	_, index, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	i, ok := index[userID]
	if !ok {
		return 0, errors.NotFoundf("user not in standings: id=%d", userID)
	}

	return i + 1, nil
}

// PlaceLabel is Place rendered as an ordinal, with a medal for the top
// three.
func (s *Service) PlaceLabel(ctx context.Context, userID int64) (string, error) {
	n, err := s.Place(ctx, userID)
	if err != nil {
		return "", err
	}

	return FormatRank(n), nil
}

// Invalidate drops the snapshot and starts a new cache epoch. The next
// read recomputes; nothing is recomputed here, so an invalidation
// racing an in-flight read can never resurrect pre-solve data.
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = nil
	s.index = nil
}

// load returns the snapshot for the current epoch, computing it under
// the lock on the first read after an invalidation. Holding the lock
// through the recompute keeps get and invalidate atomic with respect
// to each other.
func (s *Service) load(ctx context.Context) ([]domain.Standing, map[int64]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot != nil {
		return s.snapshot, s.index, nil
	}

	standings, err := s.store.Standings(ctx)
	if err != nil {
		return nil, nil, err
	}
	if standings == nil {
		standings = []domain.Standing{}
	}

	index := make(map[int64]int, len(standings))
	for i, st := range standings {
		index[st.UserID] = i
	}

	s.snapshot = standings
	s.index = index

	return standings, index, nil
}
