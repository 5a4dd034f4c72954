// Package score records solves and aggregates per-user totals.
package score

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rangelab/warpoint/internal/challenge"
	"github.com/rangelab/warpoint/internal/domain"
	"github.com/rangelab/warpoint/internal/errors"
	"github.com/rangelab/warpoint/internal/event"
)

var solveAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "warpoint",
	Name:      "solve_attempts_total",
	Help:      "Solve attempts by outcome.",
}, []string{"outcome"})

type Store interface {
	GetChallenge(ctx context.Context, id int64) (domain.Challenge, error)
	InsertSolve(ctx context.Context, s *domain.Solve) error
	UserScore(ctx context.Context, userID int64) (int, error)
}

// Invalidator starts a new standings cache epoch.
type Invalidator interface {
	Invalidate()
}

type Config struct {
	EventBus  *event.Bus
	Store     Store
	Standings Invalidator
}

type Service struct {
	eb        *event.Bus
	store     Store
	standings Invalidator
}

func NewService(c Config) *Service {
	return &Service{
		eb:        c.EventBus,
		store:     c.Store,
		standings: c.Standings,
	}
}

type RecordSolveRequest struct {
	UserID      int64
	Username    string
	ChallengeID int64
	Answer      string
	SubmitTime  time.Time
}

type RecordSolveResponse struct {
	Outcome    domain.Outcome
	Challenge  domain.Challenge
	TotalScore int
}

// RecordSolve validates a submission and records it exactly once.
// Incorrect and AlreadySolved come back as outcomes, not errors; only
// a missing challenge or a store failure is an error. Once the solve
// row is committed the standings cache epoch rolls synchronously,
// before this call returns: the very next rank read, for any user,
// must reflect the new solve. Only the redis mirror fan-out rides the
// async bus.
func (s *Service) RecordSolve(ctx context.Context, req RecordSolveRequest) (*RecordSolveResponse, error) {
	ch, err := s.store.GetChallenge(ctx, req.ChallengeID)
	if err != nil {
		return nil, err
	}

	if !challenge.ValidateAnswer(req.Answer, ch.Answer) {
		solveAttempts.WithLabelValues(string(domain.OutcomeIncorrect)).Inc()
		return &RecordSolveResponse{Outcome: domain.OutcomeIncorrect, Challenge: ch}, nil
	}

	solve := domain.Solve{
		ChallengeID: req.ChallengeID,
		UserID:      req.UserID,
		Username:    req.Username,
		CreatedAt:   req.SubmitTime,
	}

	err = s.store.InsertSolve(ctx, &solve)
	if errors.Is(err, errors.CodeAlreadyExists) {
		solveAttempts.WithLabelValues(string(domain.OutcomeAlreadySolved)).Inc()
		return &RecordSolveResponse{Outcome: domain.OutcomeAlreadySolved, Challenge: ch}, nil
	}
	if err != nil {
		return nil, err
	}

	// The row is committed; one solve can shift every rank, so the
	// cache epoch rolls here even if the score query below fails.
	s.standings.Invalidate()

	total, err := s.store.UserScore(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	solveAttempts.WithLabelValues(string(domain.OutcomeCorrect)).Inc()

	s.eb.Publish(ctx, domain.EventSolveRecorded{
		Solve:      solve,
		Challenge:  ch,
		TotalScore: total,
	})

	return &RecordSolveResponse{
		Outcome:    domain.OutcomeCorrect,
		Challenge:  ch,
		TotalScore: total,
	}, nil
}

// ComputeScore aggregates the user's total directly from the store,
// bypassing any cache. A user with no solves scores 0.
func (s *Service) ComputeScore(ctx context.Context, userID int64) (int, error) {
	return s.store.UserScore(ctx, userID)
}
