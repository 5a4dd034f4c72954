package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a participant in the exercise. A user belongs to at most one
// team; TeamID is nil for unassigned users.
type User struct {
	ID           int64
	Username     string
	Email        string
	TeamID       *int64
	RegisteredAt time.Time
}

// Team groups users and carries the team-level exercise state: the
// mitigation denylist maintained during the exercise, and a security
// awareness scalar in [0, 1].
type Team struct {
	ID                int64
	Name              string
	Score             int
	Mitigations       []string
	SecurityAwareness decimal.Decimal
}

// Challenge is an admin-created question worth Value points. Answer
// holds one or more accepted variants separated by ";".
type Challenge struct {
	ID          int64
	Name        string
	Category    string
	Description string
	Answer      string
	Value       int
}

// Solve records that a user answered a challenge correctly. At most one
// solve exists per (user, challenge) pair; the store enforces this with
// a unique constraint. Username is a denormalized snapshot taken when
// the solve is recorded.
type Solve struct {
	ID          int64
	ChallengeID int64
	UserID      int64
	Username    string
	CreatedAt   time.Time
}

// Standing is one row of the ranked list of users. Standings are
// ordered by score descending; equal scores order by ascending user id.
type Standing struct {
	UserID   int64
	Username string
	Score    int
}

// Outcome classifies the result of a solve attempt. Incorrect and
// AlreadySolved are expected results, not errors; callers render a
// distinct message for each.
type Outcome string

const (
	OutcomeCorrect       Outcome = "correct"
	OutcomeIncorrect     Outcome = "incorrect"
	OutcomeAlreadySolved Outcome = "already_solved"
)

// GameSession is the singleton record for one exercise instance. The
// exercise runs on a simulated clock seeded at SeedDate and advancing
// TimeMultiplier times faster than real time.
type GameSession struct {
	ID             int64
	Running        bool
	StartTime      time.Time
	SeedDate       time.Time
	TimeMultiplier int
}

// SimulatedTime maps a real instant to the exercise's simulated clock:
// seed date plus the accelerated elapsed time since start. Before the
// session starts the simulated clock sits at the seed date.
func (g GameSession) SimulatedTime(now time.Time) time.Time {
	if !g.Running || now.Before(g.StartTime) {
		return g.SeedDate
	}

	elapsed := now.Sub(g.StartTime)
	return g.SeedDate.Add(elapsed * time.Duration(g.TimeMultiplier))
}
