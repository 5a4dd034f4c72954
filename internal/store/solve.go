package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/rangelab/warpoint/internal/domain"
	"github.com/rangelab/warpoint/internal/errors"
)

// InsertSolve records a solve. Duplicate submissions are resolved by
// the unique constraint on (user_id, challenge_id): the second insert
// fails and surfaces as CodeAlreadyExists. There is no application-side
// pre-check, so concurrent duplicates race safely at the store.
func (p *Postgres) InsertSolve(ctx context.Context, s *domain.Solve) error {
	const stmt = `
INSERT INTO solves (challenge_id, user_id, username, create_time)
VALUES ($1, $2, $3, $4)
RETURNING id;`

	err := p.db.QueryRow(ctx, stmt, s.ChallengeID, s.UserID, s.Username, s.CreatedAt).Scan(&s.ID)
	if isUniqueViolation(err) {
		return errors.New(errors.CodeAlreadyExists,
			errors.WithMessagef("solve already recorded: user=%d challenge=%d", s.UserID, s.ChallengeID),
			errors.WithCause(err),
		)
	}

	return err
}

// UserScore sums the values of all challenges the user has solved.
// A user with no solves scores 0.
func (p *Postgres) UserScore(ctx context.Context, userID int64) (int, error) {
	const stmt = `
SELECT COALESCE(SUM(c.value), 0)
FROM solves s
JOIN challenges c ON c.id = s.challenge_id
WHERE s.user_id = $1;`

	var score int
	if err := p.db.QueryRow(ctx, stmt, userID).Scan(&score); err != nil {
		return 0, err
	}

	return score, nil
}

// Standings returns every user with their total score, ordered by
// score descending. Ties order by ascending user id so the ordering is
// total and stable across reads. Users with no solves appear with 0.
func (p *Postgres) Standings(ctx context.Context) ([]domain.Standing, error) {
	const stmt = `
SELECT u.id, u.username, COALESCE(SUM(c.value), 0) AS score
FROM users u
LEFT JOIN solves s ON s.user_id = u.id
LEFT JOIN challenges c ON c.id = s.challenge_id
GROUP BY u.id, u.username
ORDER BY score DESC, u.id ASC;`

	rows, err := p.db.Query(ctx, stmt)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(r pgx.CollectableRow) (domain.Standing, error) {
		var st domain.Standing
		err := r.Scan(&st.UserID, &st.Username, &st.Score)
		return st, err
	})
}
