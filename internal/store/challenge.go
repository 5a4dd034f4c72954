package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/rangelab/warpoint/internal/domain"
	"github.com/rangelab/warpoint/internal/errors"
)

func (p *Postgres) CreateChallenge(ctx context.Context, c *domain.Challenge) error {
	const stmt = `
INSERT INTO challenges (name, category, description, answer, value)
VALUES ($1, $2, $3, $4, $5)
RETURNING id;`

	return p.db.QueryRow(ctx, stmt, c.Name, c.Category, c.Description, c.Answer, c.Value).Scan(&c.ID)
}

func (p *Postgres) GetChallenge(ctx context.Context, id int64) (domain.Challenge, error) {
	const stmt = `
SELECT id, name, category, description, answer, value
FROM challenges
WHERE id = $1;`

	var c domain.Challenge
	err := p.db.QueryRow(ctx, stmt, id).Scan(&c.ID, &c.Name, &c.Category, &c.Description, &c.Answer, &c.Value)
	if err != nil {
		return domain.Challenge{}, notFoundOr(err, "challenge not found: id=%d", id)
	}

	return c, nil
}

func (p *Postgres) ListChallenges(ctx context.Context) ([]domain.Challenge, error) {
	const stmt = `
SELECT id, name, category, description, answer, value
FROM challenges
ORDER BY id;`

	rows, err := p.db.Query(ctx, stmt)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(r pgx.CollectableRow) (domain.Challenge, error) {
		var c domain.Challenge
		err := r.Scan(&c.ID, &c.Name, &c.Category, &c.Description, &c.Answer, &c.Value)
		return c, err
	})
}

func (p *Postgres) UpdateChallenge(ctx context.Context, c domain.Challenge) error {
	const stmt = `
UPDATE challenges
SET name = $2, category = $3, description = $4, answer = $5, value = $6
WHERE id = $1;`

	tag, err := p.db.Exec(ctx, stmt, c.ID, c.Name, c.Category, c.Description, c.Answer, c.Value)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFoundf("challenge not found: id=%d", c.ID)
	}

	return nil
}

func (p *Postgres) DeleteChallenge(ctx context.Context, id int64) error {
	// Dependent solves go with the challenge via ON DELETE CASCADE.
	const stmt = `DELETE FROM challenges WHERE id = $1;`

	tag, err := p.db.Exec(ctx, stmt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFoundf("challenge not found: id=%d", id)
	}

	return nil
}

// ChallengeSolves lists the solves recorded for one challenge in
// insertion order.
func (p *Postgres) ChallengeSolves(ctx context.Context, challengeID int64) ([]domain.Solve, error) {
	const stmt = `
SELECT id, challenge_id, user_id, username, create_time
FROM solves
WHERE challenge_id = $1
ORDER BY id;`

	rows, err := p.db.Query(ctx, stmt, challengeID)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(r pgx.CollectableRow) (domain.Solve, error) {
		var s domain.Solve
		err := r.Scan(&s.ID, &s.ChallengeID, &s.UserID, &s.Username, &s.CreatedAt)
		return s, err
	})
}
