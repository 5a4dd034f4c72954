package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/rangelab/warpoint/internal/domain"
	"github.com/rangelab/warpoint/internal/errors"
)

func (p *Postgres) CreateTeam(ctx context.Context, t *domain.Team) error {
	const stmt = `
INSERT INTO teams (name, score, mitigations, security_awareness)
VALUES ($1, $2, $3, $4)
RETURNING id;`

	raw, err := domain.MarshalMitigations(t.Mitigations)
	if err != nil {
		return err
	}

	return p.db.QueryRow(ctx, stmt, t.Name, t.Score, raw, t.SecurityAwareness).Scan(&t.ID)
}

func (p *Postgres) GetTeam(ctx context.Context, id int64) (domain.Team, error) {
	const stmt = `
SELECT id, name, score, mitigations, security_awareness
FROM teams
WHERE id = $1;`

	t, err := scanTeam(p.db.QueryRow(ctx, stmt, id))
	if err != nil {
		return domain.Team{}, notFoundOr(err, "team not found: id=%d", id)
	}

	return t, nil
}

func (p *Postgres) ListTeams(ctx context.Context) ([]domain.Team, error) {
	const stmt = `
SELECT id, name, score, mitigations, security_awareness
FROM teams
ORDER BY id;`

	rows, err := p.db.Query(ctx, stmt)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(r pgx.CollectableRow) (domain.Team, error) {
		return scanTeam(r)
	})
}

func (p *Postgres) DeleteTeam(ctx context.Context, id int64) error {
	const stmt = `DELETE FROM teams WHERE id = $1;`

	tag, err := p.db.Exec(ctx, stmt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFoundf("team not found: id=%d", id)
	}

	return nil
}

func (p *Postgres) UpdateTeamMitigations(ctx context.Context, teamID int64, mitigations []string) error {
	const stmt = `UPDATE teams SET mitigations = $2 WHERE id = $1;`

	raw, err := domain.MarshalMitigations(mitigations)
	if err != nil {
		return err
	}

	tag, err := p.db.Exec(ctx, stmt, teamID, raw)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFoundf("team not found: id=%d", teamID)
	}

	return nil
}

func scanTeam(r pgx.Row) (domain.Team, error) {
	var (
		t   domain.Team
		raw string
	)
	if err := r.Scan(&t.ID, &t.Name, &t.Score, &raw, &t.SecurityAwareness); err != nil {
		return domain.Team{}, err
	}

	mitigations, err := domain.UnmarshalMitigations(raw)
	if err != nil {
		return domain.Team{}, err
	}
	t.Mitigations = mitigations

	return t, nil
}
