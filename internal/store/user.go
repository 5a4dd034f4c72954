package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/rangelab/warpoint/internal/domain"
	"github.com/rangelab/warpoint/internal/errors"
)

func (p *Postgres) GetUser(ctx context.Context, id int64) (domain.User, error) {
	const stmt = `
SELECT id, username, email, team_id, registered_on
FROM users
WHERE id = $1;`

	var u domain.User
	err := p.db.QueryRow(ctx, stmt, id).Scan(&u.ID, &u.Username, &u.Email, &u.TeamID, &u.RegisteredAt)
	if err != nil {
		return domain.User{}, notFoundOr(err, "user not found: id=%d", id)
	}

	return u, nil
}

func (p *Postgres) ListUsers(ctx context.Context) ([]domain.User, error) {
	const stmt = `
SELECT id, username, email, team_id, registered_on
FROM users
ORDER BY id;`

	rows, err := p.db.Query(ctx, stmt)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(r pgx.CollectableRow) (domain.User, error) {
		var u domain.User
		err := r.Scan(&u.ID, &u.Username, &u.Email, &u.TeamID, &u.RegisteredAt)
		return u, err
	})
}

func (p *Postgres) DeleteUser(ctx context.Context, id int64) error {
	// The user's solves cascade at the store level.
	const stmt = `DELETE FROM users WHERE id = $1;`

	tag, err := p.db.Exec(ctx, stmt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFoundf("user not found: id=%d", id)
	}

	return nil
}
