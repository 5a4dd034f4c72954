// Package store is the persistence gateway: every query the engine
// runs against Postgres lives here. Services consume it through narrow
// interfaces declared on their side.
package store

import (
	stderrors "errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rangelab/warpoint/internal/errors"
)

type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

const codeUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return stderrors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

func notFoundOr(err error, format string, args ...any) error {
	if stderrors.Is(err, pgx.ErrNoRows) {
		return errors.New(errors.CodeNotFound,
			errors.WithMessagef(format, args...),
			errors.WithCause(err),
		)
	}

	return err
}
