package store

import (
	"context"

	"github.com/rangelab/warpoint/internal/domain"
)

// One game session row exists per exercise instance.
const gameSessionID = 1

func (p *Postgres) GameSession(ctx context.Context) (domain.GameSession, error) {
	const stmt = `
SELECT id, state, start_time, seed_date, time_multiplier
FROM game_sessions
WHERE id = $1;`

	var g domain.GameSession
	err := p.db.QueryRow(ctx, stmt, gameSessionID).Scan(&g.ID, &g.Running, &g.StartTime, &g.SeedDate, &g.TimeMultiplier)
	if err != nil {
		return domain.GameSession{}, notFoundOr(err, "game session not initialized")
	}

	return g, nil
}

func (p *Postgres) SaveGameSession(ctx context.Context, g domain.GameSession) error {
	const stmt = `
INSERT INTO game_sessions (id, state, start_time, seed_date, time_multiplier)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
SET state = EXCLUDED.state,
    start_time = EXCLUDED.start_time,
    seed_date = EXCLUDED.seed_date,
    time_multiplier = EXCLUDED.time_multiplier;`

	_, err := p.db.Exec(ctx, stmt, gameSessionID, g.Running, g.StartTime, g.SeedDate, g.TimeMultiplier)
	return err
}
