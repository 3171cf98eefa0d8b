package sqlite

import (
	"context"

	"github.com/leadr-dev/leadr-auth/internal/auth/domain"
)

type gamesRepo struct {
	db dbtx
}

func (r *gamesRepo) CreateGame(ctx context.Context, g domain.Game) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO games (id, name, created_at)
		VALUES (?, ?, ?)
	`, g.ID, g.Name, g.CreatedAt)
	return err
}

func (r *gamesRepo) GetGameByID(ctx context.Context, id string) (domain.Game, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, created_at
		FROM games
		WHERE id = ?
	`, id)

	var g domain.Game
	if err := row.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
		return domain.Game{}, mapNotFound(err)
	}
	return g, nil
}

func (r *gamesRepo) GameExists(ctx context.Context, id string) (bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM games WHERE id = ?
	`, id)

	var n int64
	if err := row.Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
