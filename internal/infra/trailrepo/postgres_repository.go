package trailrepo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yanqian/trailfinder/internal/domain/trails"
)

const listByDifficultyQuery = `
	SELECT id, name, description, difficulty, length_km, elevation_gain_m
	FROM trails
	ORDER BY difficulty ASC, id ASC
`

// PostgresRepository implements trails.Repository over database/sql with the pgx driver.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListByDifficulty loads every trail, easiest first.
func (r *PostgresRepository) ListByDifficulty(ctx context.Context) ([]trails.Trail, error) {
	rows, err := r.db.QueryContext(ctx, listByDifficultyQuery)
	if err != nil {
		return nil, fmt.Errorf("query trails: %w", err)
	}
	defer rows.Close()

	out := make([]trails.Trail, 0, 16)
	for rows.Next() {
		var (
			t    trails.Trail
			desc sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.Name, &desc, &t.Difficulty, &t.LengthKm, &t.ElevationGainM); err != nil {
			return nil, fmt.Errorf("scan trail: %w", err)
		}
		t.Description = desc.String
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trails: %w", err)
	}
	return out, nil
}

// Ping reports whether the database is reachable.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

var _ trails.Repository = (*PostgresRepository)(nil)
