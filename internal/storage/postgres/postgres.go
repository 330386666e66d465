// Package postgres implements the repositories on PostgreSQL via pgx. It is
// the durable alternative to the in-memory store; both satisfy the same
// interfaces, so the estimation core never knows which one it runs on.
package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to the database and verifies the connection.
func New(ctx context.Context, connString string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	user_id             TEXT PRIMARY KEY,
	weight_kg           DOUBLE PRECISION NOT NULL,
	height_cm           DOUBLE PRECISION NOT NULL,
	age_years           INT NOT NULL,
	activity_minutes    INT NOT NULL,
	city                TEXT NOT NULL,
	custom_calorie_goal DOUBLE PRECISION NOT NULL DEFAULT 0,
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS daily_logs (
	user_id                 TEXT PRIMARY KEY,
	log_date                TIMESTAMPTZ NOT NULL,
	water_intake_ml         DOUBLE PRECISION NOT NULL DEFAULT 0,
	calorie_intake          DOUBLE PRECISION NOT NULL DEFAULT 0,
	calorie_burned_exercise DOUBLE PRECISION NOT NULL DEFAULT 0,
	calorie_burned_bmr      DOUBLE PRECISION NOT NULL DEFAULT 0,
	food_log                JSONB NOT NULL DEFAULT '[]',
	workout_log             JSONB NOT NULL DEFAULT '[]',
	last_bmr_update         TIMESTAMPTZ NOT NULL
);
`

// Migrate creates the schema when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Health reports connection-pool statistics for the health endpoint.
func (s *Store) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	stats := make(map[string]string)
	if err := s.pool.Ping(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	poolStats := s.pool.Stat()
	stats["status"] = "up"
	stats["total_conns"] = strconv.Itoa(int(poolStats.TotalConns()))
	stats["idle_conns"] = strconv.Itoa(int(poolStats.IdleConns()))
	stats["acquired_conns"] = strconv.Itoa(int(poolStats.AcquiredConns()))
	stats["max_conns"] = strconv.Itoa(int(poolStats.MaxConns()))
	return stats
}
