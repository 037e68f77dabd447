package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const visitsKey = "visits"

// VisitCounter contador de visitas en la tabla app_state.
type VisitCounter struct {
	q Querier
}

func NewVisitCounter(q Querier) *VisitCounter {
	return &VisitCounter{q: q}
}

func (c *VisitCounter) Get(ctx context.Context) (int64, error) {
	var n int64
	err := c.q.QueryRow(ctx, `SELECT value FROM app_state WHERE key = $1`, visitsKey).Scan(&n)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get visits: %w", err)
	}
	return n, nil
}

// Increment suma uno en una sola sentencia (atómico sin transacción explícita).
func (c *VisitCounter) Increment(ctx context.Context) (int64, error) {
	var n int64
	err := c.q.QueryRow(ctx, `
		INSERT INTO app_state (key, value) VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET value = app_state.value + 1
		RETURNING value`, visitsKey).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("increment visits: %w", err)
	}
	return n, nil
}
