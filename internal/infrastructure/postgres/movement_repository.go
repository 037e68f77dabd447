package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, product_id, kind, quantity, note, created_at`

// MovementRepo historial de movimientos sobre PostgreSQL. Solo inserción.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Insert registra el movimiento y asigna el ID generado por la identidad.
func (r *MovementRepo) Insert(ctx context.Context, m *entity.Movement) (int64, error) {
	if !validID(m.ProductID) {
		return 0, fmt.Errorf("insert movement: %w", domain.ErrProductNotFound)
	}
	query := `
		INSERT INTO movements (product_id, kind, quantity, note, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	var id int64
	err := r.q.QueryRow(ctx, query, m.ProductID, m.Kind, m.Quantity, m.Note, m.CreatedAt).Scan(&id)
	if err != nil {
		switch {
		case isForeignKeyViolation(err):
			return 0, fmt.Errorf("insert movement: %w", domain.ErrProductNotFound)
		case isCheckViolation(err):
			return 0, fmt.Errorf("insert movement: %w", domain.ErrInvalidInput)
		}
		return 0, fmt.Errorf("insert movement: %w", err)
	}
	m.ID = id
	return id, nil
}

func scanMovements(rows pgx.Rows) ([]*entity.Movement, error) {
	defer rows.Close()
	var out []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Kind, &m.Quantity, &m.Note, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// ListByProduct movimientos del producto, más recientes primero.
func (r *MovementRepo) ListByProduct(ctx context.Context, productID string, limit int) ([]*entity.Movement, error) {
	if !validID(productID) {
		return nil, nil
	}
	query := `SELECT ` + movementColumns + ` FROM movements WHERE product_id = $1
		ORDER BY created_at DESC, id DESC`
	args := []any{productID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements by product: %w", err)
	}
	out, err := scanMovements(rows)
	if err != nil {
		return nil, fmt.Errorf("list movements by product: %w", err)
	}
	return out, nil
}

// ListAll todos los movimientos con SKU y nombre del producto, más recientes primero.
func (r *MovementRepo) ListAll(ctx context.Context, limit int) ([]*entity.MovementView, error) {
	query := `
		SELECT m.id, m.product_id, m.kind, m.quantity, m.note, m.created_at, p.sku, p.name
		FROM movements m
		JOIN products p ON p.id = m.product_id
		ORDER BY m.created_at DESC, m.id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var out []*entity.MovementView
	for rows.Next() {
		var v entity.MovementView
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Kind, &v.Quantity, &v.Note, &v.CreatedAt,
			&v.ProductSKU, &v.ProductName); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		out = append(out, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return out, nil
}

// LastByKind último movimiento del tipo indicado, o nil.
func (r *MovementRepo) LastByKind(ctx context.Context, productID, kind string) (*entity.Movement, error) {
	if !validID(productID) {
		return nil, nil
	}
	query := `SELECT ` + movementColumns + ` FROM movements
		WHERE product_id = $1 AND kind = $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1`
	var m entity.Movement
	err := r.q.QueryRow(ctx, query, productID, kind).Scan(&m.ID, &m.ProductID, &m.Kind, &m.Quantity, &m.Note, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("last movement by kind: %w", err)
	}
	return &m, nil
}

// CountByProduct cantidad de movimientos del producto (0 si el id no es un UUID).
func (r *MovementRepo) CountByProduct(ctx context.Context, productID string) (int64, error) {
	if !validID(productID) {
		return 0, nil
	}
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM movements WHERE product_id = $1`, productID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count movements: %w", err)
	}
	return n, nil
}
