package postgres

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

func pgErr(code string) error {
	return &pgconn.PgError{Code: code, Message: "test"}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization_failure", pgErr(codeSerializationFailure), true},
		{"deadlock_detected", pgErr(codeDeadlockDetected), true},
		{"envuelto", fmt.Errorf("commit transaction: %w", pgErr(codeSerializationFailure)), true},
		{"unique_violation", pgErr(codeUniqueViolation), false},
		{"check_violation", pgErr(codeCheckViolation), false},
		{"error de dominio", domain.ErrInsufficientStock, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isTransient(tt.err))
		})
	}
}

func TestPgCode(t *testing.T) {
	assert.Equal(t, "22P02", pgCode(fmt.Errorf("get product: %w", pgErr(codeInvalidText))))
	assert.True(t, isInvalidText(pgErr(codeInvalidText)))
	assert.Empty(t, pgCode(errors.New("sin código")))
}

// scriptedRunner devuelve un runner cuyos intentos fallan con los errores dados, en orden.
func scriptedRunner(maxRetries int, log *logger.Logger, errs ...error) (*TxRunner, *int) {
	r := NewTxRunner(nil, maxRetries, log)
	calls := 0
	r.attempt = func(ctx context.Context, fn txFunc) error {
		calls++
		if calls <= len(errs) {
			return errs[calls-1]
		}
		return nil
	}
	return r, &calls
}

func TestTxRunner_ReintentaConflictos(t *testing.T) {
	var buf bytes.Buffer
	r, calls := scriptedRunner(3, logger.NewWithWriter(&buf, "warn"),
		pgErr(codeSerializationFailure), pgErr(codeDeadlockDetected))

	err := r.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, *calls)
	assert.Contains(t, buf.String(), "reintentando")
}

func TestTxRunner_AgotaReintentos(t *testing.T) {
	r, calls := scriptedRunner(2, logger.Nop(),
		pgErr(codeSerializationFailure), pgErr(codeSerializationFailure), pgErr(codeSerializationFailure), pgErr(codeSerializationFailure))

	err := r.Run(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, 3, *calls)
	assert.Equal(t, codeSerializationFailure, pgCode(err))
}

func TestTxRunner_NoReintentaErroresDeNegocio(t *testing.T) {
	r, calls := scriptedRunner(3, logger.Nop(), fmt.Errorf("apply: %w", domain.ErrInsufficientStock))

	err := r.Run(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 1, *calls)
}

func TestTxRunner_SinReintentosConRetriesNegativo(t *testing.T) {
	r, calls := scriptedRunner(-1, logger.Nop(), pgErr(codeDeadlockDetected))

	err := r.Run(context.Background(), nil)
	assert.Equal(t, codeDeadlockDetected, pgCode(err))
	assert.Equal(t, 1, *calls)
}

func TestTxRunner_ContextoCanceladoCortaReintentos(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, calls := scriptedRunner(5, logger.Nop(), pgErr(codeSerializationFailure), pgErr(codeSerializationFailure))

	err := r.Run(ctx, nil)
	assert.Equal(t, codeSerializationFailure, pgCode(err))
	assert.Equal(t, 1, *calls)
}

// Los ids que no son UUID se resuelven sin consultar la base (Querier nil).
func TestRepos_IDNoUUIDEsProductoInexistente(t *testing.T) {
	ctx := context.Background()
	products := NewProductRepository(nil)
	movs := NewMovementRepository(nil)

	p, err := products.GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, p)
	p, err = products.GetForUpdate(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.ErrorIs(t, products.UpdateQuantity(ctx, "abc", 1, time.Now()), domain.ErrNotFound)
	assert.ErrorIs(t, products.Delete(ctx, "abc"), domain.ErrNotFound)

	_, err = movs.Insert(ctx, &entity.Movement{ProductID: "abc", Kind: entity.MovementKindInbound, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	list, err := movs.ListByProduct(ctx, "abc", 10)
	require.NoError(t, err)
	assert.Empty(t, list)
	n, err := movs.CountByProduct(ctx, "abc")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLedger_IDNoUUIDRechazadoComoEntrada(t *testing.T) {
	r := NewTxRunner(nil, 0, logger.Nop())
	r.attempt = func(ctx context.Context, fn txFunc) error {
		return fn(NewMovementRepository(nil), NewProductRepository(nil))
	}
	ledger := inventory.NewLedger(r, nil)

	_, err := ledger.ApplyMovement(context.Background(), inventory.MovementInput{
		ProductID: "abc", Kind: "outbound", Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Equal(t, inventory.OutcomeRejectedInput, inventory.Classify(err))
}
