package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/application/usecase"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
	"github.com/jhoicas/estoque-api/internal/infrastructure/memory"
)

type fixture struct {
	store  *memory.Store
	ledger *inventory.Ledger
	uc     *usecase.ProductUseCase
}

func newFixture() fixture {
	store := memory.NewStore()
	runner := memory.NewTxRunner(store)
	ledger := inventory.NewLedger(runner, nil)
	return fixture{
		store:  store,
		ledger: ledger,
		uc: usecase.NewProductUseCase(
			memory.NewProductRepository(store), memory.NewMovementRepository(store), runner, ledger,
		),
	}
}

func ptr[T any](v T) *T { return &v }

func TestProductUseCase_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	out, err := f.uc.Create(ctx, dto.CreateProductRequest{
		SKU: " TOR-01 ", Name: " Tornillo ", Cost: decimal.RequireFromString("1.25"),
		Price: decimal.NewFromInt(3), CurrentQuantity: 2, MinimumQuantity: 5,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, "TOR-01", out.SKU)
	assert.Equal(t, "Tornillo", out.Name)
	assert.True(t, out.LowStock)

	_, err = f.uc.Create(ctx, dto.CreateProductRequest{SKU: "TOR-01", Name: "Otro"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = f.uc.Create(ctx, dto.CreateProductRequest{SKU: "", Name: "Sin SKU"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Create(ctx, dto.CreateProductRequest{SKU: "NEG", Name: "Negativo", CurrentQuantity: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Editar la cantidad registra un movimiento de ajuste; el historial sigue cuadrando.
func TestProductUseCase_UpdateRegistraAjuste(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	created, err := f.uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "Alicate", CurrentQuantity: 10})
	require.NoError(t, err)

	out, err := f.uc.Update(ctx, created.ID, dto.UpdateProductRequest{Name: ptr("Alicate universal"), CurrentQuantity: ptr(int64(4))})
	require.NoError(t, err)
	assert.Equal(t, "Alicate universal", out.Name)
	assert.Equal(t, int64(4), out.CurrentQuantity)

	out, err = f.uc.Update(ctx, created.ID, dto.UpdateProductRequest{CurrentQuantity: ptr(int64(9))})
	require.NoError(t, err)
	assert.Equal(t, int64(9), out.CurrentQuantity)

	movs, err := memory.NewMovementRepository(f.store).ListByProduct(ctx, created.ID, 0)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementKindInbound, movs[0].Kind)
	assert.Equal(t, int64(5), movs[0].Quantity)
	assert.Equal(t, "ajuste manual: 4 -> 9", movs[0].Note)
	assert.Equal(t, entity.MovementKindOutbound, movs[1].Kind)
	assert.Equal(t, int64(6), movs[1].Quantity)

	// Misma cantidad: no hay movimiento nuevo
	_, err = f.uc.Update(ctx, created.ID, dto.UpdateProductRequest{CurrentQuantity: ptr(int64(9))})
	require.NoError(t, err)
	n, err := memory.NewMovementRepository(f.store).CountByProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestProductUseCase_UpdateErrores(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a, err := f.uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "Alicate", CurrentQuantity: 1})
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, dto.CreateProductRequest{SKU: "B", Name: "Broca"})
	require.NoError(t, err)

	_, err = f.uc.Update(ctx, a.ID, dto.UpdateProductRequest{SKU: ptr("B")})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = f.uc.Update(ctx, a.ID, dto.UpdateProductRequest{Name: ptr("  ")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Update(ctx, "no-existe", dto.UpdateProductRequest{Name: ptr("X")})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = f.uc.Update(ctx, a.ID, dto.UpdateProductRequest{CurrentQuantity: ptr(int64(-3))})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Un fallo no deja cambios parciales
	got, err := f.uc.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.SKU)
	assert.Equal(t, "Alicate", got.Name)
}

func TestProductUseCase_GetByIDUltimosMovimientos(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p, err := f.uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "Alicate", CurrentQuantity: 5, MinimumQuantity: 1})
	require.NoError(t, err)

	detail, err := f.uc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.LastInbound)
	assert.Nil(t, detail.LastOutbound)

	_, err = f.ledger.ApplyMovement(ctx, inventory.MovementInput{ProductID: p.ID, Kind: entity.MovementKindInbound, Quantity: 2})
	require.NoError(t, err)
	_, err = f.ledger.ApplyMovement(ctx, inventory.MovementInput{ProductID: p.ID, Kind: entity.MovementKindOutbound, Quantity: 3})
	require.NoError(t, err)

	detail, err = f.uc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.LastInbound)
	require.NotNil(t, detail.LastOutbound)
	assert.Equal(t, int64(2), detail.LastInbound.Quantity)
	assert.Equal(t, int64(3), detail.LastOutbound.Quantity)
	assert.Equal(t, int64(4), detail.CurrentQuantity)

	_, err = f.uc.GetByID(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestProductUseCase_ListFiltros(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	for _, in := range []dto.CreateProductRequest{
		{SKU: "M-1", Name: "Martillo", Category: "Herramientas", Supplier: "Acme"},
		{SKU: "C-1", Name: "Clavo", Category: "Fijaciones", Supplier: "Acme"},
		{SKU: "S-1", Name: "Serrucho", Category: "Herramientas", Supplier: "Bosco"},
	} {
		_, err := f.uc.Create(ctx, in)
		require.NoError(t, err)
	}

	all, err := f.uc.List(ctx, repository.ProductFilter{})
	require.NoError(t, err)
	require.Equal(t, 3, all.Total)
	assert.Equal(t, []string{"Clavo", "Martillo", "Serrucho"}, []string{all.Items[0].Name, all.Items[1].Name, all.Items[2].Name})

	tools, err := f.uc.List(ctx, repository.ProductFilter{Category: "Herramientas", Supplier: "Bosco"})
	require.NoError(t, err)
	require.Equal(t, 1, tools.Total)
	assert.Equal(t, "S-1", tools.Items[0].SKU)

	search, err := f.uc.List(ctx, repository.ProductFilter{Search: "mart"})
	require.NoError(t, err)
	require.Equal(t, 1, search.Total)
	assert.Equal(t, "Martillo", search.Items[0].Name)
}

func TestProductUseCase_Delete(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a, err := f.uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "Alicate", CurrentQuantity: 1})
	require.NoError(t, err)
	b, err := f.uc.Create(ctx, dto.CreateProductRequest{SKU: "B", Name: "Broca"})
	require.NoError(t, err)

	_, err = f.ledger.ApplyMovement(ctx, inventory.MovementInput{ProductID: a.ID, Kind: entity.MovementKindOutbound, Quantity: 1})
	require.NoError(t, err)

	assert.ErrorIs(t, f.uc.Delete(ctx, a.ID), domain.ErrHasMovements)
	require.NoError(t, f.uc.Delete(ctx, b.ID))
	assert.ErrorIs(t, f.uc.Delete(ctx, b.ID), domain.ErrProductNotFound)
}
