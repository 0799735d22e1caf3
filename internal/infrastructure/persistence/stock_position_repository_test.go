package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/inventra/backend/internal/domain/inventory"
	"github.com/inventra/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormStockPositionRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("GetOrCreate creates an empty position on first use", func(t *testing.T) {
		repo := NewGormStockPositionRepository(newTestDB(t))
		key := inventory.PositionKey{WarehouseID: uuid.New(), ProductID: uuid.New(), VariantID: uuid.Nil}

		position, err := repo.GetOrCreate(ctx, key)
		require.NoError(t, err)
		assert.True(t, position.PhysicalQuantity.IsZero())
		assert.Equal(t, 1, position.Version)

		again, err := repo.GetOrCreate(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, position.ID, again.ID)
	})

	t.Run("FindByKey returns not found for an unknown key", func(t *testing.T) {
		repo := NewGormStockPositionRepository(newTestDB(t))
		key := inventory.PositionKey{WarehouseID: uuid.New(), ProductID: uuid.New(), VariantID: uuid.Nil}

		_, err := repo.FindByKey(ctx, key)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("FindByID returns not found for an unknown ID", func(t *testing.T) {
		repo := NewGormStockPositionRepository(newTestDB(t))

		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("SaveWithVersion persists a mutation", func(t *testing.T) {
		repo := NewGormStockPositionRepository(newTestDB(t))
		key := inventory.PositionKey{WarehouseID: uuid.New(), ProductID: uuid.New(), VariantID: uuid.Nil}

		position, err := repo.GetOrCreate(ctx, key)
		require.NoError(t, err)

		_, err = position.ApplyDelta(decimal.NewFromInt(10), inventory.MovementReasonInitialSetup, nil, "tester")
		require.NoError(t, err)
		require.NoError(t, repo.SaveWithVersion(ctx, position))

		loaded, err := repo.FindByID(ctx, position.ID)
		require.NoError(t, err)
		assert.True(t, loaded.PhysicalQuantity.Equal(decimal.NewFromInt(10)))
		assert.Equal(t, 2, loaded.Version)
	})

	t.Run("SaveWithVersion rejects a stale aggregate", func(t *testing.T) {
		repo := NewGormStockPositionRepository(newTestDB(t))
		key := inventory.PositionKey{WarehouseID: uuid.New(), ProductID: uuid.New(), VariantID: uuid.Nil}

		position, err := repo.GetOrCreate(ctx, key)
		require.NoError(t, err)

		stale, err := repo.FindByID(ctx, position.ID)
		require.NoError(t, err)

		_, err = position.ApplyDelta(decimal.NewFromInt(5), inventory.MovementReasonInitialSetup, nil, "first")
		require.NoError(t, err)
		require.NoError(t, repo.SaveWithVersion(ctx, position))

		_, err = stale.ApplyDelta(decimal.NewFromInt(3), inventory.MovementReasonInitialSetup, nil, "second")
		require.NoError(t, err)
		err = repo.SaveWithVersion(ctx, stale)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("FindByWarehouse paginates and counts", func(t *testing.T) {
		repo := NewGormStockPositionRepository(newTestDB(t))
		warehouseID := uuid.New()

		for i := 0; i < 3; i++ {
			_, err := repo.GetOrCreate(ctx, inventory.PositionKey{
				WarehouseID: warehouseID, ProductID: uuid.New(), VariantID: uuid.Nil,
			})
			require.NoError(t, err)
		}
		_, err := repo.GetOrCreate(ctx, inventory.PositionKey{
			WarehouseID: uuid.New(), ProductID: uuid.New(), VariantID: uuid.Nil,
		})
		require.NoError(t, err)

		positions, err := repo.FindByWarehouse(ctx, warehouseID, shared.Filter{Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Len(t, positions, 2)

		count, err := repo.CountByWarehouse(ctx, warehouseID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("FindByProduct matches all variants when variantID is nil", func(t *testing.T) {
		repo := NewGormStockPositionRepository(newTestDB(t))
		productID := uuid.New()
		variantA := uuid.New()
		variantB := uuid.New()

		for _, variantID := range []uuid.UUID{variantA, variantB} {
			_, err := repo.GetOrCreate(ctx, inventory.PositionKey{
				WarehouseID: uuid.New(), ProductID: productID, VariantID: variantID,
			})
			require.NoError(t, err)
		}

		all, err := repo.FindByProduct(ctx, productID, nil)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		only, err := repo.FindByProduct(ctx, productID, &variantA)
		require.NoError(t, err)
		require.Len(t, only, 1)
		assert.Equal(t, variantA, only[0].VariantID)
	})
}
