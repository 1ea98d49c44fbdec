package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/domain/model"
	"storefront/pkg/infrastructure/storage"
)

func TestOrderRepository(t *testing.T) {
	store := storage.NewMemory()
	repo := NewOrderRepository(store)
	placed := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	t.Run("Empty", func(t *testing.T) {
		_, err := repo.Latest()
		assert.ErrorIs(t, err, model.ErrOrderNotFound)
		orders, err := repo.List()
		require.NoError(t, err)
		assert.Empty(t, orders)
	})

	require.NoError(t, repo.Append(model.Order{ID: "ORD-1", Date: placed, Status: model.Confirmed, FinalTotal: 1599}))
	require.NoError(t, repo.Append(model.Order{ID: "ORD-2", Date: placed, Status: model.Pending}))

	t.Run("Find and latest", func(t *testing.T) {
		order, err := repo.Find("ORD-1")
		require.NoError(t, err)
		assert.Equal(t, 1599.0, order.FinalTotal)
		assert.True(t, placed.Equal(order.Date))

		latest, err := repo.Latest()
		require.NoError(t, err)
		assert.Equal(t, "ORD-2", latest.ID)

		_, err = repo.Find("ORD-404")
		assert.ErrorIs(t, err, model.ErrOrderNotFound)
	})

	t.Run("Status update is persisted", func(t *testing.T) {
		require.NoError(t, repo.UpdateStatus("ORD-1", model.Cancelled))

		reopened := NewOrderRepository(store)
		order, err := reopened.Find("ORD-1")
		require.NoError(t, err)
		assert.Equal(t, model.Cancelled, order.Status)

		assert.ErrorIs(t, repo.UpdateStatus("ORD-404", model.Cancelled), model.ErrOrderNotFound)
	})

	t.Run("Fail on corrupt storage", func(t *testing.T) {
		broken := storage.NewMemory()
		require.NoError(t, broken.Set(model.OrdersKey, []byte("{")))
		_, err := NewOrderRepository(broken).List()
		assert.Error(t, err)
	})
}
