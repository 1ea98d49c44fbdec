package tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/domain/model"
	"storefront/pkg/domain/service"
)

func setupConfirmation(t *testing.T, orders ...model.Order) (service.OrderConfirmationService, *mockOrderRepository, *mockEventDispatcher) {
	t.Helper()
	repo := &mockOrderRepository{orders: orders}
	dispatcher := &mockEventDispatcher{}
	return service.NewOrderConfirmationService(repo, dispatcher), repo, dispatcher
}

func TestProgress(t *testing.T) {
	t.Run("Shipped reaches the first three stages", func(t *testing.T) {
		stages, cancelled := service.Progress(model.Shipped)
		assert.False(t, cancelled)
		require.Len(t, stages, 4)
		assert.True(t, stages[0].Reached)
		assert.True(t, stages[2].Reached)
		assert.True(t, stages[2].Current)
		assert.False(t, stages[3].Reached)
	})

	t.Run("Pending sits on the first stage", func(t *testing.T) {
		stages, _ := service.Progress(model.Pending)
		assert.True(t, stages[0].Current)
		assert.False(t, stages[1].Reached)
	})

	t.Run("Cancelled reaches nothing", func(t *testing.T) {
		stages, cancelled := service.Progress(model.Cancelled)
		assert.True(t, cancelled)
		for _, s := range stages {
			assert.False(t, s.Reached)
		}
	})
}

func TestLoadOrder(t *testing.T) {
	svc, _, _ := setupConfirmation(t,
		model.Order{ID: "ORD-1", Status: model.Confirmed},
		model.Order{ID: "ORD-2", Status: model.Pending},
	)

	t.Run("By id", func(t *testing.T) {
		view, err := svc.Load("ORD-1")
		require.NoError(t, err)
		assert.Equal(t, "ORD-1", view.Order.ID)
		assert.True(t, view.CanCancel)
	})

	t.Run("Empty id loads the latest order", func(t *testing.T) {
		view, err := svc.Load("")
		require.NoError(t, err)
		assert.Equal(t, "ORD-2", view.Order.ID)
	})

	t.Run("Fail on unknown id", func(t *testing.T) {
		_, err := svc.Load("ORD-404")
		assert.ErrorIs(t, err, model.ErrOrderNotFound)
	})

	t.Run("Fail with no orders at all", func(t *testing.T) {
		empty, _, _ := setupConfirmation(t)
		_, err := empty.Load("")
		assert.ErrorIs(t, err, model.ErrOrderNotFound)
	})
}

func TestCancelOrder(t *testing.T) {
	svc, repo, dispatcher := setupConfirmation(t,
		model.Order{ID: "ORD-1", Status: model.Confirmed},
		model.Order{ID: "ORD-2", Status: model.Delivered},
	)

	t.Run("Success", func(t *testing.T) {
		view, err := svc.Cancel("ORD-1")
		require.NoError(t, err)
		assert.True(t, view.Cancelled)
		assert.False(t, view.CanCancel)
		assert.Equal(t, model.Cancelled, repo.orders[0].Status)
		require.Len(t, dispatcher.events, 1)
		assert.Equal(t, model.OrderCancelled{OrderID: "ORD-1"}, dispatcher.events[0])
	})

	t.Run("Cancelling twice is a no-op", func(t *testing.T) {
		dispatcher.Reset()
		view, err := svc.Cancel("ORD-1")
		require.NoError(t, err)
		assert.True(t, view.Cancelled)
		assert.Empty(t, dispatcher.events)
	})

	t.Run("Fail on delivered order", func(t *testing.T) {
		_, err := svc.Cancel("ORD-2")
		assert.ErrorIs(t, err, model.ErrOrderCannotBeModified)
		assert.Equal(t, model.Delivered, repo.orders[1].Status)
	})

	t.Run("List keeps placement order", func(t *testing.T) {
		orders, err := svc.List()
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, "ORD-1", orders[0].ID)
	})
}
