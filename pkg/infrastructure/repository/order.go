package repository

import (
	"encoding/json"
	"errors"
	"sync"

	pkgerrors "github.com/pkg/errors"

	"storefront/pkg/domain/model"
)

var _ model.OrderRepository = &OrderRepository{}

// OrderRepository keeps the placed orders of one shopper as a JSON array
// under the orders key, oldest first.
type OrderRepository struct {
	mu      sync.Mutex
	storage model.Storage
}

func NewOrderRepository(storage model.Storage) *OrderRepository {
	return &OrderRepository{storage: storage}
}

func (r *OrderRepository) Append(order model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders, err := r.load()
	if err != nil {
		return err
	}
	return r.save(append(orders, order))
}

func (r *OrderRepository) Find(id string) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == id {
			return &orders[i], nil
		}
	}
	return nil, model.ErrOrderNotFound
}

func (r *OrderRepository) Latest() (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders, err := r.load()
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, model.ErrOrderNotFound
	}
	return &orders[len(orders)-1], nil
}

func (r *OrderRepository) List() ([]model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders, err := r.load()
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

func (r *OrderRepository) UpdateStatus(id string, status model.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders, err := r.load()
	if err != nil {
		return err
	}
	for i := range orders {
		if orders[i].ID == id {
			orders[i].Status = status
			return r.save(orders)
		}
	}
	return model.ErrOrderNotFound
}

func (r *OrderRepository) load() ([]model.Order, error) {
	data, err := r.storage.Get(model.OrdersKey)
	if errors.Is(err, model.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "read orders")
	}

	var orders []model.Order
	if err = json.Unmarshal(data, &orders); err != nil {
		return nil, pkgerrors.Wrap(err, "decode orders")
	}
	return orders, nil
}

func (r *OrderRepository) save(orders []model.Order) error {
	data, err := json.Marshal(orders)
	if err != nil {
		return pkgerrors.Wrap(err, "encode orders")
	}
	return pkgerrors.Wrap(r.storage.Set(model.OrdersKey, data), "write orders")
}
