package tests

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"storefront/pkg/domain/model"
	"storefront/pkg/domain/service"
)

var errBackendDown = errors.New("backend down")

var _ model.Storage = &mockStorage{}

type mockStorage struct {
	store   map[string][]byte
	failSet map[string]error
}

func newMockStorage() *mockStorage {
	return &mockStorage{store: make(map[string][]byte), failSet: make(map[string]error)}
}

func (m *mockStorage) Get(key string) ([]byte, error) {
	data, ok := m.store[key]
	if !ok {
		return nil, model.ErrKeyNotFound
	}
	return slices.Clone(data), nil
}

func (m *mockStorage) Set(key string, value []byte) error {
	if err := m.failSet[key]; err != nil {
		return err
	}
	m.store[key] = slices.Clone(value)
	return nil
}

func (m *mockStorage) Delete(key string) error {
	if err := m.failSet[key]; err != nil {
		return err
	}
	if _, ok := m.store[key]; !ok {
		return model.ErrKeyNotFound
	}
	delete(m.store, key)
	return nil
}

var _ model.OrderRepository = &mockOrderRepository{}

type mockOrderRepository struct {
	orders    []model.Order
	appendErr error
}

func (m *mockOrderRepository) Append(order model.Order) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.orders = append(m.orders, order)
	return nil
}

func (m *mockOrderRepository) Find(id string) (*model.Order, error) {
	for _, o := range m.orders {
		if o.ID == id {
			clone := o
			return &clone, nil
		}
	}
	return nil, model.ErrOrderNotFound
}

func (m *mockOrderRepository) Latest() (*model.Order, error) {
	if len(m.orders) == 0 {
		return nil, model.ErrOrderNotFound
	}
	clone := m.orders[len(m.orders)-1]
	return &clone, nil
}

func (m *mockOrderRepository) List() ([]model.Order, error) {
	return slices.Clone(m.orders), nil
}

func (m *mockOrderRepository) UpdateStatus(id string, status model.OrderStatus) error {
	for i := range m.orders {
		if m.orders[i].ID == id {
			m.orders[i].Status = status
			return nil
		}
	}
	return model.ErrOrderNotFound
}

var _ model.AdminRepository = &mockAdminRepository{}

type mockAdminRepository struct {
	products   []model.Product
	categories []model.Category
	users      []model.AdminUser

	productsErr   error
	usersErr      error
	categoriesErr error
	mutationErr   error
	nextID        int
}

func (m *mockAdminRepository) ListProducts(ctx context.Context) ([]model.Product, error) {
	if m.productsErr != nil {
		return nil, m.productsErr
	}
	return slices.Clone(m.products), nil
}

func (m *mockAdminRepository) ListProductsByCategory(ctx context.Context, categoryID model.ID) ([]model.Product, error) {
	if m.productsErr != nil {
		return nil, m.productsErr
	}
	var out []model.Product
	for _, p := range m.products {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockAdminRepository) GetProduct(ctx context.Context, id model.ID) (*model.Product, error) {
	if m.productsErr != nil {
		return nil, m.productsErr
	}
	for _, p := range m.products {
		if p.ID == id {
			clone := p
			return &clone, nil
		}
	}
	return nil, model.ErrProductNotFound
}

func (m *mockAdminRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	if m.categoriesErr != nil {
		return nil, m.categoriesErr
	}
	return slices.Clone(m.categories), nil
}

func (m *mockAdminRepository) CreateProduct(ctx context.Context, product model.Product) (*model.Product, error) {
	if m.mutationErr != nil {
		return nil, m.mutationErr
	}
	m.nextID++
	product.ID = model.ID(fmt.Sprintf("new-%d", m.nextID))
	m.products = append(m.products, product)
	return &product, nil
}

func (m *mockAdminRepository) UpdateProduct(ctx context.Context, id model.ID, product model.Product) (*model.Product, error) {
	if m.mutationErr != nil {
		return nil, m.mutationErr
	}
	product.ID = id
	return &product, nil
}

func (m *mockAdminRepository) DeleteProduct(ctx context.Context, id model.ID) error {
	return m.mutationErr
}

func (m *mockAdminRepository) CreateCategory(ctx context.Context, category model.Category) (*model.Category, error) {
	if m.mutationErr != nil {
		return nil, m.mutationErr
	}
	if category.ID == "" {
		category.ID = "c-new"
	}
	return &category, nil
}

func (m *mockAdminRepository) DeleteCategory(ctx context.Context, id model.ID) error {
	return m.mutationErr
}

func (m *mockAdminRepository) ListUsers(ctx context.Context) ([]model.AdminUser, error) {
	if m.usersErr != nil {
		return nil, m.usersErr
	}
	return slices.Clone(m.users), nil
}

func (m *mockAdminRepository) PatchUser(ctx context.Context, id model.ID, patch model.UserPatch) (*model.AdminUser, error) {
	if m.mutationErr != nil {
		return nil, m.mutationErr
	}
	for _, u := range m.users {
		if u.ID != id {
			continue
		}
		if patch.FirstName != nil {
			u.FirstName = *patch.FirstName
		}
		if patch.LastName != nil {
			u.LastName = *patch.LastName
		}
		if patch.Email != nil {
			u.Email = *patch.Email
		}
		if patch.Role != nil {
			u.Role = *patch.Role
		}
		if patch.Status != nil {
			u.Status = *patch.Status
		}
		return &u, nil
	}
	return nil, model.ErrUserNotFound
}

func (m *mockAdminRepository) DeleteUser(ctx context.Context, id model.ID) error {
	return m.mutationErr
}

var _ service.EventDispatcher = &mockEventDispatcher{}

type mockEventDispatcher struct {
	events []service.Event
}

func (m *mockEventDispatcher) Dispatch(event service.Event) error {
	m.events = append(m.events, event)
	return nil
}

func (m *mockEventDispatcher) Reset() {
	m.events = nil
}
