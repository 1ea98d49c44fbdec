package service

import (
	"encoding/json"
	"errors"
	"slices"
	"sync"

	"storefront/pkg/domain/model"
)

type CartStore interface {
	Add(item model.CartLineItem) error
	Remove(key model.LineKey) error
	UpdateQuantity(key model.LineKey, quantity int) error
	Increment(key model.LineKey) error
	Decrement(key model.LineKey) error
	Clear() error
	Replace(items []model.CartLineItem) error

	Items() []model.CartLineItem
	Count() int
	Total() float64
}

// NewCartStore loads the persisted cart. Every mutation writes the whole
// collection back before it returns.
func NewCartStore(storage model.Storage, dispatcher EventDispatcher) (CartStore, error) {
	var items []model.CartLineItem
	if err := loadJSON(storage, model.CartKey, &items); err != nil {
		return nil, err
	}
	return &cartStore{storage: storage, dispatcher: dispatcher, items: items}, nil
}

type cartStore struct {
	mu         sync.Mutex
	storage    model.Storage
	dispatcher EventDispatcher
	items      []model.CartLineItem
}

func (s *cartStore) Add(item model.CartLineItem) error {
	if item.Quantity < 1 {
		return model.ErrInvalidQuantity
	}

	key := item.Key()
	item.Color, item.Size = key.Color, key.Size

	s.mu.Lock()
	defer s.mu.Unlock()

	updated := slices.Clone(s.items)
	if i := indexOfLine(updated, key); i >= 0 {
		updated[i].Quantity += item.Quantity
	} else {
		updated = append(updated, item)
	}

	if err := s.commit(updated); err != nil {
		return err
	}
	_ = s.dispatcher.Dispatch(model.ItemAddedToCart{
		ProductID: item.ProductID,
		Color:     item.Color,
		Size:      item.Size,
		Quantity:  item.Quantity,
	})
	return nil
}

func (s *cartStore) Remove(key model.LineKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOfLine(s.items, key)
	if i < 0 {
		return nil
	}
	removed := s.items[i]
	updated := slices.Delete(slices.Clone(s.items), i, i+1)
	if err := s.commit(updated); err != nil {
		return err
	}
	_ = s.dispatcher.Dispatch(model.ItemRemovedFromCart{ProductID: removed.ProductID, Color: removed.Color, Size: removed.Size})
	return nil
}

// UpdateQuantity replaces the quantity of a line as given. Values below
// one are refused and leave the cart untouched.
func (s *cartStore) UpdateQuantity(key model.LineKey, quantity int) error {
	if quantity < 1 {
		return model.ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOfLine(s.items, key)
	if i < 0 {
		return nil
	}
	updated := slices.Clone(s.items)
	updated[i].Quantity = quantity
	return s.commit(updated)
}

func (s *cartStore) Increment(key model.LineKey) error {
	return s.step(key, 1)
}

// Decrement stops at one. Removing a line is an explicit Remove.
func (s *cartStore) Decrement(key model.LineKey) error {
	return s.step(key, -1)
}

func (s *cartStore) step(key model.LineKey, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOfLine(s.items, key)
	if i < 0 || s.items[i].Quantity+delta < 1 {
		return nil
	}
	updated := slices.Clone(s.items)
	updated[i].Quantity += delta
	return s.commit(updated)
}

func (s *cartStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Delete(model.CartKey); err != nil && !errors.Is(err, model.ErrKeyNotFound) {
		return err
	}
	s.items = nil
	_ = s.dispatcher.Dispatch(model.CartCleared{})
	return nil
}

// Replace overwrites the whole cart, used to roll back a failed multi-step operation.
func (s *cartStore) Replace(items []model.CartLineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(slices.Clone(items))
}

func (s *cartStore) Items() []model.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.items)
}

func (s *cartStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

func (s *cartStore) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Subtotal(s.items)
}

func (s *cartStore) commit(items []model.CartLineItem) error {
	if err := saveJSON(s.storage, model.CartKey, items); err != nil {
		return err
	}
	s.items = items
	return nil
}

func Subtotal(items []model.CartLineItem) float64 {
	var total float64
	for _, item := range items {
		total += item.LineTotal()
	}
	return total
}

func indexOfLine(items []model.CartLineItem, key model.LineKey) int {
	key = key.Normalized()
	return slices.IndexFunc(items, func(item model.CartLineItem) bool {
		return item.Key() == key
	})
}

func loadJSON(storage model.Storage, key string, into any) error {
	data, err := storage.Get(key)
	if errors.Is(err, model.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, into)
}

func saveJSON(storage model.Storage, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return storage.Set(key, data)
}
