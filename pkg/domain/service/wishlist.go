package service

import (
	"errors"
	"slices"
	"sync"

	"storefront/pkg/domain/model"
)

var ErrNotInWishlist = errors.New("product is not in the wishlist")

type WishlistStore interface {
	Add(entry model.WishlistEntry) error
	Remove(productID model.ID) error
	Contains(productID model.ID) bool
	Find(productID model.ID) (model.WishlistEntry, bool)
	Clear() error

	Items() []model.WishlistEntry
	Count() int
	Total() float64
}

func NewWishlistStore(storage model.Storage) (WishlistStore, error) {
	var items []model.WishlistEntry
	if err := loadJSON(storage, model.WishlistKey, &items); err != nil {
		return nil, err
	}
	return &wishlistStore{storage: storage, items: items}, nil
}

type wishlistStore struct {
	mu      sync.Mutex
	storage model.Storage
	items   []model.WishlistEntry
}

// Add is a no-op for a product already in the wishlist.
func (s *wishlistStore) Add(entry model.WishlistEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(entry.ProductID) >= 0 {
		return nil
	}
	return s.commit(append(slices.Clone(s.items), entry))
}

func (s *wishlistStore) Remove(productID model.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(productID)
	if i < 0 {
		return nil
	}
	return s.commit(slices.Delete(slices.Clone(s.items), i, i+1))
}

func (s *wishlistStore) Contains(productID model.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.indexOf(productID) >= 0
}

func (s *wishlistStore) Find(productID model.ID) (model.WishlistEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(productID); i >= 0 {
		return s.items[i], true
	}
	return model.WishlistEntry{}, false
}

func (s *wishlistStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Delete(model.WishlistKey); err != nil && !errors.Is(err, model.ErrKeyNotFound) {
		return err
	}
	s.items = nil
	return nil
}

func (s *wishlistStore) Items() []model.WishlistEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.items)
}

func (s *wishlistStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}

func (s *wishlistStore) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, item := range s.items {
		total += item.Price
	}
	return total
}

func (s *wishlistStore) indexOf(productID model.ID) int {
	return slices.IndexFunc(s.items, func(e model.WishlistEntry) bool { return e.ProductID == productID })
}

func (s *wishlistStore) commit(items []model.WishlistEntry) error {
	if err := saveJSON(s.storage, model.WishlistKey, items); err != nil {
		return err
	}
	s.items = items
	return nil
}

// CartLineFromWishlist is the line a wishlist entry turns into: first
// offered color and size, one unit.
func CartLineFromWishlist(entry model.WishlistEntry) model.CartLineItem {
	color, size := model.DefaultVariant, model.DefaultVariant
	if len(entry.Colors) > 0 {
		color = entry.Colors[0]
	}
	if len(entry.Sizes) > 0 {
		size = entry.Sizes[0]
	}
	return model.CartLineItem{
		ProductID: entry.ProductID,
		Name:      entry.Name,
		Color:     color,
		Size:      size,
		Quantity:  1,
		Price:     entry.Price,
		Thumbnail: entry.Thumbnail,
		Stock:     entry.Stock,
	}
}
