package service

import (
	"fmt"

	"storefront/pkg/domain/model"
)

// Shopper bundles the state one shopper keeps in storage.
type Shopper struct {
	Cart       CartStore
	Wishlist   WishlistStore
	Orders     model.OrderRepository
	dispatcher EventDispatcher
}

func NewShopper(storage model.Storage, orders model.OrderRepository, dispatcher EventDispatcher) (*Shopper, error) {
	cart, err := NewCartStore(storage, dispatcher)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	wishlist, err := NewWishlistStore(storage)
	if err != nil {
		return nil, fmt.Errorf("load wishlist: %w", err)
	}
	return &Shopper{Cart: cart, Wishlist: wishlist, Orders: orders, dispatcher: dispatcher}, nil
}

// MoveToCart adds a wishlist entry to the cart and drops it from the
// wishlist. If the wishlist cannot be updated the cart is put back as it was.
func (s *Shopper) MoveToCart(productID model.ID) error {
	entry, ok := s.Wishlist.Find(productID)
	if !ok {
		return ErrNotInWishlist
	}

	before := s.Cart.Items()
	if err := s.Cart.Add(CartLineFromWishlist(entry)); err != nil {
		return err
	}
	if err := s.Wishlist.Remove(productID); err != nil {
		if rollbackErr := s.Cart.Replace(before); rollbackErr != nil {
			return fmt.Errorf("remove from wishlist: %v; restore cart: %w", err, rollbackErr)
		}
		return err
	}

	_ = s.dispatcher.Dispatch(model.WishlistItemMovedToCart{ProductID: productID})
	return nil
}

func (s *Shopper) Checkout(pricing PricingPolicy, opts ...CheckoutOption) *CheckoutFlow {
	return NewCheckoutFlow(s.Cart, s.Orders, pricing, s.dispatcher, opts...)
}
