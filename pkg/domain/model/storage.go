package model

import "errors"

var ErrKeyNotFound = errors.New("storage key not found")

const (
	CartKey     = "cart"
	WishlistKey = "wishlist"
	OrdersKey   = "orders"
)

// Storage is the key-value blob store the shopper state is mirrored to.
// Get returns ErrKeyNotFound for a missing key.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}
