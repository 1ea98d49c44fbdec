package model

import "errors"

var ErrInvalidQuantity = errors.New("quantity must be a positive number")

// DefaultVariant is used for color or size when a product offers none.
const DefaultVariant = "default"

type LineKey struct {
	ProductID ID
	Color     string
	Size      string
}

// Normalized fills an empty color or size with DefaultVariant so a
// product without variants always lands on the same line.
func (k LineKey) Normalized() LineKey {
	if k.Color == "" {
		k.Color = DefaultVariant
	}
	if k.Size == "" {
		k.Size = DefaultVariant
	}
	return k
}

type CartLineItem struct {
	ProductID ID      `json:"id"`
	Name      string  `json:"name"`
	Color     string  `json:"color"`
	Size      string  `json:"size"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Thumbnail string  `json:"thumbnail"`
	Stock     int     `json:"stock"`
}

func (i CartLineItem) Key() LineKey {
	return LineKey{ProductID: i.ProductID, Color: i.Color, Size: i.Size}.Normalized()
}

func (i CartLineItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

type WishlistEntry struct {
	ProductID ID       `json:"id"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	Thumbnail string   `json:"thumbnail"`
	Rating    float64  `json:"rating"`
	Brand     string   `json:"brand"`
	Colors    []string `json:"colors,omitempty"`
	Sizes     []string `json:"sizes,omitempty"`
	Stock     int      `json:"stock,omitempty"`
}

func NewWishlistEntry(p Product) WishlistEntry {
	return WishlistEntry{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Thumbnail: p.PrimaryImage(),
		Rating:    p.Rating,
		Brand:     p.Brand,
		Colors:    p.Colors,
		Sizes:     p.Sizes,
		Stock:     p.Stock,
	}
}
