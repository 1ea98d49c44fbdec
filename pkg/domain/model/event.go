package model

type ItemAddedToCart struct {
	ProductID ID
	Color     string
	Size      string
	Quantity  int
}

func (e ItemAddedToCart) Type() string { return "ItemAddedToCart" }

type ItemRemovedFromCart struct {
	ProductID ID
	Color     string
	Size      string
}

func (e ItemRemovedFromCart) Type() string { return "ItemRemovedFromCart" }

type CartCleared struct{}

func (e CartCleared) Type() string { return "CartCleared" }

type WishlistItemMovedToCart struct {
	ProductID ID
}

func (e WishlistItemMovedToCart) Type() string { return "WishlistItemMovedToCart" }

type OrderPlaced struct {
	OrderID    string
	FinalTotal float64
	Items      int
}

func (e OrderPlaced) Type() string { return "OrderPlaced" }

type OrderCancelled struct {
	OrderID string
}

func (e OrderCancelled) Type() string { return "OrderCancelled" }

type AdminDataLoaded struct {
	Products   int
	Users      int
	Categories int
	Orders     int
	Demo       bool
}

func (e AdminDataLoaded) Type() string { return "AdminDataLoaded" }
