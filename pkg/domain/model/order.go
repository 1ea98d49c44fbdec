package model

import (
	"errors"
	"time"
)

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderCannotBeModified = errors.New("order cannot be modified in its current state")
)

type OrderStatus string

const (
	Confirmed  OrderStatus = "confirmed"
	Pending    OrderStatus = "pending"
	Processing OrderStatus = "processing"
	Shipped    OrderStatus = "shipped"
	Delivered  OrderStatus = "delivered"
	Cancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case Confirmed, Pending, Processing, Shipped, Delivered, Cancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	CashOnDelivery PaymentMethod = "cod"
	UPI            PaymentMethod = "upi"
	Card           PaymentMethod = "card"
)

func (m PaymentMethod) Valid() bool {
	return m == CashOnDelivery || m == UPI || m == Card
}

type CustomerDetails struct {
	FirstName     string        `json:"firstName"`
	LastName      string        `json:"lastName"`
	Email         string        `json:"email"`
	Phone         string        `json:"phone"`
	Address       string        `json:"address"`
	City          string        `json:"city"`
	State         string        `json:"state"`
	Pincode       string        `json:"pincode"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
}

type Order struct {
	ID                string          `json:"id"`
	Date              time.Time       `json:"date"`
	EstimatedDelivery time.Time       `json:"estimatedDelivery"`
	Items             []CartLineItem  `json:"items"`
	Subtotal          float64         `json:"total"`
	Shipping          float64         `json:"shipping"`
	Discount          float64         `json:"discount"`
	FinalTotal        float64         `json:"finalTotal"`
	Customer          CustomerDetails `json:"customer"`
	PaymentMethod     PaymentMethod   `json:"paymentMethod"`
	Status            OrderStatus     `json:"status"`
}

// OrderRepository stores orders placed from the storefront.
type OrderRepository interface {
	Append(order Order) error
	Find(id string) (*Order, error)
	Latest() (*Order, error)
	List() ([]Order, error)
	UpdateStatus(id string, status OrderStatus) error
}
