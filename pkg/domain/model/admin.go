package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Number decodes a JSON number or a numeric string. Anything else reads as zero.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = Number(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		*n = 0
		return nil
	}
	*n = Number(v)
	return nil
}

type AdminUser struct {
	ID              ID                `json:"id"`
	Name            string            `json:"name,omitempty"`
	FullName        string            `json:"fullName,omitempty"`
	Fullname        string            `json:"fullname,omitempty"`
	Username        string            `json:"username,omitempty"`
	UserName        string            `json:"userName,omitempty"`
	FirstName       string            `json:"firstName,omitempty"`
	LastName        string            `json:"lastName,omitempty"`
	DisplayName     string            `json:"displayName,omitempty"`
	Nickname        string            `json:"nickname,omitempty"`
	Email           string            `json:"email"`
	Role            string            `json:"role,omitempty"`
	Status          string            `json:"status,omitempty"`
	CreatedAt       string            `json:"createdAt,omitempty"`
	JoinDate        string            `json:"joinDate,omitempty"`
	Addresses       []json.RawMessage `json:"addresses,omitempty"`
	PurchaseHistory []json.RawMessage `json:"purchaseHistory,omitempty"`
	Orders          []json.RawMessage `json:"orders,omitempty"`
}

// Label picks the first populated name field, ending with the email.
func (u AdminUser) Label() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	for _, candidate := range []string{
		u.Name, u.FullName, u.Fullname, full, u.Username, u.UserName, u.DisplayName, u.Nickname, u.Email,
	} {
		if candidate != "" {
			return candidate
		}
	}
	return "Unknown User"
}

// Joined reports when the user registered, if the record says so.
func (u AdminUser) Joined() (time.Time, bool) {
	for _, raw := range []string{u.CreatedAt, u.JoinDate} {
		if t, ok := ParseTime(raw); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// UserPatch is the partial update sent with PATCH /users/:id.
type UserPatch struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Name      *string `json:"name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Role      *string `json:"role,omitempty"`
	Status    *string `json:"status,omitempty"`
}

func (p UserPatch) TouchesIdentity() bool {
	return p.FirstName != nil || p.LastName != nil || p.Name != nil || p.Email != nil
}

type OrderSource string

const (
	EmbeddedOrder OrderSource = "embedded"
	DemoOrder     OrderSource = "demo"
)

type AdminOrderItem struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Price    Number `json:"price"`
	Quantity Number `json:"quantity"`
	Image    string `json:"image,omitempty"`
}

// AdminOrder is an order as the admin console sees it. It is derived from
// user records, not from storefront checkouts.
type AdminOrder struct {
	ID              string           `json:"id"`
	OrderID         string           `json:"orderId"`
	UserID          ID               `json:"userId,omitempty"`
	Email           string           `json:"email"`
	CustomerName    string           `json:"userFullName"`
	Status          string           `json:"status"`
	Items           []AdminOrderItem `json:"items"`
	Subtotal        float64          `json:"subtotal"`
	Tax             float64          `json:"tax"`
	Total           float64          `json:"total"`
	Date            time.Time        `json:"date"`
	PaymentMethod   string           `json:"paymentMethod"`
	ShippingAddress json.RawMessage  `json:"shippingAddress,omitempty"`
	Source          OrderSource      `json:"source"`
}

var timeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func ParseTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
