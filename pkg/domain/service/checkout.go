package service

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/pkg/domain/model"
)

var (
	ErrCartEmpty      = errors.New("cart is empty")
	ErrCheckoutClosed = errors.New("checkout already completed")
	ErrCartNotCleared = errors.New("order placed but the cart could not be cleared")
)

var (
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern   = regexp.MustCompile(`^\d{10}$`)
	pincodePattern = regexp.MustCompile(`^\d{6}$`)
)

const (
	deliveryLeadTime = 5 * 24 * time.Hour
	orderIDSuffixLen = 6
)

type CheckoutState int

const (
	Editing CheckoutState = iota
	Validating
	Submitting
	CheckoutConfirmed
	RejectedValidation
)

func (s CheckoutState) String() string {
	switch s {
	case Editing:
		return "editing"
	case Validating:
		return "validating"
	case Submitting:
		return "submitting"
	case CheckoutConfirmed:
		return "confirmed"
	case RejectedValidation:
		return "rejected-validation"
	}
	return "unknown"
}

// ValidationError maps form field names to messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func ValidateCustomer(form model.CustomerDetails) error {
	fields := map[string]string{}
	required := []struct {
		name, value, label string
	}{
		{"firstName", form.FirstName, "First name"},
		{"email", form.Email, "Email"},
		{"phone", form.Phone, "Phone"},
		{"address", form.Address, "Address"},
		{"city", form.City, "City"},
		{"state", form.State, "State"},
		{"pincode", form.Pincode, "Pincode"},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			fields[f.name] = f.label + " is required"
		}
	}

	if _, blank := fields["email"]; !blank && !emailPattern.MatchString(strings.TrimSpace(form.Email)) {
		fields["email"] = "Enter a valid email address"
	}
	if _, blank := fields["phone"]; !blank && !phonePattern.MatchString(strings.TrimSpace(form.Phone)) {
		fields["phone"] = "Phone must be 10 digits"
	}
	if _, blank := fields["pincode"]; !blank && !pincodePattern.MatchString(strings.TrimSpace(form.Pincode)) {
		fields["pincode"] = "Pincode must be 6 digits"
	}
	if form.PaymentMethod != "" && !form.PaymentMethod.Valid() {
		fields["paymentMethod"] = "Choose cash on delivery, UPI or card"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// NewOrderID builds an id from the placement time and a random suffix.
func NewOrderID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:orderIDSuffixLen]
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix)
}

type CheckoutOption func(*CheckoutFlow)

func WithClock(now func() time.Time) CheckoutOption {
	return func(f *CheckoutFlow) { f.now = now }
}

func WithOrderIDs(next func(time.Time) string) CheckoutOption {
	return func(f *CheckoutFlow) { f.nextID = next }
}

// CheckoutFlow walks one order placement from form entry to confirmation.
// The entered form survives every failure so the shopper can retry.
type CheckoutFlow struct {
	mu          sync.Mutex
	cart        CartStore
	orders      model.OrderRepository
	pricing     PricingPolicy
	dispatcher  EventDispatcher
	now         func() time.Time
	nextID      func(time.Time) string
	state       CheckoutState
	transitions []CheckoutState
	form        model.CustomerDetails
	orderID     string
}

func NewCheckoutFlow(cart CartStore, orders model.OrderRepository, pricing PricingPolicy, dispatcher EventDispatcher, opts ...CheckoutOption) *CheckoutFlow {
	f := &CheckoutFlow{
		cart:       cart,
		orders:     orders,
		pricing:    pricing,
		dispatcher: dispatcher,
		now:        func() time.Time { return time.Now().UTC() },
		nextID:     NewOrderID,
		state:      Editing,
		form:       model.CustomerDetails{PaymentMethod: model.CashOnDelivery},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *CheckoutFlow) State() CheckoutState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Transitions lists every state the flow has passed through after Editing.
func (f *CheckoutFlow) Transitions() []CheckoutState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]CheckoutState(nil), f.transitions...)
}

func (f *CheckoutFlow) Form() model.CustomerDetails {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form
}

func (f *CheckoutFlow) SetForm(form model.CustomerDetails) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if form.PaymentMethod == "" {
		form.PaymentMethod = model.CashOnDelivery
	}
	f.form = form
}

// Prefill copies known profile details into blank form fields.
func (f *CheckoutFlow) Prefill(profile model.CustomerDetails) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&f.form.FirstName, profile.FirstName)
	fill(&f.form.LastName, profile.LastName)
	fill(&f.form.Email, profile.Email)
	fill(&f.form.Phone, profile.Phone)
}

func (f *CheckoutFlow) OrderID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orderID
}

func (f *CheckoutFlow) Quote() Totals {
	return f.pricing.Quote(f.cart.Total())
}

// Submit validates the form, records the order and empties the cart.
func (f *CheckoutFlow) Submit() (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == CheckoutConfirmed {
		return nil, ErrCheckoutClosed
	}

	f.moveTo(Validating)
	items := f.cart.Items()
	if len(items) == 0 {
		f.moveTo(Editing)
		return nil, ErrCartEmpty
	}
	if err := ValidateCustomer(f.form); err != nil {
		f.moveTo(RejectedValidation)
		f.moveTo(Editing)
		return nil, err
	}

	f.moveTo(Submitting)
	now := f.now()
	totals := f.pricing.Quote(Subtotal(items))
	order := model.Order{
		ID:                f.nextID(now),
		Date:              now,
		EstimatedDelivery: now.Add(deliveryLeadTime),
		Items:             items,
		Subtotal:          totals.Subtotal,
		Shipping:          totals.Shipping,
		Discount:          totals.Discount,
		FinalTotal:        totals.FinalTotal,
		Customer:          f.form,
		PaymentMethod:     f.form.PaymentMethod,
		Status:            initialStatus(f.form.PaymentMethod),
	}

	if err := f.orders.Append(order); err != nil {
		f.moveTo(Editing)
		return nil, err
	}

	f.orderID = order.ID
	f.moveTo(CheckoutConfirmed)
	_ = f.dispatcher.Dispatch(model.OrderPlaced{OrderID: order.ID, FinalTotal: order.FinalTotal, Items: len(order.Items)})

	if err := f.cart.Clear(); err != nil {
		return &order, fmt.Errorf("%w: %v", ErrCartNotCleared, err)
	}
	return &order, nil
}

func (f *CheckoutFlow) moveTo(state CheckoutState) {
	f.state = state
	f.transitions = append(f.transitions, state)
}

// Cash on delivery is confirmed on the spot; online payments wait for the
// external processor.
func initialStatus(method model.PaymentMethod) model.OrderStatus {
	if method == model.CashOnDelivery || method == "" {
		return model.Confirmed
	}
	return model.Pending
}
