package tests

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/domain/model"
	"storefront/pkg/domain/service"
)

var placedAt = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func validForm() model.CustomerDetails {
	return model.CustomerDetails{
		FirstName:     "Asha",
		LastName:      "Rao",
		Email:         "asha@example.com",
		Phone:         "9876543210",
		Address:       "12 MG Road",
		City:          "Pune",
		State:         "MH",
		Pincode:       "411001",
		PaymentMethod: model.CashOnDelivery,
	}
}

func setupCheckout(t *testing.T) (*service.CheckoutFlow, service.CartStore, *mockOrderRepository, *mockEventDispatcher) {
	cart, _, dispatcher := setupCart(t)
	orders := &mockOrderRepository{}
	flow := service.NewCheckoutFlow(cart, orders, service.DefaultPricingPolicy(), dispatcher,
		service.WithClock(func() time.Time { return placedAt }),
		service.WithOrderIDs(func(time.Time) string { return "ORD-TEST-1" }),
	)
	return flow, cart, orders, dispatcher
}

func TestQuote(t *testing.T) {
	pricing := service.DefaultPricingPolicy()

	t.Run("Below both thresholds pays shipping", func(t *testing.T) {
		totals := pricing.Quote(1500)
		assert.Equal(t, 99.0, totals.Shipping)
		assert.Equal(t, 0.0, totals.Discount)
		assert.Equal(t, 1599.0, totals.FinalTotal)
		assert.Equal(t, 499.0, totals.FreeShippingGap)
	})

	t.Run("Between thresholds ships free", func(t *testing.T) {
		totals := pricing.Quote(2500)
		assert.Equal(t, 0.0, totals.Shipping)
		assert.Equal(t, 0.0, totals.Discount)
		assert.Equal(t, 2500.0, totals.FinalTotal)
	})

	t.Run("Above both thresholds gets the discount", func(t *testing.T) {
		totals := pricing.Quote(3000)
		assert.Equal(t, 0.0, totals.Shipping)
		assert.Equal(t, 200.0, totals.Discount)
		assert.Equal(t, 2800.0, totals.FinalTotal)
	})

	t.Run("Thresholds are strict", func(t *testing.T) {
		assert.Equal(t, 99.0, pricing.Quote(1999).Shipping)
		assert.Equal(t, 0.0, pricing.Quote(2999).Discount)
	})
}

func TestCheckoutQuoteFollowsCart(t *testing.T) {
	flow, cart, _, _ := setupCheckout(t)
	require.NoError(t, cart.Add(capLine("1", "black", "M", 1, 1500)))

	first := flow.Quote()
	assert.Greater(t, first.Shipping, 0.0)
	assert.Equal(t, 0.0, first.Discount)

	require.NoError(t, cart.Add(capLine("1", "black", "M", 1, 1500)))
	second := flow.Quote()
	assert.Equal(t, 3000.0, second.Subtotal)
	assert.Equal(t, 0.0, second.Shipping)
	assert.Greater(t, second.Discount, 0.0)
}

func TestSubmitCheckout(t *testing.T) {
	flow, cart, orders, dispatcher := setupCheckout(t)
	require.NoError(t, cart.Add(capLine("1", "black", "M", 2, 1500)))
	flow.SetForm(validForm())
	dispatcher.Reset()

	order, err := flow.Submit()

	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, "ORD-TEST-1", order.ID)
	assert.Equal(t, model.Confirmed, order.Status)
	assert.Equal(t, 3000.0, order.Subtotal)
	assert.Equal(t, 2800.0, order.FinalTotal)
	assert.Equal(t, placedAt.AddDate(0, 0, 5), order.EstimatedDelivery)
	require.Len(t, order.Items, 1)

	assert.Equal(t, service.CheckoutConfirmed, flow.State())
	assert.Equal(t, "ORD-TEST-1", flow.OrderID())
	assert.Equal(t, []service.CheckoutState{service.Validating, service.Submitting, service.CheckoutConfirmed}, flow.Transitions())

	require.Len(t, orders.orders, 1)
	assert.Empty(t, cart.Items())

	placed := false
	for _, e := range dispatcher.events {
		if _, ok := e.(model.OrderPlaced); ok {
			placed = true
		}
	}
	assert.True(t, placed)

	_, err = flow.Submit()
	assert.ErrorIs(t, err, service.ErrCheckoutClosed)
}

func TestSubmitCheckoutValidation(t *testing.T) {
	flow, cart, orders, _ := setupCheckout(t)
	require.NoError(t, cart.Add(capLine("1", "black", "M", 1, 1500)))

	t.Run("Empty phone", func(t *testing.T) {
		form := validForm()
		form.Phone = ""
		flow.SetForm(form)

		order, err := flow.Submit()

		assert.Nil(t, order)
		var verr *service.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "phone")
		assert.Len(t, verr.Fields, 1)
		assert.Empty(t, orders.orders)
		assert.NotEmpty(t, cart.Items())
		assert.Equal(t, service.Editing, flow.State())
		assert.Contains(t, flow.Transitions(), service.RejectedValidation)
		assert.Equal(t, form, flow.Form())
	})

	t.Run("Patterns", func(t *testing.T) {
		form := validForm()
		form.Email = "asha@example"
		form.Phone = "98765"
		form.Pincode = "4110"
		flow.SetForm(form)

		_, err := flow.Submit()

		var verr *service.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Enter a valid email address", verr.Fields["email"])
		assert.Equal(t, "Phone must be 10 digits", verr.Fields["phone"])
		assert.Equal(t, "Pincode must be 6 digits", verr.Fields["pincode"])
	})

	t.Run("All required fields", func(t *testing.T) {
		err := service.ValidateCustomer(model.CustomerDetails{})
		var verr *service.ValidationError
		require.ErrorAs(t, err, &verr)
		for _, field := range []string{"firstName", "email", "phone", "address", "city", "state", "pincode"} {
			assert.Contains(t, verr.Fields, field)
		}
	})

	t.Run("Unknown payment method", func(t *testing.T) {
		form := validForm()
		form.PaymentMethod = "barter"
		err := service.ValidateCustomer(form)
		var verr *service.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "paymentMethod")
	})
}

func TestSubmitCheckoutFailures(t *testing.T) {
	t.Run("Empty cart", func(t *testing.T) {
		flow, _, orders, _ := setupCheckout(t)
		flow.SetForm(validForm())

		_, err := flow.Submit()
		assert.ErrorIs(t, err, service.ErrCartEmpty)
		assert.Empty(t, orders.orders)
		assert.Equal(t, service.Editing, flow.State())
	})

	t.Run("Order write fails and the form survives", func(t *testing.T) {
		flow, cart, orders, _ := setupCheckout(t)
		require.NoError(t, cart.Add(capLine("1", "black", "M", 1, 1500)))
		flow.SetForm(validForm())
		orders.appendErr = errBackendDown

		_, err := flow.Submit()
		assert.ErrorIs(t, err, errBackendDown)
		assert.Equal(t, service.Editing, flow.State())
		assert.Equal(t, validForm(), flow.Form())
		assert.Len(t, cart.Items(), 1)

		orders.appendErr = nil
		order, err := flow.Submit()
		require.NoError(t, err)
		assert.Equal(t, 1599.0, order.FinalTotal)
	})

	t.Run("Online payment waits as pending", func(t *testing.T) {
		flow, cart, _, _ := setupCheckout(t)
		require.NoError(t, cart.Add(capLine("1", "black", "M", 1, 1500)))
		form := validForm()
		form.PaymentMethod = model.UPI
		flow.SetForm(form)

		order, err := flow.Submit()
		require.NoError(t, err)
		assert.Equal(t, model.Pending, order.Status)
	})
}

func TestPrefillKeepsTypedValues(t *testing.T) {
	flow, _, _, _ := setupCheckout(t)
	flow.SetForm(model.CustomerDetails{FirstName: "Typed"})

	flow.Prefill(model.CustomerDetails{FirstName: "Profile", Email: "p@example.com", Phone: "9999999999"})

	form := flow.Form()
	assert.Equal(t, "Typed", form.FirstName)
	assert.Equal(t, "p@example.com", form.Email)
	assert.Equal(t, "9999999999", form.Phone)
	assert.Equal(t, model.CashOnDelivery, form.PaymentMethod)
}

func TestNewOrderID(t *testing.T) {
	id := service.NewOrderID(placedAt)
	assert.Regexp(t, `^ORD-`+strconv.FormatInt(placedAt.UnixMilli(), 10)+`-[0-9A-F]{6}$`, id)
	assert.NotEqual(t, id, service.NewOrderID(placedAt))
}
