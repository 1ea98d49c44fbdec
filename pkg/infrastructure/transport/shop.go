package transport

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"storefront/pkg/domain/model"
	"storefront/pkg/domain/service"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := service.CatalogQuery{
		Category: model.ID(q.Get("category")),
		Search:   q.Get("q"),
		Sort:     service.SortKey(q.Get("sort")),
	}
	for name, dst := range map[string]*int{"page": &query.Page, "pageSize": &query.PageSize} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: name + " must be a number"})
			return
		}
		*dst = n
	}

	page, err := h.deps.Catalog.Browse(r.Context(), query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	detail, err := h.deps.Products.Load(r.Context(), model.ID(mux.Vars(r)["id"]))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.deps.Catalog.Categories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

type cartView struct {
	Items  []model.CartLineItem `json:"items"`
	Count  int                  `json:"count"`
	Totals service.Totals       `json:"totals"`
}

func (h *Handler) cartView(shopper *service.Shopper) cartView {
	items := shopper.Cart.Items()
	if items == nil {
		items = []model.CartLineItem{}
	}
	return cartView{
		Items:  items,
		Count:  shopper.Cart.Count(),
		Totals: h.deps.Pricing.Quote(shopper.Cart.Total()),
	}
}

func (h *Handler) getCart(w http.ResponseWriter, _ *http.Request, shopper *service.Shopper) {
	writeJSON(w, http.StatusOK, h.cartView(shopper))
}

type addToCartRequest struct {
	ProductID model.ID `json:"productId"`
	Color     string   `json:"color"`
	Size      string   `json:"size"`
	Quantity  int      `json:"quantity"`
}

// addToCart prices the line from the catalog, never from the request.
func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request, shopper *service.Shopper) {
	var req addToCartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		writeError(w, r, model.ErrInvalidQuantity)
		return
	}

	detail, err := h.deps.Products.Load(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	fields := map[string]string{}
	if req.Color != "" {
		if len(detail.Product.Colors) > 0 && !slices.Contains(detail.Product.Colors, req.Color) {
			fields["color"] = "Color is not offered for this product"
		}
		detail.SelectedColor = req.Color
	}
	if req.Size != "" {
		if len(detail.Product.Sizes) > 0 && !slices.Contains(detail.Product.Sizes, req.Size) {
			fields["size"] = "Size is not offered for this product"
		}
		detail.SelectedSize = req.Size
	}
	line := detail.LineItem()
	line.Quantity = req.Quantity
	if msg := stockProblem(line.Stock, quantityInCart(shopper, line.Key())+req.Quantity); msg != "" {
		fields["quantity"] = msg
	}
	if len(fields) > 0 {
		writeError(w, r, &service.ValidationError{Fields: fields})
		return
	}

	if err = shopper.Cart.Add(line); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.cartView(shopper))
}

func quantityInCart(shopper *service.Shopper, key model.LineKey) int {
	for _, line := range shopper.Cart.Items() {
		if line.Key() == key {
			return line.Quantity
		}
	}
	return 0
}

// stockProblem describes why quantity units of a line cannot be held in the cart.
func stockProblem(stock, quantity int) string {
	switch {
	case stock < 1:
		return "Out of stock"
	case quantity > stock:
		return fmt.Sprintf("Only %d left in stock", stock)
	}
	return ""
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request, shopper *service.Shopper) {
	if err := shopper.Cart.Clear(); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartView(shopper))
}

type cartItemRequest struct {
	ProductID model.ID `json:"productId"`
	Color     string   `json:"color"`
	Size      string   `json:"size"`
	Quantity  int      `json:"quantity"`
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request, shopper *service.Shopper) {
	var req cartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	key := model.LineKey{ProductID: req.ProductID, Color: req.Color, Size: req.Size}.Normalized()
	for _, line := range shopper.Cart.Items() {
		if line.Key() != key || req.Quantity < 1 {
			continue
		}
		if msg := stockProblem(line.Stock, req.Quantity); msg != "" {
			writeError(w, r, &service.ValidationError{Fields: map[string]string{"quantity": msg}})
			return
		}
	}
	if err := shopper.Cart.UpdateQuantity(key, req.Quantity); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartView(shopper))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request, shopper *service.Shopper) {
	q := r.URL.Query()
	key := model.LineKey{ProductID: model.ID(q.Get("productId")), Color: q.Get("color"), Size: q.Get("size")}
	if err := shopper.Cart.Remove(key); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartView(shopper))
}

type wishlistView struct {
	Items []model.WishlistEntry `json:"items"`
	Count int                   `json:"count"`
	Total float64               `json:"total"`
}

func wishlistOf(shopper *service.Shopper) wishlistView {
	items := shopper.Wishlist.Items()
	if items == nil {
		items = []model.WishlistEntry{}
	}
	return wishlistView{Items: items, Count: shopper.Wishlist.Count(), Total: shopper.Wishlist.Total()}
}

func (h *Handler) getWishlist(w http.ResponseWriter, _ *http.Request, shopper *service.Shopper) {
	writeJSON(w, http.StatusOK, wishlistOf(shopper))
}

func (h *Handler) addToWishlist(w http.ResponseWriter, r *http.Request, shopper *service.Shopper) {
	var req struct {
		ProductID model.ID `json:"productId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	detail, err := h.deps.Products.Load(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err = shopper.Wishlist.Add(model.NewWishlistEntry(detail.Product)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, wishlistOf(shopper))
}

func (h *Handler) clearWishlist(w http.ResponseWriter, r *http.Request, shopper *service.Shopper) {
	if err := shopper.Wishlist.Clear(); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wishlistOf(shopper))
}

func (h *Handler) removeFromWishlist(w http.ResponseWriter, r *http.Request, shopper *service.Shopper) {
	if err := shopper.Wishlist.Remove(model.ID(mux.Vars(r)["id"])); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wishlistOf(shopper))
}

func (h *Handler) moveToCart(w http.ResponseWriter, r *http.Request, shopper *service.Shopper) {
	if err := shopper.MoveToCart(model.ID(mux.Vars(r)["id"])); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Cart     cartView     `json:"cart"`
		Wishlist wishlistView `json:"wishlist"`
	}{h.cartView(shopper), wishlistOf(shopper)})
}

func (h *Handler) quote(w http.ResponseWriter, _ *http.Request, shopper *service.Shopper) {
	writeJSON(w, http.StatusOK, shopper.Checkout(h.deps.Pricing).Quote())
}

type checkoutResponse struct {
	Order   *model.Order `json:"order"`
	Warning string       `json:"warning,omitempty"`
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request, shopper *service.Shopper) {
	var form model.CustomerDetails
	if err := decodeJSON(r, &form); err != nil {
		writeError(w, r, err)
		return
	}

	flow := shopper.Checkout(h.deps.Pricing)
	flow.SetForm(form)
	order, err := flow.Submit()
	switch {
	case errors.Is(err, service.ErrCartNotCleared):
		log.WithError(err).WithField("order", order.ID).Warn("order placed with a stale cart")
		writeJSON(w, http.StatusCreated, checkoutResponse{Order: order, Warning: err.Error()})
	case err != nil:
		writeError(w, r, err)
	default:
		writeJSON(w, http.StatusCreated, checkoutResponse{Order: order})
	}
}

func (h *Handler) confirmation(r *http.Request, shopper *service.Shopper) service.OrderConfirmationService {
	return service.NewOrderConfirmationService(shopper.Orders, h.deps.Events(r.Header.Get(SessionHeader)))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request, shopper *service.Shopper) {
	orders, err := h.confirmation(r, shopper).List()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) latestOrder(w http.ResponseWriter, r *http.Request, shopper *service.Shopper) {
	view, err := h.confirmation(r, shopper).Load("")
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request, shopper *service.Shopper) {
	view, err := h.confirmation(r, shopper).Load(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request, shopper *service.Shopper) {
	view, err := h.confirmation(r, shopper).Cancel(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
