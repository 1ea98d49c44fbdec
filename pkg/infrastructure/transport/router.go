package transport

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"storefront/pkg/domain/model"
	"storefront/pkg/domain/service"
	"storefront/pkg/infrastructure/repository"
	"storefront/pkg/infrastructure/storage"
)

// SessionHeader identifies the shopper whose cart, wishlist and orders a
// request works on.
const SessionHeader = "X-Session-ID"

type Dependencies struct {
	Catalog  service.CatalogService
	Products service.ProductDetailService
	Admin    service.AdminService
	Storage  model.Storage
	Pricing  service.PricingPolicy
	// Events returns the dispatcher for one shopper session.
	Events func(session string) service.EventDispatcher
}

type Handler struct {
	deps     Dependencies
	sessions *sessionLocks
}

func Router(deps Dependencies) http.Handler {
	h := &Handler{deps: deps, sessions: newSessionLocks()}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "no such endpoint"})
	})
	s := r.PathPrefix("/api/v1").Subrouter()

	s.HandleFunc("/products", h.listProducts).Methods(http.MethodGet)
	s.HandleFunc("/products/{id}", h.getProduct).Methods(http.MethodGet)
	s.HandleFunc("/categories", h.listCategories).Methods(http.MethodGet)

	s.HandleFunc("/cart", h.withShopper(h.getCart)).Methods(http.MethodGet)
	s.HandleFunc("/cart", h.withShopper(h.addToCart)).Methods(http.MethodPost)
	s.HandleFunc("/cart", h.withShopper(h.clearCart)).Methods(http.MethodDelete)
	s.HandleFunc("/cart/items", h.withShopper(h.updateCartItem)).Methods(http.MethodPatch)
	s.HandleFunc("/cart/items", h.withShopper(h.removeCartItem)).Methods(http.MethodDelete)

	s.HandleFunc("/wishlist", h.withShopper(h.getWishlist)).Methods(http.MethodGet)
	s.HandleFunc("/wishlist", h.withShopper(h.addToWishlist)).Methods(http.MethodPost)
	s.HandleFunc("/wishlist", h.withShopper(h.clearWishlist)).Methods(http.MethodDelete)
	s.HandleFunc("/wishlist/{id}", h.withShopper(h.removeFromWishlist)).Methods(http.MethodDelete)
	s.HandleFunc("/wishlist/{id}/move-to-cart", h.withShopper(h.moveToCart)).Methods(http.MethodPost)

	s.HandleFunc("/checkout/quote", h.withShopper(h.quote)).Methods(http.MethodGet)
	s.HandleFunc("/checkout", h.withShopper(h.checkout)).Methods(http.MethodPost)

	s.HandleFunc("/orders", h.withShopper(h.listOrders)).Methods(http.MethodGet)
	s.HandleFunc("/orders/latest", h.withShopper(h.latestOrder)).Methods(http.MethodGet)
	s.HandleFunc("/orders/{id}", h.withShopper(h.getOrder)).Methods(http.MethodGet)
	s.HandleFunc("/orders/{id}/cancel", h.withShopper(h.cancelOrder)).Methods(http.MethodPost)

	a := s.PathPrefix("/admin").Subrouter()
	a.HandleFunc("", h.adminSnapshot).Methods(http.MethodGet)
	a.HandleFunc("/reload", h.adminReload).Methods(http.MethodPost)
	a.HandleFunc("/dashboard", h.adminDashboard).Methods(http.MethodGet)
	a.HandleFunc("/products", h.adminAddProduct).Methods(http.MethodPost)
	a.HandleFunc("/products/{id}", h.adminEditProduct).Methods(http.MethodPut)
	a.HandleFunc("/products/{id}", h.adminDeleteProduct).Methods(http.MethodDelete)
	a.HandleFunc("/categories", h.adminAddCategory).Methods(http.MethodPost)
	a.HandleFunc("/categories/{id}", h.adminDeleteCategory).Methods(http.MethodDelete)
	a.HandleFunc("/users/{id}", h.adminUpdateUser).Methods(http.MethodPatch)
	a.HandleFunc("/users/{id}", h.adminDeleteUser).Methods(http.MethodDelete)
	a.HandleFunc("/orders/{id}", h.adminUpdateOrder).Methods(http.MethodPatch)
	a.HandleFunc("/orders/{id}", h.adminDeleteOrder).Methods(http.MethodDelete)

	return logMiddleware(r)
}

type shopperHandler func(w http.ResponseWriter, r *http.Request, shopper *service.Shopper)

// withShopper loads the session's stores before calling next. Requests of
// one session run one at a time.
func (h *Handler) withShopper(next shopperHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := strings.TrimSpace(r.Header.Get(SessionHeader))
		if session == "" {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: SessionHeader + " header is required"})
			return
		}

		release := h.sessions.acquire(session)
		defer release()

		store := storage.Namespaced(h.deps.Storage, session)
		shopper, err := service.NewShopper(store, repository.NewOrderRepository(store), h.deps.Events(session))
		if err != nil {
			writeError(w, r, err)
			return
		}
		next(w, r, shopper)
	}
}

func logMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.WithFields(log.Fields{
			"method":     r.Method,
			"url":        r.URL,
			"remoteAddr": r.RemoteAddr,
			"userAgent":  r.UserAgent(),
			"session":    r.Header.Get(SessionHeader),
		}).Info("got a new request")
		h.ServeHTTP(w, r)
	})
}
