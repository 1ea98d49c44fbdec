package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"storefront/pkg/domain/model"
)

var ErrAdminOrderNotFound = errors.New("admin order not found")

// DataLoadError means the admin console could not load a required collection.
type DataLoadError struct {
	Resource string
	Err      error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Resource, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

const (
	defaultProductRating   = 4.0
	demoTaxRate            = 0.08
	defaultAdminStatus     = "Completed"
	defaultAdminPayment    = "Credit Card"
	demoProductPool        = 10
	demoOrderHistoryInDays = 90
)

var (
	demoStatuses       = []string{"Completed", "Pending", "Shipped", "Processing", "Cancelled"}
	demoPaymentMethods = []string{"Credit Card", "PayPal", "Stripe", "Apple Pay"}
)

// Result is what every admin mutation reports. A failed mutation leaves
// the loaded collections as they were.
type Result struct {
	Success  bool              `json:"success"`
	Error    string            `json:"error,omitempty"`
	Product  *model.Product    `json:"product,omitempty"`
	Category *model.Category   `json:"category,omitempty"`
	User     *model.AdminUser  `json:"user,omitempty"`
	Order    *model.AdminOrder `json:"order,omitempty"`
}

func failure(err error) Result {
	return Result{Success: false, Error: err.Error()}
}

type AdminSnapshot struct {
	Products   []model.Product    `json:"products"`
	Users      []model.AdminUser  `json:"users"`
	Categories []model.Category   `json:"categories"`
	Orders     []model.AdminOrder `json:"orders"`
	DemoData   bool               `json:"demoData"`
	Loaded     bool               `json:"loaded"`
}

type AdminOptions struct {
	// DemoOrders fills an empty order list with fabricated, labeled orders.
	DemoOrders bool
	Rand       *rand.Rand
	Now        func() time.Time
}

type AdminService interface {
	Load(ctx context.Context) error
	Snapshot() AdminSnapshot
	DemoData() bool
	Dashboard() Dashboard

	AddProduct(ctx context.Context, product model.Product) Result
	EditProduct(ctx context.Context, id model.ID, product model.Product) Result
	DeleteProduct(ctx context.Context, id model.ID) Result

	AddCategory(ctx context.Context, category model.Category) Result
	DeleteCategory(ctx context.Context, id model.ID) Result

	UpdateUser(ctx context.Context, id model.ID, patch model.UserPatch) Result
	DeleteUser(ctx context.Context, id model.ID) Result

	UpdateOrderStatus(orderID, status string) Result
	DeleteOrder(orderID string) Result
}

func NewAdminService(repo model.AdminRepository, dispatcher EventDispatcher, logger log.FieldLogger, opts AdminOptions) AdminService {
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.Rand == nil {
		now := opts.Now()
		opts.Rand = rand.New(rand.NewPCG(uint64(now.UnixNano()), uint64(now.Unix())))
	}
	return &adminService{repo: repo, dispatcher: dispatcher, logger: logger, opts: opts}
}

type adminService struct {
	repo       model.AdminRepository
	dispatcher EventDispatcher
	logger     log.FieldLogger
	opts       AdminOptions

	mu    sync.RWMutex
	state AdminSnapshot
}

// Load fetches products, users and categories at the same time. Missing
// categories degrade to an empty list; missing products or users fail the load.
func (s *adminService) Load(ctx context.Context) error {
	var (
		products   []model.Product
		users      []model.AdminUser
		categories []model.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if products, err = s.repo.ListProducts(gctx); err != nil {
			return &DataLoadError{Resource: "products", Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if users, err = s.repo.ListUsers(gctx); err != nil {
			return &DataLoadError{Resource: "users", Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if categories, err = s.repo.ListCategories(gctx); err != nil {
			s.logger.WithError(err).Warn("categories unavailable, continuing with an empty set")
			categories = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.WithError(err).Error("admin data load failed")
		return err
	}

	orders := s.deriveOrders(users)
	demo := false
	if len(orders) == 0 {
		if s.opts.DemoOrders {
			orders = s.demoOrders(users, products)
			demo = len(orders) > 0
			s.logger.WithField("orders", len(orders)).Warn("no orders in user data, showing demo orders")
		} else {
			s.logger.Info("no orders in user data")
		}
	}

	snapshot := AdminSnapshot{
		Products:   nonNil(products),
		Users:      nonNil(users),
		Categories: nonNil(categories),
		Orders:     nonNil(orders),
		DemoData:   demo,
		Loaded:     true,
	}

	s.mu.Lock()
	s.state = snapshot
	s.mu.Unlock()

	_ = s.dispatcher.Dispatch(model.AdminDataLoaded{
		Products:   len(snapshot.Products),
		Users:      len(snapshot.Users),
		Categories: len(snapshot.Categories),
		Orders:     len(snapshot.Orders),
		Demo:       demo,
	})
	return nil
}

func (s *adminService) Snapshot() AdminSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return AdminSnapshot{
		Products:   slices.Clone(s.state.Products),
		Users:      slices.Clone(s.state.Users),
		Categories: slices.Clone(s.state.Categories),
		Orders:     slices.Clone(s.state.Orders),
		DemoData:   s.state.DemoData,
		Loaded:     s.state.Loaded,
	}
}

func (s *adminService) DemoData() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.DemoData
}

func (s *adminService) Dashboard() Dashboard {
	return BuildDashboard(s.Snapshot(), s.opts.Now())
}

func (s *adminService) AddProduct(ctx context.Context, product model.Product) Result {
	stamp := s.opts.Now().Format(time.RFC3339)
	if product.Rating == 0 {
		product.Rating = defaultProductRating
	}
	product.CreatedAt = stamp
	product.UpdatedAt = stamp

	saved, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		s.logger.WithError(err).Error("add product failed")
		return failure(err)
	}

	s.mu.Lock()
	s.state.Products = append(s.state.Products, *saved)
	s.mu.Unlock()
	return Result{Success: true, Product: saved}
}

func (s *adminService) EditProduct(ctx context.Context, id model.ID, product model.Product) Result {
	product.UpdatedAt = s.opts.Now().Format(time.RFC3339)

	saved, err := s.repo.UpdateProduct(ctx, id, product)
	if err != nil {
		s.logger.WithError(err).WithField("product", id).Error("edit product failed")
		return failure(err)
	}

	s.mu.Lock()
	for i := range s.state.Products {
		if s.state.Products[i].ID == id {
			s.state.Products[i] = *saved
		}
	}
	s.mu.Unlock()
	return Result{Success: true, Product: saved}
}

func (s *adminService) DeleteProduct(ctx context.Context, id model.ID) Result {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		s.logger.WithError(err).WithField("product", id).Error("delete product failed")
		return failure(err)
	}

	s.mu.Lock()
	s.state.Products = slices.DeleteFunc(s.state.Products, func(p model.Product) bool { return p.ID == id })
	s.mu.Unlock()
	return Result{Success: true}
}

func (s *adminService) AddCategory(ctx context.Context, category model.Category) Result {
	saved, err := s.repo.CreateCategory(ctx, category)
	if err != nil {
		s.logger.WithError(err).Error("add category failed")
		return failure(err)
	}

	s.mu.Lock()
	s.state.Categories = append(s.state.Categories, *saved)
	s.mu.Unlock()
	return Result{Success: true, Category: saved}
}

func (s *adminService) DeleteCategory(ctx context.Context, id model.ID) Result {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		s.logger.WithError(err).WithField("category", id).Error("delete category failed")
		return failure(err)
	}

	s.mu.Lock()
	s.state.Categories = slices.DeleteFunc(s.state.Categories, func(c model.Category) bool { return c.ID == id })
	s.mu.Unlock()
	return Result{Success: true}
}

// UpdateUser patches the user and, when the name or email changed,
// relabels the orders derived from that user.
func (s *adminService) UpdateUser(ctx context.Context, id model.ID, patch model.UserPatch) Result {
	updated, err := s.repo.PatchUser(ctx, id, patch)
	if err != nil {
		s.logger.WithError(err).WithField("user", id).Error("update user failed")
		return failure(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Users {
		if s.state.Users[i].ID == id {
			s.state.Users[i] = *updated
		}
	}
	if patch.TouchesIdentity() && id != "" {
		for i := range s.state.Orders {
			if s.state.Orders[i].UserID == id {
				s.state.Orders[i].Email = updated.Email
				s.state.Orders[i].CustomerName = updated.Label()
			}
		}
	}
	return Result{Success: true, User: updated}
}

// DeleteUser removes the user and every order derived from them.
func (s *adminService) DeleteUser(ctx context.Context, id model.ID) Result {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		s.logger.WithError(err).WithField("user", id).Error("delete user failed")
		return failure(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Users = slices.DeleteFunc(s.state.Users, func(u model.AdminUser) bool { return u.ID == id })
	if id != "" {
		s.state.Orders = slices.DeleteFunc(s.state.Orders, func(o model.AdminOrder) bool { return o.UserID == id })
	}
	return Result{Success: true}
}

// UpdateOrderStatus only changes the in-memory list; it is gone on reload.
func (s *adminService) UpdateOrderStatus(orderID, status string) Result {
	status = strings.TrimSpace(status)
	if status == "" {
		return failure(errors.New("status is required"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Orders {
		if s.state.Orders[i].ID == orderID {
			s.state.Orders[i].Status = status
			order := s.state.Orders[i]
			return Result{Success: true, Order: &order}
		}
	}
	return failure(ErrAdminOrderNotFound)
}

// DeleteOrder only changes the in-memory list; it is gone on reload.
func (s *adminService) DeleteOrder(orderID string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.state.Orders)
	s.state.Orders = slices.DeleteFunc(s.state.Orders, func(o model.AdminOrder) bool { return o.ID == orderID })
	if len(s.state.Orders) == before {
		return failure(ErrAdminOrderNotFound)
	}
	return Result{Success: true}
}

// embeddedOrder accepts the field variants found in user records.
type embeddedOrder struct {
	ID              model.ID               `json:"id"`
	OrderID         string                 `json:"orderId"`
	Status          string                 `json:"status"`
	Items           []model.AdminOrderItem `json:"items"`
	Products        []model.AdminOrderItem `json:"products"`
	Total           model.Number           `json:"total"`
	TotalAmount     model.Number           `json:"totalAmount"`
	Subtotal        model.Number           `json:"subtotal"`
	Tax             model.Number           `json:"tax"`
	Date            string                 `json:"date"`
	CreatedAt       string                 `json:"createdAt"`
	PaymentMethod   string                 `json:"paymentMethod"`
	ShippingAddress json.RawMessage        `json:"shippingAddress"`
}

func (s *adminService) deriveOrders(users []model.AdminUser) []model.AdminOrder {
	var orders []model.AdminOrder
	now := s.opts.Now()
	for index, user := range users {
		orders = append(orders, ExtractUserOrders(user, index, now)...)
	}
	return orders
}

// ExtractUserOrders normalizes the purchaseHistory and orders arrays of a
// user record. Entries that are not objects are skipped.
func ExtractUserOrders(user model.AdminUser, index int, now time.Time) []model.AdminOrder {
	owner := string(user.ID)
	if owner == "" {
		owner = fmt.Sprint(index)
	}
	name := user.Label()
	if name == "Unknown User" {
		name = fmt.Sprintf("User %d", index+1)
	}
	var fallbackAddress json.RawMessage
	if len(user.Addresses) > 0 {
		fallbackAddress = user.Addresses[0]
	}

	raw := append(slices.Clone(user.PurchaseHistory), user.Orders...)
	orders := make([]model.AdminOrder, 0, len(raw))
	for n, entry := range raw {
		var e embeddedOrder
		if !isJSONObject(entry) || json.Unmarshal(entry, &e) != nil {
			continue
		}

		order := model.AdminOrder{
			ID:              string(e.ID),
			OrderID:         e.OrderID,
			UserID:          user.ID,
			Email:           user.Email,
			CustomerName:    name,
			Status:          e.Status,
			Items:           e.Items,
			Total:           firstNonZero(float64(e.Total), float64(e.TotalAmount)),
			Subtotal:        firstNonZero(float64(e.Subtotal), float64(e.Total), float64(e.TotalAmount)),
			Tax:             float64(e.Tax),
			PaymentMethod:   e.PaymentMethod,
			ShippingAddress: e.ShippingAddress,
			Source:          model.EmbeddedOrder,
		}
		if order.ID == "" {
			order.ID = fmt.Sprintf("order-%s-%d", owner, n)
		}
		if order.OrderID == "" {
			order.OrderID = fmt.Sprintf("ORD-%d-%d-%d", now.UnixMilli(), index, n)
		}
		if order.Status == "" {
			order.Status = defaultAdminStatus
		}
		if order.Items == nil {
			order.Items = e.Products
		}
		if order.Items == nil {
			order.Items = []model.AdminOrderItem{}
		}
		if order.PaymentMethod == "" {
			order.PaymentMethod = defaultAdminPayment
		}
		if len(order.ShippingAddress) == 0 || string(order.ShippingAddress) == "null" {
			order.ShippingAddress = fallbackAddress
		}
		order.Date = now
		for _, candidate := range []string{e.Date, e.CreatedAt} {
			if t, ok := model.ParseTime(candidate); ok {
				order.Date = t
				break
			}
		}
		orders = append(orders, order)
	}
	return orders
}

// demoOrders fabricates 5 to 10 orders out of real users and products.
// Every one is marked as demo data.
func (s *adminService) demoOrders(users []model.AdminUser, products []model.Product) []model.AdminOrder {
	users = slices.DeleteFunc(slices.Clone(users), func(u model.AdminUser) bool { return strings.TrimSpace(u.Email) == "" })
	if len(users) == 0 || len(products) == 0 {
		return nil
	}
	rng := s.opts.Rand
	now := s.opts.Now()

	count := 5 + rng.IntN(6)
	orders := make([]model.AdminOrder, 0, count)
	for i := 0; i < count; i++ {
		user := users[i%len(users)]

		itemCount := 1 + rng.IntN(4)
		items := make([]model.AdminOrderItem, 0, itemCount)
		var subtotal float64
		for j := 0; j < itemCount; j++ {
			product := products[rng.IntN(min(demoProductPool, len(products)))]
			quantity := 1 + rng.IntN(3)
			price := product.Price
			if price == 0 {
				price = 9.99 + rng.Float64()*90
			}
			items = append(items, model.AdminOrderItem{
				ID:       product.ID,
				Name:     product.Name,
				Price:    model.Number(price),
				Quantity: model.Number(quantity),
				Image:    product.PrimaryImage(),
			})
			subtotal += price * float64(quantity)
		}

		var address json.RawMessage
		if len(user.Addresses) > 0 {
			address = user.Addresses[0]
		}
		tax := subtotal * demoTaxRate
		orders = append(orders, model.AdminOrder{
			ID:              fmt.Sprintf("sample-order-%d", i+1),
			OrderID:         fmt.Sprintf("ORD-%d", 1000+i),
			UserID:          user.ID,
			Email:           user.Email,
			CustomerName:    user.Label(),
			Status:          demoStatuses[rng.IntN(len(demoStatuses))],
			Items:           items,
			Subtotal:        subtotal,
			Tax:             tax,
			Total:           subtotal + tax,
			Date:            now.AddDate(0, 0, -rng.IntN(demoOrderHistoryInDays)),
			PaymentMethod:   demoPaymentMethods[rng.IntN(len(demoPaymentMethods))],
			ShippingAddress: address,
			Source:          model.DemoOrder,
		})
	}
	return orders
}

func isJSONObject(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}

func firstNonZero(values ...float64) float64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
