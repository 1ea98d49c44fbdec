package service

import (
	"storefront/pkg/domain/model"
)

// HomeRoute is where a shopper is sent when an order cannot be found.
const HomeRoute = "/"

var progression = []model.OrderStatus{model.Confirmed, model.Processing, model.Shipped, model.Delivered}

type Stage struct {
	Status  model.OrderStatus `json:"status"`
	Reached bool              `json:"reached"`
	Current bool              `json:"current"`
}

// Progress renders the fixed confirmed → processing → shipped → delivered
// track. A cancelled order reports no reached stage and the cancelled flag.
func Progress(status model.OrderStatus) (stages []Stage, cancelled bool) {
	if status == model.Cancelled {
		stages = make([]Stage, 0, len(progression))
		for _, s := range progression {
			stages = append(stages, Stage{Status: s})
		}
		return stages, true
	}

	current := 0
	for i, s := range progression {
		if s == status {
			current = i
		}
	}

	stages = make([]Stage, 0, len(progression))
	for i, s := range progression {
		stages = append(stages, Stage{Status: s, Reached: i <= current, Current: i == current})
	}
	return stages, false
}

type OrderView struct {
	Order     model.Order `json:"order"`
	Stages    []Stage     `json:"stages"`
	Cancelled bool        `json:"cancelled"`
	CanCancel bool        `json:"canCancel"`
}

func NewOrderView(order model.Order) OrderView {
	stages, cancelled := Progress(order.Status)
	return OrderView{
		Order:     order,
		Stages:    stages,
		Cancelled: cancelled,
		CanCancel: order.Status != model.Cancelled && order.Status != model.Delivered,
	}
}

type OrderConfirmationService interface {
	Load(orderID string) (*OrderView, error)
	Cancel(orderID string) (*OrderView, error)
	List() ([]model.Order, error)
}

func NewOrderConfirmationService(repo model.OrderRepository, dispatcher EventDispatcher) OrderConfirmationService {
	return &orderConfirmationService{repo: repo, dispatcher: dispatcher}
}

type orderConfirmationService struct {
	repo       model.OrderRepository
	dispatcher EventDispatcher
}

// Load finds an order by id; an empty id means the most recent order.
func (s *orderConfirmationService) Load(orderID string) (*OrderView, error) {
	order, err := s.find(orderID)
	if err != nil {
		return nil, err
	}
	view := NewOrderView(*order)
	return &view, nil
}

// Cancel flips the stored status locally. Nothing is sent to the backend
// and no stock is released.
func (s *orderConfirmationService) Cancel(orderID string) (*OrderView, error) {
	order, err := s.find(orderID)
	if err != nil {
		return nil, err
	}

	switch order.Status {
	case model.Cancelled:
		view := NewOrderView(*order)
		return &view, nil
	case model.Delivered:
		return nil, model.ErrOrderCannotBeModified
	}

	if err := s.repo.UpdateStatus(order.ID, model.Cancelled); err != nil {
		return nil, err
	}
	order.Status = model.Cancelled

	_ = s.dispatcher.Dispatch(model.OrderCancelled{OrderID: order.ID})

	view := NewOrderView(*order)
	return &view, nil
}

func (s *orderConfirmationService) List() ([]model.Order, error) {
	return s.repo.List()
}

func (s *orderConfirmationService) find(orderID string) (*model.Order, error) {
	if orderID == "" {
		return s.repo.Latest()
	}
	return s.repo.Find(orderID)
}
