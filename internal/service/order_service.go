package service

import (
	"context"

	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/events"
	"github.com/spec-kit/shop-service/internal/repository"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

// OrderService manages placed orders.
type OrderService struct {
	orders     repository.OrderRepository
	products   repository.ProductRepository
	dispatcher events.Dispatcher
}

// NewOrderService constructs the service.
func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository, dispatcher events.Dispatcher) *OrderService {
	return &OrderService{orders: orders, products: products, dispatcher: dispatcher}
}

// Place creates an order in the "in process" state.
func (s *OrderService) Place(ctx context.Context, userID string, productIDs []string) (*domain.Order, error) {
	items, total, err := priceProducts(ctx, s.products, productIDs)
	if err != nil {
		return nil, err
	}
	order := &domain.Order{
		UserID:     userID,
		Products:   items,
		TotalPrice: total,
		Status:     domain.OrderStatusInProcess,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	publishEvent(ctx, s.dispatcher, events.New(events.EventOrderPlaced, order.ID, userID, events.OrderPlacedPayload{
		UserID:     userID,
		TotalPrice: total,
		Products:   items,
	}))
	return order, nil
}

func (s *OrderService) List(ctx context.Context, page repository.Page) ([]domain.Order, int, error) {
	orders, total, err := s.orders.List(ctx, page)
	if err != nil {
		return nil, 0, apperrors.NewInternalError(err)
	}
	return orders, total, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Order")
	}
	return order, nil
}

// SetStatus moves an order to status.
func (s *OrderService) SetStatus(ctx context.Context, id string, status domain.OrderStatus, actorID string) (*domain.Order, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid order status", map[string]any{
			"allowed": []domain.OrderStatus{domain.OrderStatusInProcess, domain.OrderStatusPaid},
		})
	}
	current, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Order")
	}
	if current.Status == status {
		return current, nil
	}

	updated, err := s.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, notFoundOr(err, "Order")
	}
	publishEvent(ctx, s.dispatcher, events.New(events.EventOrderStatusChanged, id, actorID, events.OrderStatusChangedPayload{
		OldStatus: current.Status,
		NewStatus: status,
	}))
	return updated, nil
}

func (s *OrderService) Delete(ctx context.Context, id string) error {
	if err := s.orders.Delete(ctx, id); err != nil {
		return notFoundOr(err, "Order")
	}
	return nil
}
