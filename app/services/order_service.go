package services

import (
	"context"
	"errors"
	"time"

	"github.com/jcorner/storefront/app/models"
	"github.com/jcorner/storefront/app/repositories"
	"github.com/jcorner/storefront/pkg/apperror"
	"github.com/jcorner/storefront/pkg/logger"
	"github.com/jcorner/storefront/pkg/metrics"
	"github.com/jcorner/storefront/pkg/validate"
)

const (
	msgOrderNotFound = "Order not found"
	msgNoOrders      = "No orders found."
)

type OrderService struct {
	orders OrderRepository
	carts  CartRepository
	tx     Transactor
	now    func() time.Time
}

func NewOrderService(orders OrderRepository, carts CartRepository, tx Transactor) *OrderService {
	return &OrderService{orders: orders, carts: carts, tx: tx, now: time.Now}
}

// Checkout turns the user's cart into a Pending order and empties the
// cart. Both writes share one transaction when the store supports it.
func (s *OrderService) Checkout(ctx context.Context, userID string) (*models.Order, error) {
	var order *models.Order

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		c, err := s.carts.FindByUser(ctx, userID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		if c == nil || len(c.CartItems) == 0 {
			return apperror.Validationf("No items to Checkout")
		}

		o := &models.Order{
			UserID:          userID,
			ProductsOrdered: append([]models.LineItem(nil), c.CartItems...),
			TotalPrice:      models.SumSubtotals(c.CartItems),
			OrderedOn:       s.now().UTC(),
			Status:          models.StatusPending,
		}
		if err := s.orders.Create(ctx, o); err != nil {
			return err
		}

		c.Clear()
		if err := s.carts.Save(ctx, c); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		if apperror.Is(err, apperror.Validation) {
			return nil, err
		}
		return nil, apperror.Wrap(err, "Error placing order")
	}

	metrics.OrdersPlaced.Inc()
	logger.WithCtx(ctx).Info("order placed", "order_id", order.ID.Hex(), "user_id", userID, "total", order.TotalPrice)
	return order, nil
}

// ListMine returns the user's orders, newest first.
func (s *OrderService) ListMine(ctx context.Context, userID string) ([]models.Order, error) {
	return s.list(ctx, models.OrderFilter{UserID: userID}, msgNoOrders)
}

func (s *OrderService) ListAll(ctx context.Context) ([]models.Order, error) {
	return s.list(ctx, models.OrderFilter{}, msgNoOrders)
}

func (s *OrderService) ListByStatus(ctx context.Context, status string) ([]models.Order, error) {
	if !models.ValidStatus(status) {
		return nil, apperror.Validationf("Invalid status category")
	}
	return s.list(ctx, models.OrderFilter{Status: status}, "No "+status+" orders found.")
}

func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status string) (*models.Order, error) {
	if !models.ValidStatus(status) {
		return nil, apperror.ValidationFields("Invalid status", map[string]string{
			"status": "The status must be one of Pending, Paid, Completed.",
		})
	}

	o, err := s.orders.Patch(ctx, orderID, models.OrderPatch{Status: &status})
	if err != nil {
		return nil, notFound(err, msgOrderNotFound)
	}
	metrics.OrderStatusChanges.WithLabelValues(status).Inc()
	logger.WithCtx(ctx).Info("order status changed", "order_id", orderID, "status", status)
	return o, nil
}

// UpdateInfo is the admin's escape hatch for correcting an order. The
// status is stored as given.
func (s *OrderService) UpdateInfo(ctx context.Context, orderID string, p models.OrderPatch) (*models.Order, error) {
	if errs := validate.Struct(p); validate.HasErrors(errs) {
		return nil, apperror.ValidationFields(validate.First(errs), errs)
	}

	o, err := s.orders.Patch(ctx, orderID, p)
	if err != nil {
		return nil, notFound(err, msgOrderNotFound)
	}
	return o, nil
}

func (s *OrderService) Delete(ctx context.Context, orderID string) error {
	if err := s.orders.Delete(ctx, orderID); err != nil {
		return notFound(err, msgOrderNotFound)
	}
	logger.WithCtx(ctx).Info("order deleted", "order_id", orderID)
	return nil
}

func (s *OrderService) list(ctx context.Context, f models.OrderFilter, emptyMsg string) ([]models.Order, error) {
	orders, err := s.orders.List(ctx, f)
	if err != nil {
		return nil, apperror.Wrap(err, "Internal Server Error")
	}
	if len(orders) == 0 {
		return nil, apperror.NotFoundf("%s", emptyMsg)
	}
	return orders, nil
}
