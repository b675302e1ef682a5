package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"orderDeliveryManagement/models"
)

// orderNumber builds "ORD-YYYYMMDD-XXXXXX" with a random uppercase hex suffix.
func orderNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%s", at.Format("20060102"), suffix)
}

// NewOrderItem is one requested line item at checkout.
type NewOrderItem struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	StoreName   string          `json:"store_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// NewOrder is the checkout input.
type NewOrder struct {
	PaymentMethod      models.PaymentMethod `json:"payment_method"`
	ShippingAddress    string               `json:"shipping_address"`
	ShippingCity       string               `json:"shipping_city"`
	ShippingPostalCode string               `json:"shipping_postal_code"`
	ShippingCountry    string               `json:"shipping_country"`
	Items              []NewOrderItem       `json:"items"`
}

// CreateOrder places a new order in pending status. Line items are
// snapshotted, the subtotal is summed from them, and the total is subtotal
// plus the flat shipping fee.
func (s *Service) CreateOrder(ctx context.Context, userID int64, in NewOrder) (*models.Order, []models.OrderItem, error) {
	if len(in.Items) == 0 {
		return nil, nil, fmt.Errorf("order has no items: %w", models.ErrInvalidInput)
	}
	if strings.TrimSpace(in.ShippingAddress) == "" {
		return nil, nil, fmt.Errorf("shipping address is required: %w", models.ErrInvalidInput)
	}

	subtotal := decimal.Zero
	items := make([]models.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, nil, fmt.Errorf("item %q quantity %d: %w", it.ProductName, it.Quantity, models.ErrInvalidInput)
		}
		if it.Price.IsNegative() {
			return nil, nil, fmt.Errorf("item %q price %s: %w", it.ProductName, it.Price, models.ErrInvalidInput)
		}
		lineSubtotal := it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(lineSubtotal)
		items = append(items, models.OrderItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			StoreName:   it.StoreName,
			Price:       it.Price,
			Quantity:    it.Quantity,
			Subtotal:    lineSubtotal,
		})
	}

	now := s.clock.Now()
	order := &models.Order{
		OrderNumber:        orderNumber(now),
		UserID:             userID,
		PaymentMethod:      in.PaymentMethod,
		ShippingAddress:    in.ShippingAddress,
		ShippingCity:       in.ShippingCity,
		ShippingPostalCode: in.ShippingPostalCode,
		ShippingCountry:    in.ShippingCountry,
		Subtotal:           subtotal,
		ShippingCost:       s.shippingFee,
		Total:              subtotal.Add(s.shippingFee),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	order, err := s.orders.Create(ctx, order, items)
	if err != nil {
		return nil, nil, err
	}
	s.log.Info().
		Int64("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Str("total", order.Total.String()).
		Msg("order created")
	return order, items, nil
}

// OrderForUser fetches one of the user's orders with its line items.
func (s *Service) OrderForUser(ctx context.Context, orderID, userID int64) (*models.Order, []models.OrderItem, error) {
	order, err := s.orders.GetByIDForUser(ctx, orderID, userID)
	if err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, fmt.Errorf("order %d: %w", orderID, models.ErrNotFound)
	}
	items, err := s.orders.ItemsByOrder(ctx, order.ID)
	if err != nil {
		return nil, nil, err
	}
	return order, items, nil
}

// CancelOrder cancels a pending order. Orders past pending are already in
// delivery and must be resolved through the assignment lifecycle.
func (s *Service) CancelOrder(ctx context.Context, orderID, userID int64) (*models.Order, error) {
	order, err := s.orders.GetByIDForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("order %d: %w", orderID, models.ErrNotFound)
	}
	now := s.clock.Now()
	ok, err := s.orders.UpdateStatusIf(ctx, order.ID, models.OrderStatusPending, models.OrderStatusCancelled, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("order %d is not pending: %w", order.ID, models.ErrInvalidTransition)
	}
	s.notify(ctx, &models.Notification{
		UserID:  order.UserID,
		Type:    models.NotificationOrderCancelled,
		Message: fmt.Sprintf("Your order %s has been cancelled", order.OrderNumber),
		OrderID: &order.ID,
	})
	return s.orders.GetByID(ctx, order.ID)
}

// MarkOrderPaid records a successful payment.
func (s *Service) MarkOrderPaid(ctx context.Context, orderID int64) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return fmt.Errorf("order %d: %w", orderID, models.ErrNotFound)
	}
	return s.orders.UpdatePaymentStatus(ctx, orderID, models.PaymentStatusPaid, s.clock.Now())
}
