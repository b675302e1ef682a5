package workflow

import (
	"context"
	"fmt"

	"orderDeliveryManagement/models"
)

// SetOrderStatus is the administrative override: it sets the order status
// unconditionally, bypassing the transition table.
func (s *Service) SetOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) (*models.Order, error) {
	switch status {
	case models.OrderStatusPending, models.OrderStatusConfirmed, models.OrderStatusShipped,
		models.OrderStatusInTransit, models.OrderStatusDelivered, models.OrderStatusReceived,
		models.OrderStatusDisputed, models.OrderStatusCancelled:
	default:
		return nil, fmt.Errorf("status %q: %w", status, models.ErrInvalidInput)
	}
	if err := s.orders.UpdateStatus(ctx, orderID, status, s.clock.Now()); err != nil {
		return nil, err
	}
	s.log.Warn().
		Int64("order_id", orderID).
		Str("status", string(status)).
		Msg("order status overridden")
	return s.orders.GetByID(ctx, orderID)
}

// AllInvoices lists invoices across drivers.
func (s *Service) AllInvoices(ctx context.Context, limit, offset int) ([]models.Invoice, error) {
	return s.invoices.ListAll(ctx, limit, offset)
}

// DriverInvoices lists one driver's invoices.
func (s *Service) DriverInvoices(ctx context.Context, driverID int64, limit, offset int) ([]models.Invoice, error) {
	return s.invoices.ListByDriver(ctx, driverID, limit, offset)
}

// SetInvoiceStatus moves an invoice between issued, paid and cancelled.
func (s *Service) SetInvoiceStatus(ctx context.Context, invoiceID int64, status models.InvoiceStatus) (*models.Invoice, error) {
	switch status {
	case models.InvoiceStatusIssued, models.InvoiceStatusPaid, models.InvoiceStatusCancelled:
	default:
		return nil, fmt.Errorf("invoice status %q: %w", status, models.ErrInvalidInput)
	}
	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("invoice %d: %w", invoiceID, models.ErrNotFound)
	}
	if err := s.invoices.UpdateStatus(ctx, invoiceID, status, s.clock.Now()); err != nil {
		return nil, err
	}
	return s.invoices.GetByID(ctx, invoiceID)
}

// OrdersForUser lists a customer's orders.
func (s *Service) OrdersForUser(ctx context.Context, userID int64) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}
