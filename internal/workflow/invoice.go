package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"orderDeliveryManagement/models"
	"orderDeliveryManagement/repository"
)

// invoiceDueDays is how long after issuance an invoice falls due.
const invoiceDueDays = 30

// invoiceNumber builds "INV-YYYYMMDD-XXXXXX" with a random uppercase hex
// suffix. Collisions are resolved by the caller redrawing.
func invoiceNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("INV-%s-%s", at.Format("20060102"), suffix)
}

// IssueInvoice creates the invoice for an accepted assignment exactly once.
// Calling it again for the same assignment returns the existing invoice with
// its original financial snapshot untouched.
func (s *Service) IssueInvoice(ctx context.Context, a *models.OrderAssignment) (*models.Invoice, error) {
	existing, err := s.invoices.GetByAssignment(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	order, err := s.orders.GetByID(ctx, a.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("order %d: %w", a.OrderID, models.ErrNotFound)
	}
	customer, err := s.users.GetByID(ctx, order.UserID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, fmt.Errorf("user %d: %w", order.UserID, models.ErrNotFound)
	}
	driver, err := s.drivers.GetByID(ctx, a.DriverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, fmt.Errorf("driver %d: %w", a.DriverID, models.ErrNotFound)
	}
	seller, err := s.users.GetByID(ctx, driver.UserID)
	if err != nil {
		return nil, err
	}
	if seller == nil {
		return nil, fmt.Errorf("user %d: %w", driver.UserID, models.ErrNotFound)
	}

	now := s.clock.Now()
	inv := &models.Invoice{
		OrderAssignmentID: a.ID,
		OrderID:           order.ID,
		DriverID:          driver.ID,
		Status:            models.InvoiceStatusIssued,

		CustomerName:    customer.DisplayName(),
		CustomerEmail:   customer.Email,
		CustomerPhone:   customer.Phone,
		CustomerAddress: order.ShippingAddress,

		SellerName:    seller.DisplayName(),
		SellerEmail:   seller.Email,
		SellerPhone:   driver.Phone,
		SellerAddress: seller.Address,

		Subtotal:     order.Subtotal,
		ShippingCost: order.ShippingCost,
		Tax:          s.tax(order.Subtotal, order.ShippingCost),
		Total:        order.Total,

		IssuedAt: now,
		DueDate:  now.AddDate(0, 0, invoiceDueDays).Format(models.DateLayout),
	}

	for attempt := 0; attempt < 5; attempt++ {
		inv.InvoiceNumber = invoiceNumber(now)
		created, err := s.invoices.Create(ctx, inv)
		if err == nil {
			s.renderInvoice(ctx, created)
			return created, nil
		}
		if errors.Is(err, repository.ErrDuplicateInvoiceNumber) {
			continue
		}
		if errors.Is(err, repository.ErrInvoiceExists) {
			// Another request issued it first; hand back theirs. The winner
			// may sit on a different assignment of the same order, so fall
			// back to the order lookup.
			existing, lookupErr := s.invoices.GetByAssignment(ctx, a.ID)
			if lookupErr != nil {
				return nil, lookupErr
			}
			if existing == nil {
				existing, lookupErr = s.invoices.GetByOrder(ctx, a.OrderID)
				if lookupErr != nil {
					return nil, lookupErr
				}
			}
			if existing == nil {
				return nil, fmt.Errorf("invoice for assignment %d: %w", a.ID, models.ErrNotFound)
			}
			return existing, nil
		}
		return nil, err
	}
	return nil, fmt.Errorf("invoice number collision for assignment %d", a.ID)
}

// renderInvoice produces the document and records its path. Rendering is
// best-effort: a failure leaves the invoice valid with an empty pdf_path.
func (s *Service) renderInvoice(ctx context.Context, inv *models.Invoice) {
	if s.renderer == nil || s.store == nil {
		return
	}
	items, err := s.orders.ItemsByOrder(ctx, inv.OrderID)
	if err != nil {
		s.log.Error().Err(err).Int64("invoice_id", inv.ID).Msg("load items for invoice render")
		return
	}
	data, err := s.renderer.Render(inv, items)
	if err != nil {
		s.log.Error().Err(err).Int64("invoice_id", inv.ID).Msg("render invoice")
		return
	}
	path, err := s.store.Save(inv.InvoiceNumber+".pdf", data)
	if err != nil {
		s.log.Error().Err(err).Int64("invoice_id", inv.ID).Msg("store invoice document")
		return
	}
	if err := s.invoices.SetPDFPath(ctx, inv.ID, path); err != nil {
		s.log.Error().Err(err).Int64("invoice_id", inv.ID).Msg("record invoice document path")
		return
	}
	inv.PDFPath = path
}

// RegeneratePDF re-renders the document for an existing invoice. The stored
// financial snapshot is never recomputed.
func (s *Service) RegeneratePDF(ctx context.Context, invoiceID int64) (*models.Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("invoice %d: %w", invoiceID, models.ErrNotFound)
	}
	s.renderInvoice(ctx, inv)
	return inv, nil
}

// InvoiceForDriver fetches one invoice, scoped to its driver.
func (s *Service) InvoiceForDriver(ctx context.Context, invoiceID, driverID int64) (*models.Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil || inv.DriverID != driverID {
		return nil, fmt.Errorf("invoice %d: %w", invoiceID, models.ErrNotFound)
	}
	return inv, nil
}
