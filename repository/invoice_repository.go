package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"orderDeliveryManagement/models"
)

// ErrInvoiceExists signals that an invoice already exists for the assignment
// or order; the caller should re-read and return the existing one.
var ErrInvoiceExists = errors.New("invoice already exists")

// ErrDuplicateInvoiceNumber signals an invoice-number collision; the caller
// re-draws the random suffix and retries.
var ErrDuplicateInvoiceNumber = errors.New("duplicate invoice number")

type InvoiceRepository struct {
	db *sql.DB
}

func NewInvoiceRepository(db *sql.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

const invoiceColumns = `id, order_assignment_id, order_id, driver_id, invoice_number, status,
customer_name, customer_email, customer_phone, customer_address,
seller_name, seller_email, seller_phone, seller_address,
subtotal, shipping_cost, tax, total, issued_at, due_date, paid_at, pdf_path`

// Create inserts a new invoice. Status defaults to 'issued'.
func (r *InvoiceRepository) Create(ctx context.Context, inv *models.Invoice) (*models.Invoice, error) {
	if inv == nil {
		return nil, errors.New("invoice is nil")
	}
	if inv.Status == "" {
		inv.Status = models.InvoiceStatusIssued
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO invoices (order_assignment_id, order_id, driver_id, invoice_number, status,
customer_name, customer_email, customer_phone, customer_address,
seller_name, seller_email, seller_phone, seller_address,
subtotal, shipping_cost, tax, total, issued_at, due_date, pdf_path)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		inv.OrderAssignmentID, inv.OrderID, inv.DriverID, inv.InvoiceNumber, string(inv.Status),
		inv.CustomerName, inv.CustomerEmail, inv.CustomerPhone, inv.CustomerAddress,
		inv.SellerName, inv.SellerEmail, inv.SellerPhone, inv.SellerAddress,
		inv.Subtotal, inv.ShippingCost, inv.Tax, inv.Total, inv.IssuedAt, inv.DueDate, inv.PDFPath)
	if err != nil {
		switch {
		case sqliteUniqueViolation(err, "invoice_number"):
			return nil, ErrDuplicateInvoiceNumber
		case sqliteUniqueViolation(err, ""):
			return nil, ErrInvoiceExists
		default:
			return nil, err
		}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	inv.ID = id
	return inv, nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id int64) (*models.Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	row := r.db.QueryRowContext(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id)
	return scanInvoice(row)
}

func (r *InvoiceRepository) GetByAssignment(ctx context.Context, assignmentID int64) (*models.Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	row := r.db.QueryRowContext(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE order_assignment_id = ?`, assignmentID)
	return scanInvoice(row)
}

func (r *InvoiceRepository) GetByOrder(ctx context.Context, orderID int64) (*models.Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	row := r.db.QueryRowContext(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE order_id = ?`, orderID)
	return scanInvoice(row)
}

func (r *InvoiceRepository) GetByNumber(ctx context.Context, number string) (*models.Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	row := r.db.QueryRowContext(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE invoice_number = ?`, number)
	return scanInvoice(row)
}

// ListByDriver returns a driver's invoices, most recent first.
func (r *InvoiceRepository) ListByDriver(ctx context.Context, driverID int64, limit, offset int) ([]models.Invoice, error) {
	return r.list(ctx, `WHERE driver_id = ?`, []any{driverID}, limit, offset)
}

// ListAll returns all invoices, most recent first.
func (r *InvoiceRepository) ListAll(ctx context.Context, limit, offset int) ([]models.Invoice, error) {
	return r.list(ctx, ``, nil, limit, offset)
}

func (r *InvoiceRepository) list(ctx context.Context, where string, args []any, limit, offset int) ([]models.Invoice, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `SELECT ` + invoiceColumns + ` FROM invoices ` + where + ` ORDER BY issued_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Invoice
	for rows.Next() {
		inv, err := scanInvoiceFields(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

// SetPDFPath records where the rendered invoice document was stored.
func (r *InvoiceRepository) SetPDFPath(ctx context.Context, id int64, path string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE invoices SET pdf_path = ? WHERE id = ?`, path, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("invoice %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// UpdateStatus sets the invoice status; paid_at is stamped when moving to paid.
func (r *InvoiceRepository) UpdateStatus(ctx context.Context, id int64, status models.InvoiceStatus, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var err error
	if status == models.InvoiceStatusPaid {
		_, err = r.db.ExecContext(ctx, `UPDATE invoices SET status = ?, paid_at = ? WHERE id = ?`, string(status), at, id)
	} else {
		_, err = r.db.ExecContext(ctx, `UPDATE invoices SET status = ? WHERE id = ?`, string(status), id)
	}
	return err
}

func scanInvoiceFields(s rowScanner) (*models.Invoice, error) {
	var inv models.Invoice
	var status string
	var paidAt sql.NullTime
	err := s.Scan(&inv.ID, &inv.OrderAssignmentID, &inv.OrderID, &inv.DriverID, &inv.InvoiceNumber, &status,
		&inv.CustomerName, &inv.CustomerEmail, &inv.CustomerPhone, &inv.CustomerAddress,
		&inv.SellerName, &inv.SellerEmail, &inv.SellerPhone, &inv.SellerAddress,
		&inv.Subtotal, &inv.ShippingCost, &inv.Tax, &inv.Total, &inv.IssuedAt, &inv.DueDate, &paidAt, &inv.PDFPath)
	if err != nil {
		return nil, err
	}
	inv.Status = models.InvoiceStatus(status)
	inv.PaidAt = nullTimePtr(paidAt)
	return &inv, nil
}

func scanInvoice(row *sql.Row) (*models.Invoice, error) {
	inv, err := scanInvoiceFields(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return inv, nil
}
