package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"orderDeliveryManagement/models"
)

// OrderRepository is the core repository for Order entities and their line
// item snapshots.
type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, order_number, user_id, status, payment_method, payment_status,
shipping_address, shipping_city, shipping_postal_code, shipping_country,
subtotal, shipping_cost, total, created_at, updated_at`

// Create inserts a new order together with its line items in one transaction.
// Status defaults to 'pending' if empty. CreatedAt/UpdatedAt must be set by
// the caller from the injected clock.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order, items []models.OrderItem) (*models.Order, error) {
	if o == nil {
		return nil, errors.New("order is nil")
	}
	if o.Status == "" {
		o.Status = models.OrderStatusPending
	}
	if o.PaymentMethod == "" {
		o.PaymentMethod = models.PaymentMethodOnline
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = models.PaymentStatusPending
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO orders (order_number, user_id, status, payment_method, payment_status,
shipping_address, shipping_city, shipping_postal_code, shipping_country,
subtotal, shipping_cost, total, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		o.OrderNumber, o.UserID, string(o.Status), string(o.PaymentMethod), string(o.PaymentStatus),
		o.ShippingAddress, o.ShippingCity, o.ShippingPostalCode, o.ShippingCountry,
		o.Subtotal, o.ShippingCost, o.Total, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	for i := range items {
		items[i].OrderID = id
		ires, err := tx.ExecContext(ctx, `INSERT INTO order_items (order_id, product_id, product_name, store_name, price, quantity, subtotal) VALUES (?,?,?,?,?,?,?)`,
			id, items[i].ProductID, items[i].ProductName, items[i].StoreName, items[i].Price, items[i].Quantity, items[i].Subtotal)
		if err != nil {
			_ = tx.Rollback()
			return nil, err
		}
		items[i].ID, _ = ires.LastInsertId()
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	o.ID = id
	return o, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	return scanOrder(row)
}

// GetByIDForUser fetches an order only when it belongs to the given user.
func (r *OrderRepository) GetByIDForUser(ctx context.Context, id, userID int64) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ? AND user_id = ?`, id, userID)
	return scanOrder(row)
}

func (r *OrderRepository) GetByNumber(ctx context.Context, number string) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_number = ?`, number)
	return scanOrder(row)
}

// ListByUser returns all orders for a user ordered by created_at desc.
func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Order
	for rows.Next() {
		o, err := scanOrderRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// ItemsByOrder returns an order's line items in insertion order.
func (r *OrderRepository) ItemsByOrder(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT id, order_id, product_id, product_name, store_name, price, quantity, subtotal FROM order_items WHERE order_id = ? ORDER BY id ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.OrderItem
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.StoreName, &it.Price, &it.Quantity, &it.Subtotal); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// UpdateStatus sets the status unconditionally (administrative override).
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`, string(status), now, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("order %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// UpdateStatusIf advances the status only when the persisted status still
// equals `from`. Returns false when another request won the transition first.
func (r *OrderRepository) UpdateStatusIf(ctx context.Context, id int64, from, to models.OrderStatus, now time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(to), now, id, string(from))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *OrderRepository) UpdatePaymentStatus(ctx context.Context, id int64, status models.PaymentStatus, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `UPDATE orders SET payment_status = ?, updated_at = ? WHERE id = ?`, string(status), now, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrderFields(s rowScanner) (*models.Order, error) {
	var o models.Order
	var status, method, payStatus string
	err := s.Scan(&o.ID, &o.OrderNumber, &o.UserID, &status, &method, &payStatus,
		&o.ShippingAddress, &o.ShippingCity, &o.ShippingPostalCode, &o.ShippingCountry,
		&o.Subtotal, &o.ShippingCost, &o.Total, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = models.OrderStatus(status)
	o.PaymentMethod = models.PaymentMethod(method)
	o.PaymentStatus = models.PaymentStatus(payStatus)
	return &o, nil
}

func scanOrder(row *sql.Row) (*models.Order, error) {
	o, err := scanOrderFields(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return o, nil
}

func scanOrderRow(rows *sql.Rows) (*models.Order, error) {
	return scanOrderFields(rows)
}
