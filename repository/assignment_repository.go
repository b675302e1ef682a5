package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"orderDeliveryManagement/models"
)

// AssignmentRepository persists OrderAssignment rows. All lifecycle moves go
// through Transition/Reject, which are conditional updates on the current
// status: under two concurrent requests exactly one observes RowsAffected == 1.
type AssignmentRepository struct {
	db *sql.DB
}

func NewAssignmentRepository(db *sql.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

const assignmentColumns = `id, order_id, driver_id, status, assigned_at, accepted_at, rejected_at,
completed_at, confirmed_at, rejection_reason, scheduled_delivery_date`

// Create inserts a new assignment in the 'assigned' state. The partial unique
// index on (order_id, driver_id) for non-rejected rows maps to
// models.ErrDuplicateAssignment.
func (r *AssignmentRepository) Create(ctx context.Context, a *models.OrderAssignment) (*models.OrderAssignment, error) {
	if a == nil {
		return nil, errors.New("assignment is nil")
	}
	if a.Status == "" {
		a.Status = models.AssignmentStatusAssigned
	}
	if a.ScheduledDeliveryDate == "" {
		a.ScheduledDeliveryDate = a.AssignedAt.Format(models.DateLayout)
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO order_assignments (order_id, driver_id, status, assigned_at, rejection_reason, scheduled_delivery_date) VALUES (?,?,?,?,?,?)`,
		a.OrderID, a.DriverID, string(a.Status), a.AssignedAt, a.RejectionReason, a.ScheduledDeliveryDate)
	if err != nil {
		if sqliteUniqueViolation(err, "") {
			return nil, fmt.Errorf("order %d, driver %d: %w", a.OrderID, a.DriverID, models.ErrDuplicateAssignment)
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	a.ID = id
	return a, nil
}

func (r *AssignmentRepository) GetByID(ctx context.Context, id int64) (*models.OrderAssignment, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	row := r.db.QueryRowContext(ctx, `SELECT `+assignmentColumns+` FROM order_assignments WHERE id = ?`, id)
	a, err := scanAssignment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// ListByDriver returns a driver's assignments, optionally filtered by status,
// most recent first.
func (r *AssignmentRepository) ListByDriver(ctx context.Context, driverID int64, status *models.AssignmentStatus) ([]models.OrderAssignment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `SELECT ` + assignmentColumns + ` FROM order_assignments WHERE driver_id = ?`
	args := []any{driverID}
	if status != nil {
		query += ` AND status = ?`
		args = append(args, string(*status))
	}
	query += ` ORDER BY assigned_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.OrderAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// AssignmentWithOrder joins an assignment with the order fields the delivery
// ledger needs for its calendar buckets.
type AssignmentWithOrder struct {
	models.OrderAssignment
	OrderNumber string
	OrderTotal  decimal.Decimal
}

// ListByDriverDateRange returns assignments scheduled in [fromDate, toDate]
// (inclusive, YYYY-MM-DD) joined with their order number and total.
func (r *AssignmentRepository) ListByDriverDateRange(ctx context.Context, driverID int64, fromDate, toDate string) ([]AssignmentWithOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `
SELECT a.id, a.order_id, a.driver_id, a.status, a.assigned_at, a.accepted_at, a.rejected_at,
       a.completed_at, a.confirmed_at, a.rejection_reason, a.scheduled_delivery_date,
       o.order_number, o.total
FROM order_assignments a
JOIN orders o ON o.id = a.order_id
WHERE a.driver_id = ? AND a.scheduled_delivery_date >= ? AND a.scheduled_delivery_date <= ?
ORDER BY a.scheduled_delivery_date ASC, a.id ASC`, driverID, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AssignmentWithOrder
	for rows.Next() {
		var item AssignmentWithOrder
		var status string
		var acceptedAt, rejectedAt, completedAt, confirmedAt sql.NullTime
		if err := rows.Scan(&item.ID, &item.OrderID, &item.DriverID, &status, &item.AssignedAt,
			&acceptedAt, &rejectedAt, &completedAt, &confirmedAt,
			&item.RejectionReason, &item.ScheduledDeliveryDate,
			&item.OrderNumber, &item.OrderTotal); err != nil {
			return nil, err
		}
		item.Status = models.AssignmentStatus(status)
		item.AcceptedAt = nullTimePtr(acceptedAt)
		item.RejectedAt = nullTimePtr(rejectedAt)
		item.CompletedAt = nullTimePtr(completedAt)
		item.ConfirmedAt = nullTimePtr(confirmedAt)
		out = append(out, item)
	}
	return out, rows.Err()
}

// ListUndelivered returns a driver's assignments scheduled on the given date
// that are still open, i.e. in {assigned, accepted}.
func (r *AssignmentRepository) ListUndelivered(ctx context.Context, driverID int64, date string) ([]models.OrderAssignment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT `+assignmentColumns+` FROM order_assignments
WHERE driver_id = ? AND scheduled_delivery_date = ? AND status IN ('assigned','accepted')
ORDER BY id ASC`, driverID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.OrderAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// timestampColumn maps a target status to the column set by that transition.
func timestampColumn(to models.AssignmentStatus) (string, error) {
	switch to {
	case models.AssignmentStatusAccepted:
		return "accepted_at", nil
	case models.AssignmentStatusRejected:
		return "rejected_at", nil
	case models.AssignmentStatusCompleted:
		return "completed_at", nil
	case models.AssignmentStatusConfirmed:
		return "confirmed_at", nil
	default:
		return "", fmt.Errorf("no timestamp column for status %q", to)
	}
}

// Transition performs the compare-and-swap from -> to, stamping the target
// status's timestamp column. Returns false when the row was not in `from`.
func (r *AssignmentRepository) Transition(ctx context.Context, id int64, from, to models.AssignmentStatus, at time.Time) (bool, error) {
	col, err := timestampColumn(to)
	if err != nil {
		return false, err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	// col comes from timestampColumn, never from input.
	query := fmt.Sprintf(`UPDATE order_assignments SET status = ?, %s = ? WHERE id = ? AND status = ?`, col)
	res, err := r.db.ExecContext(ctx, query, string(to), at, id, string(from))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Reject is the assigned -> rejected transition carrying the reason.
func (r *AssignmentRepository) Reject(ctx context.Context, id int64, reason string, at time.Time) (bool, error) {
	if strings.TrimSpace(reason) == "" {
		reason = "unspecified"
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE order_assignments SET status = ?, rejected_at = ?, rejection_reason = ? WHERE id = ? AND status = ?`,
		string(models.AssignmentStatusRejected), at, reason, id, string(models.AssignmentStatusAssigned))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func scanAssignment(s rowScanner) (*models.OrderAssignment, error) {
	var a models.OrderAssignment
	var status string
	var acceptedAt, rejectedAt, completedAt, confirmedAt sql.NullTime
	err := s.Scan(&a.ID, &a.OrderID, &a.DriverID, &status, &a.AssignedAt,
		&acceptedAt, &rejectedAt, &completedAt, &confirmedAt,
		&a.RejectionReason, &a.ScheduledDeliveryDate)
	if err != nil {
		return nil, err
	}
	a.Status = models.AssignmentStatus(status)
	a.AcceptedAt = nullTimePtr(acceptedAt)
	a.RejectedAt = nullTimePtr(rejectedAt)
	a.CompletedAt = nullTimePtr(completedAt)
	a.ConfirmedAt = nullTimePtr(confirmedAt)
	return &a, nil
}
